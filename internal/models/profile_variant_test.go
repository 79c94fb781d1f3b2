package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVariant_AllTypes(t *testing.T) {
	cases := []struct {
		userType UserType
		raw      string
		want     ProfileVariant
	}{
		{UserTypeBrand, `{"industry":"beverages","preferred_categories":["music"]}`, BrandProfile{Industry: "beverages", PreferredCategories: []string{"music"}}},
		{UserTypeAgency, `{"agency_name":"Loud"}`, AgencyProfile{AgencyName: "Loud"}},
		{UserTypeCreator, `{"content_niche":"travel"}`, CreatorProfile{ContentNiche: "travel"}},
		{UserTypeEventOrganizer, `{"organization_name":"FestCo"}`, EventOrganizerProfile{OrganizationName: "FestCo"}},
		{UserTypeInfluencer, `{"primary_platform":"tiktok"}`, InfluencerProfile{PrimaryPlatform: "tiktok"}},
		{UserTypeAdmin, ``, AdminProfile{}},
	}

	for _, tc := range cases {
		t.Run(string(tc.userType), func(t *testing.T) {
			v, err := DecodeVariant(tc.userType, []byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
			assert.Equal(t, tc.userType, v.Kind())
			assert.NoError(t, v.Validate())
		})
	}
}

func TestDecodeVariant_UnknownType(t *testing.T) {
	_, err := DecodeVariant(UserType("sponsor"), []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeVariant_RequiredFields(t *testing.T) {
	for _, ut := range []UserType{UserTypeBrand, UserTypeAgency, UserTypeCreator, UserTypeEventOrganizer, UserTypeInfluencer} {
		v, err := DecodeVariant(ut, []byte(`{}`))
		require.NoError(t, err)
		assert.Error(t, v.Validate(), string(ut))
	}
}

func TestDecodeVariant_BadJSON(t *testing.T) {
	_, err := DecodeVariant(UserTypeBrand, []byte(`{"industry":`))
	assert.Error(t, err)
}

func TestUserTypeRoles(t *testing.T) {
	assert.True(t, UserTypeBrand.IsSponsor())
	assert.True(t, UserTypeAgency.IsSponsor())
	assert.False(t, UserTypeCreator.IsSponsor())
	assert.True(t, UserTypeEventOrganizer.OwnsOpportunities())
	assert.True(t, UserTypeInfluencer.OwnsPosts())
	assert.True(t, UserTypeAdmin.IsValid())
	assert.False(t, UserType("sponsor").IsValid())
}

func TestProfile_PublicHidesContacts(t *testing.T) {
	phone := "+15550001111"
	p := &Profile{Email: "a@b.co", Phone: &phone, ContactName: "Ann"}
	pub := p.Public()
	assert.Empty(t, pub.Email)
	assert.Nil(t, pub.Phone)
	assert.Equal(t, "a@b.co", p.Email)
	assert.Equal(t, "Ann", pub.DisplayName())
}
