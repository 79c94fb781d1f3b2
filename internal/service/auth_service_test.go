package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository и ProfileGetter на map.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	profiles     map[uuid.UUID]*models.Profile
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		profiles:     make(map[uuid.UUID]*models.Profile),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	if _, exists := m.usersByEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user

	profile.UserID = user.ID
	profile.UserType = user.UserType
	profile.Email = user.Email
	m.profiles[user.ID] = profile
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if profile, ok := m.profiles[userID]; ok {
		return profile, nil
	}
	return nil, repository.ErrProfileNotFound
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	if session, ok := m.sessions[refreshToken]; ok {
		return session, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func newTestAuthService() (*AuthService, *mockAuthRepository, *TokenManager) {
	repo := newMockAuthRepository()
	tm := NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)
	return NewAuthService(repo, repo, tm), repo, tm
}

func validRegister() RegisterInput {
	company := "Acme Inc"
	return RegisterInput{
		Email:       "Brand@Example.com",
		Password:    "Secret123",
		UserType:    models.UserTypeBrand,
		ContactName: "Olga Petrova",
		CompanyName: &company,
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, repo, tm := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegister(), SessionMeta{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "brand@example.com", res.User.Email)
	assert.Equal(t, models.UserTypeBrand, res.Profile.UserType)
	assert.Equal(t, "Acme Inc", res.Profile.DisplayName())
	assert.Len(t, repo.sessions, 1)

	userID, userType, err := tm.ParseAccess(res.TokenPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)
	assert.Equal(t, models.UserTypeBrand, userType)

	login, err := svc.Login(ctx, LoginInput{Email: "brand@example.com", Password: "Secret123"}, SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotNil(t, login.Profile)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegister(), SessionMeta{})
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegister(), SessionMeta{})
	assert.ErrorIs(t, err, apperror.ErrEmailTaken)
}

func TestAuthService_RegisterRejectsAdminAndBadInput(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	in := validRegister()
	in.UserType = models.UserTypeAdmin
	_, err := svc.Register(ctx, in, SessionMeta{})
	assert.True(t, apperror.IsForbidden(err))

	in = validRegister()
	in.UserType = "sponsor"
	_, err = svc.Register(ctx, in, SessionMeta{})
	assert.True(t, apperror.IsValidation(err))

	in = validRegister()
	in.Password = "short"
	_, err = svc.Register(ctx, in, SessionMeta{})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegister(), SessionMeta{})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "brand@example.com", Password: "Wrong1234"}, SessionMeta{})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Secret123"}, SessionMeta{})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesSession(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegister(), SessionMeta{})
	require.NoError(t, err)
	oldToken := res.TokenPair.RefreshToken

	pair, err := svc.Refresh(ctx, oldToken, SessionMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, pair.RefreshToken)
	_, stillThere := repo.sessions[oldToken]
	assert.False(t, stillThere)

	// старый токен уже отозван
	_, err = svc.Refresh(ctx, oldToken, SessionMeta{})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthService_LogoutAndMe(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegister(), SessionMeta{})
	require.NoError(t, err)

	me, err := svc.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, me.Profile.UserID)

	require.NoError(t, svc.Logout(ctx, res.TokenPair.RefreshToken))
	assert.Empty(t, repo.sessions)

	_, err = svc.Me(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
