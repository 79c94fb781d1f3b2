package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchInterest_RendersAndEscapes(t *testing.T) {
	msg, err := MatchInterest("owner@example.com", MatchData{
		RecipientName: "Olga",
		BrandName:     "<Acme>",
		ListingTitle:  "Summer Fest",
		DashboardURL:  "https://app.example.com/dashboard",
	})
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Summer Fest")
	assert.Contains(t, msg.HTMLBody, "&lt;Acme&gt;")
	assert.Contains(t, msg.HTMLBody, "https://app.example.com/dashboard")
}

func TestMeetingScheduled_OptionalLink(t *testing.T) {
	withLink, err := MeetingScheduled("b@example.com", MatchData{ListingTitle: "Fest", MeetingLink: "https://meet.example.com/x", CalendarURL: "https://calendar.google.com/x"})
	require.NoError(t, err)
	assert.Contains(t, withLink.HTMLBody, "https://meet.example.com/x")

	noLink, err := MeetingScheduled("b@example.com", MatchData{ListingTitle: "Fest"})
	require.NoError(t, err)
	assert.NotContains(t, noLink.HTMLBody, "Join:")
}

func TestAllTemplatesRender(t *testing.T) {
	d := MatchData{RecipientName: "R", BrandName: "B", OwnerName: "O", ListingTitle: "L"}
	for _, build := range []func(string, MatchData) (Message, error){MatchInterest, MatchConfirmation, MatchAccepted, MeetingScheduled} {
		msg, err := build("x@example.com", d)
		require.NoError(t, err)
		assert.NotEmpty(t, msg.Subject)
		assert.Contains(t, msg.HTMLBody, "Sponsorship Marketplace")
	}
}

func TestFormatMeetingTime(t *testing.T) {
	ts := time.Date(2026, 3, 9, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mon, 09 Mar 2026 15:30 UTC", FormatMeetingTime(ts))
}

func TestLogSender_RequiresRecipient(t *testing.T) {
	var s LogSender
	assert.Error(t, s.Send(context.Background(), Message{Subject: "x"}))
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@b.co", Subject: "x"}))
}
