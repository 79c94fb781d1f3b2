package calendar

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleCalendarURL(t *testing.T) {
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	raw := GoogleCalendarURL(Event{Title: "Acme x Summer Fest", Start: start, Location: "https://meet.example.com/abc"})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Acme x Summer Fest", q.Get("text"))
	assert.Equal(t, "20260601T140000Z/20260601T143000Z", q.Get("dates"))
	assert.Equal(t, "https://meet.example.com/abc", q.Get("location"))
	assert.Empty(t, q.Get("details"))
}

func TestGoogleCalendarURL_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	start := time.Date(2026, 6, 1, 17, 0, 0, 0, loc)
	end := start.Add(time.Hour)
	u, _ := url.Parse(GoogleCalendarURL(Event{Title: "x", Start: start, End: end}))
	assert.Equal(t, "20260601T140000Z/20260601T150000Z", u.Query().Get("dates"))
}

func TestICS(t *testing.T) {
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	out := ICS(Event{UID: "m1@sponsorship", Title: "Intro; Acme, Fest", Start: start}, now)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, out, "DTSTART:20260601T140000Z\r\n")
	assert.Contains(t, out, "DTEND:20260601T143000Z\r\n")
	assert.Contains(t, out, "DTSTAMP:20260520T090000Z\r\n")
	assert.Contains(t, out, `SUMMARY:Intro\; Acme\, Fest`)
	assert.NotContains(t, out, "LOCATION:")
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
}

func TestFold(t *testing.T) {
	long := "DESCRIPTION:" + strings.Repeat("a", 100)
	folded := fold(long)
	for _, part := range strings.Split(folded, "\r\n") {
		assert.LessOrEqual(t, len(part), 75)
	}
	assert.Equal(t, long, strings.ReplaceAll(folded, "\r\n ", ""))
}
