package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultDuration длительность встречи, если конец не указан.
const DefaultDuration = 30 * time.Minute

const stampLayout = "20060102T150405Z"

// Event описывает встречу по заявке.
type Event struct {
	UID         string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

func (e Event) end() time.Time {
	if e.End.IsZero() || !e.End.After(e.Start) {
		return e.Start.Add(DefaultDuration)
	}
	return e.End
}

// GoogleCalendarURL строит ссылку "добавить в Google Календарь".
func GoogleCalendarURL(e Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", e.Title)
	q.Set("dates", e.Start.UTC().Format(stampLayout)+"/"+e.end().UTC().Format(stampLayout))
	if e.Description != "" {
		q.Set("details", e.Description)
	}
	if e.Location != "" {
		q.Set("location", e.Location)
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

// ICS возвращает приглашение в формате iCalendar (RFC 5545).
func ICS(e Event, now time.Time) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(fold(s))
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//sponsorship-backend//meetings//EN")
	line("METHOD:PUBLISH")
	line("BEGIN:VEVENT")
	line("UID:" + e.UID)
	line("DTSTAMP:" + now.UTC().Format(stampLayout))
	line("DTSTART:" + e.Start.UTC().Format(stampLayout))
	line("DTEND:" + e.end().UTC().Format(stampLayout))
	line("SUMMARY:" + escape(e.Title))
	if e.Description != "" {
		line("DESCRIPTION:" + escape(e.Description))
	}
	if e.Location != "" {
		line("LOCATION:" + escape(e.Location))
	}
	line("END:VEVENT")
	line("END:VCALENDAR")
	return b.String()
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escape(s string) string {
	return textEscaper.Replace(s)
}

// fold переносит строки длиннее 75 октетов.
func fold(s string) string {
	const limit = 75
	if len(s) <= limit {
		return s
	}

	var b strings.Builder
	width := 0
	for _, r := range s {
		n := len(string(r))
		if width+n > limit {
			b.WriteString("\r\n ")
			width = 1
		}
		b.WriteRune(r)
		width += n
	}
	return b.String()
}

// Filename возвращает имя файла приглашения.
func Filename(uid string) string {
	return fmt.Sprintf("meeting-%s.ics", uid)
}
