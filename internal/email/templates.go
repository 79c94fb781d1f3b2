package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const layout = `<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#1f2937;max-width:600px;margin:0 auto">
{{template "content" .}}
<p style="color:#9ca3af;font-size:12px;margin-top:32px">Sponsorship Marketplace</p>
</body></html>`

var templates = map[string]string{
	"match_interest": `{{define "content"}}
<h2>New sponsorship interest</h2>
<p>Hi {{.RecipientName}},</p>
<p><strong>{{.BrandName}}</strong> is interested in sponsoring <strong>{{.ListingTitle}}</strong>.</p>
<p><a href="{{.DashboardURL}}">Review the request in your dashboard</a></p>
{{end}}`,
	"match_confirmation": `{{define "content"}}
<h2>Your interest was sent</h2>
<p>Hi {{.RecipientName}},</p>
<p>We let <strong>{{.OwnerName}}</strong> know you are interested in <strong>{{.ListingTitle}}</strong>. You will be notified once they respond.</p>
{{end}}`,
	"match_accepted": `{{define "content"}}
<h2>Your sponsorship request was accepted</h2>
<p>Hi {{.RecipientName}},</p>
<p><strong>{{.OwnerName}}</strong> accepted your request for <strong>{{.ListingTitle}}</strong>.</p>
<p>Our team will reach out to schedule an introduction meeting.</p>
<p><a href="{{.DashboardURL}}">Open your matches</a></p>
{{end}}`,
	"meeting_scheduled": `{{define "content"}}
<h2>Meeting scheduled</h2>
<p>Hi {{.RecipientName}},</p>
<p>A meeting about <strong>{{.ListingTitle}}</strong> between {{.BrandName}} and {{.OwnerName}} is scheduled for <strong>{{.MeetingTime}}</strong>.</p>
{{if .MeetingLink}}<p>Join: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>{{end}}
<p><a href="{{.CalendarURL}}">Add to Google Calendar</a></p>
{{end}}`,
}

var parsed = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}()

// MatchData данные для писем о заявках.
type MatchData struct {
	RecipientName string
	BrandName     string
	OwnerName     string
	ListingTitle  string
	DashboardURL  string
	MeetingLink   string
	MeetingTime   string
	CalendarURL   string
}

func render(name string, data any) (string, error) {
	t, ok := parsed[name]
	if !ok {
		return "", fmt.Errorf("email: шаблон %s не найден", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("email: не удалось отрендерить %s: %w", name, err)
	}
	return buf.String(), nil
}

// MatchInterest письмо владельцу объявления о новом интересе бренда.
func MatchInterest(to string, d MatchData) (Message, error) {
	body, err := render("match_interest", d)
	return Message{To: to, Subject: fmt.Sprintf("%s is interested in %s", d.BrandName, d.ListingTitle), HTMLBody: body}, err
}

// MatchConfirmation подтверждение бренду, что интерес отправлен.
func MatchConfirmation(to string, d MatchData) (Message, error) {
	body, err := render("match_confirmation", d)
	return Message{To: to, Subject: "Your sponsorship interest was sent", HTMLBody: body}, err
}

// MatchAccepted письмо бренду о принятии заявки.
func MatchAccepted(to string, d MatchData) (Message, error) {
	body, err := render("match_accepted", d)
	return Message{To: to, Subject: fmt.Sprintf("%s accepted your request", d.OwnerName), HTMLBody: body}, err
}

// MeetingScheduled письмо обеим сторонам о назначенной встрече.
func MeetingScheduled(to string, d MatchData) (Message, error) {
	body, err := render("meeting_scheduled", d)
	return Message{To: to, Subject: "Meeting scheduled: " + d.ListingTitle, HTMLBody: body}, err
}

// FormatMeetingTime форматирует время встречи для письма.
func FormatMeetingTime(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
}
