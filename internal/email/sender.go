package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
	"github.com/ignatzorin/sponsorship-backend/internal/logger"
)

// Message готовое к отправке письмо.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender отправляет транзакционные письма.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender отправляет письма через SMTP.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSender возвращает SMTP отправителя или LogSender, если SMTP не настроен.
func NewSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		logger.Log.Warn("email: SMTP_HOST не задан, письма будут только логироваться")
		return &LogSender{}
	}
	return &SMTPSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
	}
}

// Send отправляет письмо. gomail не принимает контекст, поэтому проверяем его до соединения.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("email: пустой адрес получателя")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: не удалось отправить письмо %q: %w", msg.Subject, err)
	}
	return nil
}

// LogSender пишет письма в лог вместо отправки (development).
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email: пустой адрес получателя")
	}
	logger.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email: письмо (SMTP отключён)")
	return nil
}
