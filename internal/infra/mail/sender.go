package mail

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
)

type EmailSender interface {
	SendEmail(subject string, content string, to []string, cc []string, bcc []string, attachFiles []string) error
}

// SMTPSender 以 PlainAuth 登入 smtp server 寄信
type SMTPSender struct {
	name              string
	fromEmailAddress  string
	fromEmailPassword string
	host              string
	port              string
}

func NewSMTPSender(name, fromEmailAddress, fromEmailPassword, host, port string) *SMTPSender {
	return &SMTPSender{
		name:              name,
		fromEmailAddress:  fromEmailAddress,
		fromEmailPassword: fromEmailPassword,
		host:              host,
		port:              port,
	}
}

func NewGmailSender(name, fromEmailAddress, fromEmailPassword string) *SMTPSender {
	return NewSMTPSender(name, fromEmailAddress, fromEmailPassword, "smtp.gmail.com", "587")
}

func (s *SMTPSender) SendEmail(subject string, content string, to []string, cc []string, bcc []string, attachFiles []string) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.name, s.fromEmailAddress)
	e.Subject = subject
	e.HTML = []byte(content)
	e.To = to
	e.Cc = cc
	e.Bcc = bcc

	for _, f := range attachFiles {
		if _, err := e.AttachFile(f); err != nil {
			return fmt.Errorf("failed to attach file %s: %w", f, err)
		}
	}

	auth := smtp.PlainAuth("", s.fromEmailAddress, s.fromEmailPassword, s.host)
	return e.Send(fmt.Sprintf("%s:%s", s.host, s.port), auth)
}

// LogSender 未設定 smtp 帳號時使用, 只寫 log
type LogSender struct{}

func (LogSender) SendEmail(subject string, content string, to []string, cc []string, bcc []string, attachFiles []string) error {
	log.Info().Str("subject", subject).Strs("to", to).Msg("smtp not configured, skip sending email")
	return nil
}
