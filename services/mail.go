package services

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pworkhq/portal/database"
)

// Mailer sends notification mail through the SMTP settings stored in the app
// config. Delivery is best-effort: automation callers log failures and move
// on.
type Mailer struct{}

func NewMailer() *Mailer {
	return &Mailer{}
}

// Send delivers a plain-text message using the given SMTP settings.
func (m *Mailer) Send(cfg database.SMTPConfig, to, subject, body string) error {
	// Skip if SMTP not configured
	if cfg.Host == "" || cfg.Port == "" {
		return errors.New("SMTP not configured")
	}

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	from := cfg.SenderEmail
	if from == "" {
		from = cfg.Username
	}

	message := fmt.Sprintf("From: %s <%s>\nTo: %s\nSubject: %s\n\n%s",
		cfg.SenderName, from, to, subject, body)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// RenderTemplate fills the {name}/{companyName} placeholders used by the
// stored email templates.
func RenderTemplate(tpl database.EmailTemplate, cfg *database.AppConfig, user *database.User) (subject, body string) {
	replacer := strings.NewReplacer(
		"{companyName}", cfg.CompanyName,
		"{name}", user.Name,
	)
	return replacer.Replace(tpl.Subject), replacer.Replace(tpl.Body)
}
