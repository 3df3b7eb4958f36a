package infra

import (
	"fmt"
	"net/smtp"

	"cashdesk/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer delivers closure reports to the back office over SMTP.
type Mailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
		from: cfg.SMTPUser,
	}
}

// SendClosureReport mails a day's closure summary with the PDF attached.
// An empty pdfPath sends the text body alone.
func (m *Mailer) SendClosureReport(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", pdfPath, err)
		}
	}
	// Send negotiates STARTTLS when the relay offers it.
	return e.Send(m.addr, m.auth)
}
