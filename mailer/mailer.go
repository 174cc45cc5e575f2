// Package mailer is the credential-email collaborator. The rest of the
// backend only hands it (to, name, loginId, password) and checks the error.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"strings"
)

type Mailer interface {
	SendCredentials(to, name, loginID, password string) error
}

// SMTP sends the welcome/credential mail through a plain SMTP relay.
type SMTP struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

// FromEnv builds a Mailer from SMTP_* environment variables. Without an
// SMTP_ADDR it falls back to a log-only mailer so local setups still work.
func FromEnv() Mailer {
	addr := os.Getenv("SMTP_ADDR")
	if addr == "" {
		slog.Warn("SMTP_ADDR not set, credential emails will only be logged")
		return Log{}
	}
	from := os.Getenv("SMTP_FROM")
	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASS"), host)
	}
	return &SMTP{Addr: addr, From: from, Auth: auth}
}

func (s *SMTP) SendCredentials(to, name, loginID, password string) error {
	body := fmt.Sprintf(
		"From: Sampark 2026 <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: Your Sampark 2026 credentials\r\n"+
			"\r\n"+
			"Hi %s,\r\n\r\n"+
			"Your registration has been approved. Log in with:\r\n\r\n"+
			"  Login ID: %s\r\n"+
			"  Email:    %s\r\n"+
			"  Password: %s\r\n\r\n"+
			"See you at Sampark 2026!\r\n",
		s.From, to, name, loginID, to, password)

	if err := smtp.SendMail(s.Addr, s.Auth, s.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send credential email: %w", err)
	}
	return nil
}

// Log is the development mailer: it logs instead of sending. The password
// itself is never logged.
type Log struct{}

func (Log) SendCredentials(to, name, loginID, _ string) error {
	slog.Info("credential email (log-only mailer)", "to", to, "name", name, "login_id", loginID)
	return nil
}
