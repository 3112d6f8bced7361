package utils

import (
	"fmt"
	"log"
	"net/smtp"

	"POOLSHARE_BACK-END/internal/config"
)

// EmailService handles email sending operations
type EmailService struct {
	config *config.EmailConfig
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{
		config: cfg,
	}
}

// SendPasswordReset sends the password reset link to the user's email
func (e *EmailService) SendPasswordReset(to, resetLink string) error {
	subject := "Password Reset Request"
	body := fmt.Sprintf(`
Hello,

You requested to reset your Poolshare password.

Open the link below to choose a new password:

%s

The link expires in one hour. If you didn't request this, please ignore this email.

Best regards,
Poolshare Team
	`, resetLink)

	return e.sendEmail(to, subject, body)
}

// SendPasswordResetAsync delivers the reset mail on a background goroutine.
// The HTTP response never waits on or reflects the delivery outcome; failures
// are only logged.
func (e *EmailService) SendPasswordResetAsync(to, resetLink string) {
	go func() {
		if err := e.SendPasswordReset(to, resetLink); err != nil {
			log.Printf("password reset email to %s failed: %v", to, err)
		}
	}()
}

// sendEmail sends an email using SMTP
func (e *EmailService) sendEmail(to, subject, body string) error {
	// Check if credentials are set
	if e.config.SMTPUsername == "" || e.config.SMTPPassword == "" {
		return fmt.Errorf("email credentials not configured")
	}

	// Setup authentication
	auth := smtp.PlainAuth("", e.config.SMTPUsername, e.config.SMTPPassword, e.config.SMTPHost)

	// Compose message
	fromEmail := e.config.FromEmail
	if fromEmail == "" {
		fromEmail = e.config.SMTPUsername
	}
	message := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		e.config.FromName, fromEmail, to, subject, body))

	// Send email
	addr := e.config.SMTPHost + ":" + e.config.SMTPPort
	if err := smtp.SendMail(addr, auth, fromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
