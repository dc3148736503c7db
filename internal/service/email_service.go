package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

const reportEmailTemplate = `<div style="font-family: sans-serif; max-width: 600px; margin: auto; border: 1px solid #e2e8f0; border-radius: 0.5rem; padding: 2rem;">
  <h1 style="color: #6366F1; text-align: center; font-size: 2.25rem;">IntraPersonaL Report</h1>
  <h2 style="color: #374151; border-bottom: 1px solid #e2e8f0; padding-bottom: 0.5rem;">Analysis for "%s"</h2>

  <div style="background-color: #f8fafc; padding: 1.5rem; border-radius: 0.5rem; text-align: center; margin-top: 1rem; margin-bottom: 2rem;">
    <p style="font-size: 1.125rem; color: #4b5563; margin: 0;">Your Overall Score</p>
    <p style="font-size: 4rem; font-weight: bold; color: #6366F1; margin: 0.5rem 0;">%d</p>
    <p style="font-size: 1.25rem; font-weight: 600; color: #1f2937; margin: 0; background-color: #e0e7ff; display: inline-block; padding: 0.5rem 1rem; border-radius: 9999px;">%s</p>
  </div>

  <h3 style="color: #4b5563;">Detailed Insights:</h3>
  <div style="white-space: pre-wrap; background-color: #f8fafc; padding: 1rem; border-radius: 0.5rem; line-height: 1.6;">%s</div>
  <p style="text-align: center; color: #9ca3af; font-size: 0.875rem; margin-top: 2rem;">Thank you for using IntraPersonaL.</p>
</div>`

// EmailResult is returned for every send attempt. Failures are folded
// into the result rather than surfaced as errors, so a broken relay
// never takes down a finished assessment.
type EmailResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SMTPConfig holds the relay settings for the report mailer.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
}

// EmailService sends finished assessment reports over SMTP.
type EmailService struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	log  zerolog.Logger
}

// NewEmailService creates a new EmailService.
func NewEmailService(cfg SMTPConfig, log zerolog.Logger) *EmailService {
	return &EmailService{
		cfg:  cfg,
		send: smtp.SendMail,
		log:  log.With().Str("component", "email_service").Logger(),
	}
}

// SendReport emails the assessment report to the given address.
func (s *EmailService) SendReport(email, title, report string, score int, grade string) EmailResult {
	if !strings.Contains(email, "@") {
		return EmailResult{Success: false, Message: "Invalid email address."}
	}
	if strings.TrimSpace(report) == "" {
		return EmailResult{Success: false, Message: "Report content is required."}
	}
	if strings.TrimSpace(title) == "" {
		return EmailResult{Success: false, Message: "Report title is required."}
	}
	if s.cfg.Host == "" || s.cfg.SenderEmail == "" {
		return EmailResult{Success: false, Message: "Email server is not configured. Please check server logs."}
	}

	subject := fmt.Sprintf("Your IntraPersonaL report for %q", title)
	msg := s.buildMessage(email, subject, fmt.Sprintf(reportEmailTemplate, title, score, grade, report))

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.SenderEmail, []string{email}, msg); err != nil {
		s.log.Error().Err(err).Str("to", email).Msg("Failed to send report email")
		return EmailResult{Success: false, Message: "Failed to send email. Please try again later."}
	}

	s.log.Info().Str("to", email).Str("title", title).Msg("Report email sent")
	return EmailResult{Success: true, Message: "Email sent successfully."}
}

func (s *EmailService) buildMessage(to, subject, htmlBody string) []byte {
	return []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"%s\r\n",
		to, s.cfg.SenderName, s.cfg.SenderEmail, subject, htmlBody))
}
