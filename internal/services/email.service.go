package services

import (
	"errors"
	"fmt"

	"servicelink/config"

	logger "github.com/Bparsons0904/goLogger"
	"gopkg.in/gomail.v2"
)

var ErrEmailNotConfigured = errors.New("email service not configured")

// EmailService sends outbound notifications over SMTP. It is deliberately
// best-effort: callers run it after their transaction commits and treat a
// failure as loggable, never as a reason to undo the database write.
type EmailService struct {
	config config.Config
	dialer *gomail.Dialer
	log    logger.Logger
}

func NewEmailService(config config.Config) *EmailService {
	log := logger.New("emailService")

	service := &EmailService{
		config: config,
		log:    log,
	}

	if config.SMTPHost == "" {
		log.Info("SMTP not configured, resolution notifications disabled")
		return service
	}

	service.dialer = gomail.NewDialer(
		config.SMTPHost,
		config.SMTPPort,
		config.SMTPUser,
		config.SMTPPassword,
	)

	log.Info("Email service initialized", "host", config.SMTPHost, "port", config.SMTPPort)
	return service
}

func (s *EmailService) Enabled() bool {
	return s.dialer != nil
}

// SendResolutionNotice emails the submitter that their request was resolved
func (s *EmailService) SendResolutionNotice(
	to, name, requestTitle, resolutionNotes string,
) error {
	log := s.log.Function("SendResolutionNotice")

	if s.dialer == nil {
		log.Warn("email service not configured, skipping resolution notice", "to", to)
		return ErrEmailNotConfigured
	}

	subject := fmt.Sprintf("Your maintenance request has been resolved - %s", requestTitle)
	htmlBody := buildResolutionNoticeHTML(name, requestTitle, resolutionNotes)
	plainBody := buildResolutionNoticePlain(name, requestTitle, resolutionNotes)

	message := gomail.NewMessage()
	message.SetAddressHeader("From", s.config.SMTPFromAddress, s.config.SMTPFromName)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", plainBody)
	message.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(message); err != nil {
		return log.Err("failed to send resolution notice", err, "to", to)
	}

	log.Info("Resolution notice sent", "to", to)
	return nil
}

func buildResolutionNoticeHTML(name, requestTitle, resolutionNotes string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Request Resolved</h2>
			<p>Dear %s,</p>
			<p>Your maintenance request "%s" has been resolved.</p>
			<h3>Resolution Notes:</h3>
			<p>%s</p>
			<p>Thank you for using ServiceLink!</p>
		</body>
		</html>
	`, name, requestTitle, resolutionNotes)
}

func buildResolutionNoticePlain(name, requestTitle, resolutionNotes string) string {
	return fmt.Sprintf(`Dear %s,

Your maintenance request "%s" has been resolved.

Resolution Notes:
%s

Thank you for using ServiceLink!
`, name, requestTitle, resolutionNotes)
}
