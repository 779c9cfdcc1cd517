package services

import (
	"testing"

	"servicelink/config"

	"github.com/stretchr/testify/assert"
)

func TestEmailServiceDisabledWithoutSMTPConfig(t *testing.T) {
	service := NewEmailService(config.Config{})

	assert.False(t, service.Enabled())

	err := service.SendResolutionNotice(
		"user@example.com",
		"Dana",
		"Leaky faucet",
		"Replaced the washer",
	)
	assert.ErrorIs(t, err, ErrEmailNotConfigured)
}

func TestEmailServiceEnabledWithSMTPConfig(t *testing.T) {
	service := NewEmailService(config.Config{
		SMTPHost:        "smtp.example.com",
		SMTPPort:        587,
		SMTPUser:        "mailer",
		SMTPPassword:    "secret",
		SMTPFromAddress: "noreply@example.com",
		SMTPFromName:    "ServiceLink",
	})

	assert.True(t, service.Enabled())
}

func TestResolutionNoticeBodies(t *testing.T) {
	html := buildResolutionNoticeHTML("Dana", "Leaky faucet", "Replaced the washer")
	plain := buildResolutionNoticePlain("Dana", "Leaky faucet", "Replaced the washer")

	for _, body := range []string{html, plain} {
		assert.Contains(t, body, "Dana")
		assert.Contains(t, body, "Leaky faucet")
		assert.Contains(t, body, "Replaced the washer")
		assert.Contains(t, body, "Thank you for using ServiceLink!")
	}

	assert.Contains(t, html, "<h2>Request Resolved</h2>")
	assert.NotContains(t, plain, "<")
}
