package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/lusail/account-service/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

var otpTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type otpEmail struct {
	subject  string
	template string
}

var otpEmails = map[ports.OTPPurpose]otpEmail{
	ports.OTPPurposePasswordReset:     {subject: "Password Reset OTP", template: "password_reset.html"},
	ports.OTPPurposeEmailVerification: {subject: "Verify your email address", template: "email_verification.html"},
}

type otpEmailData struct {
	AppName   string
	Name      string
	Code      string
	ExpiresIn string
}

// renderOTPEmail returns the subject and HTML body for a code of the given purpose.
func renderOTPEmail(purpose ports.OTPPurpose, data otpEmailData) (string, string, error) {
	e, ok := otpEmails[purpose]
	if !ok {
		return "", "", fmt.Errorf("unknown otp purpose %q", purpose)
	}

	var buf bytes.Buffer
	if err := otpTemplates.ExecuteTemplate(&buf, e.template, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", e.template, err)
	}
	return e.subject, buf.String(), nil
}

// humanizeTTL renders durations like "5 minutes" or "90 seconds".
func humanizeTTL(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return fmt.Sprintf("%d seconds", int(d/time.Second))
}
