package services

import (
	"errors"
	"net/smtp"
	"os"
)

// ErrSMTPNotConfigured reports that no SMTP settings are present. Callers
// may fall back to logging the message in development.
var ErrSMTPNotConfigured = errors.New("smtp not configured")

// SendOTPMail delivers a registration passcode to the given address.
func SendOTPMail(to, otp string) error {
	return sendMail(to, "Your verification code", "Your one-time passcode is "+otp+". It expires in a few minutes.")
}

func sendMail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")

	if host == "" || port == "" || user == "" || pass == "" {
		return ErrSMTPNotConfigured
	}

	addr := host + ":" + port
	from := user

	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"

	auth := smtp.PlainAuth("", user, pass, host)
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}
