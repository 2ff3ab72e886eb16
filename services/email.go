package services

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

func SendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 2525
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "noreply@marwarsaheli.com")
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, user, pass)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("could not send email to %s: %v", to, err)
		return err
	}

	return nil
}

func SendVerificationEmail(to, token string) {
	baseURL := os.Getenv("BASE_URL")
	link := baseURL + "/api/v1/auth/verify-email/" + token

	if os.Getenv("APP_ENV") != "production" {
		log.Printf("DEV MODE: verification link for %s: %s", to, link)
	}

	body := `<h1>Welcome!</h1>
		<p>Please verify your email address by clicking the link below:</p>
		<a href="` + link + `">Verify Email</a>`

	// Best-effort; registration must not fail on mail trouble.
	go SendEmail(to, "Verify your email", body)
}

func SendPasswordResetEmail(to, token string) {
	baseURL := os.Getenv("BASE_URL")
	link := baseURL + "/reset-password?token=" + token

	if os.Getenv("APP_ENV") != "production" {
		log.Printf("DEV MODE: password reset link for %s: %s", to, link)
	}

	body := `<h1>Password Reset Request</h1>
		<p>You requested a password reset. Click the link below to set a new password:</p>
		<a href="` + link + `">Reset Password</a>
		<p>If you did not request this, please ignore this email.</p>`

	go SendEmail(to, "Reset your password", body)
}
