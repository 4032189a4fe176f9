package libs

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"food-order/config"
	"food-order/models"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends transactional email through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if !cfg.MailerEnabled() {
		return nil, errors.New("SMTP configuration missing")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPFrom,
	}, nil
}

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
    <h2 style="color: #333;">Password Reset Request</h2>
    <p>Use the following one-time code to reset your password:</p>
    <div style="background-color: #fff7ed; border: 2px dashed #f97316; padding: 20px; text-align: center; margin: 30px 0;">
      <div style="font-size: 36px; font-weight: bold; color: #f97316; letter-spacing: 8px;">{{.OTP}}</div>
    </div>
    <p><strong>This code will expire in {{.Minutes}} minutes.</strong></p>
    <p>If you did not request a password reset, you can ignore this email.</p>
  </div>
</body>
</html>`))

var orderTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
    <h2 style="color: #333;">Order Confirmation</h2>
    <p>Thank you for your order from {{.StoreName}}!</p>
    <table style="width: 100%; border-collapse: collapse;">
      {{range .Items}}<tr><td>{{.Quantity}} x {{.Name}}</td><td style="text-align: right;">${{.LineTotal.StringFixed 2}}</td></tr>
      {{end}}
    </table>
    <div style="background-color: #fff7ed; padding: 20px; margin: 20px 0;">
      <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
      <p>Subtotal: ${{.Totals.Subtotal.StringFixed 2}}</p>
      <p>Tax: ${{.Totals.Tax.StringFixed 2}}</p>
      <p>Delivery fee: ${{.Totals.DeliveryFee.StringFixed 2}}</p>
      <p><strong>Total: ${{.Totals.Total.StringFixed 2}}</strong></p>
    </div>
  </div>
</body>
</html>`))

func (m *SMTPMailer) SendOTPEmail(_ context.Context, toEmail, otp string, minutes int) error {
	var body strings.Builder
	if err := otpTemplate.Execute(&body, map[string]any{"OTP": otp, "Minutes": minutes}); err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}
	return m.send(toEmail, "Password Reset Code", body.String())
}

func (m *SMTPMailer) SendOrderConfirmationEmail(_ context.Context, toEmail string, order models.Order) error {
	var body strings.Builder
	if err := orderTemplate.Execute(&body, order); err != nil {
		return fmt.Errorf("render order email: %w", err)
	}
	return m.send(toEmail, fmt.Sprintf("Order Confirmation #%s", order.OrderNumber), body.String())
}

func (m *SMTPMailer) send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
