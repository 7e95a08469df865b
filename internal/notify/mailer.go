// Package notify sends booking confirmation emails over SMTP.
package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/salon-booking/internal/config"
)

// BookingConfirmation is the data rendered into the confirmation email.
type BookingConfirmation struct {
	BookingID    string
	CustomerName string
	Service      string
	Date         string
	Time         string
	TableNumber  int
	PaymentID    string
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<h2>Your booking at The Hair Bar is confirmed</h2>
<p>Hi {{.CustomerName}},</p>
<p>We look forward to seeing you.</p>
<table cellpadding="4">
<tr><td>Service</td><td><b>{{.Service}}</b></td></tr>
<tr><td>Date</td><td>{{.Date}}</td></tr>
<tr><td>Time</td><td>{{.Time}}</td></tr>
<tr><td>Table</td><td>{{.TableNumber}}</td></tr>
<tr><td>Booking</td><td>{{.BookingID}}</td></tr>
{{if .PaymentID}}<tr><td>Payment</td><td>{{.PaymentID}}</td></tr>{{end}}
</table>
</body></html>`))

// RenderConfirmation renders the HTML body of the confirmation email.
func RenderConfirmation(data BookingConfirmation) (string, error) {
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// Mailer delivers mail through a gomail dialer.  A Mailer built from a
// config without SMTP host is disabled and Send does nothing.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
	logger *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	m := &Mailer{from: cfg.From, logger: logger}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.dialer != nil }

// SendConfirmation emails the booking confirmation to "to".
func (m *Mailer) SendConfirmation(to string, data BookingConfirmation) error {
	if !m.Enabled() {
		return nil
	}
	body, err := RenderConfirmation(data)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Booking confirmed: "+data.Service+" on "+data.Date)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("send confirmation email", zap.String("booking_id", data.BookingID), zap.Error(err))
		return err
	}
	return nil
}
