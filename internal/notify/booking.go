package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/wolfman30/salon-concierge/internal/bookings"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

// BookingNotifier emails the salon front desk about new tentative bookings.
type BookingNotifier struct {
	email  EmailSender
	to     string
	logger *logging.Logger
}

var _ bookings.Notifier = (*BookingNotifier)(nil)

// NewBookingNotifier returns nil when there is no sender or no recipient, so
// callers can pass the result straight to bookings.NewService.
func NewBookingNotifier(email EmailSender, to string, logger *logging.Logger) *BookingNotifier {
	if email == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingNotifier{email: email, to: strings.TrimSpace(to), logger: logger}
}

// BookingCreated sends one email describing b.
func (n *BookingNotifier) BookingCreated(ctx context.Context, b *bookings.Booking) error {
	if n == nil || n.email == nil {
		return nil
	}
	if b == nil {
		return errors.New("notify: booking cannot be nil")
	}
	msg := EmailMessage{
		To:       n.to,
		Subject:  fmt.Sprintf("New tentative booking #%d: %s on %s at %s", b.ID, b.Service, b.Date, b.Time),
		Body:     bookingBody(b),
		Category: "booking",
	}
	html, err := bookingHTML(b)
	if err != nil {
		n.logger.Warn("booking html render failed, sending text only", "booking_id", b.ID, "error", err)
	} else {
		msg.HTML = html
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking %d: %w", b.ID, err)
	}
	n.logger.Debug("booking notification sent", "booking_id", b.ID)
	return nil
}

func bookingBody(b *bookings.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A tentative booking was requested through the chat assistant.\n\n")
	fmt.Fprintf(&sb, "Booking ID: %d\n", b.ID)
	fmt.Fprintf(&sb, "Service: %s\n", b.Service)
	fmt.Fprintf(&sb, "Date: %s\n", b.Date)
	fmt.Fprintf(&sb, "Time: %s\n", b.Time)
	fmt.Fprintf(&sb, "Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "Phone: %s\n", b.Phone)
	if b.Gender != "" {
		fmt.Fprintf(&sb, "Gender: %s\n", b.Gender)
	}
	if b.Age != nil {
		fmt.Fprintf(&sb, "Age: %d\n", *b.Age)
	}
	fmt.Fprintf(&sb, "\nPlease call the client to confirm.")
	return sb.String()
}

var bookingTemplate = template.Must(template.New("booking").Parse(`<h2>New tentative booking #{{.ID}}</h2>
<table>
<tr><td>Service</td><td>{{.Service}}</td></tr>
<tr><td>Date</td><td>{{.Date}}</td></tr>
<tr><td>Time</td><td>{{.Time}}</td></tr>
<tr><td>Name</td><td>{{.Name}}</td></tr>
<tr><td>Phone</td><td>{{.Phone}}</td></tr>
{{- if .Gender}}
<tr><td>Gender</td><td>{{.Gender}}</td></tr>
{{- end}}
{{- if .Age}}
<tr><td>Age</td><td>{{.Age}}</td></tr>
{{- end}}
</table>
<p>Please call the client to confirm.</p>`))

func bookingHTML(b *bookings.Booking) (string, error) {
	var sb strings.Builder
	if err := bookingTemplate.Execute(&sb, b); err != nil {
		return "", err
	}
	return sb.String(), nil
}
