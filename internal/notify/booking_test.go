package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-concierge/internal/bookings"
)

type captureSender struct {
	msgs []EmailMessage
	err  error
}

func (c *captureSender) Send(ctx context.Context, msg EmailMessage) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestBookingNotifier_SendsSummary(t *testing.T) {
	sender := &captureSender{}
	n := NewBookingNotifier(sender, " desk@salon.test ", nil)
	require.NotNil(t, n)

	age := 28
	err := n.BookingCreated(context.Background(), &bookings.Booking{
		ID: 5, Name: "Rahul", Phone: "9876543210", Gender: "male", Age: &age,
		Service: "haircut", Date: "2025-12-20", Time: "15:00", Status: bookings.StatusTentative,
	})
	require.NoError(t, err)
	require.Len(t, sender.msgs, 1)

	msg := sender.msgs[0]
	assert.Equal(t, "desk@salon.test", msg.To)
	assert.Equal(t, "New tentative booking #5: haircut on 2025-12-20 at 15:00", msg.Subject)
	assert.Contains(t, msg.Body, "Name: Rahul")
	assert.Contains(t, msg.Body, "Phone: 9876543210")
	assert.Contains(t, msg.Body, "Age: 28")
	assert.Equal(t, "booking", msg.Category)
	assert.Contains(t, msg.HTML, "<td>Rahul</td>")
	assert.Contains(t, msg.HTML, "<td>28</td>")
}

func TestBookingNotifier_EscapesHTML(t *testing.T) {
	sender := &captureSender{}
	n := NewBookingNotifier(sender, "desk@salon.test", nil)

	err := n.BookingCreated(context.Background(), &bookings.Booking{ID: 1, Name: "<b>Eve</b>", Service: "facial"})
	require.NoError(t, err)
	assert.Contains(t, sender.msgs[0].HTML, "&lt;b&gt;Eve&lt;/b&gt;")
	assert.NotContains(t, sender.msgs[0].HTML, "Age")
}

func TestBookingNotifier_WrapsSendError(t *testing.T) {
	n := NewBookingNotifier(&captureSender{err: errors.New("boom")}, "desk@salon.test", nil)
	err := n.BookingCreated(context.Background(), &bookings.Booking{ID: 9})
	assert.ErrorContains(t, err, "booking 9")
}

func TestNewBookingNotifier_DisabledWithoutRecipient(t *testing.T) {
	assert.Nil(t, NewBookingNotifier(&captureSender{}, "", nil))
	assert.Nil(t, NewBookingNotifier(nil, "desk@salon.test", nil))

	var n *BookingNotifier
	assert.NoError(t, n.BookingCreated(context.Background(), &bookings.Booking{}))
}
