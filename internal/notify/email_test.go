package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-concierge/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "desk@salon.test"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "desk@salon.test"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Salon Concierge", sender.fromName)
}

type fakeSendGrid struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestSendGridSender_Send(t *testing.T) {
	fake := &fakeSendGrid{status: 202}
	sender := &SendGridSender{mailbox: newMailbox("desk@salon.test", "Desk"), client: fake, logger: logging.Default()}

	err := sender.Send(context.Background(), EmailMessage{
		To: "owner@salon.test", Subject: "Hi", Body: "body", ReplyTo: "client@mail.test", Category: "booking",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "Hi", fake.sent[0].Subject)
	assert.Equal(t, "desk@salon.test", fake.sent[0].From.Address)
	require.NotNil(t, fake.sent[0].ReplyTo)
	assert.Equal(t, "client@mail.test", fake.sent[0].ReplyTo.Address)
	assert.Equal(t, []string{"booking"}, fake.sent[0].Categories)
}

func TestSendGridSender_SendErrorStatus(t *testing.T) {
	sender := &SendGridSender{client: &fakeSendGrid{status: 401}, logger: logging.Default()}
	err := sender.Send(context.Background(), EmailMessage{To: "owner@salon.test"})
	assert.ErrorContains(t, err, "status 401")
}

func TestSendGridSender_SendNilClient(t *testing.T) {
	sender := &SendGridSender{}
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "x@y.z"}))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "desk@salon.test"}, nil)
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{To: "owner@salon.test", Subject: "New booking", Body: "text"})
	require.NoError(t, err)
	require.NotNil(t, fake.input)
	assert.Equal(t, "Salon Concierge <desk@salon.test>", aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{"owner@salon.test"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "text", aws.ToString(fake.input.Content.Simple.Body.Text.Data))
	assert.Nil(t, fake.input.Content.Simple.Body.Html)
	assert.Empty(t, fake.input.EmailTags)
	assert.Empty(t, fake.input.ReplyToAddresses)
}

func TestSESSender_SendTagsAndHTML(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "desk@salon.test", FromName: "Front Desk"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To: "owner@salon.test", Subject: "s", HTML: "<p>hi</p>", Category: "booking", ReplyTo: "client@mail.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Front Desk <desk@salon.test>", aws.ToString(fake.input.FromEmailAddress))
	assert.Nil(t, fake.input.Content.Simple.Body.Text)
	assert.Equal(t, "<p>hi</p>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))
	require.Len(t, fake.input.EmailTags, 1)
	assert.Equal(t, "booking", aws.ToString(fake.input.EmailTags[0].Value))
	assert.Equal(t, []string{"client@mail.test"}, fake.input.ReplyToAddresses)
}

func TestStubEmailSender_NeverFails(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "x@y.z"}))
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "desk@salon.test"}, nil)
	assert.ErrorContains(t, sender.Send(context.Background(), EmailMessage{To: "owner@salon.test"}), "throttled")
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}
