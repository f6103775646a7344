package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"

	"folio-api/internal/domain"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "a@example.com", "b@example.com")
	require.Error(t, err)
	_, err = New(&fakeSES{}, "", "b@example.com")
	require.Error(t, err)
	_, err = New(&fakeSES{}, "a@example.com", " ")
	require.Error(t, err)
}

func TestNotifyContact(t *testing.T) {
	api := &fakeSES{}
	c, err := New(api, "site@example.com", "owner@example.com")
	require.NoError(t, err)

	msg := domain.ContactMessage{ID: "m-1", Timestamp: "2026-10-14T09:00:00Z", Name: "Ada", Email: "ada@example.com", Message: "Hello from the site"}
	require.NoError(t, c.NotifyContact(context.Background(), msg))

	require.Equal(t, "site@example.com", aws.ToString(api.in.FromEmailAddress))
	require.Equal(t, []string{"owner@example.com"}, api.in.Destination.ToAddresses)
	require.Equal(t, []string{"ada@example.com"}, api.in.ReplyToAddresses)
	require.Equal(t, "New contact message from Ada", aws.ToString(api.in.Content.Simple.Subject.Data))
	text := aws.ToString(api.in.Content.Simple.Body.Text.Data)
	require.Contains(t, text, "Hello from the site")
	require.Contains(t, text, "ID: m-1")
	require.NotContains(t, text, "IP:")
}

func TestNotifyContact_Error(t *testing.T) {
	c, err := New(&fakeSES{err: errors.New("MessageRejected")}, "site@example.com", "owner@example.com")
	require.NoError(t, err)
	err = c.NotifyContact(context.Background(), domain.ContactMessage{ID: "m-1"})
	require.ErrorContains(t, err, "mailer: NotifyContact m-1")
	require.ErrorContains(t, err, "MessageRejected")
}
