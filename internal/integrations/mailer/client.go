package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"folio-api/internal/domain"
)

// sesAPI is the minimal SES v2 interface required by Client.
// *sesv2.Client satisfies this interface.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var _ sesAPI = (*sesv2.Client)(nil)

// Client emails contact messages to the site owner.
type Client struct {
	api  sesAPI
	from string
	to   string
}

// New creates a Client sending from one verified identity to one recipient.
func New(api sesAPI, from, to string) (*Client, error) {
	if api == nil {
		return nil, errors.New("mailer: api must not be nil")
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, errors.New("mailer: sender and recipient are required")
	}
	return &Client{api: api, from: from, to: to}, nil
}

// NotifyContact sends msg as a plain-text email. Replies go to the visitor.
func (c *Client) NotifyContact(ctx context.Context, msg domain.ContactMessage) error {
	var body strings.Builder
	fmt.Fprintf(&body, "Name: %s\n", msg.Name)
	fmt.Fprintf(&body, "Email: %s\n", msg.Email)
	fmt.Fprintf(&body, "Received: %s\n", msg.Timestamp)
	if msg.IP != "" {
		fmt.Fprintf(&body, "IP: %s\n", msg.IP)
	}
	fmt.Fprintf(&body, "ID: %s\n\n%s\n", msg.ID, msg.Message)

	_, err := c.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.from),
		Destination:      &types.Destination{ToAddresses: []string{c.to}},
		ReplyToAddresses: []string{msg.Email},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String("New contact message from " + msg.Name), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body.String()), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("mailer: NotifyContact %s: %w", msg.ID, err)
	}
	return nil
}
