// Package ses delivers merge messages through Amazon SES v2.
//
// Messages are sent as raw MIME so that rendered attachments travel with
// them; the simple content API has no attachment support.
package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// ErrInvalidConfig is returned by New when credentials are missing.
var ErrInvalidConfig = errors.New("ses: invalid configuration")

// Sender implements mailer.Sender using the SES v2 API.
type Sender struct {
	client *sesv2.Client
	config Config
}

// New creates a new SES sender.
func New(cfg Config) (*Sender, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*sesv2.Options){
		func(o *sesv2.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *sesv2.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Sender{
		client: sesv2.New(sesv2.Options{}, opts...),
		config: cfg,
	}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	raw, err := buildMessage(from, email)
	if err != nil {
		return fmt.Errorf("ses: failed to build message: %w", err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses:  email.To,
			CcAddresses:  email.CC,
			BccAddresses: email.BCC,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}
	if s.config.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(s.config.ConfigurationSet)
	}
	for name, value := range email.Tags {
		v, ok := value.(string)
		if !ok || v == "" {
			v = "true"
		}
		input.EmailTags = append(input.EmailTags, types.MessageTag{
			Name:  aws.String(name),
			Value: aws.String(v),
		})
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses: failed to send email: %w", err)
	}
	return nil
}
