// Package mailer provides a provider-neutral email sending interface.
//
// The package separates message delivery (providers implementing Sender) from
// the checks every message must pass before it is handed to a provider.
//
// # Architecture
//
//   - Sender: interface that email providers implement (see the resend and
//     ses subpackages)
//   - Mailer: wraps a Sender, applies configured defaults and performs
//     presence checks on recipient, subject and content
//   - BodyHTML: converts a message body to HTML according to its format
//
// # Usage
//
//	sender := resend.New(resend.Config{
//		APIKey:      os.Getenv("RESEND_API_KEY"),
//		SenderEmail: "team@example.com",
//		SenderName:  "Team",
//	})
//
//	m := mailer.New(sender, mailer.Config{FallbackSubject: "Notification"})
//
//	err := m.Send(ctx, &mailer.Email{
//		To:      mailer.SplitAddresses("ana@example.com, budi@example.com"),
//		Subject: "Your invoice",
//		HTML:    "<p>Attached.</p>",
//		Attachments: []mailer.Attachment{
//			{Filename: "invoice.pdf", ContentType: "application/pdf", Content: pdf},
//		},
//	})
//
// # Custom Providers
//
// Implement the Sender interface to add support for other email providers:
//
//	type MySender struct{}
//
//	func (s *MySender) Send(ctx context.Context, email *mailer.Email) error {
//		return nil
//	}
//
// # Errors
//
//   - ErrNoRecipient: no recipient specified
//   - ErrNoSubject: no subject and no fallback subject
//   - ErrNoContent: no HTML content
//   - ErrUnsupportedFormat: unknown body format
//   - ErrRenderFailed: body conversion failed
//   - ErrSendFailed: provider rejected or failed to deliver the message
package mailer
