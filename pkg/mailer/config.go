package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// FallbackSubject is used for messages without a subject.
	// Leave empty to reject such messages with ErrNoSubject.
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT"`

	// DefaultReplyTo is applied when a message has no reply-to address.
	DefaultReplyTo string `env:"MAILER_DEFAULT_REPLY_TO"`
}
