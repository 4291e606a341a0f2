package resend

// Config holds Resend provider settings, parsed from the environment.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
	// BaseURL overrides the API endpoint. Empty means the public API.
	BaseURL string `env:"RESEND_BASE_URL"`
}
