package ses

// Config holds Amazon SES settings, parsed from the environment.
type Config struct {
	Region      string `env:"SES_REGION" envDefault:"us-east-1"`
	AccessKey   string `env:"SES_ACCESS_KEY_ID"`
	SecretKey   string `env:"SES_SECRET_ACCESS_KEY"`
	SenderEmail string `env:"SES_FROM_EMAIL"`
	SenderName  string `env:"SES_FROM_NAME"`
	// Endpoint overrides the regional endpoint, e.g. for LocalStack.
	Endpoint string `env:"SES_ENDPOINT"`
	// ConfigurationSet is passed through for SES event publishing.
	ConfigurationSet string `env:"SES_CONFIGURATION_SET"`
}
