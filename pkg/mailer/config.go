package mailer

// Config holds transport configuration. Postmark tokens are optional to
// support development environments where real delivery is disabled and the
// DevTransport is used instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	DevOutputDir         string `env:"MAILER_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}
