package emailqueue

// Config holds the queue's configuration surface. Run frequency is owned by
// the external scheduler (cron, systemd timer) invoking the CLI; it is
// deliberately absent here.
type Config struct {
	// Environment gates the test recipient filter: anything other than
	// production rewrites recipient lists at send time.
	Environment string `env:"APP_ENV" envDefault:"development"`

	// MaxBatchSize caps how many due messages a single dispatcher run claims.
	MaxBatchSize int `env:"QUEUE_MAX_BATCH_SIZE" envDefault:"50"`

	// MaxConcurrentSends bounds the worker pool for the send stage of a run.
	MaxConcurrentSends int `env:"QUEUE_MAX_CONCURRENT_SENDS" envDefault:"1"`

	// TestRecipientWhitelist is a newline-delimited list of addresses that
	// may receive mail in non-production environments.
	TestRecipientWhitelist string `env:"EMAIL_TEST_WHITELIST"`

	// OverrideAddress receives mail when filtering empties the "to" list in
	// non-production environments. It doubles as the send-time fallback for
	// messages queued without a final recipient.
	OverrideAddress string `env:"EMAIL_OVERRIDE_ADDRESS"`
}
