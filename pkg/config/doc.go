// Package config loads typed configuration structs from environment
// variables, optionally seeded from a .env file.
//
// Each configuration type is parsed once per process and cached, so the
// queue's components (storage, mailer, dispatcher) can each load their own
// config struct without coordinating.
//
// # Usage
//
//	type QueueConfig struct {
//	    MaxBatchSize int `env:"QUEUE_MAX_BATCH_SIZE" envDefault:"50"`
//	}
//
//	var cfg QueueConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
//
// MustLoad panics on failure for configuration the process cannot start
// without.
package config
