// Package logger builds configured slog.Logger instances with environment
// presets and context-driven attribute injection.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Environment, "emailqueue"),
//	)
//	logger.SetAsDefault(log)
//
//	log.Info("message dispatched",
//	    logger.MessageID(msg.ID),
//	    logger.Component("dispatcher"),
//	)
//
// Context extractors let request-scoped values flow into every record logged
// with that context, without threading the values through call sites.
package logger
