// Package logging provides structured logging configuration for httpmock.
//
// This package wraps log/slog so the queue store, the interception transport
// and the CLI all log the same way.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//
//	logger.Debug("registered responses", "namespace", ns, "count", 3)
//
// # Integration
//
// Components accept a *slog.Logger through an option and fall back to
// logging.Nop() when none is given. Attribute keys are shared through the
// Key* constants so log output stays greppable across packages.
package logging
