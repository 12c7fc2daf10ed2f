// Package logging provides structured logging for cfoundation components.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent context attributes (timer ID, queue label, component name).
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers created
// via With* methods share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/var/log/cfoundation", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	timerLogger := logger.WithComponent("timers").WithTimer(id.String())
//	timerLogger.Debug("timer cancelled")
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"timer cancelled","component":"timers","timer_id":"..."}
//
// # Testing
//
// Library types default to [NopLogger]. Tests that want to inspect output can
// use [New] with a bytes.Buffer.
package logging
