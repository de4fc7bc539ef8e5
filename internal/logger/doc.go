// Package logger wraps zap to provide:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the log_level config key,
//   - convenience functions (Infof, WarnKV, ErrorKV, etc.).
//
// Every service accepts a context and extracts the logger from it, so the
// scheduler, the command surface and the transport log with their own scope.
package logger
