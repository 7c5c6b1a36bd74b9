// Package logger wraps zap for the recorder binaries:
//   - a global sugared logger behind a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and per-logger level overrides,
//   - convenience functions (Infof, WarnKV, ErrorKV, ...).
//
// Services take a context and log through the logger scoped into it, so a
// recording session or monitor sweep carries its name across packages.
package logger
