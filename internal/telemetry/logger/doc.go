// Package logger provides structured logging for ledwall.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, configuration and the global level
//   - context.go: context-aware logging with request IDs
//   - payload.go: summarizing of binary payload attributes
//
// Components that only need a *slog.Logger receive Logger.Slog().
package logger
