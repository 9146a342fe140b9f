// Package shutdown provides graceful shutdown for ledwall-server.
//
// A Handler waits for SIGINT, SIGTERM or a programmatic Trigger and then
// runs named hooks in reverse registration order under one deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	h.OnShutdown("store", store.Close)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
