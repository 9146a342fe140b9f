// Package connection provides connection management for ledwall-cli.
//
// A Manager holds one pkg/client.Client per session. Server addresses may
// be host:port, http(s) URLs or unix:// socket paths.
package connection
