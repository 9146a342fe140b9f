// Package tlsroots loads TLS material for ledwall-server.
//
//   - roots.go: trust pool for HTTPS upstreams (remote slot store)
//   - reloader.go: serving certificate that reloads when its files change
package tlsroots
