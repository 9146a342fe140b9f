// Package main provides the entry point for ledwall-server.
//
// ledwall-server drives one LED matrix. It keeps the content slots,
// runs the display supervisor and serves the HTTP API:
//
//	ledwall-server --config /etc/ledwall/server.yaml
//
// Configuration comes from the YAML file overlaid by LEDWALL_* variables.
// Changes to log.level and display.minimum_slot_time in the file are
// applied without a restart.
package main
