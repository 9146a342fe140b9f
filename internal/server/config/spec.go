// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for ledwall-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Display DisplaySection `koanf:"display"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the local socket listener.
type LocalConfig struct {
	// SocketPath serves the API on a unix socket readable only by the
	// server's user. Empty disables it.
	SocketPath string `koanf:"socket_path"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// RateLimit is the sustained request rate per client IP (req/s).
	// Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	// "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`

	// MaxBodyBytes caps slot uploads and live frames.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DisplaySection configures the matrix and the display supervisor.
type DisplaySection struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`

	// NumSlots is the number of content slots. It is fixed for the
	// lifetime of the process.
	NumSlots int `koanf:"num_slots"`

	// MinimumSlotTime is how long round robin shows each slot at least.
	// Reloaded at runtime.
	MinimumSlotTime time.Duration `koanf:"minimum_slot_time"`

	// EmptyBackoff is the rescan delay when every slot is empty.
	EmptyBackoff time.Duration `koanf:"empty_backoff"`

	// JoinTimeout bounds the wait for a cancelled render task.
	JoinTimeout time.Duration `koanf:"join_timeout"`

	// Foreground and Background are the default text colors (#RRGGBB).
	Foreground string `koanf:"foreground"`
	Background string `koanf:"background"`

	Text TextConfig `koanf:"text"`
	Live LiveConfig `koanf:"live"`
}

// TextConfig configures scrolling text.
type TextConfig struct {
	// Speed is the scroll speed in pixels per second.
	Speed float64 `koanf:"speed"`
	// FPS is the scroll frame rate.
	FPS float64 `koanf:"fps"`
}

// LiveConfig configures live frame input.
type LiveConfig struct {
	// MaxFPS caps accepted live frames per second. Zero disables the cap.
	MaxFPS float64 `koanf:"max_fps"`
}

// StorageSection configures slot and state persistence.
type StorageSection struct {
	// Backend is one of memory, file, badger or remote.
	Backend string `koanf:"backend"`

	// DataDir holds slot files (file backend) and the badger database.
	DataDir string `koanf:"data_dir"`

	// StateFile is where the display state descriptor is persisted.
	// Empty disables state persistence.
	StateFile string `koanf:"state_file"`

	Badger BadgerConfig `koanf:"badger"`
	Remote RemoteConfig `koanf:"remote"`
}

// BadgerConfig tunes the badger backend.
type BadgerConfig struct {
	GCInterval string `koanf:"gc_interval"`
	CacheSize  int64  `koanf:"cache_size"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// RemoteConfig configures the remote backend.
type RemoteConfig struct {
	// Addr is the base URL of the ledwall-server holding the slots.
	Addr    string        `koanf:"addr"`
	Timeout time.Duration `koanf:"timeout"`

	// CAFile adds trusted roots for an https upstream.
	CAFile string `koanf:"ca_file"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
