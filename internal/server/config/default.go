// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5080"
	DefaultRateLimit       = 50
	DefaultRateBurst       = 100
	DefaultMaxBodyBytes    = 8 << 20 // 8MB
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultWidth           = 64
	DefaultHeight          = 32
	DefaultNumSlots        = 10
	DefaultMinimumSlotTime = 10 * time.Second
	DefaultEmptyBackoff    = 500 * time.Millisecond
	DefaultJoinTimeout     = 5 * time.Second
	DefaultForeground      = "#FFFFFF"
	DefaultBackground      = "#000000"
	DefaultTextSpeed       = 50
	DefaultTextFPS         = 15
	DefaultLiveMaxFPS      = 30

	DefaultBackend       = "file"
	DefaultDataDir       = "/var/lib/ledwall-server/data"
	DefaultStateFile     = "/var/lib/ledwall-server/state.json"
	DefaultGCInterval    = "10m"
	DefaultCacheSize     = 16 << 20
	DefaultRemoteTimeout = 5 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				RateLimit:       DefaultRateLimit,
				RateBurst:       DefaultRateBurst,
				MaxBodyBytes:    DefaultMaxBodyBytes,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Display: DisplaySection{
			Width:           DefaultWidth,
			Height:          DefaultHeight,
			NumSlots:        DefaultNumSlots,
			MinimumSlotTime: DefaultMinimumSlotTime,
			EmptyBackoff:    DefaultEmptyBackoff,
			JoinTimeout:     DefaultJoinTimeout,
			Foreground:      DefaultForeground,
			Background:      DefaultBackground,
			Text: TextConfig{
				Speed: DefaultTextSpeed,
				FPS:   DefaultTextFPS,
			},
			Live: LiveConfig{
				MaxFPS: DefaultLiveMaxFPS,
			},
		},
		Storage: StorageSection{
			Backend:   DefaultBackend,
			DataDir:   DefaultDataDir,
			StateFile: DefaultStateFile,
			Badger: BadgerConfig{
				GCInterval: DefaultGCInterval,
				CacheSize:  DefaultCacheSize,
				SyncWrites: true,
			},
			Remote: RemoteConfig{
				Timeout: DefaultRemoteTimeout,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
