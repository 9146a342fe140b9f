package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yndnr/ledwall-go/pkg/client"
)

// Connection is an established server connection.
type Connection struct {
	Server string
	Client *client.Client
	RTT    time.Duration
}

// Manager owns the current connection. The shell keeps one Manager for
// the whole session so commands reuse the connection.
type Manager struct {
	mu      sync.Mutex
	timeout time.Duration
	current *Connection
}

// NewManager creates a connection manager using timeout for requests.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{timeout: timeout}
}

// Connect pings server and makes it the current connection.
func (m *Manager) Connect(ctx context.Context, server string) (*Connection, error) {
	c, err := client.New(server, client.WithTimeout(m.timeout), client.WithUserAgent("ledwall-cli/1"))
	if err != nil {
		return nil, err
	}
	rtt, err := c.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", server, err)
	}

	conn := &Connection{Server: server, Client: c, RTT: rtt}
	m.mu.Lock()
	m.current = conn
	m.mu.Unlock()
	return conn, nil
}

// Client returns a client for server, reusing the current connection when
// it points at the same server. It does not ping.
func (m *Manager) Client(server string) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.Server == server {
		return m.current.Client, nil
	}
	c, err := client.New(server, client.WithTimeout(m.timeout), client.WithUserAgent("ledwall-cli/1"))
	if err != nil {
		return nil, err
	}
	m.current = &Connection{Server: server, Client: c}
	return c, nil
}

// Disconnect forgets the current connection.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// Current returns the current connection or nil.
func (m *Manager) Current() *Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// IsConnected returns true if a connection is held.
func (m *Manager) IsConnected() bool {
	return m.Current() != nil
}
