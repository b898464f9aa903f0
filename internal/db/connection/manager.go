package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// Manager keeps one pool per data source name
type Manager struct {
	connections map[string]*Connection
	active      string
	creds       *CredentialStore
	logger      *slog.Logger
	mu          sync.RWMutex
}

// Connection wraps a pool with metadata
type Connection struct {
	ID          string
	Config      models.DataSourceConfig
	Pool        *Pool
	Connected   bool
	ConnectedAt time.Time
	LastPing    time.Time
	Error       error
}

// NewManager creates a new connection manager.
// creds may be nil, in which case passwords must be part of the DSN.
func NewManager(creds *CredentialStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		connections: make(map[string]*Connection),
		creds:       creds,
		logger:      logger,
	}
}

// Connect opens the data source, reusing an existing healthy connection
func (m *Manager) Connect(ctx context.Context, config models.DataSourceConfig) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := config.Name
	if conn, ok := m.connections[id]; ok && conn.Connected {
		m.active = id
		return conn, nil
	}

	if config.Password == "" && !config.HasPassword() && m.creds != nil && config.User != "" {
		password, err := m.creds.Get(config.Name, config.User)
		switch {
		case err == nil:
			config.Password = password
		case errors.Is(err, ErrCredentialNotFound):
			m.logger.Debug("no stored password", "data_source", config.Name, "user", config.User)
		default:
			m.logger.Warn("keyring lookup failed", "data_source", config.Name, "error", err)
		}
	}

	start := time.Now()
	pool, err := NewPool(ctx, config)
	if err != nil {
		m.connections[id] = &Connection{
			ID:     id,
			Config: config,
			Error:  err,
		}
		m.logger.Error("connect failed", "data_source", id, "driver", config.Driver, "error", err)
		return nil, err
	}

	conn := &Connection{
		ID:          id,
		Config:      config,
		Pool:        pool,
		Connected:   true,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
	m.connections[id] = conn
	m.active = id
	m.logger.Info("connected", "data_source", id, "driver", config.Driver, "elapsed", time.Since(start))

	return conn, nil
}

// Get returns the connection for a data source name
func (m *Manager) Get(id string) (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, ok := m.connections[id]
	if !ok {
		return nil, fmt.Errorf("connection %s not found", id)
	}
	return conn, nil
}

// Disconnect closes a connection
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.connections[id]
	if !ok {
		return fmt.Errorf("connection %s not found", id)
	}

	if conn.Pool != nil {
		conn.Pool.Close()
	}

	delete(m.connections, id)

	if m.active == id {
		m.active = ""
	}

	return nil
}

// CloseAll closes every connection
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, conn := range m.connections {
		if conn.Pool != nil {
			conn.Pool.Close()
		}
		delete(m.connections, id)
	}
	m.active = ""
}

// GetActive returns the active connection
func (m *Manager) GetActive() (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == "" {
		return nil, fmt.Errorf("no active connection")
	}

	conn, ok := m.connections[m.active]
	if !ok {
		return nil, fmt.Errorf("active connection not found")
	}

	return conn, nil
}

// Ping tests the active connection
func (m *Manager) Ping(ctx context.Context) error {
	conn, err := m.GetActive()
	if err != nil {
		return err
	}

	if conn.Pool == nil {
		return fmt.Errorf("connection pool not initialized")
	}

	if err := conn.Pool.Ping(ctx); err != nil {
		m.mu.Lock()
		conn.Error = err
		conn.Connected = false
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	conn.LastPing = time.Now()
	conn.Connected = true
	conn.Error = nil
	m.mu.Unlock()

	return nil
}
