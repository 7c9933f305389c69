package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Config carries the store settings.
type Config struct {
	Path    string
	Timeout time.Duration
}

// Manager is the sqlite persistence layer. Reads go straight to the
// pool; all writes funnel through a single goroutine because sqlite
// allows one writer at a time and serialized writes avoid busy-retry
// storms under load.
type Manager struct {
	db         *sql.DB
	writeCh    chan writeOp
	shutdown   chan struct{}
	wg         sync.WaitGroup
	retryDelay time.Duration
	timeout    time.Duration
	closed     bool
	mu         sync.RWMutex
	log        zerolog.Logger
}

type writeOp struct {
	fn     func(*sql.DB) error
	result chan error
}

// NewManager opens the database, applies the schema and starts the
// writer goroutine.
func NewManager(cfg Config, log zerolog.Logger) (*Manager, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(cfg.Timeout)
	db.SetConnMaxIdleTime(cfg.Timeout / 3)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	m := &Manager{
		db:         db,
		writeCh:    make(chan writeOp, 100),
		shutdown:   make(chan struct{}),
		retryDelay: 5 * time.Second,
		timeout:    cfg.Timeout,
		log:        log.With().Str("component", "store").Logger(),
	}

	m.wg.Add(1)
	go m.writeLoop()

	return m, nil
}

func (m *Manager) writeLoop() {
	defer m.wg.Done()

	for {
		select {
		case op := <-m.writeCh:
			err := op.fn(m.db)
			if err != nil {
				m.log.Warn().Err(err).Dur("retry_in", m.retryDelay).Msg("write failed, retrying once")
				time.Sleep(m.retryDelay)
				err = op.fn(m.db)
				if err != nil {
					m.log.Error().Err(err).Msg("write failed after retry")
				}
			}
			op.result <- err

		case <-m.shutdown:
			return
		}
	}
}

// executeWrite queues a write and waits for it to finish.
func (m *Manager) executeWrite(fn func(*sql.DB) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	m.mu.RUnlock()

	result := make(chan error, 1)
	select {
	case m.writeCh <- writeOp{fn: fn, result: result}:
		return <-result
	case <-time.After(m.timeout):
		return fmt.Errorf("write operation timeout")
	case <-m.shutdown:
		return ErrClosed
	}
}

// HealthCheck pings the database.
func (m *Manager) HealthCheck(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Close stops the writer goroutine and closes the pool.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.shutdown)
	m.wg.Wait()
	return m.db.Close()
}
