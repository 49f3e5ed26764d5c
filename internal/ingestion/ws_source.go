package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
)

// WSSourceConfig configures the feed connection.
type WSSourceConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval between ping frames.
	PingInterval time.Duration
	// ReadTimeout bounds the wait for the next message.
	ReadTimeout time.Duration
	// WriteTimeout bounds control frame writes.
	WriteTimeout time.Duration
	// BufferSize is the capacity of the batch channel.
	BufferSize int
}

// DefaultWSSourceConfig returns default feed connection settings.
func DefaultWSSourceConfig() WSSourceConfig {
	return WSSourceConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		BufferSize:        64,
	}
}

func (c WSSourceConfig) withDefaults(def WSSourceConfig) WSSourceConfig {
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = def.ReconnectDelay
	}
	if c.MaxReconnectDelay <= 0 {
		c.MaxReconnectDelay = def.MaxReconnectDelay
	}
	if c.PingInterval <= 0 {
		c.PingInterval = def.PingInterval
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	return c
}

var errSourceClosed = errors.New("source closed")

// WSSource reads raw record batches from a WebSocket scraper feed.
type WSSource struct {
	endpoint string
	config   WSSourceConfig
	logger   *slog.Logger
	metrics  *observability.Metrics

	conn    *websocket.Conn
	connMu  sync.Mutex
	started atomic.Bool
	closed  atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWSSource creates a feed source. The connection is opened by Batches.
func NewWSSource(endpoint string, config *WSSourceConfig, logger *slog.Logger, metrics *observability.Metrics) *WSSource {
	cfg := DefaultWSSourceConfig()
	if config != nil {
		cfg = config.withDefaults(cfg)
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = cfg.ReconnectDelay
	}
	return &WSSource{
		endpoint: endpoint,
		config:   cfg,
		logger:   logging.Component(logger, "ws_source"),
		metrics:  metrics,
		done:     make(chan struct{}),
	}
}

// Batches connects to the feed and streams decoded batches. The channel is
// closed when ctx is cancelled or Close is called. Lost connections are
// re-established with exponential backoff.
func (s *WSSource) Batches(ctx context.Context) (<-chan []RawRecord, error) {
	if s.closed.Load() {
		return nil, errSourceClosed
	}
	if s.started.Swap(true) {
		return nil, errors.New("source already started")
	}
	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	ch := make(chan []RawRecord, s.config.BufferSize)

	s.wg.Add(2)
	go s.readLoop(ctx, ch)
	go s.pingLoop()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return ch, nil
}

// Close closes the connection and waits for the reader to exit.
func (s *WSSource) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)
	s.dropConn(true)
	s.wg.Wait()
	return nil
}

func (s *WSSource) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closed.Load() {
		conn.Close()
		return errSourceClosed
	}
	s.conn = conn
	return nil
}

// dropConn closes the current connection, sending a close frame when graceful.
func (s *WSSource) dropConn(graceful bool) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return
	}
	if graceful {
		s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
	s.conn.Close()
	s.conn = nil
}

func (s *WSSource) current() *websocket.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

func (s *WSSource) stopping(ctx context.Context) bool {
	return s.closed.Load() || ctx.Err() != nil
}

func (s *WSSource) readLoop(ctx context.Context, ch chan<- []RawRecord) {
	defer s.wg.Done()
	defer close(ch)

	delay := s.config.ReconnectDelay

	for !s.stopping(ctx) {
		conn := s.current()
		if conn == nil {
			select {
			case <-s.done:
				return
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			s.metrics.RecordWSReconnect()
			if err := s.connect(ctx); err != nil {
				s.logger.Warn("reconnect failed", "endpoint", s.endpoint, "retry_in", delay, "error", err)
				delay *= 2
				if delay > s.config.MaxReconnectDelay {
					delay = s.config.MaxReconnectDelay
				}
				continue
			}
			s.logger.Info("reconnected", "endpoint", s.endpoint)
			continue
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.stopping(ctx) {
				return
			}
			s.logger.Warn("feed connection lost", "endpoint", s.endpoint, "error", err)
			s.dropConn(false)
			continue
		}

		delay = s.config.ReconnectDelay
		start := time.Now()

		batch, err := DecodeBatch(message)
		if err != nil {
			s.logger.Warn("undecodable feed message", "bytes", len(message), "error", err)
			s.metrics.RecordRejected("decode")
			continue
		}

		select {
		case ch <- batch:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
		s.metrics.RecordWSMessage(time.Since(start).Seconds())
	}
}

func (s *WSSource) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				// A failed ping surfaces as a read error in readLoop.
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}
