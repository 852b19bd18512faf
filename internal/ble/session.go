package ble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/chaz8081/meshblocks/internal/block"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("ble: session closed")

var errLinkLost = errors.New("link lost during setup")

// SessionOptions configures a Session.
type SessionOptions struct {
	QueueSize      int           // max queued commands while disconnected
	ReconnectMax   int           // max reconnect backoff in seconds
	WriteRate      float64       // command writes per second; 0 means unlimited
	ConnectTimeout time.Duration // per-attempt connect timeout
}

// DefaultSessionOptions returns sensible defaults.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		QueueSize:      16,
		ReconnectMax:   30,
		WriteRate:      10,
		ConnectTimeout: 10 * time.Second,
	}
}

// Session owns the connection to one block and the codec decoding its
// messages. Indications and notifications are handed to the codec one at
// a time, so codec callbacks never run concurrently for the same block.
// Callbacks run on the delivery path and must not block or call Inspect.
type Session struct {
	adapter Adapter
	address string
	codec   block.Codec

	// deliverMu serializes all access to codec.
	deliverMu sync.Mutex

	mu        sync.Mutex
	conn      Connection
	writeChar Characteristic
	connected bool
	closed    bool
	queue     [][]byte

	ctx     context.Context
	cancel  context.CancelFunc
	limiter *rate.Limiter
	opts    SessionOptions
}

// NewSession creates a session for the block at address. The codec must
// match the block kind.
func NewSession(adapter Adapter, address string, codec block.Codec, opts SessionOptions) *Session {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.ReconnectMax <= 0 {
		opts.ReconnectMax = 30
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.WriteRate > 0 {
		limit = rate.Limit(opts.WriteRate)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		adapter: adapter,
		address: address,
		codec:   codec,
		ctx:     ctx,
		cancel:  cancel,
		limiter: rate.NewLimiter(limit, 1),
		opts:    opts,
	}
}

// Address returns the block address.
func (s *Session) Address() string { return s.address }

// Kind returns the block kind.
func (s *Session) Kind() block.Kind { return s.codec.Kind() }

// Inspect runs fn with exclusive access to the codec, e.g. to read the
// battery level or build a command.
func (s *Session) Inspect(fn func(c block.Codec)) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	fn(s.codec)
}

// deliver hands a copy of data to decode.
func (s *Session) deliver(decode func([]byte), data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	decode(buf)
}

func (s *Session) indicate(data []byte) { s.deliver(s.codec.Indicate, data) }
func (s *Session) notify(data []byte)   { s.deliver(s.codec.Notify, data) }

// Connect establishes the initial connection, subscribes to the block and
// sends the feature command. Lost connections are re-established in the
// background until Close.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}

	if err := s.connectOnce(ctx); err != nil {
		return err
	}
	slog.Info("[BLE] connected", "addr", s.address, "kind", s.codec.Kind())
	return nil
}

// connectOnce connects, registers the disconnect handler and sets the
// block up.
func (s *Session) connectOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	defer cancel()

	conn, err := s.adapter.Connect(ctx, s.address)
	if err != nil {
		return fmt.Errorf("ble: connect to %s: %w", s.address, err)
	}

	// Register before setup so a drop during discovery is not missed.
	lost := make(chan struct{})
	var lostOnce sync.Once
	conn.OnDisconnect(func() {
		lostOnce.Do(func() { close(lost) })
		if !s.setDisconnected(conn) {
			return
		}
		slog.Warn("[BLE] disconnected, reconnecting...", "addr", s.address)
		go s.reconnectLoop()
	})

	if err := s.setup(conn, lost); err != nil {
		_ = conn.Disconnect()
		return fmt.Errorf("ble: set up %s: %w", s.address, err)
	}
	return nil
}

// setup discovers the MESH characteristics, subscribes to indications and
// notifications and activates the block. It fails with errLinkLost if lost
// is closed before the connection is committed.
func (s *Session) setup(conn Connection, lost <-chan struct{}) error {
	indicateChar, err := conn.DiscoverCharacteristic(block.ServiceUUID, block.IndicateCharUUID)
	if err != nil {
		return fmt.Errorf("discover indicate characteristic: %w", err)
	}
	notifyChar, err := conn.DiscoverCharacteristic(block.ServiceUUID, block.NotifyCharUUID)
	if err != nil {
		return fmt.Errorf("discover notify characteristic: %w", err)
	}
	writeChar, err := conn.DiscoverCharacteristic(block.ServiceUUID, block.WriteCharUUID)
	if err != nil {
		return fmt.Errorf("discover write characteristic: %w", err)
	}

	if err := indicateChar.Subscribe(s.indicate); err != nil {
		return fmt.Errorf("subscribe to indications: %w", err)
	}
	if err := notifyChar.Subscribe(s.notify); err != nil {
		return fmt.Errorf("subscribe to notifications: %w", err)
	}

	var feature []byte
	s.Inspect(func(c block.Codec) { feature = c.FeatureCommand() })
	if err := writeChar.Write(feature); err != nil {
		return fmt.Errorf("write feature command: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case <-lost:
		return errLinkLost
	default:
	}
	s.conn = conn
	s.writeChar = writeChar
	s.connected = true
	return nil
}

// setDisconnected clears the connection if conn is still current and
// reports whether the session should reconnect.
func (s *Session) setDisconnected(conn Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return false
	}
	s.connected = false
	s.conn = nil
	s.writeChar = nil
	return !s.closed
}

// Connected reports whether the block is currently connected.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Send writes a command buffer to the block. While disconnected the
// command is queued for delivery on reconnect. Safe for concurrent use.
func (s *Session) Send(ctx context.Context, cmd []byte) error {
	if len(cmd) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.connected {
		s.enqueue(cmd)
		s.mu.Unlock()
		return nil
	}
	writeChar := s.writeChar
	s.mu.Unlock()

	return s.write(ctx, writeChar, cmd)
}

func (s *Session) write(ctx context.Context, writeChar Characteristic, cmd []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ble: wait to write: %w", err)
	}
	if err := writeChar.Write(cmd); err != nil {
		return fmt.Errorf("ble: write command: %w", err)
	}
	return nil
}

// enqueue adds cmd to the send queue (caller must hold mu).
func (s *Session) enqueue(cmd []byte) {
	if len(s.queue) >= s.opts.QueueSize {
		slog.Warn("[BLE] queue full, dropping oldest command", "addr", s.address)
		s.queue = s.queue[1:]
	}
	buf := make([]byte, len(cmd))
	copy(buf, cmd)
	s.queue = append(s.queue, buf)
}

// QueueLen returns the number of queued commands.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// flushQueue sends all queued commands. Call after reconnection.
// Commands that fail to send are logged and dropped.
func (s *Session) flushQueue() {
	s.mu.Lock()
	if !s.connected || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	queued := s.queue
	s.queue = nil
	writeChar := s.writeChar
	s.mu.Unlock()

	for _, cmd := range queued {
		if err := s.write(s.ctx, writeChar, cmd); err != nil {
			slog.Error("[BLE] failed to flush queued command", "addr", s.address, "error", err)
		}
	}
}

// Close disconnects the block and stops reconnection.
func (s *Session) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if len(s.queue) > 0 {
		slog.Warn("[BLE] closing with unsent commands", "addr", s.address, "count", len(s.queue))
	}

	var err error
	if s.conn != nil {
		err = s.conn.Disconnect()
	}
	s.conn = nil
	s.writeChar = nil
	s.connected = false
	return err
}

// backoffDelay returns the reconnection delay for attempt n, capped at maxSeconds.
func backoffDelay(attempt int, maxSeconds int) time.Duration {
	max := time.Duration(maxSeconds) * time.Second
	if attempt > 30 {
		return max
	}
	delay := time.Duration(1<<uint(attempt)) * time.Second
	if delay > max {
		return max
	}
	return delay
}

// reconnectLoop attempts to reconnect with exponential backoff until it
// succeeds or the session is closed.
func (s *Session) reconnectLoop() {
	for attempt := 0; ; attempt++ {
		// First attempt is immediate.
		if attempt > 0 {
			delay := backoffDelay(attempt-1, s.opts.ReconnectMax)
			slog.Info("[BLE] reconnect backoff", "addr", s.address, "attempt", attempt+1, "delay", delay)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		if s.ctx.Err() != nil {
			return
		}

		if err := s.connectOnce(s.ctx); err != nil {
			slog.Warn("[BLE] reconnect failed", "addr", s.address, "error", err, "attempt", attempt+1)
			continue
		}

		slog.Info("[BLE] reconnected", "addr", s.address)
		s.flushQueue()
		return
	}
}
