package ble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/chaz8081/meshblocks/internal/block"
)

// mockCharacteristic records writes and allows subscribing.
type mockCharacteristic struct {
	mu       sync.Mutex
	writes   [][]byte
	noResp   [][]byte
	callback func([]byte)
	writeErr error
	onWrite  func() // runs after each successful write
}

func (c *mockCharacteristic) Write(data []byte) error {
	c.mu.Lock()
	if c.writeErr != nil {
		c.mu.Unlock()
		return c.writeErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.writes = append(c.writes, cp)
	hook := c.onWrite
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (c *mockCharacteristic) WriteWithoutResponse(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	c.noResp = append(c.noResp, cp)
	return nil
}

func (c *mockCharacteristic) Subscribe(cb func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = cb
	return nil
}

// Writes returns a copy of the recorded writes.
func (c *mockCharacteristic) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

// SimulateNotification sends a notification to the subscriber.
func (c *mockCharacteristic) SimulateNotification(data []byte) {
	c.mu.Lock()
	cb := c.callback
	c.mu.Unlock()
	if cb != nil {
		cb(data)
	}
}

// mockConnection simulates a connection to a MESH block.
type mockConnection struct {
	mu           sync.Mutex
	indicate     *mockCharacteristic
	notify       *mockCharacteristic
	write        *mockCharacteristic
	writeNoResp  *mockCharacteristic
	missing      string // characteristic UUID to report as not found
	disconnectCb func()
	disconnected bool
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		indicate:    &mockCharacteristic{},
		notify:      &mockCharacteristic{},
		write:       &mockCharacteristic{},
		writeNoResp: &mockCharacteristic{},
	}
}

func (c *mockConnection) DiscoverCharacteristic(serviceUUID, charUUID string) (Characteristic, error) {
	if serviceUUID != block.ServiceUUID {
		return nil, fmt.Errorf("mock: unknown service UUID %q", serviceUUID)
	}
	if charUUID == c.missing {
		return nil, fmt.Errorf("mock: characteristic %s not found", charUUID)
	}
	switch charUUID {
	case block.IndicateCharUUID:
		return c.indicate, nil
	case block.NotifyCharUUID:
		return c.notify, nil
	case block.WriteCharUUID:
		return c.write, nil
	case block.WriteNoRespCharUUID:
		return c.writeNoResp, nil
	default:
		return nil, fmt.Errorf("mock: unknown characteristic UUID %q", charUUID)
	}
}

func (c *mockConnection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *mockConnection) isDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

func (c *mockConnection) OnDisconnect(cb func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectCb = cb
}

// SimulateDisconnect triggers the disconnect callback.
func (c *mockConnection) SimulateDisconnect() {
	c.mu.Lock()
	cb := c.disconnectCb
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// mockAdapter simulates the BLE adapter.
type mockAdapter struct {
	mu          sync.Mutex
	devices     []Device
	connection  *mockConnection // most recent connection for test assertions
	connects    int
	failConnect int // number of Connect calls to fail before succeeding
	dropOnWrite int // number of connections that drop during their first write
	missing     string
}

func newMockAdapter(devices []Device) *mockAdapter {
	return &mockAdapter{
		devices: devices,
	}
}

func (a *mockAdapter) Enable() error { return nil }

func (a *mockAdapter) Scan(_ context.Context, _ string) ([]Device, error) {
	return a.devices, nil
}

func (a *mockAdapter) Connect(_ context.Context, _ string) (Connection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connects++
	if a.failConnect > 0 {
		a.failConnect--
		return nil, errors.New("mock: connect failed")
	}
	conn := newMockConnection()
	conn.missing = a.missing
	if a.dropOnWrite > 0 {
		a.dropOnWrite--
		conn.write.onWrite = conn.SimulateDisconnect
	}
	a.connection = conn
	return conn, nil
}

func (a *mockAdapter) setDropOnWrite(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropOnWrite = n
}

// latestConnection returns the most recently created connection (thread-safe).
func (a *mockAdapter) latestConnection() *mockConnection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connection
}

func (a *mockAdapter) connectCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connects
}

func TestMockAdapterImplementsInterface(t *testing.T) {
	var _ Adapter = (*mockAdapter)(nil)
}

func TestMockConnectionImplementsInterface(t *testing.T) {
	var _ Connection = (*mockConnection)(nil)
}

func TestMockCharacteristicImplementsInterface(t *testing.T) {
	var _ Characteristic = (*mockCharacteristic)(nil)
}
