package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chaz8081/meshblocks/internal/ble"
	"github.com/chaz8081/meshblocks/internal/block"
	"github.com/chaz8081/meshblocks/internal/config"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in      string
		want    block.Pattern
		wantErr bool
	}{
		{"blink", block.PatternBlink, false},
		{"Firefly", block.PatternFirefly, false},
		{"strobe", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePattern(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePattern(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePattern(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigTargets(t *testing.T) {
	targets, err := configTargets([]config.BlockConfig{
		{Kind: "button", Serial: "1234567"},
		{Kind: "MOVE", Address: "AA:BB:CC:DD:EE:FF"},
	})
	if err != nil {
		t.Fatalf("configTargets() error = %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("configTargets() returned %d targets, want 2", len(targets))
	}
	if targets[0].kind != block.KindButton || targets[0].serial != "1234567" {
		t.Errorf("targets[0] = %+v", targets[0])
	}
	if targets[1].kind != block.KindMove || targets[1].address != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("targets[1] = %+v", targets[1])
	}

	if _, err := configTargets([]config.BlockConfig{{Kind: "gpio"}}); err == nil {
		t.Error("configTargets() should reject unknown kinds")
	}
}

func TestTargetString(t *testing.T) {
	tests := []struct {
		t    target
		want string
	}{
		{target{kind: block.KindLED}, "led"},
		{target{kind: block.KindButton, serial: "1234567"}, "button#1234567"},
		{target{kind: block.KindMove, serial: "1234567", address: "AA:BB"}, "move@AA:BB"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBlockFlags(t *testing.T) {
	var f blockFlags
	if f.set() {
		t.Error("empty blockFlags should not be set")
	}

	f = blockFlags{kind: "led", serial: "7654321"}
	if !f.set() {
		t.Error("blockFlags with kind should be set")
	}
	got, err := f.target()
	if err != nil {
		t.Fatalf("target() error = %v", err)
	}
	if got.kind != block.KindLED || got.serial != "7654321" {
		t.Errorf("target() = %+v", got)
	}

	f = blockFlags{serial: "7654321"}
	if _, err := f.target(); err == nil {
		t.Error("target() without kind should fail")
	}
}

func TestSessionOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.BLE.QueueSize = 3
	cfg.BLE.ReconnectMax = 7
	cfg.BLE.WriteRate = 0

	opts := sessionOptions(cfg)
	if opts.QueueSize != 3 || opts.ReconnectMax != 7 || opts.WriteRate != 0 {
		t.Errorf("sessionOptions() = %+v", opts)
	}
	if opts.ConnectTimeout <= 0 {
		t.Errorf("ConnectTimeout = %v, want default", opts.ConnectTimeout)
	}
}

func TestEventPrinterButton(t *testing.T) {
	var buf bytes.Buffer
	p := &eventPrinter{out: &buf}

	button := block.NewButton()
	p.attach("button#1234567", button)

	button.Notify([]byte{1, 0, 0, block.PressLong})
	button.Notify([]byte{0, 0, 0, 42})

	out := buf.String()
	if !strings.Contains(out, "button#1234567 long press") {
		t.Errorf("output missing long press line:\n%s", out)
	}
	if !strings.Contains(out, "button#1234567 battery 42%") {
		t.Errorf("output missing battery line:\n%s", out)
	}
}

func TestFormatAccel(t *testing.T) {
	got := formatAccel(block.Accel{X: 1, Y: -0.5, Z: 0})
	want := "x=+1.000 y=-0.500 z=+0.000"
	if got != want {
		t.Errorf("formatAccel() = %q, want %q", got, want)
	}
}

func scanned(name, address string) ble.Block {
	kind, _ := block.KindOf(name, "")
	return ble.Block{Device: ble.Device{Name: name, Address: address}, Kind: kind}
}

func TestAssignAddressesDistinctBlocks(t *testing.T) {
	found := []ble.Block{
		scanned("MESH-100BU1111111", "AA:00:00:00:00:01"),
		scanned("MESH-100AC2222222", "AA:00:00:00:00:02"),
		scanned("MESH-100BU3333333", "AA:00:00:00:00:03"),
	}
	targets := []target{
		{kind: block.KindButton},
		{kind: block.KindButton},
		{kind: block.KindMove},
	}

	got, err := assignAddresses(targets, found)
	if err != nil {
		t.Fatalf("assignAddresses() error = %v", err)
	}
	want := []string{"AA:00:00:00:00:01", "AA:00:00:00:00:03", "AA:00:00:00:00:02"}
	for i, addr := range want {
		if got[i].address != addr {
			t.Errorf("targets[%d].address = %q, want %q", i, got[i].address, addr)
		}
	}
	if targets[0].address != "" {
		t.Error("assignAddresses() should not modify its input")
	}
}

func TestAssignAddressesSkipsExplicitAndFiltersSerial(t *testing.T) {
	found := []ble.Block{
		scanned("MESH-100BU1111111", "AA:00:00:00:00:01"),
		scanned("MESH-100BU3333333", "AA:00:00:00:00:03"),
	}
	targets := []target{
		{kind: block.KindButton},
		{kind: block.KindButton, address: "AA:00:00:00:00:01"},
		{kind: block.KindButton, serial: "3333"},
	}

	_, err := assignAddresses(targets, found)
	if err == nil {
		t.Fatal("assignAddresses() should fail when the only free button is reserved by serial")
	}

	got, err := assignAddresses(targets[1:], found)
	if err != nil {
		t.Fatalf("assignAddresses() error = %v", err)
	}
	if got[1].address != "AA:00:00:00:00:03" {
		t.Errorf("serial target address = %q, want AA:00:00:00:00:03", got[1].address)
	}
}

func TestAssignAddressesRejectsSharedBlock(t *testing.T) {
	found := []ble.Block{scanned("MESH-100BU1111111", "AA:00:00:00:00:01")}

	if _, err := assignAddresses([]target{
		{kind: block.KindButton},
		{kind: block.KindButton},
	}, found); err == nil {
		t.Error("two targets for one advertised block should fail")
	}

	if _, err := assignAddresses([]target{
		{kind: block.KindButton, address: "AA:00:00:00:00:01"},
		{kind: block.KindMove, address: "AA:00:00:00:00:01"},
	}, nil); err == nil {
		t.Error("duplicate explicit addresses should fail")
	}
}
