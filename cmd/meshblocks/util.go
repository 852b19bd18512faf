package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chaz8081/meshblocks/internal/ble"
	"github.com/chaz8081/meshblocks/internal/block"
	"github.com/chaz8081/meshblocks/internal/config"
)

// versionWait bounds how long a command waits for the first indication
// before giving up on the firmware version check.
const versionWait = 3 * time.Second

// target names one block to talk to.
type target struct {
	kind    block.Kind
	serial  string
	address string
}

func (t target) String() string {
	switch {
	case t.address != "":
		return fmt.Sprintf("%s@%s", t.kind, t.address)
	case t.serial != "":
		return fmt.Sprintf("%s#%s", t.kind, t.serial)
	default:
		return t.kind.String()
	}
}

// blockFlags selects a single block from the command line.
type blockFlags struct {
	kind    string
	serial  string
	address string
}

func (f *blockFlags) register(fs *flag.FlagSet, defaultKind string) {
	fs.StringVar(&f.kind, "kind", defaultKind, "block kind: button, move, or led")
	fs.StringVar(&f.serial, "serial", "", "serial number substring of the advertised name")
	fs.StringVar(&f.address, "address", "", "block address; skips scanning")
}

func (f *blockFlags) set() bool {
	return f.kind != "" || f.serial != "" || f.address != ""
}

func (f *blockFlags) target() (target, error) {
	kind, err := block.ParseKind(f.kind)
	if err != nil {
		return target{}, err
	}
	return target{kind: kind, serial: f.serial, address: f.address}, nil
}

// loadConfig reads the config file, falling back to defaults when no
// explicit path was given and the default file does not exist.
func loadConfig(root *rootConfig) (*config.Config, error) {
	path := root.configPath
	if path == "" {
		path = config.DefaultConfigPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg := config.Default()
			setupLogging(cfg, root.verbose)
			return cfg, nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	setupLogging(cfg, root.verbose)
	return cfg, nil
}

func setupLogging(cfg *config.Config, verbose bool) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// configTargets converts the configured blocks into targets.
func configTargets(blocks []config.BlockConfig) ([]target, error) {
	targets := make([]target, 0, len(blocks))
	for i, b := range blocks {
		kind, err := block.ParseKind(b.Kind)
		if err != nil {
			return nil, fmt.Errorf("blocks[%d]: %w", i, err)
		}
		targets = append(targets, target{kind: kind, serial: b.Serial, address: b.Address})
	}
	return targets, nil
}

func sessionOptions(cfg *config.Config) ble.SessionOptions {
	opts := ble.DefaultSessionOptions()
	opts.QueueSize = cfg.BLE.QueueSize
	opts.ReconnectMax = cfg.BLE.ReconnectMax
	opts.WriteRate = cfg.BLE.WriteRate
	return opts
}

// resolveAddress returns the target's address, scanning for it if needed.
func resolveAddress(ctx context.Context, adapter ble.Adapter, cfg *config.Config, t target) (string, error) {
	if t.address != "" {
		if err := adapter.Enable(); err != nil {
			return "", fmt.Errorf("ble: enable adapter: %w", err)
		}
		return t.address, nil
	}
	slog.Info("[BLE] Scanning", "target", t.String(), "timeout", cfg.Scan.Timeout)
	b, err := ble.FindBlock(ctx, adapter, cfg.Scan.Timeout, t.kind, t.serial)
	if err != nil {
		return "", err
	}
	slog.Info("[BLE] Found block", "name", b.Name, "address", b.Address, "rssi", b.RSSI)
	return b.Address, nil
}

// resolveTargets gives every target a distinct address, scanning once for
// the targets configured without one.
func resolveTargets(ctx context.Context, adapter ble.Adapter, cfg *config.Config, targets []target) ([]target, error) {
	scan := false
	for _, t := range targets {
		scan = scan || t.address == ""
	}

	var found []ble.Block
	if scan {
		slog.Info("[BLE] Scanning", "targets", len(targets), "timeout", cfg.Scan.Timeout)
		var err error
		found, err = ble.ScanForBlocks(ctx, adapter, cfg.Scan.Timeout, "")
		if err != nil {
			return nil, err
		}
	}
	return assignAddresses(targets, found)
}

// assignAddresses fills in the address of each target that lacks one from
// found, in order, never giving one block to two targets. Explicit
// addresses must be unique.
func assignAddresses(targets []target, found []ble.Block) ([]target, error) {
	out := make([]target, len(targets))
	copy(out, targets)

	claimed := make(map[string]string) // address -> target label
	for _, t := range out {
		if t.address == "" {
			continue
		}
		if prev, ok := claimed[t.address]; ok {
			return nil, fmt.Errorf("%s and %s name the same block", prev, t)
		}
		claimed[t.address] = t.String()
	}

	for i := range out {
		if out[i].address != "" {
			continue
		}
		label := out[i].String()
		for _, b := range found {
			if _, taken := claimed[b.Address]; taken {
				continue
			}
			if b.Kind != out[i].kind || !block.IsBlock(b.Name, out[i].kind.Subtoken(), out[i].serial) {
				continue
			}
			out[i].address = b.Address
			claimed[b.Address] = label
			slog.Info("[BLE] Found block", "target", label, "name", b.Name, "address", b.Address, "rssi", b.RSSI)
			break
		}
		if out[i].address == "" {
			return nil, fmt.Errorf("ble: no unclaimed %s block found", label)
		}
	}
	return out, nil
}

// openSession finds and connects to the target with a fresh codec, then
// checks its firmware version. prepare, when non-nil, runs against the
// codec before the first message can arrive.
func openSession(ctx context.Context, adapter ble.Adapter, cfg *config.Config, t target, prepare func(block.Codec)) (*ble.Session, error) {
	codec, err := block.New(t.kind)
	if err != nil {
		return nil, err
	}
	if prepare != nil {
		prepare(codec)
	}

	address, err := resolveAddress(ctx, adapter, cfg, t)
	if err != nil {
		return nil, err
	}

	s := ble.NewSession(adapter, address, codec, sessionOptions(cfg))
	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, err
	}

	err = awaitVersion(ctx, s, versionWait)
	switch {
	case errors.Is(err, block.ErrVersionUnknown):
		slog.Warn("[BLE] Firmware version not reported yet", "address", address)
	case err != nil:
		s.Close()
		return nil, fmt.Errorf("%s: %w", address, err)
	default:
		var v block.Version
		s.Inspect(func(c block.Codec) { v = c.Version() })
		slog.Info("Block ready", "kind", t.kind, "address", address, "version", v.String())
	}
	return s, nil
}

// awaitVersion polls the session's codec until the version check returns a
// definite answer or wait elapses. It returns block.ErrVersionUnknown on
// timeout.
func awaitVersion(ctx context.Context, s *ble.Session, wait time.Duration) error {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		var err error
		s.Inspect(func(c block.Codec) { err = c.CheckVersion() })
		if !errors.Is(err, block.ErrVersionUnknown) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return block.ErrVersionUnknown
		case <-ticker.C:
		}
	}
}

func parsePattern(s string) (block.Pattern, error) {
	switch strings.ToLower(s) {
	case "blink":
		return block.PatternBlink, nil
	case "firefly":
		return block.PatternFirefly, nil
	default:
		return 0, fmt.Errorf("unknown pattern %q (want blink or firefly)", s)
	}
}
