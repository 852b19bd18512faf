package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/chaz8081/meshblocks/internal/ble"
	"github.com/chaz8081/meshblocks/internal/block"
)

type watchConfig struct {
	rootConfig *rootConfig
	out        io.Writer

	block blockFlags
}

func (c *watchConfig) Exec(ctx context.Context, _ []string) error {
	cfg, err := loadConfig(c.rootConfig)
	if err != nil {
		return err
	}

	var targets []target
	if c.block.set() {
		t, err := c.block.target()
		if err != nil {
			return err
		}
		targets = []target{t}
	} else {
		targets, err = configTargets(cfg.Blocks)
		if err != nil {
			return err
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no blocks to watch: pass -kind or list blocks in the config file")
	}

	adapter := ble.NewTinyGoAdapter()
	targets, err = resolveTargets(ctx, adapter, cfg, targets)
	if err != nil {
		return err
	}

	var sessions []*ble.Session
	defer func() {
		for _, s := range sessions {
			s.Close()
		}
	}()

	events := &eventPrinter{out: c.out}
	for _, t := range targets {
		s, err := openSession(ctx, adapter, cfg, t, func(codec block.Codec) {
			events.attach(t.String(), codec)
		})
		if err != nil {
			return err
		}
		sessions = append(sessions, s)
	}

	slog.Info("Watching blocks. Press Ctrl+C to stop.", "count", len(sessions))
	<-ctx.Done()
	return nil
}

// eventPrinter writes one line per decoded block event.
type eventPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *eventPrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *eventPrinter) attach(name string, codec block.Codec) {
	codec.OnBatteryLevel(func(level int) {
		p.printf("%s battery %d%%", name, level)
	})
	codec.OnStatusButtonPressed(func() {
		p.printf("%s status button pressed", name)
	})

	switch c := codec.(type) {
	case *block.Button:
		c.OnSinglePressed(func() { p.printf("%s single press", name) })
		c.OnLongPressed(func() { p.printf("%s long press", name) })
		c.OnDoublePressed(func() { p.printf("%s double press", name) })
	case *block.Move:
		c.OnTapped(func(a block.Accel) { p.printf("%s tapped %s", name, formatAccel(a)) })
		c.OnShaked(func(a block.Accel) { p.printf("%s shaken %s", name, formatAccel(a)) })
		c.OnFlipped(func(a block.Accel) { p.printf("%s flipped %s", name, formatAccel(a)) })
		c.OnOrientationChanged(func(face int, a block.Accel) {
			p.printf("%s face %d %s", name, face, formatAccel(a))
		})
	}
}

func formatAccel(a block.Accel) string {
	return fmt.Sprintf("x=%+.3f y=%+.3f z=%+.3f", a.X, a.Y, a.Z)
}

func newWatchCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := watchConfig{
		rootConfig: rootConfig,
		out:        out,
	}

	fs := flag.NewFlagSet("meshblocks watch", flag.ExitOnError)
	cfg.block.register(fs, "")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "watch",
		ShortUsage: "meshblocks watch [flags]",
		ShortHelp:  "Connect to blocks and print their events until interrupted.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}
}
