package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/chaz8081/meshblocks/internal/ble"
	"github.com/chaz8081/meshblocks/internal/block"
)

type ledConfig struct {
	rootConfig *rootConfig

	serial, address  string
	red, green, blue int
	total, on, off   time.Duration
	pattern          string
}

func (c *ledConfig) Exec(ctx context.Context, _ []string) error {
	pattern, err := parsePattern(c.pattern)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c.rootConfig)
	if err != nil {
		return err
	}

	t := target{kind: block.KindLED, serial: c.serial, address: c.address}
	s, err := openSession(ctx, ble.NewTinyGoAdapter(), cfg, t, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	var cmd []byte
	s.Inspect(func(codec block.Codec) {
		led, ok := codec.(*block.LED)
		if !ok {
			err = fmt.Errorf("%s is not an LED block", s.Address())
			return
		}
		cmd, err = led.LEDCommand(block.Color{Red: c.red, Green: c.green, Blue: c.blue}, c.total, c.on, c.off, pattern)
	})
	if err != nil {
		return err
	}
	return s.Send(ctx, cmd)
}

func newLEDCmd(rootConfig *rootConfig) *ffcli.Command {
	cfg := ledConfig{rootConfig: rootConfig}

	fs := flag.NewFlagSet("meshblocks led", flag.ExitOnError)
	fs.StringVar(&cfg.serial, "serial", "", "serial number substring of the advertised name")
	fs.StringVar(&cfg.address, "address", "", "block address; skips scanning")
	fs.IntVar(&cfg.red, "r", 0, "red level (0-127)")
	fs.IntVar(&cfg.green, "g", 0, "green level (0-127)")
	fs.IntVar(&cfg.blue, "b", 0, "blue level (0-127)")
	fs.DurationVar(&cfg.total, "total", 5*time.Second, "total lighting time")
	fs.DurationVar(&cfg.on, "on", 500*time.Millisecond, "on time per cycle")
	fs.DurationVar(&cfg.off, "off", 500*time.Millisecond, "off time per cycle")
	fs.StringVar(&cfg.pattern, "pattern", "blink", "lighting pattern: blink or firefly")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "led",
		ShortUsage: "meshblocks led [flags]",
		ShortHelp:  "Light an LED block.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}
}
