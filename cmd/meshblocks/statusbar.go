package main

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/chaz8081/meshblocks/internal/ble"
	"github.com/chaz8081/meshblocks/internal/block"
)

type statusbarConfig struct {
	rootConfig *rootConfig

	block blockFlags

	power, red, green, blue bool
}

func (c *statusbarConfig) Exec(ctx context.Context, _ []string) error {
	cfg, err := loadConfig(c.rootConfig)
	if err != nil {
		return err
	}
	t, err := c.block.target()
	if err != nil {
		return err
	}

	s, err := openSession(ctx, ble.NewTinyGoAdapter(), cfg, t, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	var cmd []byte
	s.Inspect(func(codec block.Codec) {
		cmd = codec.StatusbarLEDCommand(c.power, c.red, c.green, c.blue)
	})
	return s.Send(ctx, cmd)
}

func newStatusbarCmd(rootConfig *rootConfig) *ffcli.Command {
	cfg := statusbarConfig{rootConfig: rootConfig}

	fs := flag.NewFlagSet("meshblocks statusbar", flag.ExitOnError)
	cfg.block.register(fs, "button")
	fs.BoolVar(&cfg.power, "power", false, "light the power LED")
	fs.BoolVar(&cfg.red, "red", false, "light the red status LED")
	fs.BoolVar(&cfg.green, "green", false, "light the green status LED")
	fs.BoolVar(&cfg.blue, "blue", false, "light the blue status LED")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "statusbar",
		ShortUsage: "meshblocks statusbar [flags]",
		ShortHelp:  "Set a block's status bar LEDs.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}
}
