package main

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

const envPrefix = "MESHBLOCKS"

type rootConfig struct {
	configPath string
	verbose    bool
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "path to config file (default: ~/.config/meshblocks/config.yaml)")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logging")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("meshblocks", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "meshblocks",
		ShortUsage: "meshblocks [flags] <subcommand>",
		ShortHelp:  "Scan, watch and control MESH-100 BLE blocks.",
		LongHelp:   rootLongHelp,
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:       cfg.Exec,
	}, &cfg
}

var rootLongHelp = `Scan, watch and control MESH-100 BLE blocks.

Blocks are selected by kind (button, move, led) and optionally by a serial
number substring of their advertised name, or by address. Blocks listed in
the config file are used when no block is selected on the command line.

Every flag can also be set from the environment, e.g. MESHBLOCKS_CONFIG.`
