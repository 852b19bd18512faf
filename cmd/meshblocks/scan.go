package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/chaz8081/meshblocks/internal/ble"
)

type scanConfig struct {
	rootConfig *rootConfig
	out        io.Writer

	serial  string
	timeout time.Duration
}

func (c *scanConfig) Exec(ctx context.Context, _ []string) error {
	cfg, err := loadConfig(c.rootConfig)
	if err != nil {
		return err
	}
	timeout := cfg.Scan.Timeout
	if c.timeout > 0 {
		timeout = c.timeout
	}

	fmt.Fprintf(c.out, "Scanning for MESH blocks (%s)...\n", timeout)
	blocks, err := ble.ScanForBlocks(ctx, ble.NewTinyGoAdapter(), timeout, c.serial)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Fprintln(c.out, "No blocks found.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tADDRESS\tRSSI")
	for _, b := range blocks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", b.Kind, b.Name, b.Address, b.RSSI)
	}
	return w.Flush()
}

func newScanCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := scanConfig{
		rootConfig: rootConfig,
		out:        out,
	}

	fs := flag.NewFlagSet("meshblocks scan", flag.ExitOnError)
	fs.StringVar(&cfg.serial, "serial", "", "only list blocks whose name contains this serial number")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "scan duration (default from config)")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "scan",
		ShortUsage: "meshblocks scan [flags]",
		ShortHelp:  "List advertising MESH blocks.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}
}
