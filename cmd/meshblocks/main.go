/*
meshblocks talks to MESH-100 BLE blocks.

It scans for blocks, logs button presses, motion events and battery
reports, and drives the status bar and LED blocks.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	var (
		out    = os.Stdout
		errOut = os.Stderr
	)

	rootCmd, cfg := newRootCmd()
	rootCmd.Subcommands = []*ffcli.Command{
		newScanCmd(cfg, out),
		newWatchCmd(cfg, out),
		newStatusbarCmd(cfg),
		newLEDCmd(cfg),
		newVersionCmd(out),
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		num := 0
		for range c {
			num++
			if num >= 3 {
				os.Exit(1)
			}
			cancel()
		}
	}()

	if err := rootCmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		msg := strings.TrimPrefix(err.Error(), "ble: ")
		fmt.Fprintf(errOut, "%s: %s\n", rootCmd.Name, msg)
		os.Exit(1)
	}
}
