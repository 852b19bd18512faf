package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/chaz8081/meshblocks/internal/block"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd(out io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "meshblocks version",
		ShortHelp:  "Print the program version and minimum supported block firmware.",
		FlagSet:    flag.NewFlagSet("meshblocks version", flag.ExitOnError),
		Exec: func(context.Context, []string) error {
			fmt.Fprintf(out, "meshblocks %s (block firmware >= %s)\n", version, block.MinVersion)
			return nil
		},
	}
}
