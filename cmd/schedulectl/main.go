package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/noah-isme/tutor-schedule-api/internal/cli"
)

var CLI struct {
	Version  kong.VersionFlag
	Timezone string `help:"IANA timezone lesson dates are read in." env:"SCHEDULE_TIMEZONE" default:"UTC"`

	Grid    cli.GridCmd    `cmd:"" help:"Render a weekly or monthly lesson grid."`
	Overlap cli.OverlapCmd `cmd:"" help:"Check a proposed slot against a class's slots."`
	Export  cli.ExportCmd  `cmd:"" help:"Export lessons to CSV or PDF."`
	Token   cli.TokenCmd   `cmd:"" help:"Mint an access token for local testing."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("schedulectl"),
		kong.Description("Operator tooling for the tutor schedule API"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	loc, err := time.LoadLocation(CLI.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid timezone %q: %v\n", CLI.Timezone, err)
		os.Exit(1)
	}

	err = ctx.Run(&cli.Context{Out: os.Stdout, Location: loc, Now: time.Now})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
