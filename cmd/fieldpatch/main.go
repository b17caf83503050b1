package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fieldmeasure/fieldpatch/internal/dispatcher"
	"github.com/spf13/pflag"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

const AppName = "fieldpatch"

const usageText = `Usage: fieldpatch [flags] <command> [args]

Commands:
  area <trace>          replay a trace and print its area
  save <name> <trace>   replay a trace and archive the parcel
  list                  list archived parcels
  show <id>             print an archived parcel
  export <trace>        print the traced parcel as a GeoJSON feature
  snapshot <path>       copy a SQLite archive to path

Flags:
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code: 0 on success, 1 when the command
// fails and 2 on a usage error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configDir := flags.StringP("config", "c", ".", "directory containing "+AppName+".cfg.json")
	flags.String("log-level", "", "override logLevel (debug, info, warn, error)")
	opts := commandOptions{
		dump: flags.Bool("dump", false, "show: print the Go representation of the parcel"),
		name: flags.String("name", "", "export: parcel name"),
	}
	showVersion := flags.BoolP("version", "v", false, "print the version and exit")
	flags.Usage = func() {
		fmt.Fprint(stderr, usageText)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stdout, "%s %s (built %s)\n", AppName, Version, BuildDate)
		return 0
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	a, err := newApp(*configDir, flags, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		return 1
	}
	defer a.close()

	d, err := a.newDispatcher(opts)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		return 1
	}

	cmd := dispatcher.Command{Name: flags.Arg(0), Args: flags.Args()[1:]}
	if err := d.Dispatch(ctx, cmd); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		if errors.Is(err, dispatcher.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
