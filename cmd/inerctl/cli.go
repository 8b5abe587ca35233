package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/indexkit/iner"
)

var version string

// Options is the flag set inerctl accepts, grounded on the teacher's
// per-binary Options struct (cmd/psqldef/psqldef.go's parseOptions).
type Options struct {
	SnapshotFile string `short:"s" long:"snapshot" description:"Path to a YAML snapshot fixture (testutil.SnapshotFixture shape)" value-name:"path"`
	DBFile       string `long:"db" description:"Path to a snapshotstore SQLite file" value-name:"path"`

	IgnoreUnavailable             bool `long:"ignore-unavailable"`
	AllowNoIndices                bool `long:"allow-no-indices"`
	ExpandOpen                    bool `long:"expand-open"`
	ExpandClosed                  bool `long:"expand-closed"`
	ExpandHidden                  bool `long:"expand-hidden"`
	AllowAliasesToMultipleIndices bool `long:"allow-aliases-to-multiple-indices"`
	ForbidClosedIndices           bool `long:"forbid-closed-indices"`
	IgnoreAliases                 bool `long:"ignore-aliases"`
	IgnoreThrottled               bool `long:"ignore-throttled"`

	ResolveToWriteIndex bool `long:"resolve-to-write-index"`
	IncludeDataStreams  bool `long:"include-data-streams"`

	Verbose bool `short:"v" long:"verbose" description:"Pretty-print the loaded snapshot and resolved set"`
	Help    bool `long:"help" description:"Show this help"`
	Version bool `long:"version" description:"Show this version"`
}

// parseOptions parses args into an Options plus the trailing index
// expressions, exiting the process for --help/--version/usage errors
// exactly as the teacher's per-binary parsers do.
func parseOptions(args []string) (*Options, []string) {
	var opts Options

	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] expression..."
	rest, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if opts.SnapshotFile == "" && opts.DBFile == "" {
		fmt.Print("One of --snapshot or --db is required!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}
	if len(rest) == 0 {
		fmt.Print("No index expression is given!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}

	return &opts, rest
}

func (o *Options) indicesOptions() iner.IndicesOptions {
	return iner.IndicesOptions{
		IgnoreUnavailable: o.IgnoreUnavailable,
		AllowNoIndices:    o.AllowNoIndices,
		ExpandWildcards: iner.WildcardStates{
			Open:   o.ExpandOpen,
			Closed: o.ExpandClosed,
			Hidden: o.ExpandHidden,
		},
		AllowAliasesToMultipleIndices: o.AllowAliasesToMultipleIndices,
		ForbidClosedIndices:           o.ForbidClosedIndices,
		IgnoreAliases:                 o.IgnoreAliases,
		IgnoreThrottled:               o.IgnoreThrottled,
		ExpandWildcardExpressions:     true,
	}
}
