// Command inerctl resolves index expressions against a snapshot
// fixture, for local debugging and for CI smoke-testing a snapshot
// before it ships. Grounded on the teacher's cmd/psqldef/psqldef.go
// main (parse options, build a collaborator, run, report).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/k0kubun/pp/v3"

	"github.com/indexkit/iner"
	"github.com/indexkit/iner/deprecation"
	"github.com/indexkit/iner/util"
)

func main() {
	util.InitSlog()
	opts, exprs := parseOptions(os.Args[1:])

	snap, err := loadSnapshot(opts)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Verbose {
		pp.Println(snap.AllAbstractions())
	}

	ctx := &iner.Context{
		Snapshot:            snap,
		Options:             opts.indicesOptions(),
		ResolveToWriteIndex: opts.ResolveToWriteIndex,
		IncludeDataStreams:  opts.IncludeDataStreams,
	}

	resolver := iner.NewResolver(deprecation.NewLogger(nil))
	names, err := resolver.ResolveConcreteIndexNames(ctx, exprs)
	if err != nil {
		if rerr, ok := err.(*iner.ResolutionError); ok {
			fmt.Fprintf(os.Stderr, "%s: %s\n", rerr.Kind, rerr.Error())
			os.Exit(1)
		}
		log.Fatal(err)
	}

	if opts.Verbose {
		pp.Println(names)
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}
