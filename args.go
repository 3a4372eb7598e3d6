package main

import (
	"flag"
	"fmt"
	"os"
)

// -run: required, the tool refuses to start without it.
var doRun = flag.Bool("run", false, "actually run the conversion")

// -config: optional, path to the yaml configuration. default: config.yml
var configFile = flag.String("config", "config.yml", "path to configuration file")

// -verbose: debug-level logging, including every external command.
var verbose = flag.Bool("verbose", false, "more output")

// -quiet: warnings and errors only.
var quiet = flag.Bool("quiet", false, "suppress progress output")

func parseCommandLine() {
	flag.Usage = usage
	flag.Parse()

	// confirm no unparsed arguments.
	if len(flag.Args()) > 0 {
		fmt.Println("unexpected arguments")
		flag.Usage()
		os.Exit(1)
	}

	if *verbose && *quiet {
		fmt.Println("-quiet and -verbose are mutually exclusive")
		os.Exit(1)
	}

	// '-run' is required, so that invoking the tool bare is harmless.
	if !*doRun {
		flag.Usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `cc2svn converts ClearCase VOB history into a subversion dump stream.

It replays the output of 'cleartool lshistory' oldest-first, mapping
branches to branches/<name>, labels to tags/<name>, and fetching file
content through an on-disk cache. The resulting dump loads with
'svnadmin load'.

usage: %s -run [-config config.yml] [-verbose | -quiet]

The conversion is driven entirely by the configuration file.

`, os.Args[0])
	flag.PrintDefaults()
}
