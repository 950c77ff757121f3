// Command dexdump decodes a DEX file, or every DEX entry of an APK
// archive, and prints a full dump of its contents.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/RLStrug/DexParser/apk"
	"github.com/RLStrug/DexParser/dex"
	"github.com/RLStrug/DexParser/dexdump"
)

var verbose = flag.Bool("v", false, "verbose output")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: dexdump [-v] <file.dex | file.apk>\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	if err := run(flag.Arg(0), logger); err != nil {
		var fe *dex.FormatError
		switch {
		case errors.As(err, &fe):
			level.Error(logger).Log("msg", "structurally invalid dex", "err", err)
		default:
			level.Error(logger).Log("err", err)
		}
		os.Exit(1)
	}
}

func run(path string, logger log.Logger) error {
	if strings.HasSuffix(path, ".apk") {
		entries, err := apk.Read(path, logger)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("%s: no dex entries", path)
		}
		for _, e := range entries {
			fmt.Printf("=== %s ===\n", e.Name)
			if err := dump(e.Data); err != nil {
				return fmt.Errorf("%s: %w", e.Name, err)
			}
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return dump(data)
}

func dump(data []byte) error {
	f, err := dex.Parse(data)
	if err != nil {
		return err
	}
	return dexdump.Fprint(os.Stdout, f)
}
