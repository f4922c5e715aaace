package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	gzinga "github.com/eBay/GZinga"
	"github.com/eBay/GZinga/source"
)

// inspectFile lists, extracts from or plans splits of one container. These
// modes seek, so standard input is refused.
func inspectFile(fn string) bool {
	if fn == "-" {
		fatal("standard input is not seekable")
		return false
	}
	src, err := source.Open(fn)
	if err != nil {
		fatal(err)
		return false
	}
	defer src.Close()

	opts := []gzinga.Option{gzinga.WithLogger(Logger.Logger)}
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if Mode == modeSplits {
		splits, err := gzinga.Splits(src, *flagSplits, opts...)
		if err != nil {
			fatal(fn, err)
			return false
		}
		for _, sp := range splits {
			fmt.Fprintf(out, "%d\t%d\t%d\n", sp.Start, sp.End, sp.Len())
		}
		return true
	}

	zr, err := gzinga.NewReader(src, opts...)
	if err != nil {
		fatal(fn, err)
		return false
	}

	if Mode == modeList {
		if len(Files) > 1 {
			fmt.Fprintf(out, "%s:\n", fn)
		}
		zr.Index().Range(func(key, off int64) bool {
			fmt.Fprintf(out, "%d\t%d\n", key, off)
			return true
		})
		return true
	}

	if !zr.Index().Contains(*flagExtract) {
		fatal(fn, "key", *flagExtract, "not found -- extracting from start")
	}
	if err := zr.Seek(*flagExtract); err != nil {
		fatal(fn, err)
		return false
	}
	if _, err := io.Copy(out, zr); err != nil {
		fatal(fn, err)
		return false
	}
	return true
}
