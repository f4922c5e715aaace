package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	gzinga "github.com/eBay/GZinga"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"
)

const VERSION = "1.0"

var (
	flagStdout     = pflag.BoolP("stdout", "c", false, "write on standard output, keep original files unchanged")
	flagDecompress = pflag.BoolP("decompress", "d", false, "decompress")
	flagForce      = pflag.BoolP("force", "f", false, "force overwrite of output file")
	flagHelp       = pflag.BoolP("help", "h", false, "give this help")
	flagKeep       = pflag.BoolP("keep", "k", false, "keep (don't delete) input files")
	flagLicense    = pflag.BoolP("license", "L", false, "display software license")
	flagTest       = pflag.BoolP("test", "t", false, "test compressed file integrity")
	flagList       = pflag.BoolP("list", "l", false, "list the index of a container")
	flagExtract    = pflag.Int64P("extract", "x", 0, "decompress starting at the given key")
	flagSplits     = pflag.Int64("splits", 0, "print boundary-aligned ranges of about this many bytes")
	flagVerbose    = pflag.BoolP("verbose", "v", false, "verbose mode")
	flagVersion    = pflag.BoolP("version", "V", false, "display version number")
	flagEvery      = pflag.Int("every", 0, "checkpoint every N lines, keyed by checkpoint number")
	flagBlock      = pflag.Int("block", gzinga.DefaultBlockSize, "checkpoint every N uncompressed bytes, keyed by offset")
	flagRsyncable  = pflag.Bool("rsyncable", false, "make rsync-friendly archive")
)

// levelFlags are -0 ... -9; -1 and -9 are also --fast and --best.
var levelFlags = func() []*bool {
	flags := make([]*bool, 10)
	for i := range flags {
		digit := strconv.Itoa(i)
		name, usage := digit, ""
		switch i {
		case 1:
			name, usage = "fast", "compress faster"
		case 9:
			name, usage = "best", "compress better"
		}
		flags[i] = pflag.BoolP(name, digit, false, usage)
	}
	return flags
}()

type mode int

const (
	modeCompress mode = iota
	modeDecompress
	modeTest
	modeList
	modeExtract
	modeSplits
)

// inspects reports whether the mode needs random access to a container
// instead of streaming it.
func (m mode) inspects() bool {
	return m == modeList || m == modeExtract || m == modeSplits
}

var (
	Mode         = modeCompress
	Level        = 6
	Files        []string
	IsStdoutTerm = terminal.IsTerminal(1)
	Logger       = gzinga.NoopLogger()
)

// pending is the output file being written; it is removed if the process
// is interrupted before the file is complete.
var pending struct {
	sync.Mutex
	name string
}

func setPending(name string) {
	pending.Lock()
	pending.name = name
	pending.Unlock()
}

func main() {
	pflag.Parse()
	switch {
	case *flagHelp:
		Usage()
		return
	case *flagLicense:
		License()
		return
	case *flagVersion:
		fmt.Println("gzinga", VERSION)
		return
	}

	for i, set := range levelFlags {
		if *set {
			Level = i
			break
		}
	}

	if *flagVerbose {
		Logger = gzinga.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	Files = pflag.Args()
	if len(Files) == 0 {
		Files = []string{"-"}
	}
	Mode = selectMode(filepath.Base(os.Args[0]))

	handleSignals()
	run := compressFile
	if Mode.inspects() {
		run = inspectFile
	}
	for _, fn := range Files {
		if !run(fn) {
			os.Exit(1)
		}
	}
}

// selectMode picks the operating mode from the flags and, like gzip, from
// the name the binary was invoked as.
func selectMode(binname string) mode {
	switch {
	case *flagList:
		return modeList
	case pflag.CommandLine.Changed("extract"):
		return modeExtract
	case *flagSplits > 0:
		return modeSplits
	case *flagTest:
		return modeTest
	case strings.Contains(binname, "zcat"):
		*flagStdout = true
		return modeDecompress
	case *flagDecompress || strings.Contains(binname, "gunz"):
		return modeDecompress
	}
	return modeCompress
}

func handleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-ch
		pending.Lock()
		if pending.name != "" {
			os.Remove(pending.name)
		}
		os.Exit(1)
	}()
}

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "gzinga: ")
	fmt.Fprintln(os.Stderr, args...)
}
