package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	gzinga "github.com/eBay/GZinga"
	"github.com/eBay/GZinga/source"

	"github.com/djherbis/atime"
)

var errUnknownSuffix = errors.New("unknown suffix -- ignored")

// lineWriter checkpoints every n lines. Key k marks the data that follows
// line k*n.
type lineWriter struct {
	*gzinga.Writer
	n     int
	lines int
}

func (lw *lineWriter) Write(data []byte) (int, error) {
	written := 0
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			n, err := lw.Writer.Write(data)
			return written + n, err
		}
		n, err := lw.Writer.Write(data[:i+1])
		written += n
		if err != nil {
			return written, err
		}
		data = data[i+1:]
		lw.lines++
		if lw.lines%lw.n == 0 {
			if err := lw.Checkpoint(int64(lw.lines / lw.n)); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func newCompressor(w io.Writer) (io.WriteCloser, error) {
	opts := []gzinga.Option{
		gzinga.WithLevel(Level),
		gzinga.WithLogger(Logger.Logger),
	}
	switch {
	case *flagEvery > 0:
		zw, err := gzinga.NewWriter(w, opts...)
		if err != nil {
			return nil, err
		}
		return &lineWriter{Writer: zw, n: *flagEvery}, nil
	case *flagRsyncable:
		return gzinga.NewRsyncableWriter(w, opts...)
	default:
		return gzinga.NewBlockWriter(w, *flagBlock, opts...)
	}
}

// transcode runs the compressor or the decompressor, depending on Mode,
// from r to w.
func transcode(w io.Writer, r io.Reader) error {
	if Mode == modeCompress {
		zw, err := newCompressor(w)
		if err != nil {
			return err
		}
		if _, err := io.Copy(zw, r); err != nil {
			return err
		}
		return zw.Close()
	}
	// Plain gzip files decode too; the final header of a container simply
	// ends the stream.
	zr := gzinga.NewStreamReader(r, gzinga.WithLogger(Logger.Logger))
	_, err := io.Copy(w, zr)
	return err
}

// outputName returns the file written for fn in the current mode.
func outputName(fn string) (string, error) {
	if Mode == modeCompress {
		return fn + ".gz", nil
	}
	ext := filepath.Ext(fn)
	if ext != ".gz" && ext != ".Z" {
		return "", errUnknownSuffix
	}
	return strings.TrimSuffix(fn, ext), nil
}

func confirmOverwrite(name string) bool {
	if *flagForce {
		return true
	}
	if _, err := os.Stat(name); err != nil {
		return true
	}
	fmt.Printf("gzinga: %s already exists; do you wish to overwrite (y or n)? ", name)
	input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if !strings.HasPrefix(input, "y") {
		fmt.Println("\tnot overwritten")
		return false
	}
	return true
}

// CopyStat gives w the mode, owner and times of f.
func CopyStat(w *os.File, f *os.File) {
	fi, err := f.Stat()
	if err != nil {
		return
	}
	w.Chmod(fi.Mode())
	if sys, ok := fi.Sys().(*syscall.Stat_t); ok {
		w.Chown(int(sys.Uid), int(sys.Gid))
		os.Chtimes(w.Name(), atime.Get(fi), fi.ModTime())
	}
}

// compressFile handles one file in the compress, decompress and test modes.
// It returns false on errors that must stop the whole run.
func compressFile(fn string) bool {
	toStdout := *flagStdout || fn == "-"
	if Mode == modeCompress && toStdout && IsStdoutTerm && !*flagForce {
		fatal("compressed data not written to a terminal (use -f to force)")
		return false
	}

	var outfn string
	if Mode != modeTest && !toStdout {
		var err error
		if outfn, err = outputName(fn); err != nil {
			fatal(fn, err)
			return true
		}
		if !confirmOverwrite(outfn) {
			return true
		}
	}

	in := os.Stdin
	if fn != "-" {
		f, err := os.Open(fn)
		if err != nil {
			fatal(err)
			return false
		}
		defer f.Close()
		in = f
	}

	var out io.Writer
	var sink *source.Sink
	switch {
	case Mode == modeTest:
		out = io.Discard
	case toStdout:
		out = os.Stdout
	default:
		var err error
		if sink, err = source.CreateSink(outfn); err != nil {
			fatal(outfn, err)
			return false
		}
		defer sink.Close()
		setPending(outfn)
		out = sink
	}

	if err := transcode(out, in); err != nil {
		fatal(fn, err)
		if sink != nil {
			os.Remove(outfn)
			setPending("")
		}
		return false
	}

	if sink != nil {
		setPending("")
		CopyStat(sink.File, in)
		if !*flagKeep {
			os.Remove(fn)
		}
	}
	return true
}
