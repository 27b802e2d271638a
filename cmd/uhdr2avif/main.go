/*
NAME
  main.go

DESCRIPTION
  uhdr2avif is the command-line front end for the Ultra HDR JPEG to
  HDR10 AVIF conversion pipeline, per spec.md §6. It supports a
  single-shot --input/--output conversion and a --watch directory mode
  that converts each newly-written Ultra HDR JPEG automatically.

AUTHOR
  Generated for the uhdr2avif project.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package uhdr2avif is a command-line tool that converts Ultra HDR
// JPEG files to HDR10 AVIF, per spec.md §6.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/uhdr2avif/codec/avif"
	"github.com/ausocean/uhdr2avif/uhdr"
)

// Logging related constants, matching cmd/looper's layout.
const (
	logPath      = "uhdr2avif.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = true
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the Ultra HDR JPEG to convert.")
		inputShort = flag.String("i", "", "Shorthand for --input.")
		stdin      = flag.Bool("stdin", false, "Read the Ultra HDR JPEG from stdin.")
		outputPath = flag.String("output", "", "Path to write the HDR10 AVIF to.")
		outShort   = flag.String("o", "", "Shorthand for --output.")
		stdout     = flag.Bool("stdout", false, "Write the HDR10 AVIF to stdout.")
		maxBoost   = flag.Float64("max-display-boost", uhdr.DefaultMaxDisplayBoost, "Maximum HDR display boost (linear ratio), per spec.md §6.")
		whiteLevel = flag.Float64("target-sdr-white-level", uhdr.DefaultTargetSDRWhiteLevel, "SDR white level in nits, per spec.md §4.9.")
		watchDir   = flag.String("watch", "", "Watch a directory and convert each Ultra HDR JPEG written to it.")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	l := logging.New(logVerbosity, fileLog, logSuppress)

	enc := &missingEncoder{}
	cfg := uhdr.NewConfig(l, enc)
	cfg.MaxDisplayBoost = float32(*maxBoost)
	cfg.TargetSDRWhiteLevel = float32(*whiteLevel)

	if *watchDir != "" {
		if err := watch(*watchDir, cfg, l); err != nil {
			l.Fatal("watch failed", "error", err)
		}
		return
	}

	in := firstNonEmpty(*inputPath, *inputShort)
	out := firstNonEmpty(*outputPath, *outShort)

	if err := convertOne(in, out, *stdin, *stdout, cfg); err != nil {
		l.Error("conversion failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// firstNonEmpty returns a if non-empty, else b, per the --flag/-f
// long-and-short aliasing spec.md §6 requires.
func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// convertOne runs a single Convert call against the chosen input and
// output, per spec.md §6's exit-code contract (0 success, 1 failure).
func convertOne(inPath, outPath string, useStdin, useStdout bool, cfg uhdr.Config) error {
	var data []byte
	var err error
	switch {
	case useStdin:
		data, err = io.ReadAll(os.Stdin)
	case inPath != "":
		data, err = os.ReadFile(inPath)
	default:
		return fmt.Errorf("uhdr2avif: no input specified, use --input/-i or --stdin")
	}
	if err != nil {
		return fmt.Errorf("uhdr2avif: reading input: %w", err)
	}

	var dst io.Writer
	var f *os.File
	switch {
	case useStdout:
		dst = os.Stdout
	case outPath != "":
		f, err = os.Create(outPath)
		if err != nil {
			return fmt.Errorf("uhdr2avif: creating output: %w", err)
		}
		defer f.Close()
		dst = f
	default:
		return fmt.Errorf("uhdr2avif: no output specified, use --output/-o or --stdout")
	}

	return uhdr.Convert(dst, data, cfg)
}

// watch converts every file with a .jpg/.jpeg extension written to dir,
// placing the AVIF alongside it with a .avif extension. Existing files
// present at startup are ignored; only subsequent writes trigger a
// conversion, matching a capture pipeline's drop-folder convention.
func watch(dir string, cfg uhdr.Config, l logging.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("uhdr2avif: creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("uhdr2avif: watching %s: %w", dir, err)
	}
	l.Info("watching directory for Ultra HDR JPEGs", "dir", dir)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isJPEG(ev.Name) {
				continue
			}
			outPath := strings.TrimSuffix(ev.Name, filepath.Ext(ev.Name)) + ".avif"
			if err := convertOne(ev.Name, outPath, false, false, cfg); err != nil {
				l.Error("conversion failed", "file", ev.Name, "error", err)
				continue
			}
			l.Info("converted", "input", ev.Name, "output", outPath)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Error("watcher error", "error", err)
		}
	}
}

func isJPEG(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jpg" || ext == ".jpeg"
}

// missingEncoder reports an EncoderFailure for every frame, since no
// AV1 bitstream encoder ships in this module; spec.md §5 treats the
// AVIF/AV1 codec as an external collaborator. Link a real Encoder
// (e.g. wrapping libaom or rav1e via cgo) to produce actual AVIF
// bytes; this stub keeps the CLI usable for pipeline testing up to the
// point of encoding.
type missingEncoder struct{}

func (missingEncoder) EncodeFrame(w io.Writer, f *avif.Frame, quality, speed int) error {
	return fmt.Errorf("uhdr2avif: no AV1 encoder linked into this build")
}
