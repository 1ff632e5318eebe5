package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"blockfall/terminal"

	"golang.org/x/term"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[26;0H\n\r\033[?25h"
)

func main() {
	noGhost := flag.Bool("no-ghost", false, "hide the drop preview")
	seed := flag.Uint64("seed", 0, "seed the piece sequence (0 picks one at random)")
	debug := flag.String("debug", "", "write debug logs to this file")
	flag.Parse()

	logger := slog.New(slog.DiscardHandler)
	if *debug != "" {
		f, err := os.OpenFile(*debug, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("unable to open debug log file: %v", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	opts := &terminal.Options{Logger: logger, NoGhost: *noGhost}
	if *seed != 0 {
		opts.Seed = seed
	}

	restore := startRawConsole()
	defer restore()

	terminal.New(opts).Start()
}

func startRawConsole() func() {
	fmt.Print(hideCursor)
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("Error setting terminal to raw mode: %v", err)
	}

	return func() {
		if err := term.Restore(int(os.Stdin.Fd()), oldState); err != nil {
			log.Fatalf("unable to restore the terminal original state: %v", err)
		}
		fmt.Print(showCursor)
	}
}
