// Command gintendo loads an NES ROM and runs its CPU headlessly: no PPU,
// no window, no controller input (see spec Non-goals). It exists to
// drive and diagnose the mos6502/membus/mappers/nesrom core.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdwalton/gintendo-core"
)

var (
	strictDecode    = flag.Bool("strict-decode", false, "treat an illegal opcode as a fatal error instead of a logged, discarded instruction")
	dumpStateOnExit = flag.Bool("dump-state-on-exit", false, "print full CPU register/flag state before exiting")
	debug           = flag.Bool("debug", false, "run the interactive step debugger instead of free-running")
	verbose         = flag.Bool("verbose", false, "log at Debug level, including unbound I/O register accesses")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gintendo <rom-path>")
		os.Exit(1)
	}
	romPath := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	console, err := gintendo.New(romPath, logger)
	if err != nil {
		logger.Error("failed to load ROM", "path", romPath, "err", err)
		os.Exit(1)
	}
	console.StrictDecode(*strictDecode)

	if *debug {
		runDebugger(console)
	} else {
		ctx, cancel := context.WithCancel(context.Background())
		sigQuit := make(chan os.Signal, 1)
		signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigQuit
			cancel()
		}()
		console.Run(ctx)
		cancel()
	}

	if *dumpStateOnExit {
		fmt.Println(console.Dump())
	}

	os.Exit(0)
}
