package main

import (
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"github.com/speccygo/spectrum48/cli"
	"github.com/speccygo/spectrum48/romloader"
	"github.com/speccygo/spectrum48/spectrum"
)

func main() {
	romPath := pflag.StringP("rom", "r", "", "path to a 48K ROM image (required)")
	snaPath := pflag.StringP("sna", "S", "", "path to a .sna snapshot to load after reset")
	z80Path := pflag.StringP("z80", "Z", "", "path to a .z80 snapshot to load after reset")
	debugLog := pflag.StringP("debug-log", "l", "", "write a debug log to this path instead of stderr")
	pflag.Parse()

	logger := newLogger(*debugLog)

	if *romPath == "" {
		logger.Println("a ROM path is required")
		os.Exit(1)
	}

	romData, name, err := romloader.Load(*romPath, ".rom")
	if err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}
	logger.Printf("loaded ROM %q (%d bytes)", name, len(romData))

	m := spectrum.NewMachine(romData)

	if *snaPath != "" {
		data, _, err := romloader.Load(*snaPath, ".sna")
		if err != nil {
			log.Fatalf("failed to load .sna: %v", err)
		}
		if err := m.LoadSNA(data); err != nil {
			log.Fatalf("failed to apply .sna snapshot: %v", err)
		}
		logger.Printf("restored .sna snapshot from %s", *snaPath)
	}

	if *z80Path != "" {
		data, _, err := romloader.Load(*z80Path, ".z80")
		if err != nil {
			log.Fatalf("failed to load .z80: %v", err)
		}
		if err := m.LoadZ80(data); err != nil {
			log.Fatalf("failed to apply .z80 snapshot: %v", err)
		}
		logger.Printf("restored .z80 snapshot from %s", *z80Path)
	}

	ebiten.SetWindowSize(spectrum.ScreenWidth*2, spectrum.ScreenHeight*2)
	ebiten.SetWindowTitle("spectrum48")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(spectrum.ScreenWidth, spectrum.ScreenHeight, -1, -1)
	ebiten.SetTPS(50)

	runner := cli.NewRunner(m, *snaPath, *z80Path, logger)
	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}

func newLogger(path string) *log.Logger {
	if path == "" {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	f, err := os.Create(path)
	if err != nil {
		logger := log.New(os.Stderr, "", log.LstdFlags)
		logger.Printf("failed to create debug log %s: %v; logging to stderr", path, err)
		return logger
	}
	return log.New(f, "", log.LstdFlags|log.Lmicroseconds)
}
