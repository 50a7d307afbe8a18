// Package cli provides a command-line runner for the emulator. It polls
// host keyboard input and maps it onto the Spectrum's 8x5 keyboard matrix
// (the machine itself never polls input, following the reference
// frontend's separation of input polling from emulation).
package cli

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	display "github.com/speccygo/spectrum48/bridge/ebiten"
	"github.com/speccygo/spectrum48/romloader"
	"github.com/speccygo/spectrum48/spectrum"
)

// Runner wraps a spectrum.Machine for command-line mode, implementing
// ebiten.Game. It also owns the F10 snapshot-reload hotkey (SPEC_FULL.md
// §4.11): unlike the reference frontend's file-browser menu(), this one
// has no windowed file picker to fall back on (that stack is a Non-goal),
// so F10 simply re-applies whichever snapshot path was given on the
// command line.
type Runner struct {
	machine *spectrum.Machine
	display *display.Display
	logger  *log.Logger

	snaPath string
	z80Path string
}

// NewRunner creates a new Runner driving the given machine. snaPath and/or
// z80Path may be empty; whichever is non-empty is what F10 reloads.
func NewRunner(m *spectrum.Machine, snaPath, z80Path string, logger *log.Logger) *Runner {
	return &Runner{
		machine: m,
		display: display.NewDisplay(),
		logger:  logger,
		snaPath: snaPath,
		z80Path: z80Path,
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		r.menu()
	}

	if !ebiten.IsFocused() {
		return nil
	}

	r.pollInput()
	r.machine.RunFrame()

	return nil
}

// menu reloads the configured snapshot into registers and RAM atomically,
// then lets Update resume the run loop on the next frame. It prefers a
// .z80 path over a .sna path when both were given; with neither it is a
// no-op.
func (r *Runner) menu() {
	switch {
	case r.z80Path != "":
		data, _, err := romloader.Load(r.z80Path, ".z80")
		if err != nil {
			r.logger.Printf("F10: failed to read .z80 snapshot: %v", err)
			return
		}
		if err := r.machine.LoadZ80(data); err != nil {
			r.logger.Printf("F10: failed to apply .z80 snapshot: %v", err)
			return
		}
		r.logger.Printf("F10: reloaded .z80 snapshot from %s", r.z80Path)
	case r.snaPath != "":
		data, _, err := romloader.Load(r.snaPath, ".sna")
		if err != nil {
			r.logger.Printf("F10: failed to read .sna snapshot: %v", err)
			return
		}
		if err := r.machine.LoadSNA(data); err != nil {
			r.logger.Printf("F10: failed to apply .sna snapshot: %v", err)
			return
		}
		r.logger.Printf("F10: reloaded .sna snapshot from %s", r.snaPath)
	}
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.display.DrawToScreen(screen, r.machine)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// keyMap pairs a host key with the Spectrum matrix key it drives.
var keyMap = [...]struct {
	host ebiten.Key
	spec spectrum.Key
}{
	{ebiten.Key0, spectrum.Key0}, {ebiten.Key1, spectrum.Key1},
	{ebiten.Key2, spectrum.Key2}, {ebiten.Key3, spectrum.Key3},
	{ebiten.Key4, spectrum.Key4}, {ebiten.Key5, spectrum.Key5},
	{ebiten.Key6, spectrum.Key6}, {ebiten.Key7, spectrum.Key7},
	{ebiten.Key8, spectrum.Key8}, {ebiten.Key9, spectrum.Key9},
	{ebiten.KeyA, spectrum.KeyA}, {ebiten.KeyB, spectrum.KeyB},
	{ebiten.KeyC, spectrum.KeyC}, {ebiten.KeyD, spectrum.KeyD},
	{ebiten.KeyE, spectrum.KeyE}, {ebiten.KeyF, spectrum.KeyF},
	{ebiten.KeyG, spectrum.KeyG}, {ebiten.KeyH, spectrum.KeyH},
	{ebiten.KeyI, spectrum.KeyI}, {ebiten.KeyJ, spectrum.KeyJ},
	{ebiten.KeyK, spectrum.KeyK}, {ebiten.KeyL, spectrum.KeyL},
	{ebiten.KeyM, spectrum.KeyM}, {ebiten.KeyN, spectrum.KeyN},
	{ebiten.KeyO, spectrum.KeyO}, {ebiten.KeyP, spectrum.KeyP},
	{ebiten.KeyQ, spectrum.KeyQ}, {ebiten.KeyR, spectrum.KeyR},
	{ebiten.KeyS, spectrum.KeyS}, {ebiten.KeyT, spectrum.KeyT},
	{ebiten.KeyU, spectrum.KeyU}, {ebiten.KeyV, spectrum.KeyV},
	{ebiten.KeyW, spectrum.KeyW}, {ebiten.KeyX, spectrum.KeyX},
	{ebiten.KeyY, spectrum.KeyY}, {ebiten.KeyZ, spectrum.KeyZ},
	{ebiten.KeyEnter, spectrum.KeyEnter},
	{ebiten.KeySpace, spectrum.KeySpace},
	{ebiten.KeyShiftLeft, spectrum.KeyCapsShift},
	{ebiten.KeyShiftRight, spectrum.KeyCapsShift},
	{ebiten.KeyControlLeft, spectrum.KeySymbolShift},
	{ebiten.KeyControlRight, spectrum.KeySymbolShift},
}

// pollInput reads keyboard state and forwards each matrix key's
// pressed/released state to the machine.
func (r *Runner) pollInput() {
	for _, k := range keyMap {
		r.machine.SetKeyDown(k.spec, ebiten.IsKeyPressed(k.host))
	}
}
