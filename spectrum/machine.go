package spectrum

import "hash/crc32"

// Machine composes the CPU, memory bus and video/keyboard peripheral into
// a runnable 48K ZX Spectrum and owns the single stop flag that replaces
// the reference source's module-level globals (SPEC_FULL.md §9).
type Machine struct {
	CPU   *CPU
	Bus   *Bus
	Video *Video

	// RomCRC32 identifies the ROM image a save state was captured
	// against (SPEC_FULL.md §4.13); it guards LoadState against being
	// applied to a machine running a different ROM.
	RomCRC32 uint32

	stop bool
}

// NewMachine constructs a Machine from a raw 16K ROM image.
func NewMachine(rom []byte) *Machine {
	video := NewVideo()
	bus := NewBus(rom, video)
	cpu := NewCPU(bus, video, video)
	return &Machine{CPU: cpu, Bus: bus, Video: video, RomCRC32: crc32.ChecksumIEEE(rom)}
}

// Stop requests the run loop to exit at the next loop-top check.
func (m *Machine) Stop() { m.stop = true }

// Stopped reports whether Stop has been called.
func (m *Machine) Stopped() bool { return m.stop }

// Run drives cpu.Step() in a tight loop until Stop is called
// (SPEC_FULL.md §4.11, §5).
func (m *Machine) Run() {
	for !m.stop {
		m.CPU.Step()
	}
}

// RunFrame steps the CPU until at least one vsync boundary has been
// crossed, for front ends that pace themselves against the host's own
// frame clock (SPEC_FULL.md §5) rather than running an unbounded loop.
func (m *Machine) RunFrame() {
	var simulated uint32
	for !m.stop && simulated < tStatesPerFrame {
		simulated += uint32(m.CPU.Step())
	}
}

// SetKeyDown forwards a host key event to the keyboard matrix.
func (m *Machine) SetKeyDown(k Key, down bool) {
	m.Video.SetKeyDown(k, down)
}

// Framebuffer returns the current 256x192 RGBA8 framebuffer.
func (m *Machine) Framebuffer() []byte { return m.Video.Framebuffer }
