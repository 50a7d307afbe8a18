// Package spectrum implements a cycle-counted Zilog Z80 interpreter and the
// memory bus, video/keyboard peripheral and machine loop of a 48K ZX
// Spectrum-compatible system.
package spectrum

// Memory is the bus the CPU fetches and stores through.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// IO is the port space the CPU's IN/OUT instructions address. Ports are
// passed in full 16-bit form (A in the high byte for IN A,(n)/OUT (n),A,
// BC for IN r,(C)/OUT (C),r) so a peripheral can decode on either byte.
type IO interface {
	In(port uint16) uint8
	Out(port uint16, v uint8)
}

// InterruptSource is queried once per accounted frame boundary to decide
// whether a vertical interrupt should be raised, and driven once per
// boundary regardless of the answer (mirroring the reference machine's
// step loop, which always polls/repaints at that boundary).
type InterruptSource interface {
	IE0() bool
	VSync()
}

const tStatesPerFrame = 3579545 / 50

// CPU is a Z80 instruction interpreter. It owns no memory or I/O state of
// its own; both are supplied at construction so the same core can be reused
// against different bus implementations (production machine, unit tests).
type CPU struct {
	A, F, B, C, D, E, H, L             uint8
	A2, F2, B2, C2, D2, E2, H2, L2     uint8
	IX, IY, SP, PC                     uint16
	I, R                               uint8
	IFF1, IFF2                         bool
	IM                                 uint8
	MEMPTR                             uint16
	Halted                             bool
	IntPending                         bool
	CyclesSinceVsync                   uint32

	eiPending bool // one-instruction EI deferral, see SPEC_FULL.md §9

	Mem   Memory
	IO    IO
	Video InterruptSource
}

// NewCPU constructs a CPU wired to the given bus, port space and interrupt
// source, and resets it to power-on state.
func NewCPU(mem Memory, io IO, video InterruptSource) *CPU {
	c := &CPU{Mem: mem, IO: io, Video: video}
	c.Reset()
	return c
}

// Reset returns the CPU to its post-power-on state: every register set to
// 0xFF (0xFFFF for 16-bit index registers, matching SP) except PC, which
// is zero, and the interrupt machinery disabled.
func (c *CPU) Reset() {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF
	c.A2, c.F2, c.B2, c.C2, c.D2, c.E2, c.H2, c.L2 = 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF
	c.IX, c.IY = 0xFFFF, 0xFFFF
	c.SP = 0xFFFF
	c.PC = 0
	c.I, c.R = 0xFF, 0xFF
	c.IFF1, c.IFF2 = false, false
	c.IM = 0
	c.MEMPTR = 0
	c.Halted = false
	c.IntPending = false
	c.CyclesSinceVsync = 0
	c.eiPending = false
}

// 16-bit register pair accessors.

func (c *CPU) getAF() uint16 { return uint16(c.A)<<8 | uint16(c.F) }
func (c *CPU) setAF(v uint16) {
	c.A = uint8(v >> 8)
	c.F = uint8(v)
}

func (c *CPU) getBC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) {
	c.B = uint8(v >> 8)
	c.C = uint8(v)
}

func (c *CPU) getDE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) {
	c.D = uint8(v >> 8)
	c.E = uint8(v)
}

func (c *CPU) getHL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) {
	c.H = uint8(v >> 8)
	c.L = uint8(v)
}

func (c *CPU) bumpR() {
	c.R = (c.R & 0x80) | ((c.R + 1) & 0x7F)
}

func (c *CPU) fetch() uint8 {
	v := c.Mem.Read(c.PC)
	c.PC++
	c.bumpR()
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) readWord(addr uint16) uint16 {
	lo := c.Mem.Read(addr)
	hi := c.Mem.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) writeWord(addr uint16, v uint16) {
	c.Mem.Write(addr, uint8(v))
	c.Mem.Write(addr+1, uint8(v>>8))
}

func (c *CPU) push(v uint16) {
	c.SP -= 2
	c.writeWord(c.SP, v)
}

func (c *CPU) pop() uint16 {
	v := c.readWord(c.SP)
	c.SP += 2
	return v
}

// RequestInterrupt latches a pending maskable interrupt, mirroring how the
// video peripheral's vsync pulse asserts the Z80's INT line.
func (c *CPU) RequestInterrupt() {
	c.IntPending = true
}

// Step executes exactly one instruction (or one HALT "tick") and returns
// the number of T-states it cost.
func (c *CPU) Step() int {
	if c.CyclesSinceVsync >= tStatesPerFrame {
		if c.Video.IE0() {
			c.RequestInterrupt()
			c.CyclesSinceVsync = 0
		}
		c.Video.VSync()
	}

	acceptEI := c.eiPending
	c.eiPending = false

	if c.IntPending && c.IFF1 && !acceptEI {
		c.IntPending = false
		cycles := c.acceptInterrupt()
		c.CyclesSinceVsync += uint32(cycles)
		return cycles
	}

	if c.Halted {
		c.CyclesSinceVsync += 4
		return 4
	}

	cycles := c.execOne()
	c.CyclesSinceVsync += uint32(cycles)
	return cycles
}

// acceptInterrupt services a pending maskable interrupt per the active
// interrupt mode. Cost is the conventional 13 T-state M1-extended
// acceptance cycle (SPEC_FULL.md §9); none of the reference sources model
// this cost explicitly so a documented, fixed value is used throughout.
func (c *CPU) acceptInterrupt() int {
	c.IFF1, c.IFF2 = false, false
	c.Halted = false
	c.push(c.PC)
	switch c.IM {
	case 0:
		// No daisy-chain device on this bus supplies an instruction; the
		// conventional fallback is RST 0x38, identical in effect to IM 1.
		c.PC = 0x0038
	case 1:
		c.PC = 0x0038
	case 2:
		vector := uint16(c.I)<<8 | 0x00FF
		c.PC = c.readWord(vector)
	}
	return 13
}
