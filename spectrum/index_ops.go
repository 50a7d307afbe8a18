package spectrum

// execIndexed implements the DD/FD ("IX"/"IY" override) prefix. idx points
// at the CPU's IX or IY field. Per SPEC_FULL.md §4.1/§9, opcodes that
// reference HL, H, L or (HL) are rewritten onto the index register and its
// halves/displaced address; every other opcode behaves exactly like the
// unprefixed instruction, with the returned cost already including this
// prefix's own 4-cycle fetch.
func (c *CPU) execIndexed(idx *uint16) int {
	op := c.fetch()

	// A DD/FD immediately following another prefix byte is a one-shot
	// NONI on real hardware: it costs 4 T-states and does nothing but
	// restart prefix decoding, with the last DD/FD seen picking IX vs
	// IY. An ED here cancels the index override outright and runs as a
	// plain ED instruction. Both keep arbitrary/corrupt opcode streams
	// (SPEC_FULL.md §4.1, §7.3) from ever reaching execMain with a
	// prefix byte, which is the one case it can't decode.
	switch op {
	case 0xDD:
		return 4 + c.execIndexed(&c.IX)
	case 0xFD:
		return 4 + c.execIndexed(&c.IY)
	case 0xED:
		return 4 + c.execED()
	}

	if op == 0xCB {
		d := int8(c.fetch())
		op2 := c.fetch()
		addr := uint16(int32(*idx) + int32(d))
		c.MEMPTR = addr
		return c.execCBIndexed(op2, addr)
	}

	if op == 0x76 {
		c.Halted = true
		return 8
	}

	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	switch x {
	case 1:
		return c.execIndexedLD(idx, y, z)
	case 2:
		return c.execIndexedALU(idx, y, z)
	default:
		if cycles, ok := c.execIndexedMisc(idx, op, y, z); ok {
			return cycles
		}
		return c.execMain(op) + 4
	}
}

// indexedDisp fetches the displacement byte and returns the effective
// (IX+d)/(IY+d) address, latching MEMPTR as every (IX+d)/(IY+d) access
// does.
func (c *CPU) indexedDisp(idx *uint16) uint16 {
	d := int8(c.fetch())
	addr := uint16(int32(*idx) + int32(d))
	c.MEMPTR = addr
	return addr
}

// idxGet/idxSet resolve register field r (4=H 5=L 6=(HL) else plain) onto
// the index register's halves or displaced memory.
func (c *CPU) idxGet(idx *uint16, r uint8, addr uint16) uint8 {
	switch r {
	case 4:
		return uint8(*idx >> 8)
	case 5:
		return uint8(*idx)
	case 6:
		return c.Mem.Read(addr)
	default:
		return c.regGet(r)
	}
}

func (c *CPU) idxSet(idx *uint16, r uint8, addr uint16, v uint8) {
	switch r {
	case 4:
		*idx = (*idx & 0x00FF) | uint16(v)<<8
	case 5:
		*idx = (*idx & 0xFF00) | uint16(v)
	case 6:
		c.Mem.Write(addr, v)
	default:
		c.regSet(r, v)
	}
}

// execIndexedLD is the LD r,r' block (x=1). If either field is the memory
// slot it becomes (IX+d)/(IY+d) and the OTHER field refers to real H/L,
// never IXH/IXL (SPEC_FULL.md §4.3).
func (c *CPU) execIndexedLD(idx *uint16, y, z uint8) int {
	if y == regHL || z == regHL {
		addr := c.indexedDisp(idx)
		if y == regHL {
			c.Mem.Write(addr, c.regGet(z))
		} else {
			c.regSet(y, c.Mem.Read(addr))
		}
		return 19
	}
	v := c.idxGet(idx, z, 0)
	c.idxSet(idx, y, 0, v)
	return 8
}

func (c *CPU) execIndexedALU(idx *uint16, y, z uint8) int {
	if z == regHL {
		addr := c.indexedDisp(idx)
		c.applyAlu(y, c.Mem.Read(addr))
		return 19
	}
	c.applyAlu(y, c.idxGet(idx, z, 0))
	return 8
}

// execIndexedMisc handles the curated set of x=0/x=3 opcodes that actually
// reference the index register (16-bit load/arith, INC/DEC of the pair or
// its halves or (IX+d), and the stack/jump forms); everything else is
// reported via ok=false so the caller falls back to the plain opcode.
func (c *CPU) execIndexedMisc(idx *uint16, op uint8, y, z uint8) (int, bool) {
	switch op {
	case 0x09:
		*idx = c.execAddHL(*idx, c.getBC())
		return 15, true
	case 0x19:
		*idx = c.execAddHL(*idx, c.getDE())
		return 15, true
	case 0x29:
		*idx = c.execAddHL(*idx, *idx)
		return 15, true
	case 0x39:
		*idx = c.execAddHL(*idx, c.SP)
		return 15, true
	case 0x21:
		*idx = c.fetchWord()
		return 14, true
	case 0x22:
		nn := c.fetchWord()
		c.writeWord(nn, *idx)
		c.MEMPTR = nn + 1
		return 20, true
	case 0x2A:
		nn := c.fetchWord()
		*idx = c.readWord(nn)
		c.MEMPTR = nn + 1
		return 20, true
	case 0x23:
		*idx++
		return 10, true
	case 0x2B:
		*idx--
		return 10, true
	case 0x24:
		h := uint8(*idx >> 8)
		c.execInc(&h)
		*idx = (*idx & 0x00FF) | uint16(h)<<8
		return 8, true
	case 0x25:
		h := uint8(*idx >> 8)
		c.execDec(&h)
		*idx = (*idx & 0x00FF) | uint16(h)<<8
		return 8, true
	case 0x26:
		n := c.fetch()
		*idx = (*idx & 0x00FF) | uint16(n)<<8
		return 11, true
	case 0x2C:
		l := uint8(*idx)
		c.execInc(&l)
		*idx = (*idx & 0xFF00) | uint16(l)
		return 8, true
	case 0x2D:
		l := uint8(*idx)
		c.execDec(&l)
		*idx = (*idx & 0xFF00) | uint16(l)
		return 8, true
	case 0x2E:
		n := c.fetch()
		*idx = (*idx & 0xFF00) | uint16(n)
		return 11, true
	case 0x34:
		addr := c.indexedDisp(idx)
		v := c.Mem.Read(addr)
		c.execInc(&v)
		c.Mem.Write(addr, v)
		return 23, true
	case 0x35:
		addr := c.indexedDisp(idx)
		v := c.Mem.Read(addr)
		c.execDec(&v)
		c.Mem.Write(addr, v)
		return 23, true
	case 0x36:
		addr := c.indexedDisp(idx)
		n := c.fetch()
		c.Mem.Write(addr, n)
		return 19, true
	case 0xE1:
		*idx = c.pop()
		return 14, true
	case 0xE5:
		c.push(*idx)
		return 15, true
	case 0xE3:
		v := c.readWord(c.SP)
		c.writeWord(c.SP, *idx)
		*idx = v
		c.MEMPTR = v
		return 23, true
	case 0xE9:
		c.PC = *idx
		return 8, true
	case 0xF9:
		c.SP = *idx
		return 10, true
	default:
		_ = y
		_ = z
		return 0, false
	}
}
