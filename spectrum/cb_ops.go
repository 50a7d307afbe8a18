package spectrum

// execCB implements the CB-prefixed table: rotate/shift (x=0), BIT (x=1),
// RES (x=2), SET (x=3), each operating on the 3-bit register field z
// (6 = (HL)). The two trailing parameters are unused; the DD-CB/FD-CB
// path has its own entry point, execCBIndexed, and shares only
// execShiftRotate with this one.
func (c *CPU) execCB(op uint8, _ uint8, _ uint16) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	v := c.regGet(z)
	switch x {
	case 0:
		v = c.execShiftRotate(y, v)
		c.regSet(z, v)
	case 1:
		fiveThree := v
		if z == regHL {
			fiveThree = uint8(c.MEMPTR >> 8)
		}
		c.execBit(v, y, fiveThree)
	case 2:
		v &^= 1 << y
		c.regSet(z, v)
	default:
		v |= 1 << y
		c.regSet(z, v)
	}

	if z == regHL {
		if x == 1 {
			return 12
		}
		return 15
	}
	return 8
}

func (c *CPU) execShiftRotate(y uint8, v uint8) uint8 {
	switch y {
	case 0:
		return c.execRlc(v)
	case 1:
		return c.execRrc(v)
	case 2:
		return c.execRl(v)
	case 3:
		return c.execRr(v)
	case 4:
		return c.execSla(v)
	case 5:
		return c.execSra(v)
	case 6:
		return c.execSll(v)
	default:
		return c.execSrl(v)
	}
}

// execCBIndexed implements DD CB d/FD CB d: the operand is always
// (IX+d)/(IY+d); a non-6 z field additionally writes the result back to
// that plain register (undocumented, widely tested). BIT never writes
// back and takes its 53 bits from MEMPTR's high byte per SPEC_FULL.md
// §4.5.
func (c *CPU) execCBIndexed(op uint8, addr uint16) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	v := c.Mem.Read(addr)
	switch x {
	case 1:
		c.execBit(v, y, uint8(addr>>8))
		return 20
	case 0:
		v = c.execShiftRotate(y, v)
	case 2:
		v &^= 1 << y
	default:
		v |= 1 << y
	}
	c.Mem.Write(addr, v)
	if z != regHL {
		c.regSet(z, v)
	}
	return 23
}
