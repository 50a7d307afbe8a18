package spectrum

// imTable maps the ED IM-group's y field to the resulting interrupt mode.
// y=1/5 are the undocumented duplicate of mode 0.
var imTable = [8]uint8{0, 0, 1, 2, 0, 0, 1, 2}

// execED implements the ED-prefixed table: I/O-with-(C), 16-bit ADC/SBC,
// block transfer/search/IO groups, and the miscellaneous y=7 group.
// Undefined ED combinations are a documented 8 T-state no-op (SPEC_FULL.md
// §4.1: "undefined combinations must still complete deterministically").
func (c *CPU) execED() int {
	op := c.fetch()
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch {
	case x == 1:
		return c.execEDx1(y, z, p, q)
	case x == 2 && y >= 4 && z <= 3:
		return c.execBlockOp(y, z)
	default:
		return 8
	}
}

func (c *CPU) execEDx1(y, z, p, q uint8) int {
	switch z {
	case 0:
		port := c.getBC()
		v := c.IO.In(port)
		c.MEMPTR = port + 1
		if y != 6 {
			c.regSet(y, v)
		}
		c.F = (c.F & FlagC) | sz53pTable[v]
		return 12
	case 1:
		var v uint8
		if y != 6 {
			v = c.regGet(y)
		}
		c.IO.Out(c.getBC(), v)
		c.MEMPTR = c.getBC() + 1
		return 12
	case 2:
		if q == 0 {
			c.setHL(c.execSbcHL(c.getHL(), c.rpGet(p)))
		} else {
			c.setHL(c.execAdcHL(c.getHL(), c.rpGet(p)))
		}
		return 15
	case 3:
		nn := c.fetchWord()
		if q == 0 {
			c.writeWord(nn, c.rpGet(p))
		} else {
			c.rpSet(p, c.readWord(nn))
		}
		c.MEMPTR = nn + 1
		return 20
	case 4:
		orig := c.A
		c.A = 0
		c.execSub(orig)
		return 8 // NEG
	case 5:
		c.PC = c.pop()
		c.MEMPTR = c.PC
		c.IFF1 = c.IFF2
		return 14 // RETN/RETI (both restore IFF1 from IFF2 here)
	case 6:
		c.IM = imTable[y]
		return 8
	default:
		return c.execEDMisc(y)
	}
}

func (c *CPU) execEDMisc(y uint8) int {
	switch y {
	case 0:
		c.I = c.A
		return 9 // LD I,A
	case 1:
		c.R = c.A
		return 9 // LD R,A
	case 2:
		c.A = c.I
		c.F = (c.F & FlagC) | sz53Table[c.A]
		if c.IFF2 {
			c.F |= FlagP
		}
		return 9 // LD A,I
	case 3:
		c.A = c.R
		c.F = (c.F & FlagC) | sz53Table[c.A]
		if c.IFF2 {
			c.F |= FlagP
		}
		return 9 // LD A,R
	case 4:
		mem := c.Mem.Read(c.getHL())
		temp := mem
		mem = (mem >> 4) | (c.A << 4)
		c.A = (c.A & 0xF0) | (temp & 0x0F)
		c.Mem.Write(c.getHL(), mem)
		c.MEMPTR = c.getHL() + 1
		c.F = (c.F & FlagC) | sz53pTable[c.A]
		return 18 // RRD
	case 5:
		mem := c.Mem.Read(c.getHL())
		temp := mem
		mem = (mem << 4) | (c.A & 0x0F)
		c.A = (c.A & 0xF0) | (temp >> 4)
		c.Mem.Write(c.getHL(), mem)
		c.MEMPTR = c.getHL() + 1
		c.F = (c.F & FlagC) | sz53pTable[c.A]
		return 18 // RLD
	default:
		return 8 // undocumented ED NOP
	}
}

func (c *CPU) execBlockOp(y, z uint8) int {
	switch z {
	case 0:
		return c.blockLD(y)
	case 1:
		return c.blockCP(y)
	case 2:
		return c.blockIN(y)
	default:
		return c.blockOUT(y)
	}
}

func (c *CPU) blockLD(y uint8) int {
	inc := y == 4 || y == 6
	value := c.Mem.Read(c.getHL())
	c.Mem.Write(c.getDE(), value)
	if inc {
		c.setHL(c.getHL() + 1)
		c.setDE(c.getDE() + 1)
	} else {
		c.setHL(c.getHL() - 1)
		c.setDE(c.getDE() - 1)
	}
	c.setBC(c.getBC() - 1)

	n := value + c.A
	c.F = (c.F & (FlagS | FlagZ | FlagC)) |
		bsel(c.getBC() != 0, FlagP, 0) |
		(n & Flag3) | bsel(n&0x02 != 0, Flag5, 0)

	repeating := y >= 6
	if repeating && c.getBC() != 0 {
		c.PC -= 2
		c.MEMPTR = c.PC + 1
		return 21
	}
	return 16
}

func (c *CPU) blockCP(y uint8) int {
	inc := y == 4 || y == 6
	value := c.Mem.Read(c.getHL())
	result := c.A - value
	halfBorrow := (c.A&0x0F)-(value&0x0F) > 0x0F

	if inc {
		c.setHL(c.getHL() + 1)
		c.MEMPTR++
	} else {
		c.setHL(c.getHL() - 1)
		c.MEMPTR--
	}
	c.setBC(c.getBC() - 1)

	n := result
	if halfBorrow {
		n--
	}
	c.F = (c.F & FlagC) | FlagN |
		bsel(halfBorrow, FlagH, 0) |
		bsel(c.getBC() != 0, FlagP, 0) |
		bsel(result == 0, FlagZ, 0) |
		bsel(result&0x80 != 0, FlagS, 0) |
		(n & Flag3) | bsel(n&0x02 != 0, Flag5, 0)

	repeating := y >= 6
	if repeating && c.getBC() != 0 && result != 0 {
		c.PC -= 2
		c.MEMPTR = c.PC + 1
		return 21
	}
	return 16
}

func (c *CPU) blockIN(y uint8) int {
	inc := y == 4 || y == 6
	value := c.IO.In(c.getBC())
	c.Mem.Write(c.getHL(), value)
	c.B--
	var hc uint16
	if inc {
		c.MEMPTR = c.getBC() + 1
		c.setHL(c.getHL() + 1)
		hc = uint16(value) + uint16((c.C+1)&0xFF)
	} else {
		c.MEMPTR = c.getBC() - 1
		c.setHL(c.getHL() - 1)
		hc = uint16(value) + uint16((c.C-1)&0xFF)
	}
	c.F = bsel(value&0x80 != 0, FlagN, 0) |
		bsel(hc > 0xFF, FlagH|FlagC, 0) |
		parityTable[uint8(hc)&7^c.B] |
		sz53Table[c.B]

	repeating := y >= 6
	if repeating && c.B != 0 {
		c.PC -= 2
		return 21
	}
	return 16
}

func (c *CPU) blockOUT(y uint8) int {
	inc := y == 4 || y == 6
	c.B--
	value := c.Mem.Read(c.getHL())
	c.IO.Out(c.getBC(), value)
	var hc uint16
	if inc {
		c.setHL(c.getHL() + 1)
		hc = uint16(value) + uint16(c.L)
		c.MEMPTR = c.getBC() + 1
	} else {
		c.setHL(c.getHL() - 1)
		hc = uint16(value) + uint16(c.L)
		c.MEMPTR = c.getBC() - 1
	}
	c.F = bsel(value&0x80 != 0, FlagN, 0) |
		bsel(hc > 0xFF, FlagH|FlagC, 0) |
		parityTable[uint8(hc)&7^c.B] |
		sz53Table[c.B]

	repeating := y >= 6
	if repeating && c.B != 0 {
		c.PC -= 2
		return 21
	}
	return 16
}
