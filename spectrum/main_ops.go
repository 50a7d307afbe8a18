package spectrum

// execOne fetches and executes exactly one instruction starting at PC,
// dispatching to the prefixed tables where needed. The prefixed handlers
// each return the FULL instruction cost including the prefix byte's own
// M1 (execED/execIndexed fetch their own trailing byte(s); the CB opcode
// byte is fetched here and passed to execCB), so none of these cases adds
// anything further here.
func (c *CPU) execOne() int {
	op := c.fetch()
	switch op {
	case 0xCB:
		op2 := c.fetch()
		return c.execCB(op2, regHL, 0)
	case 0xDD:
		return c.execIndexed(&c.IX)
	case 0xFD:
		return c.execIndexed(&c.IY)
	case 0xED:
		return c.execED()
	default:
		return c.execMain(op)
	}
}

// regHL is slot 6 of the 3-bit register field used throughout the main
// and CB tables: 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A.
const regHL = 6

func (c *CPU) regGet(r uint8) uint8 {
	switch r {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.Mem.Read(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) regSet(r uint8, v uint8) {
	switch r {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.Mem.Write(c.getHL(), v)
	default:
		c.A = v
	}
}

// rp is the 2-bit "register pair" field used by 16-bit load/arith groups:
// 0=BC 1=DE 2=HL 3=SP.
func (c *CPU) rpGet(p uint8) uint16 {
	switch p {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.SP
	}
}

func (c *CPU) rpSet(p uint8, v uint16) {
	switch p {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.SP = v
	}
}

// rp2 is the push/pop pair field: 0=BC 1=DE 2=HL 3=AF.
func (c *CPU) rp2Get(p uint8) uint16 {
	if p == 3 {
		return c.getAF()
	}
	return c.rpGet(p)
}

func (c *CPU) rp2Set(p uint8, v uint16) {
	if p == 3 {
		c.setAF(v)
		return
	}
	c.rpSet(p, v)
}

func (c *CPU) testCond(y uint8) bool {
	switch y {
	case 0:
		return c.F&FlagZ == 0
	case 1:
		return c.F&FlagZ != 0
	case 2:
		return c.F&FlagC == 0
	case 3:
		return c.F&FlagC != 0
	case 4:
		return c.F&FlagP == 0
	case 5:
		return c.F&FlagP != 0
	case 6:
		return c.F&FlagS == 0
	default:
		return c.F&FlagS != 0
	}
}

func (c *CPU) applyAlu(y uint8, v uint8) {
	switch y {
	case 0:
		c.execAdd(v)
	case 1:
		c.execAdc(v)
	case 2:
		c.execSub(v)
	case 3:
		c.execSbc(v)
	case 4:
		c.execAnd(v)
	case 5:
		c.execXor(v)
	case 6:
		c.execOr(v)
	default:
		c.execCp(v)
	}
}

func (c *CPU) jumpRel(e int8) {
	c.PC = uint16(int32(c.PC) + int32(e))
	c.MEMPTR = c.PC
}

// execMain implements the un-prefixed opcode table via the standard Z80
// bit-field decomposition x=op>>6, y=(op>>3)&7, z=op&7, p=y>>1, q=y&1.
func (c *CPU) execMain(op uint8) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.execMainX0(op, y, z, p, q)
	case 1:
		if op == 0x76 {
			c.Halted = true
			return 4
		}
		if z == regHL && y == regHL {
			c.Halted = true
			return 4
		}
		v := c.regGet(z)
		c.regSet(y, v)
		if z == regHL || y == regHL {
			return 7
		}
		return 4
	case 2:
		v := c.regGet(z)
		c.applyAlu(y, v)
		if z == regHL {
			return 7
		}
		return 4
	default:
		return c.execMainX3(op, y, z, p, q)
	}
}

func (c *CPU) execMainX0(op, y, z, p, q uint8) int {
	switch z {
	case 0:
		switch {
		case y == 0:
			return 4 // NOP
		case y == 1:
			c.A, c.A2 = c.A2, c.A
			c.F, c.F2 = c.F2, c.F
			return 4 // EX AF,AF'
		case y == 2:
			c.B--
			e := int8(c.fetch())
			if c.B != 0 {
				c.jumpRel(e)
				return 13
			}
			return 8 // DJNZ e
		case y == 3:
			e := int8(c.fetch())
			c.jumpRel(e)
			return 12 // JR e
		default:
			e := int8(c.fetch())
			if c.testCond(y - 4) {
				c.jumpRel(e)
				return 12
			}
			return 7 // JR cc,e
		}
	case 1:
		if q == 0 {
			c.rpSet(p, c.fetchWord())
			return 10 // LD rp,nn
		}
		c.setHL(c.execAddHL(c.getHL(), c.rpGet(p)))
		return 11 // ADD HL,rp
	case 2:
		return c.execIndirectLoad(p, q)
	case 3:
		if q == 0 {
			c.rpSet(p, c.rpGet(p)+1)
		} else {
			c.rpSet(p, c.rpGet(p)-1)
		}
		return 6 // INC/DEC rp
	case 4:
		c.incReg(y)
		if y == regHL {
			return 11
		}
		return 4
	case 5:
		c.decReg(y)
		if y == regHL {
			return 11
		}
		return 4
	case 6:
		n := c.fetch()
		c.regSet(y, n)
		if y == regHL {
			return 10
		}
		return 7
	default:
		return c.execAccumOp(y)
	}
}

func (c *CPU) incReg(y uint8) {
	if y == regHL {
		addr := c.getHL()
		v := c.Mem.Read(addr)
		c.execInc(&v)
		c.Mem.Write(addr, v)
		return
	}
	v := c.regGet(y)
	c.execInc(&v)
	c.regSet(y, v)
}

func (c *CPU) decReg(y uint8) {
	if y == regHL {
		addr := c.getHL()
		v := c.Mem.Read(addr)
		c.execDec(&v)
		c.Mem.Write(addr, v)
		return
	}
	v := c.regGet(y)
	c.execDec(&v)
	c.regSet(y, v)
}

func (c *CPU) execIndirectLoad(p, q uint8) int {
	switch {
	case q == 0 && p == 0:
		c.Mem.Write(c.getBC(), c.A)
		c.MEMPTR = (c.getBC() + 1) & 0xFF | uint16(c.A)<<8
		return 7
	case q == 0 && p == 1:
		c.Mem.Write(c.getDE(), c.A)
		c.MEMPTR = (c.getDE()+1)&0xFF | uint16(c.A)<<8
		return 7
	case q == 0 && p == 2:
		nn := c.fetchWord()
		c.writeWord(nn, c.getHL())
		c.MEMPTR = nn + 1
		return 16
	case q == 0 && p == 3:
		nn := c.fetchWord()
		c.Mem.Write(nn, c.A)
		c.MEMPTR = (nn+1)&0xFF | uint16(c.A)<<8
		return 13
	case q == 1 && p == 0:
		c.MEMPTR = c.getBC() + 1
		c.A = c.Mem.Read(c.getBC())
		return 7
	case q == 1 && p == 1:
		c.MEMPTR = c.getDE() + 1
		c.A = c.Mem.Read(c.getDE())
		return 7
	case q == 1 && p == 2:
		nn := c.fetchWord()
		c.setHL(c.readWord(nn))
		c.MEMPTR = nn + 1
		return 16
	default: // q==1, p==3
		nn := c.fetchWord()
		c.MEMPTR = nn + 1
		c.A = c.Mem.Read(nn)
		return 13
	}
}

func (c *CPU) execAccumOp(y uint8) int {
	switch y {
	case 0: // RLCA
		carry := c.A >> 7
		c.A = (c.A << 1) | carry
		c.F = (c.F & (FlagS | FlagZ | FlagP)) | carry | (c.A & flag53Mask)
	case 1: // RRCA
		carry := c.A & 1
		c.A = (c.A >> 1) | (carry << 7)
		c.F = (c.F & (FlagS | FlagZ | FlagP)) | carry | (c.A & flag53Mask)
	case 2: // RLA
		carry := c.A >> 7
		c.A = (c.A << 1) | (c.F & FlagC)
		c.F = (c.F & (FlagS | FlagZ | FlagP)) | carry | (c.A & flag53Mask)
	case 3: // RRA
		carry := c.A & 1
		c.A = (c.A >> 1) | ((c.F & FlagC) << 7)
		c.F = (c.F & (FlagS | FlagZ | FlagP)) | carry | (c.A & flag53Mask)
	case 4:
		c.execDaa()
	case 5:
		c.execCpl()
	case 6:
		c.execScf()
	default:
		c.execCcf()
	}
	return 4
}

func (c *CPU) execMainX3(op, y, z, p, q uint8) int {
	switch z {
	case 0:
		if c.testCond(y) {
			c.PC = c.pop()
			c.MEMPTR = c.PC
			return 11
		}
		return 5
	case 1:
		return c.execStackOrMisc(p, q)
	case 2:
		nn := c.fetchWord()
		c.MEMPTR = nn
		if c.testCond(y) {
			c.PC = nn
		}
		return 10
	case 3:
		return c.execMiscX3(y)
	case 4:
		nn := c.fetchWord()
		c.MEMPTR = nn
		if c.testCond(y) {
			c.push(c.PC)
			c.PC = nn
			return 17
		}
		return 10
	case 5:
		if q == 0 {
			c.push(c.rp2Get(p))
			return 11
		}
		switch p {
		case 0:
			nn := c.fetchWord()
			c.MEMPTR = nn
			c.push(c.PC)
			c.PC = nn
			return 17
		case 1:
			panic("unreachable: DD prefix handled in execOne")
		case 2:
			panic("unreachable: ED prefix handled in execOne")
		default:
			panic("unreachable: FD prefix handled in execOne")
		}
	case 6:
		n := c.fetch()
		c.applyAlu(y, n)
		return 7
	default:
		c.push(c.PC)
		c.PC = uint16(y) * 8
		c.MEMPTR = c.PC
		return 11
	}
}

func (c *CPU) execStackOrMisc(p, q uint8) int {
	if q == 0 {
		c.rp2Set(p, c.pop())
		return 10
	}
	switch p {
	case 0:
		c.PC = c.pop()
		c.MEMPTR = c.PC
		return 10
	case 1:
		c.B, c.B2 = c.B2, c.B
		c.C, c.C2 = c.C2, c.C
		c.D, c.D2 = c.D2, c.D
		c.E, c.E2 = c.E2, c.E
		c.H, c.H2 = c.H2, c.H
		c.L, c.L2 = c.L2, c.L
		return 4 // EXX
	case 2:
		c.PC = c.getHL() // JP (HL); MEMPTR untouched, §9
		return 4
	default:
		c.SP = c.getHL()
		return 6 // LD SP,HL
	}
}

func (c *CPU) execMiscX3(y uint8) int {
	switch y {
	case 0:
		nn := c.fetchWord()
		c.MEMPTR = nn
		c.PC = nn
		return 10 // JP nn
	case 1:
		panic("unreachable: CB prefix handled in execOne")
	case 2:
		n := c.fetch()
		port := uint16(c.A)<<8 | uint16(n)
		c.IO.Out(port, c.A)
		c.MEMPTR = (port & 0xFF00) | ((port + 1) & 0xFF)
		return 11 // OUT (n),A
	case 3:
		n := c.fetch()
		port := uint16(c.A)<<8 | uint16(n)
		c.A = c.IO.In(port)
		c.MEMPTR = port + 1
		return 11 // IN A,(n)
	case 4:
		v := c.readWord(c.SP)
		c.writeWord(c.SP, c.getHL())
		c.setHL(v)
		c.MEMPTR = v
		return 19 // EX (SP),HL
	case 5:
		de, hl := c.getDE(), c.getHL()
		c.setDE(hl)
		c.setHL(de)
		return 4 // EX DE,HL
	case 6:
		c.IFF1, c.IFF2 = false, false
		return 4 // DI
	default:
		c.IFF1, c.IFF2 = true, true
		c.eiPending = true
		return 4 // EI
	}
}
