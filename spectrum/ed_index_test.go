package spectrum

import "testing"

func TestLDIR_CopiesBlockAndStopsWhenBCZero(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	loadProgram(mem, 0x2000, 0x01, 0x02, 0x03)
	cpu.setHL(0x2000)
	cpu.setDE(0x3000)
	cpu.setBC(3)
	loadProgram(mem, 0, 0xED, 0xB0) // LDIR

	for i := 0; i < 10 && cpu.PC < 2; i++ {
		cpu.Step()
	}

	for i := 0; i < 3; i++ {
		if mem.mem[0x3000+i] != mem.mem[0x2000+i] {
			t.Fatalf("byte %d not copied: src=%#x dst=%#x", i, mem.mem[0x2000+i], mem.mem[0x3000+i])
		}
	}
	if cpu.getBC() != 0 {
		t.Fatalf("expected BC=0 after LDIR completes, got %#x", cpu.getBC())
	}
	if cpu.PC != 2 {
		t.Fatalf("expected PC to advance past the LDIR opcode once BC=0, got %#x", cpu.PC)
	}
}

func TestCPIR_StopsOnMatchOrExhaustion(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	loadProgram(mem, 0x4000, 0x01, 0x02, 0x55, 0x04)
	cpu.setHL(0x4000)
	cpu.setBC(4)
	cpu.A = 0x55
	loadProgram(mem, 0, 0xED, 0xB1) // CPIR

	for i := 0; i < 20 && cpu.PC < 2; i++ {
		cpu.Step()
	}

	if cpu.F&FlagZ == 0 {
		t.Fatalf("expected Z set on match")
	}
	if cpu.getBC() != 1 {
		t.Fatalf("expected BC=1 remaining after match on 3rd byte, got %#x", cpu.getBC())
	}
}

func TestIndexedLD_IXH_IXL(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	loadProgram(mem, 0, 0xDD, 0x26, 0x12, 0xDD, 0x2E, 0x34) // LD IXH,0x12 ; LD IXL,0x34
	cpu.Step()
	cpu.Step()
	if cpu.IX != 0x1234 {
		t.Fatalf("expected IX=0x1234, got %#x", cpu.IX)
	}
}

func TestIndexedLD_CompanionStaysPlainRegister(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	cpu.IX = 0x3000
	cpu.H, cpu.L = 0xAA, 0xBB
	// LD (IX+1),H  -- H must be the plain H register, not IXH
	loadProgram(mem, 0, 0xDD, 0x74, 0x01)
	cpu.Step()
	if mem.mem[0x3001] != 0xAA {
		t.Fatalf("expected (IX+1)=0xAA (plain H), got %#x", mem.mem[0x3001])
	}
}

func TestIndexedADD_IX_BC(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	cpu.IX = 0x1000
	cpu.setBC(0x0234)
	loadProgram(mem, 0, 0xDD, 0x09) // ADD IX,BC
	cycles := cpu.Step()
	if cpu.IX != 0x1234 {
		t.Fatalf("expected IX=0x1234, got %#x", cpu.IX)
	}
	if cycles != 15 {
		t.Errorf("expected 15 cycles (DD ADD IX,rr total, prefix included), got %d", cycles)
	}
}

func TestCBIndexed_BitDoesNotWriteBack(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	cpu.IX = 0x5000
	mem.mem[0x5002] = 0x80
	loadProgram(mem, 0, 0xDD, 0xCB, 0x02, 0x7E) // BIT 7,(IX+2)
	cpu.Step()
	if cpu.F&FlagZ != 0 {
		t.Fatalf("expected Z clear, bit 7 is set")
	}
	if mem.mem[0x5002] != 0x80 {
		t.Fatalf("BIT must not modify memory, got %#x", mem.mem[0x5002])
	}
}

// TestPrefixCB_CostsFullEightCycles guards against double-charging the CB
// prefix's own fetch: RLC B is 8 T-states total, not 8 plus another 4.
func TestPrefixCB_CostsFullEightCycles(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	loadProgram(mem, 0, 0xCB, 0x00) // RLC B
	if cycles := cpu.Step(); cycles != 8 {
		t.Errorf("expected 8 cycles for CB RLC r, got %d", cycles)
	}
}

// TestPrefixED_CostsFullTwelveCycles guards the same double-count for the
// ED table: IN r,(C) is 12 T-states total.
func TestPrefixED_CostsFullTwelveCycles(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	loadProgram(mem, 0, 0xED, 0x40) // IN B,(C)
	if cycles := cpu.Step(); cycles != 12 {
		t.Errorf("expected 12 cycles for ED IN r,(C), got %d", cycles)
	}
}

// TestRepeatedDDPrefix_DoesNotPanic covers SPEC_FULL.md §4.1/§7.3: a
// corrupt opcode stream can legally contain back-to-back prefix bytes.
// Each leading DD/FD before the one that finally resolves is a wasted
// 4-cycle NONI; the last one seen decides IX vs IY.
func TestRepeatedDDPrefix_DoesNotPanic(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	cpu.IY = 0x2000
	cpu.setBC(0x0001)
	loadProgram(mem, 0, 0xDD, 0xDD, 0xFD, 0x09) // DD DD FD ADD IY,BC
	cycles := cpu.Step()
	if cpu.IY != 0x2001 {
		t.Fatalf("expected the trailing FD to select IY, got IX=%#x IY=%#x", cpu.IX, cpu.IY)
	}
	// Two wasted NONI prefixes (DD, DD) at 4 T-states each, plus the
	// FD ADD IY,BC instruction's own 15.
	if cycles != 4+4+15 {
		t.Errorf("expected 23 cycles (2 NONI + ADD IY,BC), got %d", cycles)
	}
}

// TestDDEDPrefix_RunsPlainEDInstruction covers the DD-then-ED case: the ED
// cancels the pending index override outright rather than falling through
// to execMain's now-unreachable prefix-byte panic branches.
func TestDDEDPrefix_RunsPlainEDInstruction(t *testing.T) {
	cpu, mem, _, _ := newTestCPU()
	cpu.A = 0x10
	loadProgram(mem, 0, 0xDD, 0xED, 0x44) // DD ED NEG
	cycles := cpu.Step()
	if cpu.A != 0xF0 {
		t.Fatalf("expected NEG of 0x10 = 0xF0, got %#x", cpu.A)
	}
	if cycles != 4+8 {
		t.Errorf("expected 12 cycles (NONI + NEG), got %d", cycles)
	}
}
