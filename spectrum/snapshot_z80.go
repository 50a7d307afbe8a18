package spectrum

import "fmt"

// LoadZ80 loads a .Z80 snapshot (v1, v2 or v3) into the machine's CPU
// registers and RAM (SPEC_FULL.md §6, §4.11). Unlike the reference loader,
// every v2/v3 page block is consumed, not just the first (§9).
func (m *Machine) LoadZ80(data []byte) error {
	if len(data) < 30 {
		return fmt.Errorf("spectrum: .z80 snapshot too short (%d bytes)", len(data))
	}
	c := m.CPU

	c.A = data[0]
	c.F = data[1]
	c.C = data[2]
	c.B = data[3]
	c.L = data[4]
	c.H = data[5]
	pc := uint16(data[6]) | uint16(data[7])<<8
	c.SP = uint16(data[8]) | uint16(data[9])<<8
	c.I = data[10]
	c.R = data[11] & 0x7F
	meta := data[12]
	if meta == 0xFF {
		meta = 1
	}
	if meta&0x01 != 0 {
		c.R |= 0x80
	}
	compressed := meta&0x20 != 0
	c.E = data[13]
	c.D = data[14]
	c.C2 = data[15]
	c.B2 = data[16]
	c.E2 = data[17]
	c.D2 = data[18]
	c.L2 = data[19]
	c.H2 = data[20]
	c.A2 = data[21]
	c.F2 = data[22]
	c.IY = uint16(data[23]) | uint16(data[24])<<8
	c.IX = uint16(data[25]) | uint16(data[26])<<8
	c.IFF1 = data[27] != 0
	c.IFF2 = data[28] != 0
	c.IM = data[29] & 0x03

	c.Halted = false
	c.PC = pc
	c.MEMPTR = pc

	if pc != 0 {
		return m.loadZ80V1Body(data[30:], compressed)
	}
	return m.loadZ80ExtendedBody(data[30:])
}

func (m *Machine) loadZ80V1Body(body []byte, compressed bool) error {
	var ram []byte
	if compressed {
		ram = decompressZ80RLE(body, true, 0xC000)
	} else {
		ram = body
	}
	if len(ram) < 0xC000 {
		return fmt.Errorf("spectrum: .z80 v1 body too short after decompression (%d bytes)", len(ram))
	}
	for i := 0; i < 0xC000; i++ {
		m.Bus.Write(uint16(0x4000+i), ram[i])
	}
	return nil
}

func (m *Machine) loadZ80ExtendedBody(body []byte) error {
	if len(body) < 2 {
		return fmt.Errorf("spectrum: .z80 extension header missing")
	}
	extLen := int(body[0]) | int(body[1])<<8
	if len(body) < 2+extLen {
		return fmt.Errorf("spectrum: .z80 extension header truncated")
	}
	ext := body[2 : 2+extLen]
	if len(ext) < 2 {
		return fmt.Errorf("spectrum: .z80 extension header too short")
	}
	m.CPU.PC = uint16(ext[0]) | uint16(ext[1])<<8
	m.CPU.MEMPTR = m.CPU.PC

	pages := body[2+extLen:]
	for len(pages) > 0 {
		if len(pages) < 3 {
			return fmt.Errorf("spectrum: .z80 page block header truncated")
		}
		length := int(pages[0]) | int(pages[1])<<8
		pageID := pages[2]
		pages = pages[3:]

		var raw []byte
		if length == 0xFFFF {
			if len(pages) < 0x4000 {
				return fmt.Errorf("spectrum: .z80 uncompressed page truncated")
			}
			raw = pages[:0x4000]
			pages = pages[0x4000:]
		} else {
			if len(pages) < length {
				return fmt.Errorf("spectrum: .z80 page block truncated")
			}
			raw = decompressZ80RLE(pages[:length], false, 0x4000)
			pages = pages[length:]
		}

		base, ok := z80PageBase(pageID)
		if !ok {
			continue // page not used in 48K mode, but its bytes are consumed above
		}
		for i := 0; i < len(raw) && i < 0x4000; i++ {
			m.Bus.Write(uint16(int(base)+i), raw[i])
		}
	}
	return nil
}

// z80PageBase maps a .Z80 v2/v3 page id to its 48K bank base address
// (SPEC_FULL.md §9: ids 4/5/8 map to 0x8000/0xC000/0x4000).
func z80PageBase(id uint8) (uint16, bool) {
	switch id {
	case 4:
		return 0x8000, true
	case 5:
		return 0xC000, true
	case 8:
		return 0x4000, true
	default:
		return 0, false
	}
}

// decompressZ80RLE expands the `0xED 0xED n v` run-length scheme used by
// .Z80 snapshots. When terminated is true, decompression stops at the
// 4-byte sequence 0x00 0xED 0xED 0x00 (v1 body); otherwise it stops once
// maxOut bytes have been produced (fixed-size v2/v3 page block).
func decompressZ80RLE(in []byte, terminated bool, maxOut int) []byte {
	out := make([]byte, 0, maxOut)
	i := 0
	for i < len(in) {
		if len(out) >= maxOut && !terminated {
			break
		}
		if terminated && i+3 < len(in) &&
			in[i] == 0x00 && in[i+1] == 0xED && in[i+2] == 0xED && in[i+3] == 0x00 {
			break
		}
		if i+3 < len(in) && in[i] == 0xED && in[i+1] == 0xED {
			n := int(in[i+2])
			v := in[i+3]
			for k := 0; k < n; k++ {
				out = append(out, v)
			}
			i += 4
			continue
		}
		out = append(out, in[i])
		i++
	}
	return out
}
