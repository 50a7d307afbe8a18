package spectrum

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/pierrec/lz4/v4"
)

// saveStateMagic identifies this package's own save-state blob; it is not
// a wire format shared with any other program (SPEC_FULL.md §4.13, §6).
var saveStateMagic = [4]byte{'S', 'S', '4', '8'}

const saveStateVersion = 1

// SaveState serializes the complete machine state — CPU registers, RAM,
// and video peripheral state — to w, lz4-framed for a smaller on-disk
// footprint. This is independent of the period .SNA/.Z80 formats: it
// exists purely to resume exactly where a session left off.
func (m *Machine) SaveState(w io.Writer) error {
	payload, err := m.encodeState()
	if err != nil {
		return fmt.Errorf("spectrum: failed to encode save state: %w", err)
	}
	payloadCRC := crc32.ChecksumIEEE(payload)

	header := bytes.Buffer{}
	header.Write(saveStateMagic[:])
	binary.Write(&header, binary.LittleEndian, uint8(saveStateVersion))
	binary.Write(&header, binary.LittleEndian, m.RomCRC32)
	binary.Write(&header, binary.LittleEndian, payloadCRC)
	if _, err := w.Write(header.Bytes()); err != nil {
		return fmt.Errorf("spectrum: failed to write save-state header: %w", err)
	}

	zw := lz4.NewWriter(w)
	if _, err := zw.Write(payload); err != nil {
		return fmt.Errorf("spectrum: failed to write compressed save state: %w", err)
	}
	return zw.Close()
}

// LoadState restores a machine state previously written by SaveState,
// validating the header magic, format version, ROM identity and payload
// checksum before any register is touched.
func (m *Machine) LoadState(r io.Reader) error {
	header := make([]byte, 4+1+4+4)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("spectrum: failed to read save-state header: %w", err)
	}
	if !bytes.Equal(header[:4], saveStateMagic[:]) {
		return fmt.Errorf("spectrum: not a spectrum48 save state")
	}
	version := header[4]
	if version != saveStateVersion {
		return fmt.Errorf("spectrum: unsupported save-state version %d", version)
	}
	romCRC := binary.LittleEndian.Uint32(header[5:9])
	if romCRC != m.RomCRC32 {
		return fmt.Errorf("spectrum: save state was captured with a different ROM image")
	}
	payloadCRC := binary.LittleEndian.Uint32(header[9:13])

	zr := lz4.NewReader(r)
	payload, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("spectrum: failed to decompress save state: %w", err)
	}
	if crc32.ChecksumIEEE(payload) != payloadCRC {
		return fmt.Errorf("spectrum: save-state payload failed its checksum")
	}
	return m.decodeState(payload)
}

func (m *Machine) encodeState() ([]byte, error) {
	buf := &bytes.Buffer{}
	c := m.CPU

	fields := []any{
		c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L,
		c.A2, c.F2, c.B2, c.C2, c.D2, c.E2, c.H2, c.L2,
		c.IX, c.IY, c.SP, c.PC,
		c.I, c.R, c.IFF1, c.IFF2, c.IM, c.MEMPTR,
		c.Halted, c.IntPending, c.CyclesSinceVsync,
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}

	buf.Write(m.Video.mem[:])
	binary.Write(buf, binary.LittleEndian, m.Video.dirty)
	buf.Write(m.Bus.RAM[:])

	return buf.Bytes(), nil
}

func (m *Machine) decodeState(payload []byte) error {
	buf := bytes.NewReader(payload)
	c := m.CPU

	fields := []any{
		&c.A, &c.F, &c.B, &c.C, &c.D, &c.E, &c.H, &c.L,
		&c.A2, &c.F2, &c.B2, &c.C2, &c.D2, &c.E2, &c.H2, &c.L2,
		&c.IX, &c.IY, &c.SP, &c.PC,
		&c.I, &c.R, &c.IFF1, &c.IFF2, &c.IM, &c.MEMPTR,
		&c.Halted, &c.IntPending, &c.CyclesSinceVsync,
	}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("spectrum: failed to decode CPU state: %w", err)
		}
	}

	if _, err := io.ReadFull(buf, m.Video.mem[:]); err != nil {
		return fmt.Errorf("spectrum: failed to decode video memory: %w", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &m.Video.dirty); err != nil {
		return fmt.Errorf("spectrum: failed to decode video dirty flag: %w", err)
	}
	if _, err := io.ReadFull(buf, m.Bus.RAM[:]); err != nil {
		return fmt.Errorf("spectrum: failed to decode RAM: %w", err)
	}

	return nil
}
