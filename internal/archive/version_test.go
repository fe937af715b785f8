package archive

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestDetectVersionTooSmallIsUnknown(t *testing.T) {
	// Too short to reach either probe offset: both bounds checks fail
	// immediately, so detection must report UnknownVersion rather than
	// panicking or looping.
	r := NewReader(make([]byte, 16))
	_, err := detectVersion(r)
	var le *LoadError
	if !errors.As(err, &le) || le.Kind != KindUnknownVersion {
		t.Fatalf("detectVersion on a tiny buffer: err = %v, want KindUnknownVersion", err)
	}
}

func TestDetectVersionV800(t *testing.T) {
	buf := make([]byte, v800MagicOffset+8)
	binary.LittleEndian.PutUint32(buf[v800MagicOffset:v800MagicOffset+4], v800Magic)
	r := NewReader(buf)

	version, err := detectVersion(r)
	if err != nil {
		t.Fatalf("detectVersion: %v", err)
	}
	if version != V800 {
		t.Errorf("detectVersion = %v, want V800", version)
	}
	if r.Pos() != v800MagicOffset+8 {
		t.Errorf("Pos() after V800 detect = %d, want %d", r.Pos(), v800MagicOffset+8)
	}
}

func TestDetectVersionV810(t *testing.T) {
	pos := v810ScanStart
	buf := make([]byte, pos+32)
	binary.LittleEndian.PutUint32(buf[pos:pos+4], 0xF7000000)
	binary.LittleEndian.PutUint32(buf[pos+4:pos+8], 0x00140067)
	r := NewReader(buf)

	version, err := detectVersion(r)
	if err != nil {
		t.Fatalf("detectVersion: %v", err)
	}
	if version != V810 {
		t.Errorf("detectVersion = %v, want V810", version)
	}
	// decryptV810 consumes the key (4) and seed1 (4) dwords from pos+8, then
	// detectVersion itself skips a further 16 bytes past that.
	wantPos := pos + 8 + 8 + 16
	if r.Pos() != wantPos {
		t.Errorf("Pos() after V810 detect = %d, want %d", r.Pos(), wantPos)
	}
}

func TestDetectVersionNoMatchScansPastPartialHits(t *testing.T) {
	pos := v810ScanStart
	buf := make([]byte, pos+v810ScanLimit*4+8)
	// First dword matches the outer mask but the follow-up dword doesn't:
	// the scan must not treat this as a match, and with no full signature
	// anywhere in the scan window it must end with UnknownVersion.
	binary.LittleEndian.PutUint32(buf[pos:pos+4], 0xF7000000)
	binary.LittleEndian.PutUint32(buf[pos+4:pos+8], 0x00000000)
	r := NewReader(buf)

	_, err := detectVersion(r)
	var le *LoadError
	if !errors.As(err, &le) || le.Kind != KindUnknownVersion {
		t.Fatalf("detectVersion with only a partial V810 hit: err = %v, want KindUnknownVersion", err)
	}
}
