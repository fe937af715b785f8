package archive

import (
	"encoding/binary"
	"testing"
)

func TestReaderReadU32(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], 0xDEADBEEF)
	binary.LittleEndian.PutUint32(buf[4:8], 1)
	r := NewReader(buf)

	v, ok := r.ReadU32()
	if !ok || v != 0xDEADBEEF {
		t.Fatalf("ReadU32() = (%#x, %v), want (0xDEADBEEF, true)", v, ok)
	}
	if r.Pos() != 4 {
		t.Errorf("Pos() = %d, want 4", r.Pos())
	}
	v, ok = r.ReadU32()
	if !ok || v != 1 {
		t.Fatalf("ReadU32() = (%d, %v), want (1, true)", v, ok)
	}

	// Cursor now at end of buffer: one more read must fail cleanly, not panic.
	if _, ok := r.ReadU32(); ok {
		t.Errorf("ReadU32() past end of buffer should fail")
	}
}

func TestReaderReadBytesBounds(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	r := NewReader(buf)

	got, ok := r.ReadBytes(3)
	if !ok || string(got) != string(buf[:3]) {
		t.Fatalf("ReadBytes(3) = (%v, %v), want (%v, true)", got, ok, buf[:3])
	}
	if r.Pos() != 3 {
		t.Errorf("Pos() = %d, want 3", r.Pos())
	}

	if _, ok := r.ReadBytes(3); ok {
		t.Errorf("ReadBytes(3) with only 2 bytes remaining should fail")
	}
	// A failed read must not advance the cursor.
	if r.Pos() != 3 {
		t.Errorf("Pos() after failed ReadBytes = %d, want unchanged 3", r.Pos())
	}

	if _, ok := r.ReadBytes(-1); ok {
		t.Errorf("ReadBytes(-1) should fail, not panic")
	}
}

func TestReaderReadBytesCopiesNotAliases(t *testing.T) {
	buf := []byte{1, 2, 3}
	r := NewReader(buf)
	got, ok := r.ReadBytes(3)
	if !ok {
		t.Fatalf("ReadBytes(3) failed")
	}
	got[0] = 0xFF
	if buf[0] != 1 {
		t.Errorf("ReadBytes must copy, not alias: mutating the result changed the backing buffer")
	}
}

func TestReaderU32At(t *testing.T) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[8:12], 0x12345678)
	r := NewReader(buf)

	v, ok := r.U32At(8)
	if !ok || v != 0x12345678 {
		t.Fatalf("U32At(8) = (%#x, %v), want (0x12345678, true)", v, ok)
	}
	// U32At must not move the cursor.
	if r.Pos() != 0 {
		t.Errorf("U32At moved the cursor to %d", r.Pos())
	}

	if _, ok := r.U32At(-1); ok {
		t.Errorf("U32At(-1) should fail")
	}
	if _, ok := r.U32At(13); ok {
		t.Errorf("U32At(13) with only 3 bytes remaining should fail")
	}
	if _, ok := r.U32At(16); ok {
		t.Errorf("U32At at exactly buffer length should fail")
	}
}

func TestReaderSeekSkipRemaining(t *testing.T) {
	buf := make([]byte, 10)
	r := NewReader(buf)

	if r.Remaining() != 10 {
		t.Fatalf("Remaining() = %d, want 10", r.Remaining())
	}
	r.Seek(4)
	if r.Pos() != 4 || r.Remaining() != 6 {
		t.Errorf("after Seek(4): Pos()=%d Remaining()=%d, want 4, 6", r.Pos(), r.Remaining())
	}
	r.Skip(3)
	if r.Pos() != 7 || r.Remaining() != 3 {
		t.Errorf("after Skip(3): Pos()=%d Remaining()=%d, want 7, 3", r.Pos(), r.Remaining())
	}
	if r.Len() != 10 {
		t.Errorf("Len() = %d, want 10", r.Len())
	}
}
