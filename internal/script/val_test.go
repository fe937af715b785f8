package script

import "testing"

func TestEncodeDecodeValRoundTrip(t *testing.T) {
	cases := []struct {
		kind    ValKind
		payload uint32
	}{
		{KindStack, 0},
		{KindLiteralInt, 1},
		{KindConstPool, 1234},
		{KindCodeObject, maxVal22},
		{KindLiteralInt, maxVal22 - 1},
	}
	for _, c := range cases {
		enc := EncodeVal(c.kind, c.payload)
		gotKind, gotPayload := DecodeVal(enc)
		if gotKind != c.kind || gotPayload != c.payload {
			t.Errorf("EncodeVal(%v, %d): round-trip got (%v, %d)", c.kind, c.payload, gotKind, gotPayload)
		}
	}
}

// TestValKindBoundary pins the 0x3FFFFF/0x400000 boundary spec.md §8 calls
// out: the top two bits of the first VAL byte are reserved for the kind tag,
// so a 22-bit payload is the largest a VAL can carry.
func TestValKindBoundary(t *testing.T) {
	if _, ok := literalVal(maxVal22); !ok {
		t.Errorf("literalVal(0x3FFFFF) should fit in a VAL payload")
	}
	if _, ok := literalVal(maxVal22 + 1); ok {
		t.Errorf("literalVal(0x400000) should overflow a VAL payload")
	}
}

func TestLiteralValIsLiteralInt(t *testing.T) {
	v, ok := literalVal(42)
	if !ok {
		t.Fatalf("literalVal(42) failed")
	}
	payload, isLit := isLiteralInt(v)
	if !isLit || payload != 42 {
		t.Errorf("isLiteralInt(literalVal(42)) = (%d, %v), want (42, true)", payload, isLit)
	}

	nonLit := EncodeVal(KindConstPool, 42)
	if _, isLit := isLiteralInt(nonLit); isLit {
		t.Errorf("isLiteralInt should report false for a KindConstPool VAL")
	}
}
