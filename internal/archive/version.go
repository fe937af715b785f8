// version.go - game version probe (spec.md §4.1 "Version detection")

package archive

// Version identifies which archive dialect produced the executable.
type Version int

const (
	V800 Version = iota
	V810
)

const (
	v800MagicOffset = 2_000_000
	v800Magic       = 1_234_321
	v810ScanStart   = 3_800_004
	v810ScanLimit   = 1024
)

// detectVersion runs the fixed-offset probe followed by the 0xF700_0000 /
// 0x0014_0067 scan described in spec.md §4.1. On a V810 match it runs the
// decryptor in place (over r's backing buffer) before returning, exactly as
// the original tool interleaves detection and decryption.
func detectVersion(r *Reader) (Version, error) {
	if word, ok := r.U32At(v800MagicOffset); ok && word == v800Magic {
		r.Seek(v800MagicOffset + 8)
		return V800, nil
	}

	pos := v810ScanStart
	for i := 0; i < v810ScanLimit; i++ {
		word, ok := r.U32At(pos)
		if !ok {
			break
		}
		if word&0xFF00FF00 == 0xF7000000 {
			next, ok := r.U32At(pos + 4)
			if ok && next&0x00FF00FF == 0x00140067 {
				// The original scan consumes both matched dwords before
				// handing off to the decryptor, so its key dword follows
				// immediately after the second one.
				r.Seek(pos + 8)
				if err := decryptV810(r); err != nil {
					return 0, err
				}
				r.Skip(16)
				return V810, nil
			}
		}
		// Overlapping word-by-word scan: a partial match (outer condition
		// held but the follow-up word didn't) still only advances by 4, so
		// the next iteration re-examines starting one word later rather
		// than skipping the pair.
		pos += 4
	}
	return 0, newErr(KindUnknownVersion, "no V800 or V810 signature found")
}
