// inflate.go - zlib block streaming into owned buffers (C3)

package archive

import (
	"bytes"
	"compress/zlib"
	"io"
)

// blockHeader is the two-dword prefix spec.md §4.1 "Inflation" defines.
type blockHeader struct {
	versionStamp uint32
	compressed   uint32
}

func readBlockHeader(r *Reader) (blockHeader, error) {
	stamp, ok := r.ReadU32()
	if !ok {
		return blockHeader{}, newErr(KindCorrupt, "truncated block header (version stamp)")
	}
	length, ok := r.ReadU32()
	if !ok {
		return blockHeader{}, newErr(KindCorrupt, "truncated block header (compressed length)")
	}
	return blockHeader{versionStamp: stamp, compressed: length}, nil
}

// inflateBlock reads exactly L bytes of zlib input starting at r's cursor
// and streams them into a freshly owned buffer that grows until the stream
// signals end-of-stream, per spec.md §4.1. The cursor is advanced by L on
// success; on any error the cursor is left where it failed and a Corrupt
// error is returned, matching the loader's "discard all partial state"
// policy (spec.md §7) at the Load call site.
func inflateBlock(r *Reader) ([]byte, error) {
	hdr, err := readBlockHeader(r)
	if err != nil {
		return nil, err
	}

	compressed, ok := r.ReadBytes(int(hdr.compressed))
	if !ok {
		return nil, newErr(KindCorrupt, "truncated compressed block body")
	}
	return inflateBytes(compressed)
}

// readRawBlock extracts a block's header and still-compressed body,
// advancing r past it without inflating. Used by the asset decoder's
// sequential scan (§4.2): each section's start depends on the previous
// section's compressed length, but not on its decompressed contents, so
// the scan only needs to walk headers and copy out compressed bytes
// before handing the inflate+decode work to independent goroutines.
func readRawBlock(r *Reader) ([]byte, error) {
	hdr, err := readBlockHeader(r)
	if err != nil {
		return nil, err
	}
	compressed, ok := r.ReadBytes(int(hdr.compressed))
	if !ok {
		return nil, newErr(KindCorrupt, "truncated compressed block body")
	}
	return compressed, nil
}

// inflateBytes decompresses an already-extracted zlib buffer.
func inflateBytes(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, wrapErr(KindCorrupt, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, wrapErr(KindCorrupt, err)
	}
	return out, nil
}
