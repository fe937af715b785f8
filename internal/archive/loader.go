// loader.go - archive Load entry point (C1-C4 orchestration)

package archive

import (
	"os"

	"github.com/gm8run/gm8emu/internal/script"
)

// Archive is the fully decoded result of Load: every asset table plus the
// compiled bytecode for every script and event action. Load is the only
// writer; after it returns, callers may read concurrently.
type Archive struct {
	Version  Version
	Settings Settings
	Assets   AssetTables
	Pool     *script.Pool
}

// Load reconstructs a game archive from the executable at path, per
// spec.md §4.1-§4.2. It must not be called concurrently with itself: the
// archive buffer it reads into is reused as scratch space for in-place
// V810 decryption.
func Load(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, wrapErr(KindIO, err)
		}
		return nil, wrapErr(KindResourceExhausted, err)
	}

	if len(data) < 27 {
		return nil, newErr(KindNotAnExecutable, "file too small to be an executable")
	}
	if data[0] != 'M' || data[1] != 'Z' {
		return nil, newErr(KindNotAnExecutable, "missing MZ signature")
	}

	r := NewReader(data)
	version, err := detectVersion(r)
	if err != nil {
		return nil, err
	}

	return decodeAssets(r, version)
}
