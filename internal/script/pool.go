// pool.go - constant/field/code-object intern tables (C5)

package script

// CodeObject is a compiled bytecode fragment, referenced by a VAL of kind
// KindCodeObject (spec.md §3 "Code object table").
type CodeObject struct {
	Bytecode     []byte
	IsExpression bool
}

// Pool owns every literal and identifier a compiled program references. It
// outlives the bytecode that indexes into it (spec.md §3 "Ownership
// rules"). Interning is linear-scan dedup, matching spec.md §4.3 exactly:
// these tables are small relative to a single game's script corpus, and a
// map would trade away the byte-equal/numeric-equal comparison spec.md
// specifies for string/double content addressing.
type Pool struct {
	doubles []float64
	strings [][]byte
	fields  []string
	code    []CodeObject
}

func NewPool() *Pool {
	return &Pool{}
}

const (
	maxPoolIndex = 1 << 22
	maxFieldID   = 1 << 16
)

// InternDouble returns the index of d in the constant pool, appending a new
// entry if no equal value is present yet.
func (p *Pool) InternDouble(d float64) (int, error) {
	for i, v := range p.doubles {
		if v == d {
			return i, nil
		}
	}
	p.doubles = append(p.doubles, d)
	idx := len(p.doubles) - 1
	if idx >= maxPoolIndex {
		return 0, errAt(0, "constant pool overflow")
	}
	return idx, nil
}

// InternString returns the index of s in the constant pool (byte-equal
// dedup), appending a new entry if absent.
func (p *Pool) InternString(s []byte) (int, error) {
	for i, v := range p.strings {
		if string(v) == string(s) {
			return i, nil
		}
	}
	cp := make([]byte, len(s))
	copy(cp, s)
	p.strings = append(p.strings, cp)
	idx := len(p.strings) - 1
	if idx >= maxPoolIndex {
		return 0, errAt(0, "constant pool overflow")
	}
	return idx, nil
}

// InternField returns the index of name in the field-name table.
func (p *Pool) InternField(name string) (int, error) {
	for i, v := range p.fields {
		if v == name {
			return i, nil
		}
	}
	p.fields = append(p.fields, name)
	idx := len(p.fields) - 1
	if idx >= maxFieldID {
		return 0, errAt(0, "field table overflow")
	}
	return idx, nil
}

// AddCodeObject registers a compiled fragment and returns its index,
// failing if the code-object table would exceed the 22-bit VAL payload.
func (p *Pool) AddCodeObject(obj CodeObject) (int, error) {
	p.code = append(p.code, obj)
	idx := len(p.code) - 1
	if idx >= maxPoolIndex {
		return 0, errAt(0, "code object table overflow")
	}
	return idx, nil
}

func (p *Pool) Double(i int) float64    { return p.doubles[i] }
func (p *Pool) String(i int) []byte     { return p.strings[i] }
func (p *Pool) Field(i int) string      { return p.fields[i] }
func (p *Pool) Code(i int) CodeObject   { return p.code[i] }
func (p *Pool) NumDoubles() int         { return len(p.doubles) }
func (p *Pool) NumStrings() int         { return len(p.strings) }
func (p *Pool) NumFields() int          { return len(p.fields) }
func (p *Pool) NumCodeObjects() int     { return len(p.code) }
