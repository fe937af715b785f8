// errors.go - compiler error taxonomy (spec.md §7)

package script

import "fmt"

// CompileError reports a malformed script. It carries the byte offset in
// the preprocessed source where compilation gave up; pool-overflow and
// jump-distance errors, raised away from the cursor, carry 0. This follows
// the teacher's convention of contextual fmt.Errorf messages rather than a
// bespoke error package.
type CompileError struct {
	Pos int
	Msg string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error at %d: %s", e.Pos, e.Msg)
}

func errAt(pos int, format string, args ...any) error {
	return &CompileError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ErrUnsupported marks a reserved-but-unimplemented statement form
// (spec.md §4.5, §9: while/do-until/repeat).
type ErrUnsupported struct {
	Feature string
}

func (e *ErrUnsupported) Error() string {
	return "unsupported: " + e.Feature
}
