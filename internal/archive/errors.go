// errors.go - error taxonomy for the archive loader

package archive

import "errors"

// Kind classifies why Load failed, matching the taxonomy of spec.md §7.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindResourceExhausted
	KindNotAnExecutable
	KindUnknownVersion
	KindCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IoError"
	case KindResourceExhausted:
		return "ResourceExhausted"
	case KindNotAnExecutable:
		return "NotAnExecutable"
	case KindUnknownVersion:
		return "UnknownVersion"
	case KindCorrupt:
		return "Corrupt"
	default:
		return "Unknown"
	}
}

// LoadError wraps a loader failure with its taxonomy Kind so callers (the
// CLI's exit-code selection in particular) can branch on it with errors.As
// without string-matching the message.
type LoadError struct {
	Kind Kind
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

func wrapErr(kind Kind, err error) error {
	return &LoadError{Kind: kind, Err: err}
}

func newErr(kind Kind, msg string) error {
	return &LoadError{Kind: kind, Err: errors.New(msg)}
}
