package script

import "testing"

func TestStripCommentsLineAndBlock(t *testing.T) {
	src := "x=1; // trailing comment\ny=2; /* block\nspans lines */ z=3;"
	got := stripComments(src)
	want := "x=1; \ny=2;  z=3;"
	if got != want {
		t.Errorf("stripComments(%q) = %q, want %q", src, got, want)
	}
}

// TestStripCommentsDelimiterInsideString pins spec.md §4.3's rule that a
// comment delimiter seen while inside a string is literal, and (the other
// half of the same state machine) a quote seen while inside a comment does
// not open a string.
func TestStripCommentsDelimiterInsideString(t *testing.T) {
	src := `s = "a // not a comment"; t = 1;`
	got := stripComments(src)
	if got != src {
		t.Errorf("stripComments should not touch // inside a string: got %q, want %q", got, src)
	}

	src2 := "/* a \" quote in a comment */ u = 1;"
	got2 := stripComments(src2)
	want2 := " u = 1;"
	if got2 != want2 {
		t.Errorf("stripComments(%q) = %q, want %q", src2, got2, want2)
	}
}

func TestSubstituteLiteralsString(t *testing.T) {
	pool := NewPool()
	out, err := substituteLiterals(pool, `show("hi")`)
	if err != nil {
		t.Fatalf("substituteLiterals: %v", err)
	}
	if pool.NumStrings() != 1 || string(pool.String(0)) != "hi" {
		t.Fatalf("expected \"hi\" interned at index 0, got %d strings", pool.NumStrings())
	}
	want := "show(%0%)"
	if out != want {
		t.Errorf("substituteLiterals = %q, want %q", out, want)
	}
}

func TestSubstituteLiteralsHex(t *testing.T) {
	pool := NewPool()
	out, err := substituteLiterals(pool, "x=$1F;")
	if err != nil {
		t.Fatalf("substituteLiterals: %v", err)
	}
	if pool.NumDoubles() != 1 || pool.Double(0) != 31 {
		t.Fatalf("expected 31.0 interned as a double, got %v", pool.doubles)
	}
	want := "x=%0%;"
	if out != want {
		t.Errorf("substituteLiterals = %q, want %q", out, want)
	}
}

// TestPreprocessIdempotent reproduces spec.md §8's preprocessing idempotence
// property: once comments are stripped and literals pulled into the
// constant pool as %N% tokens, running preprocess again on the already
// preprocessed text is a no-op, since there are no more comment delimiters
// or literal forms left to find.
func TestPreprocessIdempotent(t *testing.T) {
	pool := NewPool()
	src := `x = "hi" + $1F; // comment`
	once, err := preprocess(pool, src, false)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	twice, err := preprocess(pool, once, false)
	if err != nil {
		t.Fatalf("preprocess (second pass): %v", err)
	}
	if once != twice {
		t.Errorf("preprocess is not idempotent: first pass %q, second pass %q", once, twice)
	}
	if pool.NumStrings() != 1 || pool.NumDoubles() != 1 {
		t.Errorf("second preprocess pass must not re-intern: strings=%d doubles=%d", pool.NumStrings(), pool.NumDoubles())
	}
}

// TestPreprocessSessionSkipsPreprocessing pins the nested-re-entry rule
// (spec.md §4.3): session=true returns src unchanged, no interning at all.
func TestPreprocessSessionSkipsPreprocessing(t *testing.T) {
	pool := NewPool()
	src := `x = "hi"; // comment`
	out, err := preprocess(pool, src, true)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if out != src {
		t.Errorf("preprocess(session=true) = %q, want unchanged %q", out, src)
	}
	if pool.NumStrings() != 0 {
		t.Errorf("preprocess(session=true) must not intern, got %d strings", pool.NumStrings())
	}
}
