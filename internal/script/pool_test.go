package script

import "testing"

func TestInternDoubleDedup(t *testing.T) {
	p := NewPool()
	a, err := p.InternDouble(1.5)
	if err != nil {
		t.Fatalf("InternDouble: %v", err)
	}
	b, err := p.InternDouble(1.5)
	if err != nil {
		t.Fatalf("InternDouble: %v", err)
	}
	if a != b {
		t.Errorf("interning the same double twice: got indices %d, %d, want equal", a, b)
	}
	c, err := p.InternDouble(2.5)
	if err != nil {
		t.Fatalf("InternDouble: %v", err)
	}
	if c == a {
		t.Errorf("interning a different double returned the same index %d", c)
	}
	if p.NumDoubles() != 2 {
		t.Errorf("NumDoubles() = %d, want 2", p.NumDoubles())
	}
	if p.Double(a) != 1.5 || p.Double(c) != 2.5 {
		t.Errorf("Double() did not return interned values")
	}
}

func TestInternStringDedupIsByteEqual(t *testing.T) {
	p := NewPool()
	a, err := p.InternString([]byte("hello"))
	if err != nil {
		t.Fatalf("InternString: %v", err)
	}
	b, err := p.InternString([]byte("hello"))
	if err != nil {
		t.Fatalf("InternString: %v", err)
	}
	if a != b {
		t.Errorf("interning equal byte slices: got indices %d, %d, want equal", a, b)
	}
	c, err := p.InternString([]byte("world"))
	if err != nil {
		t.Fatalf("InternString: %v", err)
	}
	if c == a {
		t.Errorf("interning a different string returned the same index %d", c)
	}
	if string(p.String(a)) != "hello" {
		t.Errorf("String(%d) = %q, want %q", a, p.String(a), "hello")
	}

	// A caller-mutated source slice must not retroactively change the
	// interned copy (InternString copies its input).
	src := []byte("mutable")
	idx, err := p.InternString(src)
	if err != nil {
		t.Fatalf("InternString: %v", err)
	}
	src[0] = 'X'
	if string(p.String(idx)) != "mutable" {
		t.Errorf("InternString did not copy its input: pool now holds %q", p.String(idx))
	}
}

func TestInternFieldDedup(t *testing.T) {
	p := NewPool()
	a, err := p.InternField("x")
	if err != nil {
		t.Fatalf("InternField: %v", err)
	}
	b, err := p.InternField("x")
	if err != nil {
		t.Fatalf("InternField: %v", err)
	}
	if a != b {
		t.Errorf("interning the same field name twice: got indices %d, %d, want equal", a, b)
	}
	c, err := p.InternField("y")
	if err != nil {
		t.Fatalf("InternField: %v", err)
	}
	if c == a {
		t.Errorf("interning a different field name returned the same index %d", c)
	}
	if p.Field(a) != "x" || p.Field(c) != "y" {
		t.Errorf("Field() did not return interned names")
	}
}

func TestAddCodeObject(t *testing.T) {
	p := NewPool()
	obj := CodeObject{Bytecode: []byte{1, 2, 3}, IsExpression: true}
	idx, err := p.AddCodeObject(obj)
	if err != nil {
		t.Fatalf("AddCodeObject: %v", err)
	}
	if p.NumCodeObjects() != 1 {
		t.Errorf("NumCodeObjects() = %d, want 1", p.NumCodeObjects())
	}
	got := p.Code(idx)
	if string(got.Bytecode) != string(obj.Bytecode) || got.IsExpression != obj.IsExpression {
		t.Errorf("Code(%d) = %+v, want %+v", idx, got, obj)
	}

	// Unlike doubles/strings/fields, code objects are not deduplicated: each
	// CompileCode/compileToVal call that needs one registers a fresh entry.
	idx2, err := p.AddCodeObject(obj)
	if err != nil {
		t.Fatalf("AddCodeObject: %v", err)
	}
	if idx2 == idx {
		t.Errorf("AddCodeObject returned the same index twice for distinct calls")
	}
}
