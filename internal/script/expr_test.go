package script

import "testing"

// TestFoldConstantsPrecedence exercises spec.md §8's "1+2*3 -> 7" scenario
// end to end: precedence reshape extracts "2*3" first, folds it to 6, then
// the top-level fold collapses "1+6" to the single literal 7.
func TestFoldConstantsPrecedence(t *testing.T) {
	c := newTestCompiler()
	obj, err := c.CompileExpression("1+2*3")
	if err != nil {
		t.Fatalf("CompileExpression: %v", err)
	}
	wantVal, _ := literalVal(7)
	want := append(appendVal(nil, wantVal), byte(OpStop))
	if string(obj.Bytecode) != string(want) {
		t.Errorf("CompileExpression(\"1+2*3\").Bytecode = %v, want %v", obj.Bytecode, want)
	}
	if !obj.IsExpression {
		t.Errorf("CompileExpression must set IsExpression")
	}
}

// TestPrecedenceReshapeFieldTerms confirms spec.md §4.4's reshape on
// non-literal terms: "a+b*c" cannot fold numerically, so the higher
// precedence "b*c" run is spliced out as a reference to a freshly
// registered code object, leaving the top level as a bare "a", ADD,
// code-object-VAL, STOP chain.
func TestPrecedenceReshapeFieldTerms(t *testing.T) {
	c := newTestCompiler()
	obj, err := c.CompileExpression("a+b*c")
	if err != nil {
		t.Fatalf("CompileExpression: %v", err)
	}
	if c.pool.NumCodeObjects() != 1 {
		t.Fatalf("expected exactly one spliced-out code object, got %d", c.pool.NumCodeObjects())
	}

	aID, _ := c.pool.InternField("a")
	bID, _ := c.pool.InternField("b")
	cID, _ := c.pool.InternField("c")

	inner := c.pool.Code(0)
	wantInner := []byte{byte(TermField), byte(bID >> 8), byte(bID), byte(OpMul)}
	wantInner = append(wantInner, byte(TermField), byte(cID>>8), byte(cID), byte(OpStop))
	if string(inner.Bytecode) != string(wantInner) {
		t.Errorf("spliced code object bytecode = %v, want %v", inner.Bytecode, wantInner)
	}

	wantTop := []byte{byte(TermField), byte(aID >> 8), byte(aID), byte(OpAdd)}
	codeVal := EncodeVal(KindCodeObject, 0)
	wantTop = append(wantTop, codeVal[:]...)
	wantTop = append(wantTop, byte(OpStop))
	if string(obj.Bytecode) != string(wantTop) {
		t.Errorf("CompileExpression(\"a+b*c\").Bytecode = %v, want %v", obj.Bytecode, wantTop)
	}
}

func TestOptimizeUnaryModsLogicalNotParity(t *testing.T) {
	cases := []struct {
		in   []UnaryOp
		want []UnaryOp
	}{
		{[]UnaryOp{UnaryLogicalNot}, []UnaryOp{UnaryLogicalNot}},
		{[]UnaryOp{UnaryLogicalNot, UnaryLogicalNot}, []UnaryOp{UnaryLogicalNot, UnaryLogicalNot}},
		{[]UnaryOp{UnaryLogicalNot, UnaryLogicalNot, UnaryLogicalNot}, []UnaryOp{UnaryLogicalNot}},
		{[]UnaryOp{UnaryNegate, UnaryNegate}, nil},
		{[]UnaryOp{UnaryBitwiseNot, UnaryBitwiseNot}, nil},
		{[]UnaryOp{UnaryNegate, UnaryNegate, UnaryNegate}, []UnaryOp{UnaryNegate}},
	}
	for _, tc := range cases {
		got := optimizeUnaryMods(tc.in)
		if !unaryOpsEqual(got, tc.want) {
			t.Errorf("optimizeUnaryMods(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func unaryOpsEqual(a, b []UnaryOp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestEmitElementsModifierOrder pins spec.md §4.4's emission rule: var
// bytes, then modifiers in reverse of encountered order, then the operator
// byte. "-!x" parses mods in encounter order [Negate, LogicalNot]; emission
// must write LogicalNot before Negate.
func TestEmitElementsModifierOrder(t *testing.T) {
	val, _ := literalVal(5)
	e := element{
		mods:     []UnaryOp{UnaryNegate, UnaryLogicalNot},
		varBytes: val[:],
		varIsVal: true,
		op:       OpStop,
	}
	got := emitElements([]element{e})
	want := append(appendVal(nil, val), byte(UnaryLogicalNot), byte(UnaryNegate), byte(OpStop))
	if string(got) != string(want) {
		t.Errorf("emitElements = %v, want %v", got, want)
	}
}

func TestFoldConstantsDivModByZeroDoesNotFold(t *testing.T) {
	zero, _ := literalVal(0)
	one, _ := literalVal(1)
	elems := []element{
		{varBytes: one[:], varIsVal: true, op: OpDiv},
		{varBytes: zero[:], varIsVal: true, op: OpStop},
	}
	got := foldConstants(elems)
	if len(got) != 2 {
		t.Errorf("foldConstants must not collapse a divide by zero, got %d elements", len(got))
	}
}
