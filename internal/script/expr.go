// expr.go - expression compiler (C6): precedence reshape, constant folding,
// unary-modifier optimization, VAL construction, deref chains.

package script

import (
	"math"
	"strconv"
)

// element is one link of the expression chain (spec.md §3 "Expression AST
// node"), held in an owned slice rather than a linked list (spec.md §9's
// redesign note).
type element struct {
	mods     []UnaryOp
	varBytes []byte
	varIsVal bool // true when varBytes is exactly a bare 3-byte VAL
	op       BinOp
}

func toVal3(b []byte) [3]byte {
	var v [3]byte
	copy(v[:], b)
	return v
}

// parseElements reads a chain of elements until stop reports true for the
// next non-space byte (or input ends).
func (p *parser) parseElements(stop func(byte) bool) ([]element, error) {
	var elems []element
	for {
		var mods []UnaryOp
		for {
			p.skipSpace()
			switch p.peek() {
			case '+':
				p.pos++
			case '-':
				mods = append(mods, UnaryNegate)
				p.pos++
			case '!':
				mods = append(mods, UnaryLogicalNot)
				p.pos++
			case '~':
				mods = append(mods, UnaryBitwiseNot)
				p.pos++
			default:
				goto modsDone
			}
		}
	modsDone:
		varBytes, isVal, err := p.parseVarTermChain()
		if err != nil {
			return nil, err
		}
		op, err := p.parseBinOp(stop)
		if err != nil {
			return nil, err
		}
		elems = append(elems, element{mods: mods, varBytes: varBytes, varIsVal: isVal, op: op})
		if op == OpStop {
			break
		}
	}
	return elems, nil
}

func (p *parser) parseBinOp(stop func(byte) bool) (BinOp, error) {
	p.skipSpace()
	if p.atEnd() || stop(p.peek()) {
		return OpStop, nil
	}
	c0, c1 := p.peek(), p.peekAt(1)
	two := func(op BinOp) (BinOp, error) { p.pos += 2; return op, nil }
	switch {
	case c0 == '=' && c1 == '=':
		return two(OpEq)
	case c0 == '!' && c1 == '=':
		return two(OpNeq)
	case c0 == '<' && c1 == '=':
		return two(OpLe)
	case c0 == '>' && c1 == '=':
		return two(OpGe)
	case c0 == '<' && c1 == '<':
		return two(OpShl)
	case c0 == '>' && c1 == '>':
		return two(OpShr)
	case c0 == '&' && c1 == '&':
		return two(OpAnd)
	case c0 == '|' && c1 == '|':
		return two(OpOr)
	case c0 == '^' && c1 == '^':
		return two(OpXorXor)
	}
	if p.consumeKeyword("mod") {
		return OpMod, nil
	}
	switch c0 {
	case '*':
		p.pos++
		return OpMul, nil
	case '/':
		p.pos++
		return OpDiv, nil
	case '+':
		p.pos++
		return OpAdd, nil
	case '-':
		p.pos++
		return OpSub, nil
	case '&':
		p.pos++
		return OpBitAnd, nil
	case '|':
		p.pos++
		return OpBitOr, nil
	case '^':
		p.pos++
		return OpBitXor, nil
	case '<':
		p.pos++
		return OpLt, nil
	case '>':
		p.pos++
		return OpGt, nil
	case '=':
		p.pos++
		return OpAssignEq, nil
	}
	// Anything else (a statement keyword like "then"/"else", a closing
	// bracket the caller will consume, or a stop byte not covered by
	// stop itself) ends the expression; the surrounding statement or
	// term parser is responsible for what comes next.
	return OpStop, nil
}

// compileToVal compiles a sub-expression and collapses it to a single VAL:
// directly, if it reduces to one bare-VAL element with no modifiers;
// otherwise by registering it as a new code object (spec.md §4.4
// "make_val" and the parenthesized-subexpression reuse rule — both
// collapse to the same shortcut).
func (p *parser) compileToVal(stop func(byte) bool) ([3]byte, error) {
	elems, err := p.parseElements(stop)
	if err != nil {
		return [3]byte{}, err
	}
	elems, err = p.c.reshape(elems)
	if err != nil {
		return [3]byte{}, err
	}
	elems = foldConstants(elems)
	elems = optimizeUnary(elems)
	return p.c.wrapAsVal(elems)
}

func (c *Compiler) wrapAsVal(elems []element) ([3]byte, error) {
	if len(elems) == 1 && len(elems[0].mods) == 0 && elems[0].varIsVal {
		return toVal3(elems[0].varBytes), nil
	}
	obj := CodeObject{Bytecode: emitElements(elems), IsExpression: true}
	idx, err := c.pool.AddCodeObject(obj)
	if err != nil {
		return [3]byte{}, err
	}
	return EncodeVal(KindCodeObject, uint32(idx)), nil
}

func isParenEnd(c byte) bool   { return c == ')' }
func isBracketEnd(c byte) bool { return c == ']' }
func isArgEnd(c byte) bool     { return c == ',' || c == ')' }

// parseVarTermChain parses one variable term, following any "a.b[i].c"
// deref links (spec.md §4.4 "Deref chains"). Each link but the last is
// emitted as a DEREF instruction prefix; the final link is the term
// returned to the caller.
func (p *parser) parseVarTermChain() (varBytes []byte, isVal bool, err error) {
	var prefix []byte
	for {
		term, val, err := p.parseAtomicVarTerm()
		if err != nil {
			return nil, false, err
		}
		if !p.lookingAtDerefDot() {
			return append(prefix, term...), val && len(prefix) == 0, nil
		}
		lhsVal, err := p.c.toDerefVal(term, val)
		if err != nil {
			return nil, false, err
		}
		prefix = append(prefix, byte(OpDeref))
		prefix = appendVal(prefix, lhsVal)
		p.skipSpace()
		p.consumeByte('.')
	}
}

// lookingAtDerefDot reports whether, after optionally skipping a bracketed
// array index, the next token is '.'; it does not consume anything.
func (p *parser) lookingAtDerefDot() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipSpace()
	if p.peek() == '[' {
		depth := 0
		for !p.atEnd() {
			switch p.src[p.pos] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					p.pos++
					goto afterIndex
				}
			}
			p.pos++
		}
	afterIndex:
	}
	p.skipSpace()
	return p.peek() == '.'
}

// toDerefVal turns an already-parsed term into a bare VAL suitable as a
// DEREF operand, wrapping non-VAL terms (FIELD/INSTANCEVAR/...) as a code
// object the same way make_val's general fallback does.
func (c *Compiler) toDerefVal(term []byte, isVal bool) ([3]byte, error) {
	if isVal {
		return toVal3(term), nil
	}
	obj := CodeObject{Bytecode: append(append([]byte{}, term...), byte(OpStop)), IsExpression: true}
	idx, err := c.pool.AddCodeObject(obj)
	if err != nil {
		return [3]byte{}, err
	}
	return EncodeVal(KindCodeObject, uint32(idx)), nil
}

// parseAtomicVarTerm parses one of the variable-term forms in spec.md
// §4.4, without following deref links (that's parseVarTermChain's job).
func (p *parser) parseAtomicVarTerm() (varBytes []byte, isVal bool, err error) {
	p.skipSpace()
	if p.atEnd() {
		return nil, false, errAt(p.pos, "unexpected end of expression")
	}
	c := p.peek()
	switch {
	case c == '%':
		return p.parseConstPoolToken()
	case c == '(':
		p.pos++
		val, err := p.compileToVal(isParenEnd)
		if err != nil {
			return nil, false, err
		}
		if err := p.expectByte(')'); err != nil {
			return nil, false, err
		}
		return val[:], true, nil
	case isDigit(c) || (c == '.' && isDigit(p.peekAt(1))):
		return p.parseNumberToken()
	case isIdentStart(c):
		return p.parseIdentTerm()
	default:
		return nil, false, errAt(p.pos, "unexpected character %q", c)
	}
}

func (p *parser) parseConstPoolToken() ([]byte, bool, error) {
	start := p.pos
	p.pos++ // '%'
	digStart := p.pos
	for !p.atEnd() && isDigit(p.peek()) {
		p.pos++
	}
	if p.pos == digStart || p.peek() != '%' {
		return nil, false, errAt(start, "malformed constant token")
	}
	n, err := strconv.Atoi(p.src[digStart:p.pos])
	if err != nil {
		return nil, false, errAt(start, "malformed constant index")
	}
	p.pos++ // closing '%'
	if n >= maxVal22 {
		return nil, false, errAt(start, "constant-pool index too large")
	}
	val := EncodeVal(KindConstPool, uint32(n))
	return val[:], true, nil
}

func (p *parser) parseNumberToken() ([]byte, bool, error) {
	start := p.pos
	for !p.atEnd() && isDigit(p.peek()) {
		p.pos++
	}
	isFloat := false
	if p.peek() == '.' && isDigit(p.peekAt(1)) {
		isFloat = true
		p.pos++
		for !p.atEnd() && isDigit(p.peek()) {
			p.pos++
		}
	}
	text := p.src[start:p.pos]
	if !isFloat {
		n, err := strconv.ParseUint(text, 10, 64)
		if err == nil {
			if val, ok := literalVal(uint32(n)); ok {
				return val[:], true, nil
			}
		}
	}
	// Either a float token or an integer too large for a 22-bit literal:
	// both live in the constant pool as a double (spec.md §4.4's make_val
	// only documents the %N%/decimal-literal/recurse-as-expression cases;
	// a bare numeric token that can't be a 22-bit literal int is resolved
	// here the same way %N% substitution resolves string/hex literals,
	// by interning it directly — see DESIGN.md).
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, false, errAt(start, "malformed numeric literal")
	}
	idx, err := p.c.pool.InternDouble(f)
	if err != nil {
		return nil, false, err
	}
	val := EncodeVal(KindConstPool, uint32(idx))
	return val[:], true, nil
}

func (p *parser) parseIdentTerm() ([]byte, bool, error) {
	name := p.readIdent()
	if name == "pi" {
		idx, err := p.c.pool.InternDouble(math.Pi)
		if err != nil {
			return nil, false, err
		}
		val := EncodeVal(KindConstPool, uint32(idx))
		return val[:], true, nil
	}
	p.skipSpace()
	if p.peek() == '(' {
		return p.parseCallTerm(name)
	}
	return p.c.classifyReadIdent(p, name)
}

func (p *parser) parseCallTerm(name string) ([]byte, bool, error) {
	p.pos++ // '('
	var args [][3]byte
	p.skipSpace()
	if p.peek() != ')' {
		for {
			val, err := p.compileToVal(isArgEnd)
			if err != nil {
				return nil, false, err
			}
			args = append(args, val)
			p.skipSpace()
			if p.consumeByte(',') {
				continue
			}
			break
		}
	}
	if err := p.expectByte(')'); err != nil {
		return nil, false, err
	}

	var tag Opcode
	var id uint16
	if sid, ok := p.c.assets.LookupScript(name); ok {
		tag, id = TermScript, uint16(sid)
	} else if fid, ok := internalFuncs[name]; ok {
		tag, id = TermInternalFunc, fid
	} else {
		return nil, false, errAt(p.pos, "unrecognized identifier %q in call position", name)
	}

	out := []byte{byte(tag), byte(id >> 8), byte(id)}
	out = append(out, byte(len(args)))
	for _, a := range args {
		out = appendVal(out, a)
	}
	return out, false, nil
}

// classifyReadIdent resolves a bare identifier used as a read-context
// variable term, per the precedence documented in SPEC_FULL.md (asset name
// first, since §4.4 gives it its own full precedence chain; then game
// value, then instance variable, then field — mirroring _getVarType's
// order for the cases it does cover).
func (c *Compiler) classifyReadIdent(p *parser, name string) ([]byte, bool, error) {
	if id, ok := lookupAsset(c.assets, name); ok {
		val, ok := literalVal(id)
		if !ok {
			return nil, false, errAt(p.pos, "asset id too large")
		}
		return val[:], true, nil
	}
	if gvID, ok := gameValues[name]; ok {
		idxVal, err := p.parseOptionalArrayIndex()
		if err != nil {
			return nil, false, err
		}
		out := []byte{byte(TermGameValue), gvID}
		out = appendVal(out, idxVal)
		return out, false, nil
	}
	if ivID, ok := instanceVars[name]; ok {
		hasIndex := p.peekIndexBracket()
		if name == instanceVarAlarm && !hasIndex {
			return nil, false, errAt(p.pos, "alarm requires an array index")
		}
		if name != instanceVarAlarm && hasIndex {
			return nil, false, errAt(p.pos, "instance variable %q does not take an array index", name)
		}
		idxVal, err := p.parseOptionalArrayIndex()
		if err != nil {
			return nil, false, err
		}
		out := []byte{byte(TermInstanceVar), ivID}
		out = appendVal(out, idxVal)
		return out, false, nil
	}
	fieldID, err := c.pool.InternField(name)
	if err != nil {
		return nil, false, err
	}
	if p.peekIndexBracket() {
		idxVal, err := p.parseOptionalArrayIndex()
		if err != nil {
			return nil, false, err
		}
		out := []byte{byte(TermArray), byte(fieldID >> 8), byte(fieldID)}
		out = appendVal(out, idxVal)
		return out, false, nil
	}
	return []byte{byte(TermField), byte(fieldID >> 8), byte(fieldID)}, false, nil
}

func (p *parser) peekIndexBracket() bool {
	save := p.pos
	p.skipSpace()
	ok := p.peek() == '['
	p.pos = save
	return ok
}

// parseOptionalArrayIndex returns the index VAL for a "[expr]" suffix if
// present, or a literal-0 VAL (no index) otherwise.
func (p *parser) parseOptionalArrayIndex() ([3]byte, error) {
	p.skipSpace()
	if p.peek() != '[' {
		val, _ := literalVal(0)
		return val, nil
	}
	p.pos++
	val, err := p.compileToVal(isBracketEnd)
	if err != nil {
		return [3]byte{}, err
	}
	if err := p.expectByte(']'); err != nil {
		return [3]byte{}, err
	}
	return val, nil
}

// reshape implements spec.md §4.4's precedence reshaping: wherever a
// lower-precedence operator is followed by a higher-precedence one, the
// higher-precedence run is extracted, compiled recursively, and spliced
// back as a single element (a bare VAL directly if the run folds to one,
// otherwise a reference to a newly pool-registered code object).
func (c *Compiler) reshape(elems []element) ([]element, error) {
	if len(elems) <= 1 {
		return elems, nil
	}
	for {
		changedThisPass := false
		for i := 0; i+1 < len(elems); i++ {
			if precedence(elems[i].op) >= precedence(elems[i+1].op) {
				continue
			}
			j := i + 1
			for j+1 < len(elems) && precedence(elems[j].op) > precedence(elems[i].op) {
				j++
			}
			sub := append([]element{}, elems[i+1:j+1]...)
			subFollowOp := sub[len(sub)-1].op
			sub[len(sub)-1].op = OpStop
			sub, err := c.reshape(sub)
			if err != nil {
				return nil, err
			}
			sub = foldConstants(sub)
			sub = optimizeUnary(sub)

			val, err := c.wrapAsVal(sub)
			if err != nil {
				return nil, err
			}
			merged := make([]element, 0, len(elems)-(j-i))
			merged = append(merged, elems[:i+1]...)
			merged = append(merged, element{varBytes: val[:], varIsVal: true, op: subFollowOp})
			merged = append(merged, elems[j+1:]...)
			elems = merged
			changedThisPass = true
			break
		}
		if !changedThisPass {
			break
		}
	}
	return elems, nil
}

// foldConstants implements spec.md §4.4's constant folding: adjacent
// literal-int VALs joined by an arithmetic operator collapse into one,
// repeatedly, using unsigned 32-bit arithmetic.
func foldConstants(elems []element) []element {
	for {
		folded := false
		for i := 0; i+1 < len(elems); i++ {
			a, b := elems[i], elems[i+1]
			if len(a.mods) != 0 || len(b.mods) != 0 || !a.varIsVal || !b.varIsVal {
				continue
			}
			av, aIsLit := isLiteralInt(toVal3(a.varBytes))
			bv, bIsLit := isLiteralInt(toVal3(b.varBytes))
			if !aIsLit || !bIsLit {
				continue
			}
			result, ok := foldOp(a.op, av, bv)
			if !ok {
				continue
			}
			newVal, ok := literalVal(result)
			if !ok {
				continue
			}
			merged := make([]element, 0, len(elems)-1)
			merged = append(merged, elems[:i]...)
			merged = append(merged, element{varBytes: newVal[:], varIsVal: true, op: b.op})
			merged = append(merged, elems[i+2:]...)
			elems = merged
			folded = true
			break
		}
		if !folded {
			break
		}
	}
	return elems
}

func foldOp(op BinOp, a, b uint32) (uint32, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case OpMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case OpShl:
		return a << (b & 31), true
	case OpShr:
		return a >> (b & 31), true
	default:
		return 0, false
	}
}

// optimizeUnaryMods implements spec.md §4.4's unary-modifier optimization:
// adjacent negate/negate and bitwise-not/bitwise-not pairs cancel; runs of
// logical-not collapse by parity to one (odd) or two (even) entries.
func optimizeUnaryMods(mods []UnaryOp) []UnaryOp {
	var out []UnaryOp
	i := 0
	for i < len(mods) {
		m := mods[i]
		if m == UnaryLogicalNot {
			j := i
			for j < len(mods) && mods[j] == UnaryLogicalNot {
				j++
			}
			if (j-i)%2 == 1 {
				out = append(out, UnaryLogicalNot)
			} else {
				out = append(out, UnaryLogicalNot, UnaryLogicalNot)
			}
			i = j
			continue
		}
		if i+1 < len(mods) && mods[i+1] == m && (m == UnaryNegate || m == UnaryBitwiseNot) {
			i += 2
			continue
		}
		out = append(out, m)
		i++
	}
	return out
}

func optimizeUnary(elems []element) []element {
	for i := range elems {
		elems[i].mods = optimizeUnaryMods(elems[i].mods)
	}
	return elems
}

// emitElements implements spec.md §4.4 "Emission": var bytes, then
// modifiers in reverse of encountered order, then the operator byte.
func emitElements(elems []element) []byte {
	var out []byte
	for _, e := range elems {
		out = append(out, e.varBytes...)
		for i := len(e.mods) - 1; i >= 0; i-- {
			out = append(out, byte(e.mods[i]))
		}
		out = append(out, byte(e.op))
	}
	return out
}
