// stmt.go - statement compiler (C7): blocks, control flow, assignment.

package script

// compileLine compiles one statement (spec.md §4.5 "compile_line") and
// returns its bytecode. The cursor is left just past the statement,
// including its trailing ';' where one is required.
func (p *parser) compileLine() ([]byte, error) {
	p.skipSpace()
	switch {
	case p.peek() == '{':
		return p.compileBlock()
	case p.consumeKeyword("exit"):
		return p.finishSimpleStmt([]byte{byte(OpExit)})
	case p.consumeKeyword("var"):
		return p.compileVarDecl()
	case p.consumeKeyword("if"):
		return p.compileIf()
	case p.consumeKeyword("for"):
		return p.compileFor()
	case p.consumeKeyword("with"):
		return p.compileWith()
	case p.consumeKeyword("return"):
		return p.compileReturn()
	case p.consumeKeyword("while"):
		return nil, &ErrUnsupported{Feature: "while"}
	case p.consumeKeyword("do"):
		return nil, &ErrUnsupported{Feature: "do-until"}
	case p.consumeKeyword("repeat"):
		return nil, &ErrUnsupported{Feature: "repeat"}
	case p.consumeByte(';'):
		return nil, nil // empty statement
	default:
		return p.compileAssignOrCall()
	}
}

// compileBlock compiles a brace-delimited sequence of statements; spec.md
// §4.5 treats "{ ... }" as a plain statement list with no scoping effect
// of its own.
func (p *parser) compileBlock() ([]byte, error) {
	if err := p.expectByte('{'); err != nil {
		return nil, err
	}
	var out []byte
	for {
		p.skipSpace()
		if p.consumeByte('}') {
			break
		}
		if p.atEnd() {
			return nil, errAt(p.pos, "unterminated block")
		}
		stmt, err := p.compileLine()
		if err != nil {
			return nil, err
		}
		out = append(out, stmt...)
	}
	return out, nil
}

func (p *parser) finishSimpleStmt(body []byte) ([]byte, error) {
	p.skipSpace()
	p.consumeByte(';')
	return body, nil
}

// compileVarDecl compiles a "var a, b, c;" local-declaration statement
// (spec.md §4.5) to a single BIND_VARS instruction.
func (p *parser) compileVarDecl() ([]byte, error) {
	var fieldIDs []int
	for {
		p.skipSpace()
		if !isIdentStart(p.peek()) {
			return nil, errAt(p.pos, "expected identifier in var declaration")
		}
		name := p.readIdent()
		id, err := p.c.pool.InternField(name)
		if err != nil {
			return nil, err
		}
		fieldIDs = append(fieldIDs, id)
		p.skipSpace()
		if p.consumeByte(',') {
			continue
		}
		break
	}
	p.consumeByte(';')
	out := []byte{byte(OpBindVars), byte(len(fieldIDs))}
	for _, id := range fieldIDs {
		out = append(out, byte(id>>8), byte(id))
	}
	return out, nil
}

// compileIf compiles "if cond stmt [else stmt]" using TEST_VAL_NOT and a
// forward jump exactly as spec.md §4.5 lays out: TEST_VAL_NOT skips the
// then-branch when the condition is false, and (when an else exists) the
// then-branch ends with a jump that skips the else-branch.
func (p *parser) compileIf() ([]byte, error) {
	condVal, err := p.compileToVal(isStmtHeadStop)
	if err != nil {
		return nil, err
	}
	p.consumeKeyword("then")
	thenBody, err := p.compileLine()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	hasElse := p.consumeKeyword("else")
	var elseBody []byte
	if hasElse {
		elseBody, err = p.compileLine()
		if err != nil {
			return nil, err
		}
	}

	var out []byte
	out = append(out, byte(OpTestValNot))
	out = appendVal(out, condVal)

	if !hasElse {
		jmp, err := encodeForwardJump(len(thenBody))
		if err != nil {
			return nil, err
		}
		out = append(out, jmp...)
		out = append(out, thenBody...)
		return out, nil
	}

	skipElseJump, err := encodeForwardJump(len(elseBody))
	if err != nil {
		return nil, err
	}
	thenFull := append(append([]byte{}, thenBody...), skipElseJump...)
	jmp, err := encodeForwardJump(len(thenFull))
	if err != nil {
		return nil, err
	}
	out = append(out, jmp...)
	out = append(out, thenFull...)
	out = append(out, elseBody...)
	return out, nil
}

// encodeForwardJump builds a JUMP (or JUMP_LONG, for bodies too large for
// the 8-bit form) that skips bodyLen bytes of already-compiled body placed
// immediately after it.
func encodeForwardJump(bodyLen int) ([]byte, error) {
	if bodyLen <= 0xFF {
		return []byte{byte(OpJump), byte(bodyLen)}, nil
	}
	if bodyLen > 1<<24-1 {
		return nil, errAt(0, "jump target too far")
	}
	return []byte{byte(OpJumpLong), byte(bodyLen >> 16), byte(bodyLen >> 8), byte(bodyLen)}, nil
}

// encodeBackwardJump builds a JUMP_BACK (or JUMP_BACK_LONG) that rewinds
// distance bytes, landing back at the start of the loop test.
func encodeBackwardJump(distance int) ([]byte, error) {
	if distance <= 0xFF {
		return []byte{byte(OpJumpBack), byte(distance)}, nil
	}
	if distance > 1<<24-1 {
		return nil, errAt(0, "jump target too far")
	}
	return []byte{byte(OpJumpBackLong), byte(distance >> 16), byte(distance >> 8), byte(distance)}, nil
}

// compileFor compiles "for (init; cond; step) body" (spec.md §4.5) as
// init, then a loop of [TEST_VAL_NOT cond, JUMP past-body-and-step-and-
// back-jump, body, step, JUMP_BACK to the test].
func (p *parser) compileFor() ([]byte, error) {
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	init, err := p.compileLine()
	if err != nil {
		return nil, err
	}
	condVal, err := p.compileToVal(isStmtHeadStop)
	if err != nil {
		return nil, err
	}
	p.consumeByte(';')
	step, err := p.compileAssignOrCallNoSemi()
	if err != nil {
		return nil, err
	}
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	body, err := p.compileLine()
	if err != nil {
		return nil, err
	}

	bodyAndStep := append(append([]byte{}, body...), step...)

	testHeader := []byte{byte(OpTestValNot)}
	testHeader = appendVal(testHeader, condVal)

	fwdJump, backJump, err := encodeForLoopJumps(len(bodyAndStep))
	if err != nil {
		return nil, err
	}

	out := append([]byte{}, init...)
	out = append(out, testHeader...)
	out = append(out, fwdJump...)
	out = append(out, bodyAndStep...)
	out = append(out, backJump...)
	return out, nil
}

// encodeForLoopJumps builds the forward JUMP that skips past the body, the
// step, and the backward jump itself, and the JUMP_BACK that rewinds past
// the forward jump, TEST_VAL_NOT, the body, and the step, landing back on
// TEST_VAL_NOT (CodeRunnerCompiling.cpp:377-407).
//
// Both offsets are biased by the backward jump's own instruction length
// (2 bytes short form, 4 long form): the forward jump must land past it, not
// on it, and the backward jump's distance must cover its own bytes since the
// VM computes the landing site from the program counter after decoding the
// jump. This is why jmpBytes starts at bodyAndStepLen+2 and gains another +2
// when promoted to long form, and why the backward operand adds +6 (short)
// or +8 (long): +4 for TEST_VAL_NOT's fixed opcode+VAL length, plus the
// forward jump's own length (2 or 4).
//
// For loops use their own long-form cutoff (250, not the generic 0xFF used
// by encodeForwardJump/encodeBackwardJump): jmpBytes is checked against 250
// while still in short-jump terms, specifically so the short backward
// operand (jmpBytes+6) never overflows a byte.
func encodeForLoopJumps(bodyAndStepLen int) (fwd, back []byte, err error) {
	const forLongCutoff = 250

	jmpBytes := bodyAndStepLen + 2
	longJumps := jmpBytes >= forLongCutoff

	if longJumps {
		jmpBytes += 2
		if jmpBytes > 1<<24-1 {
			return nil, nil, errAt(0, "jump target too far")
		}
		fwd = []byte{byte(OpJumpLong), byte(jmpBytes >> 16), byte(jmpBytes >> 8), byte(jmpBytes)}
		backBytes := jmpBytes + 8
		back = []byte{byte(OpJumpBackLong), byte(backBytes >> 16), byte(backBytes >> 8), byte(backBytes)}
		return fwd, back, nil
	}

	fwd = []byte{byte(OpJump), byte(jmpBytes)}
	backBytes := jmpBytes + 6
	back = []byte{byte(OpJumpBack), byte(backBytes)}
	return fwd, back, nil
}

// compileWith compiles "with (expr) stmt" (spec.md §4.5) as
// CHANGE_CONTEXT expr, body_len, body, REVERT_CONTEXT.
func (p *parser) compileWith() ([]byte, error) {
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	val, err := p.compileToVal(isParenEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	body, err := p.compileLine()
	if err != nil {
		return nil, err
	}
	if len(body) > 1<<24-1 {
		return nil, errAt(p.pos, "with-body too large")
	}
	out := []byte{byte(OpChangeContext)}
	out = appendVal(out, val)
	n := len(body)
	out = append(out, byte(n>>16), byte(n>>8), byte(n))
	out = append(out, body...)
	out = append(out, byte(OpRevertContext))
	return out, nil
}

// compileReturn compiles "return expr;" to RETURN VAL.
func (p *parser) compileReturn() ([]byte, error) {
	val, err := p.compileToVal(isExprTerminator)
	if err != nil {
		return nil, err
	}
	p.consumeByte(';')
	out := []byte{byte(OpReturn)}
	return appendVal(out, val), nil
}

func isStmtHeadStop(c byte) bool {
	return c == ';' || c == 0
}

// compileAssignOrCall dispatches a bare statement that is neither a
// keyword form nor a block: either an assignment through a (possibly
// deref-chained) variable target, or a bare call used for side effects.
func (p *parser) compileAssignOrCall() ([]byte, error) {
	out, err := p.compileAssignOrCallNoSemi()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	p.consumeByte(';')
	return out, nil
}

// compileAssignOrCallNoSemi is compileAssignOrCall without consuming a
// trailing ';' (used by for's step clause, which is comma/paren-delimited
// rather than semicolon-terminated).
func (p *parser) compileAssignOrCallNoSemi() ([]byte, error) {
	p.skipSpace()
	if !isIdentStart(p.peek()) {
		return nil, errAt(p.pos, "expected statement")
	}
	name := p.readIdent()
	p.skipSpace()
	if p.peek() == '(' {
		return p.compileCallStatement(name)
	}
	return p.compileAssignment(name)
}

// compileCallStatement compiles "name(args);" used as a statement in its
// own right, to the top-level RUN_SCRIPT/RUN_INTERNAL_FUNC instruction
// (spec.md §6) rather than the TermScript/TermInternalFunc tag used when a
// call appears as a value inside an expression.
func (p *parser) compileCallStatement(name string) ([]byte, error) {
	p.pos++ // '('
	var args [][3]byte
	p.skipSpace()
	if p.peek() != ')' {
		for {
			val, err := p.compileToVal(isArgEnd)
			if err != nil {
				return nil, err
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
		return nil, err
	}

	var op Opcode
	var id uint16
	if sid, ok := p.c.assets.LookupScript(name); ok {
		op, id = OpRunScript, uint16(sid)
	} else if fid, ok := internalFuncs[name]; ok {
		op, id = OpRunInternalFunc, fid
	} else {
		return nil, errAt(p.pos, "unrecognized identifier %q in call position", name)
	}

	out := []byte{byte(op), byte(id >> 8), byte(id), byte(len(args))}
	for _, a := range args {
		out = appendVal(out, a)
	}
	return out, nil
}

// compileAssignment compiles "target set_method expr;" (spec.md §4.5
// "Assignment"): an optional deref chain, then a field/array/instance-var/
// game-value target, the set-method operator, and the RHS VAL.
func (p *parser) compileAssignment(name string) ([]byte, error) {
	var prefix []byte
	for {
		if !p.lookingAtDerefDot() {
			break
		}
		val, err := p.c.classifyAssignTargetAsDerefLHS(p, name)
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, byte(OpDeref))
		prefix = appendVal(prefix, val)
		p.skipSpace()
		p.consumeByte('.')
		p.skipSpace()
		if !isIdentStart(p.peek()) {
			return nil, errAt(p.pos, "expected identifier after '.'")
		}
		name = p.readIdent()
	}

	setBody, err := p.c.compileSetTarget(p, name)
	if err != nil {
		return nil, err
	}

	out := append([]byte{}, prefix...)
	out = append(out, setBody...)
	if len(prefix) > 0 {
		out = append(out, byte(OpResetDeref))
	}
	return out, nil
}

// classifyAssignTargetAsDerefLHS resolves name as a deref-chain LHS read
// in classifyReadIdent's order (asset name as a literal id, then game value,
// instance variable, field), but without the call form or an array index;
// every non-asset read is wrapped as a code object.
func (c *Compiler) classifyAssignTargetAsDerefLHS(p *parser, name string) ([3]byte, error) {
	if id, ok := lookupAsset(c.assets, name); ok {
		val, ok := literalVal(id)
		if !ok {
			return [3]byte{}, errAt(p.pos, "asset id too large")
		}
		return val, nil
	}
	if gvID, ok := gameValues[name]; ok {
		idx, _ := literalVal(0)
		bc := append([]byte{byte(TermGameValue), gvID}, appendVal(nil, idx)...)
		bc = append(bc, byte(OpStop))
		obj := CodeObject{Bytecode: bc, IsExpression: true}
		i, err := c.pool.AddCodeObject(obj)
		if err != nil {
			return [3]byte{}, err
		}
		return EncodeVal(KindCodeObject, uint32(i)), nil
	}
	if ivID, ok := instanceVars[name]; ok {
		idx, _ := literalVal(0)
		bc := append([]byte{byte(TermInstanceVar), ivID}, appendVal(nil, idx)...)
		bc = append(bc, byte(OpStop))
		obj := CodeObject{Bytecode: bc, IsExpression: true}
		i, err := c.pool.AddCodeObject(obj)
		if err != nil {
			return [3]byte{}, err
		}
		return EncodeVal(KindCodeObject, uint32(i)), nil
	}
	fieldID, err := c.pool.InternField(name)
	if err != nil {
		return [3]byte{}, err
	}
	bc := []byte{byte(TermField), byte(fieldID >> 8), byte(fieldID), byte(OpStop)}
	obj := CodeObject{Bytecode: bc, IsExpression: true}
	i, err := c.pool.AddCodeObject(obj)
	if err != nil {
		return [3]byte{}, err
	}
	return EncodeVal(KindCodeObject, uint32(i)), nil
}

// compileSetTarget resolves the final assignment target per spec.md §4.5's
// _getVarType order (game value, then instance variable, then field/array)
// and emits the matching SET_* instruction.
func (c *Compiler) compileSetTarget(p *parser, name string) ([]byte, error) {
	hasIndex := p.peekIndexBracket()

	if gvID, ok := gameValues[name]; ok {
		if hasIndex {
			return nil, errAt(p.pos, "game value %q does not take an array index", name)
		}
		method, err := p.readSetMethod()
		if err != nil {
			return nil, err
		}
		val, err := p.compileToVal(isStmtHeadStop)
		if err != nil {
			return nil, err
		}
		out := []byte{byte(OpSetGameValue), gvID, byte(method)}
		return appendVal(out, val), nil
	}

	if ivID, ok := instanceVars[name]; ok {
		if name == instanceVarAlarm && !hasIndex {
			return nil, errAt(p.pos, "alarm requires an array index")
		}
		if name != instanceVarAlarm && hasIndex {
			return nil, errAt(p.pos, "instance variable %q does not take an array index", name)
		}
		idxVal, err := p.parseOptionalArrayIndex()
		if err != nil {
			return nil, err
		}
		method, err := p.readSetMethod()
		if err != nil {
			return nil, err
		}
		val, err := p.compileToVal(isStmtHeadStop)
		if err != nil {
			return nil, err
		}
		out := []byte{byte(OpSetInstanceVar), ivID}
		out = appendVal(out, idxVal)
		out = append(out, byte(method))
		return appendVal(out, val), nil
	}

	fieldID, err := c.pool.InternField(name)
	if err != nil {
		return nil, err
	}
	if hasIndex {
		idxVal, err := p.parseOptionalArrayIndex()
		if err != nil {
			return nil, err
		}
		method, err := p.readSetMethod()
		if err != nil {
			return nil, err
		}
		val, err := p.compileToVal(isStmtHeadStop)
		if err != nil {
			return nil, err
		}
		out := appendVal([]byte{byte(OpSetArray)}, idxVal)
		out = append(out, byte(fieldID>>8), byte(fieldID))
		out = append(out, byte(method))
		return appendVal(out, val), nil
	}
	method, err := p.readSetMethod()
	if err != nil {
		return nil, err
	}
	val, err := p.compileToVal(isStmtHeadStop)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(OpSetField), byte(fieldID >> 8), byte(fieldID), byte(method)}
	return appendVal(out, val), nil
}

// readSetMethod reads one of the eight assignment-operator spellings at
// the cursor.
func (p *parser) readSetMethod() (SetMethod, error) {
	p.skipSpace()
	if p.atEnd() {
		return 0, errAt(p.pos, "expected assignment operator")
	}
	method, n, ok := parseSetMethod(p.src[p.pos:])
	if !ok {
		return 0, errAt(p.pos, "expected assignment operator")
	}
	p.pos += n
	return method, nil
}
