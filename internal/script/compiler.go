// compiler.go - Compiler entry point and shared token scanning helpers

package script

import "strings"

// Compiler lowers preprocessed GM8-dialect source to bytecode. It owns no
// state of its own beyond the pool and asset resolver it was built with;
// every compile call gets a fresh parser, mirroring the teacher's
// assembler.Assembler (a small stateful struct rebuilt per assembly unit
// rather than a long-lived global).
type Compiler struct {
	pool   *Pool
	assets AssetResolver
}

func NewCompiler(pool *Pool, assets AssetResolver) *Compiler {
	return &Compiler{pool: pool, assets: assets}
}

// CompileCode compiles a full top-level script or event action body
// (spec.md §4.5 "compile_code"): preprocess, repeatedly compile_line, EXIT.
func (c *Compiler) CompileCode(source string) (CodeObject, error) {
	pre, err := preprocess(c.pool, source, false)
	if err != nil {
		return CodeObject{}, err
	}
	return c.compileCodeBody(pre)
}

func (c *Compiler) compileCodeBody(pre string) (CodeObject, error) {
	p := &parser{src: pre, c: c}
	var out []byte
	for {
		p.skipSpace()
		if p.atEnd() {
			break
		}
		stmt, err := p.compileLine()
		if err != nil {
			return CodeObject{}, err
		}
		out = append(out, stmt...)
	}
	out = append(out, byte(OpExit))
	return CodeObject{Bytecode: out, IsExpression: false}, nil
}

// CompileExpression compiles a standalone expression (used by tests and by
// §8's round-trip/constant-folding testable properties); it runs the same
// preprocessing pass as CompileCode.
func (c *Compiler) CompileExpression(source string) (CodeObject, error) {
	pre, err := preprocess(c.pool, source, false)
	if err != nil {
		return CodeObject{}, err
	}
	p := &parser{src: pre, c: c}
	elems, err := p.parseElements(isExprTerminator)
	if err != nil {
		return CodeObject{}, err
	}
	elems, err = c.reshape(elems)
	if err != nil {
		return CodeObject{}, err
	}
	elems = foldConstants(elems)
	elems = optimizeUnary(elems)
	return CodeObject{Bytecode: emitElements(elems), IsExpression: true}, nil
}

// parser walks a preprocessed source string with an explicit byte cursor
// (spec.md §9's redesign note: no raw-pointer/linked-list front end).
type parser struct {
	src string
	pos int
	c   *Compiler
}

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func (p *parser) skipSpace() {
	for !p.atEnd() {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			p.pos++
			continue
		}
		break
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// readIdent consumes an identifier at the cursor. Caller must have checked
// isIdentStart(p.peek()).
func (p *parser) readIdent() string {
	start := p.pos
	for !p.atEnd() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// consumeKeyword consumes kw at the cursor if it is present as a whole
// identifier (not a prefix of a longer one), returning true on success.
func (p *parser) consumeKeyword(kw string) bool {
	save := p.pos
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], kw) {
		end := p.pos + len(kw)
		if end >= len(p.src) || !isIdentChar(p.src[end]) {
			p.pos = end
			return true
		}
	}
	p.pos = save
	return false
}

func (p *parser) expectByte(c byte) error {
	p.skipSpace()
	if p.atEnd() || p.src[p.pos] != c {
		return errAt(p.pos, "expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) consumeByte(c byte) bool {
	p.skipSpace()
	if !p.atEnd() && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func isExprTerminator(c byte) bool {
	return c == ';' || c == 0
}
