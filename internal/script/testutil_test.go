package script

// fakeResolver is an AssetResolver with no live entries, used by tests that
// only need bare identifiers to fall through to game values / instance vars
// / fields (spec.md §4.4's precedence chain).
type fakeResolver struct{}

func (fakeResolver) LookupObject(string) (uint32, bool)     { return 0, false }
func (fakeResolver) LookupSprite(string) (uint32, bool)     { return 0, false }
func (fakeResolver) LookupSound(string) (uint32, bool)      { return 0, false }
func (fakeResolver) LookupBackground(string) (uint32, bool) { return 0, false }
func (fakeResolver) LookupPath(string) (uint32, bool)       { return 0, false }
func (fakeResolver) LookupFont(string) (uint32, bool)       { return 0, false }
func (fakeResolver) LookupTimeline(string) (uint32, bool)   { return 0, false }
func (fakeResolver) LookupScript(string) (uint32, bool)     { return 0, false }
func (fakeResolver) LookupRoom(string) (uint32, bool)       { return 0, false }

func newTestCompiler() *Compiler {
	return NewCompiler(NewPool(), fakeResolver{})
}
