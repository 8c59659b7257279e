package analysis

// ScopeStack maps identifiers to categories with lexical shadowing.
// Frame 0 is the global scope and is never popped.
type ScopeStack struct {
	frames []map[string]Category
}

// NewScopeStack returns a stack holding only the global scope.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{frames: []map[string]Category{{}}}
}

// Enter pushes an empty scope.
func (s *ScopeStack) Enter() {
	s.frames = append(s.frames, map[string]Category{})
}

// Exit pops the innermost scope. The global scope is never removed.
func (s *ScopeStack) Exit() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of frames, always at least 1.
func (s *ScopeStack) Depth() int {
	return len(s.frames)
}

// DeclareIfAbsent records name in the innermost scope unless it is already declared
// there. The first declaration wins, including an UnknownIdentifier placeholder.
// It reports whether the scope changed.
func (s *ScopeStack) DeclareIfAbsent(name string, cat Category) bool {
	top := s.frames[len(s.frames)-1]

	if _, ok := top[name]; ok {
		return false
	}

	top[name] = cat

	return true
}

// ReplacePlaceholder overwrites an UnknownIdentifier entry for name in the
// innermost scope with cat. It reports whether an entry was replaced.
func (s *ScopeStack) ReplacePlaceholder(name string, cat Category) bool {
	top := s.frames[len(s.frames)-1]

	if existing, ok := top[name]; !ok || existing != UnknownIdentifier || cat == UnknownIdentifier {
		return false
	}

	top[name] = cat

	return true
}

// Resolve looks name up from the innermost scope outwards.
func (s *ScopeStack) Resolve(name string) (Category, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if cat, ok := s.frames[i][name]; ok {
			return cat, true
		}
	}

	return 0, false
}
