package analysis

import "strings"

// PathSeparator joins namespace segments and names.
const PathSeparator = "::"

// NamespacePath is the ordered list of entered namespace segments.
type NamespacePath struct {
	segments []string
}

// Push appends a segment.
func (p *NamespacePath) Push(segment string) {
	p.segments = append(p.segments, segment)
}

// Pop removes the innermost segment and returns it.
func (p *NamespacePath) Pop() (string, bool) {
	if len(p.segments) == 0 {
		return "", false
	}

	last := p.segments[len(p.segments)-1]
	p.segments = p.segments[:len(p.segments)-1]

	return last, true
}

// Segments returns a copy of the current path.
func (p *NamespacePath) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Len returns the number of segments.
func (p *NamespacePath) Len() int {
	return len(p.segments)
}

// Qualify prefixes name with the current path. With an empty path the name is returned unchanged.
func (p *NamespacePath) Qualify(name string) string {
	return qualify(p.segments, name)
}

// qualify joins ns and name. A path ending in an empty segment is global.
func qualify(ns []string, name string) string {
	if len(ns) == 0 || ns[len(ns)-1] == "" {
		return name
	}

	return strings.Join(ns, PathSeparator) + PathSeparator + name
}
