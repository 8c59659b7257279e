package analysis

import (
	"slices"
	"strconv"
	"strings"

	"github.com/silex-lang/silex/env"
)

// Receiver names the type a function is defined on.
type Receiver string

// NoReceiver is the bucket for free functions.
const NoReceiver Receiver = ""

// Arityset is a sorted set of accepted parameter counts. Overloads differ only in arity.
type Arityset []int

// Contains reports whether n is an accepted arity.
func (a Arityset) Contains(n int) bool {
	_, ok := slices.BinarySearch(a, n)

	return ok
}

// With returns a new set that also contains n. The receiver is not modified.
func (a Arityset) With(n int) Arityset {
	i, ok := slices.BinarySearch(a, n)
	if ok {
		return a
	}

	return slices.Insert(slices.Clip(slices.Clone(a)), i, n)
}

// Union returns the arities present in a or b.
func (a Arityset) Union(b Arityset) Arityset {
	out := slices.Clone(a)
	for _, n := range b {
		out = out.With(n)
	}

	return out
}

func (a Arityset) String() string {
	parts := make([]string, len(a))
	for i, n := range a {
		parts[i] = strconv.Itoa(n)
	}

	return strings.Join(parts, "|")
}

// Registry holds the functions known before a document is analyzed.
// It is read-only once built and may be shared between concurrent passes;
// per-document declarations go into an Overlay.
type Registry struct {
	funcs map[Receiver]map[string]Arityset
	// namespaces holds every namespace prefix of a registered free function, joined with "::".
	namespaces map[string]struct{}
}

// NewRegistry builds a registry from an environment. A nil environment yields an empty registry.
func NewRegistry(e *env.Environment) *Registry {
	r := &Registry{
		funcs:      make(map[Receiver]map[string]Arityset),
		namespaces: make(map[string]struct{}),
	}

	if e == nil {
		return r
	}

	for _, f := range e.Functions {
		r.Register(Receiver(f.Receiver), f.Namespace, f.Name, f.Params)
	}

	return r
}

// Register adds arity to the qualified name under recv.
// Only meant to be called while building the registry.
func (r *Registry) Register(recv Receiver, ns []string, name string, arity int) {
	bucket, ok := r.funcs[recv]
	if !ok {
		bucket = make(map[string]Arityset)
		r.funcs[recv] = bucket
	}

	key := qualify(ns, name)
	bucket[key] = bucket[key].With(arity)

	if recv == NoReceiver {
		addNamespaces(r.namespaces, ns)
	}
}

// Lookup returns the arity set of the qualified name under recv.
func (r *Registry) Lookup(recv Receiver, ns []string, name string) (Arityset, bool) {
	a, ok := r.funcs[recv][qualify(ns, name)]

	return a, ok
}

// LookupMethod searches every receiver bucket for a method called name and
// returns the union of the arities found.
func (r *Registry) LookupMethod(name string) (Arityset, bool) {
	var (
		out   Arityset
		found bool
	)

	for recv, bucket := range r.funcs {
		if recv == NoReceiver {
			continue
		}

		if a, ok := bucket[name]; ok {
			out = out.Union(a)
			found = true
		}
	}

	return out, found
}

// HasNamespace reports whether any free function is registered under the given path prefix.
func (r *Registry) HasNamespace(segments ...string) bool {
	if len(segments) == 0 {
		return false
	}

	_, ok := r.namespaces[strings.Join(segments, PathSeparator)]

	return ok
}

// Len returns the number of distinct (receiver, qualified name) entries.
func (r *Registry) Len() int {
	n := 0
	for _, bucket := range r.funcs {
		n += len(bucket)
	}

	return n
}

func addNamespaces(set map[string]struct{}, ns []string) {
	if len(ns) == 0 || ns[len(ns)-1] == "" {
		return
	}

	for i := range ns {
		set[strings.Join(ns[:i+1], PathSeparator)] = struct{}{}
	}
}

// Overlay is a per-pass view over a shared Registry. Declarations made in the
// document land in the overlay and are dropped with it; the base registry is never written.
type Overlay struct {
	base *Registry

	funcs      map[string]Arityset
	methods    map[string]Arityset
	namespaces map[string]struct{}
}

// NewOverlay returns an empty overlay over base. A nil base behaves like an empty registry.
func NewOverlay(base *Registry) *Overlay {
	if base == nil {
		base = NewRegistry(nil)
	}

	return &Overlay{
		base:       base,
		funcs:      make(map[string]Arityset),
		methods:    make(map[string]Arityset),
		namespaces: make(map[string]struct{}),
	}
}

// Register records a document-local free function. The arity set starts
// from the base entry's, so a local overload extends a library function.
func (o *Overlay) Register(ns []string, name string, arity int) {
	key := qualify(ns, name)

	cur, ok := o.funcs[key]
	if !ok {
		cur, _ = o.base.Lookup(NoReceiver, ns, name)
	}

	o.funcs[key] = cur.With(arity)
	addNamespaces(o.namespaces, ns)
}

// RegisterMethod records a document-local method declared with receiver syntax.
func (o *Overlay) RegisterMethod(name string, arity int) {
	o.methods[name] = o.methods[name].With(arity)
}

// Lookup consults the overlay first, then the base registry.
func (o *Overlay) Lookup(recv Receiver, ns []string, name string) (Arityset, bool) {
	if recv == NoReceiver {
		if a, ok := o.funcs[qualify(ns, name)]; ok {
			return a, true
		}
	}

	return o.base.Lookup(recv, ns, name)
}

// LookupMethod merges local methods with the base registry's.
func (o *Overlay) LookupMethod(name string) (Arityset, bool) {
	local, okLocal := o.methods[name]
	base, okBase := o.base.LookupMethod(name)

	return local.Union(base), okLocal || okBase
}

// HasNamespace reports whether the path prefix is known locally or in the base registry.
func (o *Overlay) HasNamespace(segments ...string) bool {
	if len(segments) == 0 {
		return false
	}

	if _, ok := o.namespaces[strings.Join(segments, PathSeparator)]; ok {
		return true
	}

	return o.base.HasNamespace(segments...)
}

// Resolve finds a free function from inside namespace ns. The fully qualified
// name (ns + path + name) is tried first, then path + name, so library
// functions stay reachable inside a namespace body.
func (o *Overlay) Resolve(ns, path []string, name string) (Arityset, bool) {
	if len(ns) > 0 {
		if a, ok := o.Lookup(NoReceiver, slices.Concat(ns, path), name); ok {
			return a, true
		}
	}

	return o.Lookup(NoReceiver, path, name)
}
