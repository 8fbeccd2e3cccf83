// Package resolve maps file paths to their owning modules.
//
// A Resolver is built once per directory: the module tree is flattened into
// declaration order and every pattern is compiled a single time, so batch
// queries over tens of thousands of paths amortize that work. Resolution is
// a pure function of the compiled tree and the path.
//
// Precedence is deliberate and simple: an exclude pattern strictly narrows
// its module's includes, a covering submodule removes its parent from
// consideration, and overlap between siblings is reported as Ambiguous
// instead of being resolved by a specificity heuristic. For an ownership
// registry an explicit configuration error beats a silent guess.
package resolve

import (
	"github.com/modir/modir/internal/directory"
	"github.com/modir/modir/internal/match"
)

// Kind classifies a resolution result.
type Kind int

const (
	// Unowned means no module covers the path.
	Unowned Kind = iota
	// Owned means exactly one module covers the path.
	Owned
	// Ambiguous means two or more sibling modules cover the path. This
	// is a configuration error the caller must surface, not an exception.
	Ambiguous
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Owned:
		return "owned"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unowned"
	}
}

// Result is the outcome of resolving one path.
type Result struct {
	Path string
	Kind Kind
	// Module is the owning machine name when Kind is Owned.
	Module string
	// Candidates lists all covering machine names in declaration order
	// when Kind is Ambiguous.
	Candidates []string
}

// BadPattern identifies a pattern the matcher could not compile, attributed
// to its module. The validator turns these into issues.
type BadPattern struct {
	MachineName string
	Pattern     string
	Exclude     bool
}

type entry struct {
	machineName string
	parentName  string
	includes    []match.Pattern
	excludes    []match.Pattern
}

// Resolver holds the flattened, compiled view of a module tree.
type Resolver struct {
	entries []entry
	// parentOf maps machine name to parent machine name, so override
	// checks can walk ancestor chains of any depth.
	parentOf map[string]string
	bad      []BadPattern
}

// New flattens the directory's module tree and compiles all patterns.
func New(d *directory.Directory) *Resolver {
	r := &Resolver{parentOf: make(map[string]string)}
	for _, e := range d.Flatten() {
		r.parentOf[e.Module.MachineName] = e.ParentName()
		ent := entry{
			machineName: e.Module.MachineName,
			parentName:  e.ParentName(),
			includes:    match.CompileAll(e.Includes()),
			excludes:    match.CompileAll(e.Excludes()),
		}
		for _, p := range ent.includes {
			if !p.Valid() {
				r.bad = append(r.bad, BadPattern{MachineName: ent.machineName, Pattern: p.Raw()})
			}
		}
		for _, p := range ent.excludes {
			if !p.Valid() {
				r.bad = append(r.bad, BadPattern{MachineName: ent.machineName, Pattern: p.Raw(), Exclude: true})
			}
		}
		r.entries = append(r.entries, ent)
	}
	return r
}

// BadPatterns returns the patterns that failed to compile, in declaration
// order. They match nothing during resolution.
func (r *Resolver) BadPatterns() []BadPattern {
	return r.bad
}

// covered reports whether the entry covers path: at least one include
// matches and no exclude matches.
func (e *entry) covered(path string) bool {
	included := false
	for _, p := range e.includes {
		if p.Match(path) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range e.excludes {
		if p.Match(path) {
			return false
		}
	}
	return true
}

// Resolve maps a single path to its owning module.
func (r *Resolver) Resolve(path string) Result {
	path = match.Normalize(path)

	covering := make([]*entry, 0, 2)
	for i := range r.entries {
		e := &r.entries[i]
		if e.covered(path) {
			covering = append(covering, e)
		}
	}

	// A covering submodule is a scoped override: its ancestors are not
	// candidates for this path even if their own includes match.
	overridden := make(map[string]bool)
	for _, e := range covering {
		for p := e.parentName; p != ""; p = r.parentOf[p] {
			overridden[p] = true
		}
	}

	candidates := covering[:0]
	for _, e := range covering {
		if !overridden[e.machineName] {
			candidates = append(candidates, e)
		}
	}

	switch len(candidates) {
	case 0:
		return Result{Path: path, Kind: Unowned}
	case 1:
		return Result{Path: path, Kind: Owned, Module: candidates[0].machineName}
	default:
		names := make([]string, len(candidates))
		for i, e := range candidates {
			names[i] = e.machineName
		}
		return Result{Path: path, Kind: Ambiguous, Candidates: names}
	}
}

// ResolveAll resolves a batch of paths against the same compiled tree,
// returning results in input order.
func (r *Resolver) ResolveAll(paths []string) []Result {
	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i] = r.Resolve(p)
	}
	return results
}
