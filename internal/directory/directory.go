// Package directory defines the module ownership registry: people, modules
// with include/exclude path patterns, and one level of submodules, persisted
// as a single YAML document.
//
// Owner and peer fields reference people by Bugzilla ID rather than by
// structural sharing, so the document has plain foreign-key semantics and no
// aliasing concerns. The resolve, validate and clean packages operate on the
// in-memory Directory without mutating it; clean returns a normalized copy.
package directory

import (
	"fmt"
	"strings"
	"unicode"
)

// Person is an identity record keyed by Bugzilla ID. A record holding only
// the ID is "unresolved"; clean enriches it through the identity lookup.
type Person struct {
	BMOID    int    `yaml:"bmo_id"`
	Name     string `yaml:"name,omitempty"`
	RealName string `yaml:"real_name,omitempty"`
	Nick     string `yaml:"nick,omitempty"`
	Email    string `yaml:"email,omitempty"`
}

// Resolved reports whether the record carries identity data beyond the ID.
func (p Person) Resolved() bool {
	return p.RealName != "" || p.Nick != ""
}

// PersonRef is a foreign-key style reference to a Person by Bugzilla ID.
type PersonRef struct {
	BMOID int `yaml:"bmo_id"`
}

// Meta holds free-form module metadata carried through untouched by the
// resolution engine.
type Meta struct {
	Group          string   `yaml:"group,omitempty"`
	URL            string   `yaml:"url,omitempty"`
	Components     []string `yaml:"components,omitempty"`
	ReviewGroup    string   `yaml:"review_group,omitempty"`
	OwnersEmeritus []string `yaml:"owners_emeritus,omitempty"`
	PeersEmeritus  []string `yaml:"peers_emeritus,omitempty"`
}

// Module is a named, owned unit of a source tree defined by include and
// exclude glob patterns. Submodules nest one level deep; their coverage
// overrides the parent's for matching paths.
type Module struct {
	MachineName string      `yaml:"machine_name,omitempty"`
	Name        string      `yaml:"name,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Includes    []string    `yaml:"includes,omitempty"`
	Excludes    []string    `yaml:"excludes,omitempty"`
	Owners      []PersonRef `yaml:"owners,omitempty"`
	Peers       []PersonRef `yaml:"peers,omitempty"`
	Meta        *Meta       `yaml:"meta,omitempty"`
	Submodules  []*Module   `yaml:"submodules,omitempty"`
}

// Hashes records content hashes of the canonical document and its export,
// updated on save and verified by the ci command.
type Hashes struct {
	Config string `yaml:"config,omitempty"`
	Export string `yaml:"export,omitempty"`
}

// ExportSettings configures the documentation export embedded in the
// registry document.
type ExportSettings struct {
	Format           string `yaml:"format,omitempty"`
	Path             string `yaml:"path,omitempty"`
	SearchfoxEnabled bool   `yaml:"searchfox_enabled,omitempty"`
}

// Directory is the full persisted registry for one repository.
type Directory struct {
	Repo      string          `yaml:"repo"`
	CreatedAt string          `yaml:"created_at"`
	UpdatedAt string          `yaml:"updated_at"`
	Hashes    *Hashes         `yaml:"hashes,omitempty"`
	Export    *ExportSettings `yaml:"export,omitempty"`
	People    []Person        `yaml:"people"`
	Modules   []*Module       `yaml:"modules"`
}

// Entry is one element of the flattened module list: a module or submodule
// together with its parent, preserving declaration order.
type Entry struct {
	Module *Module
	Parent *Module
}

// IsSubmodule reports whether the entry sits under a parent module.
func (e Entry) IsSubmodule() bool {
	return e.Parent != nil
}

// ParentName returns the parent's machine name, or "" for top-level entries.
func (e Entry) ParentName() string {
	if e.Parent == nil {
		return ""
	}
	return e.Parent.MachineName
}

// Includes returns the effective include patterns. A submodule that declares
// none inherits its parent's.
func (e Entry) Includes() []string {
	if len(e.Module.Includes) == 0 && e.Parent != nil {
		return e.Parent.Includes
	}
	return e.Module.Includes
}

// Excludes returns the effective exclude patterns, inherited like Includes.
func (e Entry) Excludes() []string {
	if len(e.Module.Excludes) == 0 && e.Parent != nil {
		return e.Parent.Excludes
	}
	return e.Module.Excludes
}

// Owners returns the effective owner references, inherited like Includes.
func (e Entry) Owners() []PersonRef {
	if len(e.Module.Owners) == 0 && e.Parent != nil {
		return e.Parent.Owners
	}
	return e.Module.Owners
}

// Peers returns the effective peer references, inherited like Includes.
func (e Entry) Peers() []PersonRef {
	if len(e.Module.Peers) == 0 && e.Parent != nil {
		return e.Parent.Peers
	}
	return e.Module.Peers
}

// Flatten returns modules and submodules as a single ordered list: each
// top-level module in declaration order, immediately followed by its
// submodules in their declaration order. The engine does not assume a depth
// limit even though the current model nests one level.
func (d *Directory) Flatten() []Entry {
	var entries []Entry
	for _, m := range d.Modules {
		entries = flattenInto(entries, m, nil)
	}
	return entries
}

func flattenInto(entries []Entry, m, parent *Module) []Entry {
	entries = append(entries, Entry{Module: m, Parent: parent})
	for _, sub := range m.Submodules {
		entries = flattenInto(entries, sub, m)
	}
	return entries
}

// PeopleByID indexes the person set by Bugzilla ID.
func (d *Directory) PeopleByID() map[int]Person {
	people := make(map[int]Person, len(d.People))
	for _, p := range d.People {
		people[p.BMOID] = p
	}
	return people
}

// ReferencedIDs returns the Bugzilla IDs referenced by any module's owners
// or peers, deduplicated, in first-reference order.
func (d *Directory) ReferencedIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, entry := range d.Flatten() {
		for _, ref := range entry.Module.Owners {
			if !seen[ref.BMOID] {
				seen[ref.BMOID] = true
				ids = append(ids, ref.BMOID)
			}
		}
		for _, ref := range entry.Module.Peers {
			if !seen[ref.BMOID] {
				seen[ref.BMOID] = true
				ids = append(ids, ref.BMOID)
			}
		}
	}
	return ids
}

// FindModule locates a module or submodule by machine name.
func (d *Directory) FindModule(machineName string) (*Module, bool) {
	for _, entry := range d.Flatten() {
		if entry.Module.MachineName == machineName {
			return entry.Module, true
		}
	}
	return nil, false
}

// AddModule appends a module at the top level, or as a submodule of parent
// when parent is non-empty.
func (d *Directory) AddModule(m *Module, parent string) error {
	if parent == "" {
		d.Modules = append(d.Modules, m)
		return nil
	}
	target, ok := d.FindModule(parent)
	if !ok {
		return fmt.Errorf("parent module %q not found", parent)
	}
	target.Submodules = append(target.Submodules, m)
	return nil
}

// Clone returns a deep copy of the directory. Normalization works on a
// clone so callers never observe a half-updated tree.
func (d *Directory) Clone() *Directory {
	clone := &Directory{
		Repo:      d.Repo,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		People:    append([]Person(nil), d.People...),
	}
	if d.Hashes != nil {
		h := *d.Hashes
		clone.Hashes = &h
	}
	if d.Export != nil {
		e := *d.Export
		clone.Export = &e
	}
	for _, m := range d.Modules {
		clone.Modules = append(clone.Modules, m.clone())
	}
	return clone
}

func (m *Module) clone() *Module {
	c := &Module{
		MachineName: m.MachineName,
		Name:        m.Name,
		Description: m.Description,
		Includes:    append([]string(nil), m.Includes...),
		Excludes:    append([]string(nil), m.Excludes...),
		Owners:      append([]PersonRef(nil), m.Owners...),
		Peers:       append([]PersonRef(nil), m.Peers...),
	}
	if m.Meta != nil {
		meta := *m.Meta
		meta.Components = append([]string(nil), m.Meta.Components...)
		meta.OwnersEmeritus = append([]string(nil), m.Meta.OwnersEmeritus...)
		meta.PeersEmeritus = append([]string(nil), m.Meta.PeersEmeritus...)
		c.Meta = &meta
	}
	for _, sub := range m.Submodules {
		c.Submodules = append(c.Submodules, sub.clone())
	}
	return c
}

// GenerateMachineName derives a machine name from a display name: words are
// lowercased, stripped of non-alphanumerics and joined with underscores.
// "Core: Accessibility" becomes "core_accessibility".
func GenerateMachineName(displayName string) string {
	var words []string
	for _, word := range strings.Fields(displayName) {
		var b strings.Builder
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
		if b.Len() > 0 {
			words = append(words, b.String())
		}
	}
	return strings.Join(words, "_")
}
