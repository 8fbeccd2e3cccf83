// Package export renders a normalized directory as human-readable
// documentation in Markdown or reStructuredText.
//
// Rendering consumes a read-only view of the directory built up front, so
// the templates stay free of resolution logic: person references are
// resolved against the people set, patterns are escaped and optionally
// linked to Searchfox, and review groups link to Phabricator.
package export

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/modir/modir/internal/directory"
)

// Formats supported by Render.
const (
	FormatMarkdown = "md"
	FormatRST      = "rst"
)

// Options carries the external URLs woven into the rendered document.
type Options struct {
	// SearchfoxURL enables pattern links when the registry's export
	// settings set searchfox_enabled.
	SearchfoxURL string
	// PeopleURL prefixes people search links.
	PeopleURL string
	// ReviewURL prefixes review group links.
	ReviewURL string
}

// Render produces the documentation for d in the requested format.
func Render(d *directory.Directory, format string, opts Options) ([]byte, error) {
	var tmpl *template.Template
	var err error
	switch format {
	case FormatMarkdown:
		tmpl, err = template.New("md").Funcs(funcMap(escapeMarkdown, linkMarkdown)).Parse(markdownTemplate)
	case FormatRST:
		tmpl, err = template.New("rst").Funcs(funcMap(escapeRST, linkRST)).Parse(rstTemplate)
	default:
		return nil, fmt.Errorf("unsupported export format %q (supported: md, rst)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing export template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, buildModel(d, opts)); err != nil {
		return nil, fmt.Errorf("rendering export: %w", err)
	}
	out := strings.TrimRight(buf.String(), "\n") + "\n"
	return []byte(out), nil
}

type docModel struct {
	Repo      string
	UpdatedAt string
	Modules   []moduleModel
}

type moduleModel struct {
	Name        string
	MachineName string
	Description string
	Includes    []pathModel
	Excludes    []pathModel
	Owners      []personModel
	Peers       []personModel
	Group       string
	URL         string
	ReviewGroup string
	ReviewURL   string
	Emeritus    string
	Submodules  []moduleModel
}

type pathModel struct {
	Pattern string
	URL     string
}

type personModel struct {
	Display string
	URL     string
}

func buildModel(d *directory.Directory, opts Options) docModel {
	people := d.PeopleByID()
	searchfox := ""
	if d.Export != nil && d.Export.SearchfoxEnabled && opts.SearchfoxURL != "" {
		searchfox = opts.SearchfoxURL
	}

	model := docModel{
		Repo:      d.Repo,
		UpdatedAt: d.UpdatedAt,
	}
	for _, m := range d.Modules {
		model.Modules = append(model.Modules, buildModule(d, m, people, searchfox, opts))
	}
	return model
}

func buildModule(d *directory.Directory, m *directory.Module, people map[int]directory.Person, searchfox string, opts Options) moduleModel {
	mm := moduleModel{
		Name:        m.Name,
		MachineName: m.MachineName,
		Description: m.Description,
		Includes:    buildPaths(d, m.Includes, searchfox),
		Excludes:    buildPaths(d, m.Excludes, searchfox),
		Owners:      buildPeople(m.Owners, people, opts),
		Peers:       buildPeople(m.Peers, people, opts),
	}
	if m.Meta != nil {
		mm.Group = m.Meta.Group
		mm.URL = m.Meta.URL
		mm.ReviewGroup = m.Meta.ReviewGroup
		if m.Meta.ReviewGroup != "" && opts.ReviewURL != "" {
			mm.ReviewURL = fmt.Sprintf("%s/tag/%s/", opts.ReviewURL, m.Meta.ReviewGroup)
		}
		emeritus := append(append([]string(nil), m.Meta.OwnersEmeritus...), m.Meta.PeersEmeritus...)
		mm.Emeritus = strings.Join(emeritus, ", ")
	}
	for _, sub := range m.Submodules {
		mm.Submodules = append(mm.Submodules, buildModule(d, sub, people, searchfox, opts))
	}
	return mm
}

func buildPaths(d *directory.Directory, patterns []string, searchfox string) []pathModel {
	var paths []pathModel
	for _, p := range patterns {
		pm := pathModel{Pattern: p}
		if searchfox != "" {
			pm.URL = fmt.Sprintf("%s/%s/search?q=&path=%s", searchfox, d.Repo, url.QueryEscape(p))
		}
		paths = append(paths, pm)
	}
	return paths
}

func buildPeople(refs []directory.PersonRef, people map[int]directory.Person, opts Options) []personModel {
	var models []personModel
	for _, ref := range refs {
		p, ok := people[ref.BMOID]
		if !ok {
			models = append(models, personModel{Display: fmt.Sprintf("bmo:%d", ref.BMOID)})
			continue
		}
		display := p.Nick
		if p.RealName != "" {
			display = p.RealName
			if p.Nick != "" {
				display = fmt.Sprintf("%s (%s)", p.RealName, p.Nick)
			}
		}
		if display == "" {
			display = fmt.Sprintf("bmo:%d", p.BMOID)
		}
		pm := personModel{Display: display}
		if opts.PeopleURL != "" && p.Nick != "" {
			pm.URL = opts.PeopleURL + url.QueryEscape(p.Nick)
		}
		models = append(models, pm)
	}
	return models
}

type escapeFunc func(string) string
type linkFunc func(text, target string) string

func funcMap(escape escapeFunc, link linkFunc) template.FuncMap {
	return template.FuncMap{
		"escape": escape,
		"link": func(text, target string) string {
			if target == "" {
				return escape(text)
			}
			return link(escape(text), target)
		},
		"underline": func(s, ch string) string {
			return strings.Repeat(ch, len(s))
		},
	}
}

// escapeMarkdown escapes Markdown control characters, backslash first.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	for _, ch := range []string{"`", "*", "_", "[", "]", "<", ">", "#", "|"} {
		s = strings.ReplaceAll(s, ch, `\`+ch)
	}
	return s
}

// escapeRST escapes reStructuredText control characters, backslash first.
func escapeRST(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "*", `\*`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return s
}

func linkMarkdown(text, target string) string {
	return fmt.Sprintf("[%s](%s)", text, target)
}

func linkRST(text, target string) string {
	return fmt.Sprintf("`%s <%s>`__", text, target)
}
