package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modir/modir/internal/directory"
)

func sampleDirectory() *directory.Directory {
	return &directory.Directory{
		Repo: "sample-repo",
		People: []directory.Person{
			{BMOID: 1, RealName: "Alice Doe", Nick: "alice"},
			{BMOID: 2, Nick: "bob"},
		},
		Modules: []*directory.Module{
			{
				MachineName: "core",
				Name:        "Core",
				Description: "Everything central.",
				Includes:    []string{"src/**/*"},
				Excludes:    []string{"src/vendor/**/*"},
				Owners:      []directory.PersonRef{{BMOID: 1}},
				Peers:       []directory.PersonRef{{BMOID: 2}},
				Meta: &directory.Meta{
					ReviewGroup:    "core-reviewers",
					OwnersEmeritus: []string{"Carol"},
				},
				Submodules: []*directory.Module{
					{
						MachineName: "core_docs",
						Name:        "Core Docs",
						Includes:    []string{"src/docs/**/*"},
					},
				},
			},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(sampleDirectory(), FormatMarkdown, Options{
		PeopleURL: "https://people.example.org/s?query=",
		ReviewURL: "https://review.example.org",
	})
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "# sample-repo module directory")
	assert.Contains(t, doc, "## Core")
	assert.Contains(t, doc, "### Core Docs")
	assert.Contains(t, doc, "Machine name: `core`")
	assert.Contains(t, doc, "[Alice Doe (alice)](https://people.example.org/s?query=alice)")
	// bob has no real name; nick alone is the display.
	assert.Contains(t, doc, "[bob](")
	assert.Contains(t, doc, "Emeritus: Carol")
	assert.Contains(t, doc, "https://review.example.org/tag/core-reviewers/")
	// Patterns appear with markdown specials escaped.
	assert.Contains(t, doc, `src/\*\*/\*`)
	assert.True(t, strings.HasSuffix(doc, "\n"))
}

func TestRenderRST(t *testing.T) {
	out, err := Render(sampleDirectory(), FormatRST, Options{})
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "sample-repo module directory")
	assert.Contains(t, doc, strings.Repeat("=", len("sample-repo module directory")))
	assert.Contains(t, doc, "Core\n----")
	assert.Contains(t, doc, "Core Docs\n~~~~~~~~~")
	assert.Contains(t, doc, ":Machine name: core")
	// No people URL configured: plain escaped names, no link markup.
	assert.Contains(t, doc, "Alice Doe (alice)")
	assert.NotContains(t, doc, "`Alice Doe (alice) <")
	assert.Contains(t, doc, `src/\*\*/\*`)
}

func TestRenderSearchfoxLinks(t *testing.T) {
	d := sampleDirectory()
	d.Export = &directory.ExportSettings{SearchfoxEnabled: true}

	out, err := Render(d, FormatMarkdown, Options{SearchfoxURL: "https://searchfox.example.org"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "https://searchfox.example.org/sample-repo/search?q=&path=")
}

func TestRenderUnknownPersonRef(t *testing.T) {
	d := sampleDirectory()
	d.People = nil

	out, err := Render(d, FormatMarkdown, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "bmo:1")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(sampleDirectory(), "pdf", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestRenderDeterministic(t *testing.T) {
	d := sampleDirectory()
	first, err := Render(d, FormatRST, Options{})
	require.NoError(t, err)
	second, err := Render(d, FormatRST, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
