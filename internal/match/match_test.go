package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"exact file", "example.text", "example.text", true},
		{"exact mismatch", "example.text", "other.text", false},
		{"star within segment", "src/*.go", "src/main.go", true},
		{"star does not cross separator", "src/*", "src/a/b", false},
		{"doublestar crosses separators", "lib/**/*", "lib/a/b/c.txt", true},
		{"doublestar single level", "example_submodule/**/*", "example_submodule/test2", true},
		{"anchored not substring", "foo", "prefix/foo", false},
		{"anchored prefix only", "src", "src/main.go", false},
		{"question mark", "file?.txt", "file1.txt", true},
		{"question mark single char", "file?.txt", "file12.txt", false},
		{"character class", "file[0-9].txt", "file7.txt", true},
		{"character class mismatch", "file[0-9].txt", "filex.txt", false},
		{"case sensitive", "README.md", "readme.md", false},
		{"backslash path normalized", "src/*.go", `src\main.go`, true},
		{"leading dot slash on pattern", "./src/*.go", "src/main.go", true},
		{"leading dot slash on path", "src/*.go", "./src/main.go", true},
		{"trailing slash on path", "src/pkg", "src/pkg/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.pattern, tt.path))
		})
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	p := Compile("src/[unclosed")
	assert.False(t, p.Valid())
	// Invalid patterns match nothing, including their own text.
	assert.False(t, p.Match("src/[unclosed"))
	assert.False(t, p.Match("src/u"))
	assert.Equal(t, "src/[unclosed", p.Raw())
}

func TestCompileAll(t *testing.T) {
	patterns := CompileAll([]string{"src/*", "docs/**/*", "bad["})
	assert.Len(t, patterns, 3)
	assert.True(t, patterns[0].Valid())
	assert.True(t, patterns[1].Valid())
	assert.False(t, patterns[2].Valid())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a/b", Normalize("a/b"))
	assert.Equal(t, "a/b", Normalize("./a/b"))
	assert.Equal(t, "a/b", Normalize("a/b/"))
	assert.Equal(t, "a/b", Normalize(`a\b`))
	assert.Equal(t, "/", Normalize("/"))
}

func TestMatchIsPure(t *testing.T) {
	p := Compile("lib/**/*.rs")
	for i := 0; i < 3; i++ {
		assert.True(t, p.Match("lib/core/mod.rs"))
		assert.False(t, p.Match("lib/core/mod.go"))
	}
}
