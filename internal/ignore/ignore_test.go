package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOK   bool
		wantRule Rule
	}{
		{
			name:   "simple glob",
			line:   "*.log",
			wantOK: true,
			wantRule: Rule{
				Pattern: "*.log",
			},
		},
		{
			name:   "negation",
			line:   "!important.log",
			wantOK: true,
			wantRule: Rule{
				Pattern: "important.log",
				Negate:  true,
			},
		},
		{
			name:   "directory only",
			line:   "build/",
			wantOK: true,
			wantRule: Rule{
				Pattern: "build",
				DirOnly: true,
			},
		},
		{
			name:   "anchored",
			line:   "/vendor",
			wantOK: true,
			wantRule: Rule{
				Pattern:  "vendor",
				Anchored: true,
			},
		},
		{
			name:   "all markers",
			line:   "!/dist/",
			wantOK: true,
			wantRule: Rule{
				Pattern:  "dist",
				Negate:   true,
				DirOnly:  true,
				Anchored: true,
			},
		},
		{
			name:   "comment",
			line:   "# build artifacts",
			wantOK: false,
		},
		{
			name:   "blank",
			line:   "   ",
			wantOK: false,
		},
		{
			name:   "whitespace trimmed",
			line:   "  *.tmp  ",
			wantOK: true,
			wantRule: Rule{
				Pattern: "*.tmp",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := ParseLine(tt.line, "")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantRule, r)
			}
		})
	}
}

func TestMatchNegation(t *testing.T) {
	m := NewMatcher([]string{"*.log", "!important.log"})

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("important.log", false))
	assert.True(t, m.Match("logs/server.log", false))
	assert.False(t, m.Match("logs/important.log", false))
}

func TestMatchDirOnly(t *testing.T) {
	m := NewMatcher([]string{"build/"})

	assert.True(t, m.Match("build", true))
	assert.True(t, m.Match("build/output.txt", false))
	assert.True(t, m.Match("sub/build/a/b.txt", false))
	// A plain file named build is not a directory.
	assert.False(t, m.Match("build", false))
	assert.False(t, m.Match("builder/main.go", false))
}

func TestMatchAnchored(t *testing.T) {
	m := NewMatcher([]string{"/vendor/"})

	assert.True(t, m.Match("vendor", true))
	assert.True(t, m.Match("vendor/lib.go", false))
	assert.False(t, m.Match("third_party/vendor", true))
}

func TestMatchDoubleStar(t *testing.T) {
	m := NewMatcher([]string{"docs/**/draft.md"})

	assert.True(t, m.Match("docs/draft.md", false))
	assert.True(t, m.Match("docs/a/b/draft.md", false))
	assert.False(t, m.Match("src/docs-draft.md", false))
	assert.False(t, m.Match("other/draft.md", false))
}

func TestMatchNoResurrectionInsideExcludedDir(t *testing.T) {
	m := NewMatcher([]string{"node_modules/", "!node_modules/keep.js"})

	assert.True(t, m.Match("node_modules", true))
	// The negation names a path inside an excluded directory; it stays
	// excluded.
	assert.True(t, m.Match("node_modules/keep.js", false))
}

func TestMatchClosestDirectoryWins(t *testing.T) {
	m := NewMatcher([]string{"*.md"})
	m.AddPatterns("docs", []string{"!README.md"})

	assert.True(t, m.Match("notes.md", false))
	assert.True(t, m.Match("README.md", false))
	// The docs-level negation overrides the root exclusion beneath docs.
	assert.False(t, m.Match("docs/README.md", false))
	assert.True(t, m.Match("docs/other.md", false))
}

func TestMatchScopedRulesDoNotLeakUpward(t *testing.T) {
	m := &Matcher{}
	m.AddPatterns("sub", []string{"secret.txt"})

	assert.True(t, m.Match("sub/secret.txt", false))
	assert.True(t, m.Match("sub/deep/secret.txt", false))
	assert.False(t, m.Match("secret.txt", false))
	assert.False(t, m.Match("other/secret.txt", false))
}

func TestMatchLaterLineWins(t *testing.T) {
	m := NewMatcher([]string{"!special.log", "*.log"})

	// The exclusion comes after the negation, so it wins.
	assert.True(t, m.Match("special.log", false))
}

func TestDefaultPatterns(t *testing.T) {
	m := NewMatcher(DefaultPatterns)

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{".git", true, true},
		{".git/config", false, true},
		{"node_modules", true, true},
		{"src/node_modules/pkg/index.js", false, true},
		{"__pycache__", true, true},
		{"cache.pyc", false, true},
		{"app.log", false, true},
		{"photo.png", false, true},
		{"archive.tar.gz", false, true},
		{"package-lock.json", false, true},
		{"main.go", false, false},
		{"internal/store/store.go", false, false},
		{"README.md", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(tt.path, tt.isDir), "path %s", tt.path)
	}
}

func TestAddIgnoreFiles(t *testing.T) {
	dir := t.TempDir()

	gitignore := "*.log\nbuild/\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FallbackFileName), []byte(gitignore), 0o644))

	// The primary file re-includes a path the fallback excluded.
	ragignore := "!important.log\n# comment line\n*.generated\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, PrimaryFileName), []byte(ragignore), 0o644))

	m := &Matcher{}
	m.AddIgnoreFiles(dir, "")

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("important.log", false))
	assert.True(t, m.Match("build", true))
	assert.True(t, m.Match("schema.generated", false))
	assert.False(t, m.Match("main.go", false))
}

func TestAddIgnoreFilesMissing(t *testing.T) {
	m := &Matcher{}
	m.AddIgnoreFiles(t.TempDir(), "")

	assert.False(t, m.Match("anything.txt", false))
}
