package ignore

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Ignore file names recognized during indexing. The primary file wins over
// the fallback when both define rules for the same path.
const (
	PrimaryFileName  = ".ragignore"
	FallbackFileName = ".gitignore"
)

// DefaultPatterns excludes content that is almost never useful in a
// document collection: VCS internals, dependency trees, build output,
// binaries, media, archives, and lock files.
var DefaultPatterns = []string{
	// Version control
	".git/",
	".svn/",
	".hg/",
	// Dependencies
	"node_modules/",
	"vendor/",
	"venv/",
	".venv/",
	"__pycache__/",
	"*.pyc",
	// Build artifacts
	"build/",
	"dist/",
	"target/",
	"out/",
	"bin/",
	"obj/",
	".gradle/",
	// IDE
	".idea/",
	".vscode/",
	"*.swp",
	"*~",
	".DS_Store",
	// Temporary files
	"*.tmp",
	".cache/",
	// Logs
	"*.log",
	"logs/",
	// Databases
	"*.db",
	"*.sqlite",
	"*.sqlite3",
	// Media
	"*.png",
	"*.jpg",
	"*.jpeg",
	"*.gif",
	"*.ico",
	"*.mp4",
	"*.mp3",
	"*.wav",
	// Archives
	"*.zip",
	"*.tar",
	"*.tar.gz",
	"*.7z",
	// Lock files
	"*.lock",
	"package-lock.json",
	"yarn.lock",
}

// Rule is a single parsed ignore pattern.
type Rule struct {
	Pattern  string // glob, slash-separated, no negation/anchor markers
	Negate   bool   // "!" prefix: re-includes a previously excluded path
	DirOnly  bool   // trailing "/": applies to directories only
	Anchored bool   // leading "/": relative to the indexing root
	base     string // directory (relative to root) the rule was loaded from
}

// ParseLine parses one ignore-file line. Returns ok=false for blank lines
// and comments.
func ParseLine(line, base string) (Rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	r := Rule{base: base}

	if strings.HasPrefix(line, "!") {
		r.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.DirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		r.Anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if line == "" {
		return Rule{}, false
	}

	r.Pattern = line
	return r, true
}

// Matcher evaluates paths against an ordered rule set. Rules added later
// take precedence over earlier ones for the same path, so loading order
// (root first, deeper directories after) gives closest-directory-wins
// semantics for free.
type Matcher struct {
	rules []Rule
}

// NewMatcher creates a matcher seeded with root-level patterns.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	m.AddPatterns("", patterns)
	return m
}

// AddPatterns appends rules scoped to base (a slash-separated directory
// path relative to the indexing root; "" for the root itself).
func (m *Matcher) AddPatterns(base string, patterns []string) {
	for _, p := range patterns {
		if r, ok := ParseLine(p, base); ok {
			m.rules = append(m.rules, r)
		}
	}
}

// AddIgnoreFiles loads recognized ignore files from dir, scoping their
// rules to base. The fallback file is loaded first so the primary file's
// rules override it. Unreadable files are skipped; an ignore file is an
// optimization, never a fatal input.
func (m *Matcher) AddIgnoreFiles(dir, base string) {
	for _, name := range []string{FallbackFileName, PrimaryFileName} {
		lines, err := readLines(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		m.AddPatterns(base, lines)
	}
}

// Match reports whether rel (slash-separated, relative to the indexing
// root) is excluded. A path inside an excluded directory is excluded even
// if a negated rule names it: negations cannot resurrect content below an
// excluded directory.
func (m *Matcher) Match(rel string, isDir bool) bool {
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return false
	}

	// Ancestor directories first. If any is excluded the path is gone,
	// regardless of later negations naming the path itself.
	segs := strings.Split(rel, "/")
	for i := 1; i < len(segs); i++ {
		if excluded, matched := m.evaluate(strings.Join(segs[:i], "/"), true); matched && excluded {
			return true
		}
	}

	excluded, _ := m.evaluate(rel, isDir)
	return excluded
}

// evaluate applies last-match-wins over the rule list for the path itself.
func (m *Matcher) evaluate(rel string, isDir bool) (excluded, matched bool) {
	for _, r := range m.rules {
		if r.DirOnly && !isDir {
			continue
		}
		if r.matches(rel) {
			excluded = !r.Negate
			matched = true
		}
	}
	return excluded, matched
}

// matches tests the rule's glob against rel.
func (r *Rule) matches(rel string) bool {
	// Scope to the directory the rule came from.
	if r.base != "" {
		prefix := r.base + "/"
		if !strings.HasPrefix(rel, prefix) {
			return false
		}
		rel = strings.TrimPrefix(rel, prefix)
	}

	pattern := r.Pattern
	if !r.Anchored && !strings.Contains(pattern, "/") {
		// A bare name matches at any depth below the rule's directory.
		pattern = "**/" + pattern
	}

	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

// matchSegments matches glob segments against path segments. "**" spans
// zero or more path segments; other segments use path.Match globbing.
func matchSegments(pat, parts []string) bool {
	if len(pat) == 0 {
		return len(parts) == 0
	}

	if pat[0] == "**" {
		// Try consuming zero or more path segments.
		for i := 0; i <= len(parts); i++ {
			if matchSegments(pat[1:], parts[i:]) {
				return true
			}
		}
		return false
	}

	if len(parts) == 0 {
		return false
	}

	ok, err := path.Match(pat[0], parts[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], parts[1:])
}

// readLines reads a file as a slice of lines.
func readLines(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
