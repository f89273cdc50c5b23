package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdekker/ragserve/pkg/types"
)

const (
	// DefaultChunkSize is the target chunk size in characters
	DefaultChunkSize = 1000

	// DefaultOverlap is the character overlap between adjacent chunks
	DefaultOverlap = 200

	// DefaultMinChunkSize is the smallest chunk worth embedding on its own
	DefaultMinChunkSize = 100

	// TokensPerChar is the heuristic for estimating tokens (chars/4)
	TokensPerChar = 4

	// boundaryWindow is how far around the target cut point the fixed
	// strategy searches for a sentence ending.
	boundaryWindow = 100
)

// Strategy selects how a document is split.
type Strategy string

const (
	// StrategyFixed produces fixed-size chunks with overlap
	StrategyFixed Strategy = "fixed"
	// StrategyParagraph splits on blank lines and packs paragraphs
	StrategyParagraph Strategy = "paragraph"
	// StrategyCode respects function/class boundaries, falling back to fixed
	StrategyCode Strategy = "code"
	// StrategySemantic is accepted as an alias for paragraph chunking
	StrategySemantic Strategy = "semantic"
)

// Chunk is one piece of a split document.
type Chunk struct {
	Text      string
	Index     int
	Total     int
	CharStart int
	CharEnd   int
	Type      string // "complete", "fixed", "paragraph", "code_block"
}

// Config holds chunking parameters. Zero values take the defaults.
type Config struct {
	ChunkSize    int
	Overlap      int
	MinChunkSize int
	Language     string // for code chunking; auto-detected when empty
}

func (c Config) withDefaults() Config {
	if c == (Config{}) {
		return Config{
			ChunkSize:    DefaultChunkSize,
			Overlap:      DefaultOverlap,
			MinChunkSize: DefaultMinChunkSize,
		}
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.MinChunkSize <= 0 {
		c.MinChunkSize = DefaultMinChunkSize
	}
	return c
}

// Chunker splits document text using a configured strategy.
type Chunker struct {
	strategy Strategy
	cfg      Config
}

// New creates a chunker for the given strategy.
func New(strategy Strategy, cfg Config) (*Chunker, error) {
	switch strategy {
	case StrategyFixed, StrategyParagraph, StrategyCode, StrategySemantic:
	case "":
		strategy = StrategyFixed
	default:
		return nil, types.NewValidationError(
			"unknown chunking strategy %q: available are %s, %s, %s, %s",
			strategy, StrategyFixed, StrategyParagraph, StrategyCode, StrategySemantic)
	}

	return &Chunker{strategy: strategy, cfg: cfg.withDefaults()}, nil
}

// Chunk splits text according to the chunker's strategy. Empty input
// yields no chunks; input below the minimum size yields a single
// "complete" chunk.
func (c *Chunker) Chunk(text string) []Chunk {
	if text == "" {
		return nil
	}
	if len(text) < c.cfg.MinChunkSize {
		return []Chunk{{
			Text:      text,
			Index:     0,
			Total:     1,
			CharStart: 0,
			CharEnd:   len(text),
			Type:      "complete",
		}}
	}

	switch c.strategy {
	case StrategyParagraph, StrategySemantic:
		return c.chunkParagraphs(text)
	case StrategyCode:
		return c.chunkCode(text)
	default:
		return c.chunkFixed(text)
	}
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s`)

// chunkFixed cuts the text into overlapping windows, preferring to cut
// at a sentence ending near the window boundary.
func (c *Chunker) chunkFixed(text string) []Chunk {
	type span struct{ start, end int }
	var spans []span

	start := 0
	for start < len(text) {
		end := start + c.cfg.ChunkSize
		if end > len(text) {
			end = len(text)
		}

		if end < len(text) {
			if cut := nearestSentenceEnd(text, end); cut > start {
				end = cut
			}
		}

		ts, te := trimSpan(text, start, end)
		if te-ts >= c.cfg.MinChunkSize {
			spans = append(spans, span{ts, te})
			next := end - c.cfg.Overlap
			// The overlap must never stall the walk.
			if next <= start {
				next = end
			}
			start = next
		} else {
			start = end
		}
	}

	chunks := make([]Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = Chunk{
			Text:      text[s.start:s.end],
			Index:     i,
			Total:     len(spans),
			CharStart: s.start,
			CharEnd:   s.end,
			Type:      "fixed",
		}
	}
	return chunks
}

// nearestSentenceEnd finds the sentence ending closest to pos within the
// boundary window, returning the position just after the punctuation, or
// -1 if none is close enough.
func nearestSentenceEnd(text string, pos int) int {
	lo := pos - boundaryWindow
	if lo < 0 {
		lo = 0
	}
	hi := pos + boundaryWindow
	if hi > len(text) {
		hi = len(text)
	}

	best := -1
	for _, m := range sentenceEnd.FindAllStringIndex(text[lo:hi], -1) {
		cut := lo + m[0] + 1
		if best == -1 || abs(cut-pos) < abs(best-pos) {
			best = cut
		}
	}
	if best != -1 && abs(best-pos) < boundaryWindow {
		return best
	}
	return -1
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// chunkParagraphs packs whole paragraphs into chunks up to the target
// size, carrying an overlap tail from the previous chunk.
func (c *Chunker) chunkParagraphs(text string) []Chunk {
	var pieces []string
	var current strings.Builder

	for _, para := range paragraphSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(para) > c.cfg.ChunkSize {
			pieces = append(pieces, current.String())
			current.Reset()
			if c.cfg.Overlap > 0 {
				prev := pieces[len(pieces)-1]
				tail := prev
				if len(tail) > c.cfg.Overlap {
					tail = tail[len(tail)-c.cfg.Overlap:]
				}
				current.WriteString(tail)
				current.WriteString("\n\n")
			}
			current.WriteString(para)
		} else if current.Len() > 0 {
			current.WriteString("\n\n")
			current.WriteString(para)
		} else {
			current.WriteString(para)
		}
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	return assemble(text, pieces, "paragraph")
}

// chunkCode groups function/class blocks into chunks, falling back to
// fixed-size chunking when no boundaries are found.
func (c *Chunker) chunkCode(text string) []Chunk {
	language := c.cfg.Language
	if language == "" {
		language = detectLanguageFromText(text)
	}

	blocks := codeBoundaries(text, language)
	if len(blocks) == 0 {
		return c.chunkFixed(text)
	}

	var pieces []string
	var current strings.Builder
	for _, b := range blocks {
		block := text[b.start:b.end]
		if current.Len() > 0 && current.Len()+len(block) > c.cfg.ChunkSize {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		current.WriteString(block)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	return assemble(text, pieces, "code_block")
}

type boundary struct{ start, end int }

// codeBoundaries locates top-level definitions. Indentation languages
// split on def/class lines; brace languages track top-level brace pairs.
func codeBoundaries(text, language string) []boundary {
	switch language {
	case "python", "ruby":
		var bounds []boundary
		current := -1
		pos := 0
		for _, line := range strings.SplitAfter(text, "\n") {
			t := strings.TrimSpace(line)
			if strings.HasPrefix(t, "def ") || strings.HasPrefix(t, "class ") {
				if current >= 0 {
					bounds = append(bounds, boundary{current, pos})
				}
				current = pos
			}
			pos += len(line)
		}
		if current >= 0 {
			bounds = append(bounds, boundary{current, len(text)})
		}
		return bounds

	case "go", "javascript", "typescript", "java", "c", "cpp", "rust":
		var bounds []boundary
		depth := 0
		current := 0
		inBlock := false
		for i, ch := range text {
			switch ch {
			case '{':
				if depth == 0 {
					current = i - 200
					if current < 0 {
						current = 0
					}
					inBlock = true
				}
				depth++
			case '}':
				depth--
				if depth == 0 && inBlock {
					bounds = append(bounds, boundary{current, i + 1})
					inBlock = false
				}
			}
		}
		return bounds
	}
	return nil
}

// assemble builds Chunk values for the given pieces, locating each piece
// in the original text for character offsets.
func assemble(text string, pieces []string, chunkType string) []Chunk {
	chunks := make([]Chunk, len(pieces))
	searchFrom := 0
	for i, piece := range pieces {
		start := strings.Index(text[searchFrom:], piece)
		if start >= 0 {
			start += searchFrom
		} else if start = strings.Index(text, piece); start < 0 {
			// Overlap prefixes may not exist verbatim in the source.
			start = searchFrom
		}
		chunks[i] = Chunk{
			Text:      piece,
			Index:     i,
			Total:     len(pieces),
			CharStart: start,
			CharEnd:   start + len(piece),
			Type:      chunkType,
		}
		if next := start + len(piece); next > searchFrom {
			searchFrom = next
			if searchFrom > len(text) {
				searchFrom = len(text)
			}
		}
	}
	return chunks
}

// LanguageForExtension maps a lowercase file extension (with dot) to a
// language name, or "unknown".
func LanguageForExtension(ext string) string {
	if lang, ok := extLanguages[strings.ToLower(ext)]; ok {
		return lang
	}
	return "unknown"
}

var extLanguages = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".go":    "go",
	".rs":    "rust",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".sh":    "shell",
	".sql":   "sql",
	".html":  "html",
	".css":   "css",
	".md":    "markdown",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".txt":   "text",
}

// detectLanguageFromText guesses the language from surface syntax.
func detectLanguageFromText(text string) string {
	switch {
	case strings.Contains(text, "def ") || strings.Contains(text, "import "):
		return "python"
	case strings.Contains(text, "function ") || strings.Contains(text, "const ") || strings.Contains(text, "let "):
		return "javascript"
	case strings.Contains(text, "public class") || strings.Contains(text, "private "):
		return "java"
	}
	return "unknown"
}

// EstimateTokens estimates the number of tokens in a string.
func EstimateTokens(text string) int {
	return len(text) / TokensPerChar
}

// trimSpan narrows [start,end) to exclude leading and trailing whitespace.
func trimSpan(text string, start, end int) (int, int) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return start, end
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ID builds a stable chunk identifier from the source path, a short
// content hash, and the chunk index.
func ID(relPath, hashPrefix string, index int) string {
	return fmt.Sprintf("%s#%s#chunk_%d", relPath, hashPrefix, index)
}
