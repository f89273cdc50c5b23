// Package ignore filters paths during directory indexing using
// gitignore-style pattern files.
//
// A Matcher is seeded with DefaultPatterns and accumulates rules from
// .ragignore and .gitignore files as the indexer descends. Rules are
// evaluated last-match-wins, so patterns from deeper directories override
// ancestors, and a "!" negation re-includes a previously excluded path.
// Negations never resurrect content below an excluded directory: the
// walker prunes such directories before descending, and Match enforces
// the same answer for callers that probe paths directly.
//
// Pattern syntax follows gitignore: "*" and "?" glob within a path
// segment, "**" spans segments, a trailing "/" restricts the rule to
// directories, and a leading "/" anchors it to the indexing root.
package ignore
