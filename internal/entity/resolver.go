package entity

import (
	"context"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

// Resolver normalises raw place names to canonical entities. It holds
// no mutable state beyond its configured threshold: the alias tables
// and canonical lists it consults are process-wide immutable data.
type Resolver struct {
	threshold float64
}

// New builds a Resolver with the default similarity threshold (0.75).
func New() *Resolver {
	return &Resolver{threshold: DefaultSimilarityThreshold}
}

// WithThreshold returns a copy of the Resolver using a custom
// similarity threshold, for tests that need to exercise the boundary.
func (r *Resolver) WithThreshold(t float64) *Resolver {
	return &Resolver{threshold: t}
}

var levelOrder = []catalog.Level{catalog.LevelCountry, catalog.LevelAdmin1, catalog.LevelCity}

// Normalise resolves raw to a canonical Entity. If hintLevel is
// non-empty, only that level's alias table and canonical list are
// consulted; otherwise country, then admin1, then city are tried in
// order, per spec.md §4.3.
func (r *Resolver) Normalise(raw string, hintLevel catalog.Level) Resolution {
	folded := strings.ToLower(strings.TrimSpace(raw))
	if folded == "" {
		return Resolution{}
	}

	levels := levelOrder
	if hintLevel != "" {
		levels = []catalog.Level{hintLevel}
	}

	// Pass 1: exact alias lookup (case-folded), in level order.
	for _, lvl := range levels {
		table := aliasTableFor(lvl)
		if canon, ok := table[folded]; ok {
			return Resolution{Canonical: canon, Level: lvl, Similarity: 1.0}
		}
	}

	// Pass 2: exact / case-insensitive match against canonical lists
	// themselves (a user may type the canonical name verbatim, which
	// is never itself a key in the alias table).
	for _, lvl := range levels {
		for _, canon := range canonicalNames(aliasTableFor(lvl)) {
			if strings.EqualFold(canon, raw) {
				return Resolution{Canonical: canon, Level: lvl, Similarity: 1.0}
			}
		}
	}

	// Pass 3: fuzzy backstop. Evaluate every candidate level (or just
	// the hinted one) and keep the best match across all of them;
	// ties broken by (1) higher similarity, (2) higher-specificity
	// level (city > admin1 > country), (3) lexical order.
	type candidate struct {
		name       string
		level      catalog.Level
		similarity float64
	}
	var best *candidate
	var allSuggestions []string
	suggestionSim := map[string]float64{}

	specificity := map[catalog.Level]int{catalog.LevelCity: 3, catalog.LevelAdmin1: 2, catalog.LevelCountry: 1}

	for _, lvl := range levels {
		names := canonicalNames(aliasTableFor(lvl))
		if len(names) == 0 {
			continue
		}
		ranked := rankBySimilarity(raw, names)
		for i, rc := range ranked {
			if i < 3 {
				allSuggestions = append(allSuggestions, rc.name)
				if rc.similarity > suggestionSim[rc.name] {
					suggestionSim[rc.name] = rc.similarity
				}
			}
		}
		if len(ranked) == 0 {
			continue
		}
		top := ranked[0]
		c := candidate{name: top.name, level: lvl, similarity: top.similarity}
		if best == nil ||
			c.similarity > best.similarity ||
			(c.similarity == best.similarity && specificity[c.level] > specificity[best.level]) ||
			(c.similarity == best.similarity && specificity[c.level] == specificity[best.level] && c.name < best.name) {
			best = &c
		}
	}

	if best != nil && best.similarity >= r.threshold {
		return Resolution{Canonical: best.name, Level: best.level, Similarity: best.similarity, Suggestions: dedupe(append([]string{best.name}, allSuggestions...))}
	}

	// Closest neighbour first; equal similarities in lexical order.
	sort.SliceStable(allSuggestions, func(i, j int) bool {
		a, b := allSuggestions[i], allSuggestions[j]
		if suggestionSim[a] != suggestionSim[b] {
			return suggestionSim[a] > suggestionSim[b]
		}
		return a < b
	})
	return Resolution{Suggestions: dedupe(allSuggestions)}
}

// Resolve is the idempotent convenience form used by callers that
// already believe raw is canonical: resolve(resolve(x)) == resolve(x).
func (r *Resolver) Resolve(raw string, hintLevel catalog.Level) (Entity, error) {
	res := r.Normalise(raw, hintLevel)
	if !res.Resolved() {
		return Entity{}, apperr.New(apperr.EntityUnresolved, "could not resolve entity "+raw).WithSuggestions(res.Suggestions...)
	}
	return Entity{
		RawName:       raw,
		CanonicalName: res.Canonical,
		Level:         res.Level,
		ISO3:          countryISO3[res.Canonical],
	}, nil
}

// DataProbe reports whether file_id has at least one row for entity in
// the given year/grain. Injected by the Query Engine so this package
// never depends on it (avoiding an import cycle), per spec.md §4.3's
// cascade contract.
type DataProbe func(ctx context.Context, fileID, entity string, year int) (bool, error)

// Cascade attempts the detected level first; on an empty result it
// falls back city -> admin1 -> country, skipping levels with no data
// and levels the entity didn't resolve at. The trace records every
// attempted (level, status) pair.
func (r *Resolver) Cascade(ctx context.Context, raw string, sector catalog.Sector, year int, grain catalog.Grain, fileIDFor func(catalog.Sector, catalog.Level, catalog.Grain) string, probe DataProbe) CascadeResult {
	res := r.Normalise(raw, "")
	if !res.Resolved() {
		return CascadeResult{Trace: []CascadeStep{{Status: "unresolved"}}}
	}

	cascadeOrder := []catalog.Level{catalog.LevelCity, catalog.LevelAdmin1, catalog.LevelCountry}
	// Start from the detected level, then continue the cascade from
	// there downward in specificity.
	start := 0
	for i, lvl := range cascadeOrder {
		if lvl == res.Level {
			start = i
			break
		}
	}

	var trace []CascadeStep
	for _, lvl := range cascadeOrder[start:] {
		entityName := res.Canonical
		if lvl != res.Level {
			// A cascade past the resolved level re-resolves the raw
			// name at the new level so the canonical form matches
			// that level's table.
			next := r.Normalise(raw, lvl)
			if !next.Resolved() {
				trace = append(trace, CascadeStep{Level: lvl, Status: "unresolved"})
				continue
			}
			entityName = next.Canonical
		}

		fileID := fileIDFor(sector, lvl, grain)
		ok, err := probe(ctx, fileID, entityName, year)
		if err != nil || !ok {
			trace = append(trace, CascadeStep{Level: lvl, Status: "no_data"})
			continue
		}

		trace = append(trace, CascadeStep{Level: lvl, Status: "ok"})
		return CascadeResult{
			FileID:   fileID,
			Entity:   Entity{RawName: raw, CanonicalName: entityName, Level: lvl, ISO3: countryISO3[entityName]},
			Trace:    trace,
			Resolved: true,
		}
	}

	return CascadeResult{Trace: trace, Resolved: false}
}

type ranked struct {
	name       string
	similarity float64
}

// rankBySimilarity ranks candidates against target using
// github.com/sahilm/fuzzy for subsequence-aware candidate selection,
// then attaches a 0..1 similarity computed from normalised Levenshtein
// distance (fuzzy's own Score is an unbounded ranking heuristic, not a
// similarity ratio, so the threshold comparison needs this
// normalisation step — see DESIGN.md).
func rankBySimilarity(target string, candidates []string) []ranked {
	lowerTarget := strings.ToLower(target)
	matches := fuzzy.Find(lowerTarget, lowerAll(candidates))

	out := make([]ranked, 0, len(matches))
	for _, m := range matches {
		out = append(out, ranked{name: candidates[m.Index], similarity: similarity(lowerTarget, strings.ToLower(candidates[m.Index]))})
	}

	// Candidates fuzzy.Find rejected (no subsequence match) can still
	// be the closest by edit distance (e.g. a transposed pair of
	// letters breaks the subsequence property); fold them in too so a
	// genuine near-miss typo is never silently dropped.
	present := make(map[string]bool, len(out))
	for _, o := range out {
		present[o.name] = true
	}
	for _, c := range candidates {
		if present[c] {
			continue
		}
		out = append(out, ranked{name: c, similarity: similarity(lowerTarget, strings.ToLower(c))})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].similarity > out[j].similarity })
	return out
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

// similarity returns a 0..1 score: 1 - (levenshtein distance / max
// length). Pure stdlib arithmetic; justified in DESIGN.md as the one
// hand-rolled piece of this package (no normalised-similarity library
// exists in the retrieval pack).
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
