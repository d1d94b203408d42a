package match

import (
	"strings"

	"skyflipper/internal/game"
)

// Glyphs that decorate skyblock item names but never appear in the feed's
// plain item names. Stripped before any comparison.
var decorationGlyphs = []rune{'☘', '☂', '✪', '◆', '❤'}

// Normalize lowers a display name into the canonical form used for matching:
// formatting codes gone, decoration glyphs gone, whitespace trimmed.
func Normalize(name string) string {
	s := game.StripFormatting(name)
	var b strings.Builder
	b.Grow(len(s))
outer:
	for _, r := range s {
		for _, g := range decorationGlyphs {
			if r == g {
				continue outer
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}

// Result identifies the best slot for a target item name.
type Result struct {
	Slot  int
	Name  string
	Exact bool
}

// Match scans a window's slots for the item whose display name best matches
// target. Tiers are tried in order: exact, token containment, substring, then a
// bounded fuzzy pass. Empty slots and the Close pane are never candidates.
// Ties within a tier go to the earliest slot.
func Match(target string, slots []game.SlotContent) (Result, bool) {
	want := Normalize(target)
	if want == "" {
		return Result{}, false
	}

	type candidate struct {
		slot int
		name string
	}
	var cands []candidate
	for _, s := range slots {
		if s.Empty() {
			continue
		}
		name := Normalize(s.DisplayName)
		if name == "" || name == "close" {
			continue
		}
		cands = append(cands, candidate{slot: s.Index, name: name})
	}
	if len(cands) == 0 {
		return Result{}, false
	}

	for _, c := range cands {
		if c.name == want {
			return Result{Slot: c.slot, Name: c.name, Exact: true}, true
		}
	}

	wantTokens := strings.Fields(want)
	for _, c := range cands {
		if containsAllTokens(c.name, wantTokens) {
			return Result{Slot: c.slot, Name: c.name}, true
		}
	}

	for _, c := range cands {
		if strings.Contains(c.name, want) || strings.Contains(want, c.name) {
			return Result{Slot: c.slot, Name: c.name}, true
		}
	}

	// Fuzzy matching on short targets produces junk, so it only runs for
	// names of five runes or more.
	runes := []rune(want)
	if len(runes) < 5 {
		return Result{}, false
	}
	maxDist := len(runes) / 5
	if rem := len(runes) % 5; rem >= 3 {
		maxDist++
	}
	if maxDist < 2 {
		maxDist = 2
	}
	best := -1
	bestDist := maxDist + 1
	bestName := ""
	for _, c := range cands {
		d := Levenshtein(want, c.name)
		if d < bestDist {
			bestDist = d
			best = c.slot
			bestName = c.name
		}
	}
	if best < 0 {
		return Result{}, false
	}
	return Result{Slot: best, Name: bestName}, true
}

// containsAllTokens reports whether every token appears somewhere in name,
// in any order. Tokens match as substrings, so reordered or parenthesized
// renderings of the same item still hit.
func containsAllTokens(name string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !strings.Contains(name, t) {
			return false
		}
	}
	return true
}

// Levenshtein computes the edit distance between two strings over runes.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
