package state

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/unit-control/internal/systemd"
)

// SetFilter updates the filter query and moves the cursor to the best match.
func (l *List) SetFilter(query string) {
	l.Filter = query
	l.applyFilter()
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		if idx := BestMatchIndex(l.Items, trimmed); idx >= 0 {
			l.Cursor = idx
		}
	}
}

// AppendFilter appends text to the filter.
func (l *List) AppendFilter(text string) bool {
	if text == "" {
		return false
	}
	l.SetFilter(l.Filter + text)
	return true
}

// DeleteFilterRuneBackward removes the last rune of the filter.
func (l *List) DeleteFilterRuneBackward() bool {
	runes := []rune(l.Filter)
	if len(runes) == 0 {
		return false
	}
	l.SetFilter(string(runes[:len(runes)-1]))
	return true
}

// DeleteFilterWordBackward removes the trailing word of the filter.
func (l *List) DeleteFilterWordBackward() bool {
	runes := []rune(l.Filter)
	if len(runes) == 0 {
		return false
	}
	i := len(runes)
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	l.SetFilter(string(runes[:i]))
	return true
}

func (l *List) applyFilter() {
	l.Items = FilterUnits(l.Full, l.Filter)
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, len(l.Items)-1)
	if l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}

// FilterUnits returns the units whose name fuzzily matches query. Matching
// falls back to substring search on name and description.
func FilterUnits(units []systemd.UnitWithStatus, query string) []systemd.UnitWithStatus {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return cloneUnits(units)
	}
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, names)
	if len(ranks) > 0 {
		matches := make(map[int]struct{}, len(ranks))
		for _, rank := range ranks {
			matches[rank.OriginalIndex] = struct{}{}
		}
		filtered := make([]systemd.UnitWithStatus, 0, len(matches))
		for idx, u := range units {
			if _, ok := matches[idx]; ok {
				filtered = append(filtered, u)
			}
		}
		return filtered
	}
	lower := strings.ToLower(trimmed)
	filtered := make([]systemd.UnitWithStatus, 0, len(units))
	for _, u := range units {
		if strings.Contains(strings.ToLower(u.Name), lower) || strings.Contains(strings.ToLower(u.Description), lower) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// BestMatchIndex prefers exact, then prefix, then substring, then the
// closest fuzzy match.
func BestMatchIndex(units []systemd.UnitWithStatus, query string) int {
	if len(units) == 0 {
		return -1
	}
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return 0
	}
	for i, u := range units {
		if strings.EqualFold(u.Name, lower) || strings.EqualFold(u.ShortName(), lower) {
			return i
		}
	}
	for i, u := range units {
		if strings.HasPrefix(strings.ToLower(u.Name), lower) {
			return i
		}
	}
	for i, u := range units {
		if strings.Contains(strings.ToLower(u.Name), lower) {
			return i
		}
	}
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(lower, names)
	if len(ranks) == 0 {
		return 0
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance || (rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex) {
			best = rank
		}
	}
	return best.OriginalIndex
}
