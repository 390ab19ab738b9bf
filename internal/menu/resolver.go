package menu

import "strings"

// Resolve maps free text to a menu item, or nil when nothing matches.
//
// Two stages, first hit wins:
//  1. Exact substring: the item's lower-cased name appears inside the
//     input. Among such items the longest name wins, so "Chicken
//     Teriyaki" beats "Chicken" when both appear; equal lengths keep
//     menu order.
//  2. Word subset: every token of the item's name is contained in or
//     contains some input token, case-insensitively. Tolerates extra
//     words, reordering and simple plurals ("rolls" matches "Roll").
//     First item in menu order wins.
func Resolve(text string, m *Menu) *Item {
	input := strings.ToLower(text)

	var best *Item
	bestLen := 0
	for ci := range m.Categories {
		for ii := range m.Categories[ci].Items {
			item := &m.Categories[ci].Items[ii]
			name := strings.ToLower(item.Name)
			if strings.Contains(input, name) && len(name) > bestLen {
				best = item
				bestLen = len(name)
			}
		}
	}
	if best != nil {
		return best
	}

	inputTokens := strings.Fields(input)
	for ci := range m.Categories {
		for ii := range m.Categories[ci].Items {
			item := &m.Categories[ci].Items[ii]
			if tokensCovered(strings.Fields(strings.ToLower(item.Name)), inputTokens) {
				return item
			}
		}
	}

	return nil
}

// tokensCovered reports whether every name token matches some input
// token by substring containment in either direction.
func tokensCovered(nameTokens, inputTokens []string) bool {
	if len(nameTokens) == 0 {
		return false
	}
	for _, nt := range nameTokens {
		matched := false
		for _, it := range inputTokens {
			if strings.Contains(it, nt) || strings.Contains(nt, it) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
