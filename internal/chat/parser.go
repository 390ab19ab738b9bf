package chat

import (
	"regexp"
	"strconv"
	"strings"

	"sommelier/internal/menu"
)

// Marker patterns tried in order against the lower-cased reply. The
// generation collaborator is instructed to emit
// "Action: ADD_ITEM with ID cal-roll quantity 2", but replies degrade
// through looser shapes.
var markerPatterns = []*regexp.Regexp{
	// "action: ADD_ITEM with ID cal-roll" / "... quantity 2"
	regexp.MustCompile(`action:\s*(\w+)\s+with\s+id\s+([a-z0-9-]+)(?:\s+quantity\s+(\d+))?`),
	// "action: ADD_ITEM cal-roll" / "action: ADD_ITEM cal-roll 2"
	regexp.MustCompile(`action:\s*(\w+)\s+([a-z0-9-]+)(?:\s+(\d+))?`),
	// "action: ADD_ITEM" with a kebab-case id somewhere later in the text
	regexp.MustCompile(`action:\s*(\w+).*?\b([a-z0-9]+(?:-[a-z0-9]+)+)\b`),
}

// bareMarker catches item-less markers like "Action: SHOW_CART".
var bareMarker = regexp.MustCompile(`action:\s*(\w+)`)

// kebabID matches ids like "coconut-shrimp" in loose prose.
var kebabID = regexp.MustCompile(`\b[a-z0-9]+(?:-[a-z0-9]+)+\b`)

var quantityDigits = regexp.MustCompile(`\b(\d+)\b`)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Parse converts a raw assistant reply into exactly one Action. It
// never fails: explicit markers win, then keyword inference, then a
// plain ANSWER_QUESTION carrying the full reply text.
func Parse(reply string, m *menu.Menu) Action {
	response := strings.ToLower(strings.TrimSpace(reply))

	if action, ok := parseMarker(reply, response, m); ok {
		return action
	}

	if action, ok := inferAction(reply, response, m); ok {
		return action
	}

	return Action{Type: ActionAnswerQuestion, Message: reply}
}

// parseMarker handles the explicit "action:" grammar.
func parseMarker(reply, response string, m *menu.Menu) (Action, bool) {
	for _, pattern := range markerPatterns {
		match := pattern.FindStringSubmatch(response)
		if match == nil {
			continue
		}

		actionType := ActionType(strings.ToUpper(match[1]))
		if !knownActionTypes[actionType] {
			continue
		}

		itemID := match[2]
		quantity := 0
		if len(match) > 3 && match[3] != "" {
			quantity, _ = strconv.Atoi(match[3])
		}

		if !needsItem(actionType) {
			return Action{Type: actionType, Quantity: quantity, Message: reply}, true
		}

		// A short or degenerate capture means the pattern grabbed part
		// of the marker itself; rescue from the surrounding text.
		if len(itemID) < 3 || itemID == strings.ToLower(string(actionType)) {
			itemID = rescueItemID(response, m)
		}
		if itemID == "" {
			continue
		}

		return Action{Type: actionType, ItemID: itemID, Quantity: quantity, Message: reply}, true
	}

	if match := bareMarker.FindStringSubmatch(response); match != nil {
		actionType := ActionType(strings.ToUpper(match[1]))
		if knownActionTypes[actionType] && !needsItem(actionType) {
			return Action{Type: actionType, Message: reply}, true
		}
	}

	return Action{}, false
}

// rescueItemID looks for a kebab-case id in the text, then falls back
// to fuzzy name resolution.
func rescueItemID(response string, m *menu.Menu) string {
	if id := kebabID.FindString(response); id != "" {
		return id
	}
	if item := menu.Resolve(response, m); item != nil {
		return item.ID
	}
	return ""
}

// inferAction applies the keyword heuristics in fixed order: add,
// remove, checkout, show-cart, suggest. First hit wins.
func inferAction(reply, response string, m *menu.Menu) (Action, bool) {
	if containsAny(response, "add", "added", "adding") {
		if item := menu.Resolve(response, m); item != nil {
			return Action{
				Type:     ActionAddItem,
				ItemID:   item.ID,
				Quantity: scanQuantity(response),
				Message:  reply,
			}, true
		}
	}

	if containsAny(response, "remove", "removed", "removing") {
		if item := menu.Resolve(response, m); item != nil {
			return Action{Type: ActionRemoveItem, ItemID: item.ID, Message: reply}, true
		}
	}

	if containsAny(response, "checkout", "check out", "place order", "complete order") {
		return Action{Type: ActionCheckout, Message: reply}, true
	}

	if containsAny(response, "show cart", "view cart", "cart summary") {
		return Action{Type: ActionShowCart, Message: reply}, true
	}

	if containsAny(response, "suggest", "recommend") {
		return Action{Type: ActionSuggestItems, Message: reply}, true
	}

	return Action{}, false
}

// scanQuantity extracts a quantity from prose: digits first, then the
// number words one through ten. Defaults to 1.
func scanQuantity(response string) int {
	if match := quantityDigits.FindStringSubmatch(response); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	for _, token := range strings.Fields(response) {
		if n, ok := numberWords[strings.Trim(token, ".,!?")]; ok {
			return n
		}
	}
	return 1
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
