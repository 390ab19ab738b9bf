package chat

import "time"

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in the conversation transcript. The transcript
// is append-only and lives only for the session.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ActionType enumerates the structured intents the parser can extract
// from an assistant reply. Exactly one per parsed turn.
type ActionType string

const (
	ActionAddItem        ActionType = "ADD_ITEM"
	ActionRemoveItem     ActionType = "REMOVE_ITEM"
	ActionUpdateQuantity ActionType = "UPDATE_QUANTITY"
	ActionShowCart       ActionType = "SHOW_CART"
	ActionCheckout       ActionType = "CHECKOUT"
	ActionSuggestItems   ActionType = "SUGGEST_ITEMS"
	ActionAnswerQuestion ActionType = "ANSWER_QUESTION"
)

// knownActionTypes is the closed set the parser will accept from an
// explicit marker.
var knownActionTypes = map[ActionType]bool{
	ActionAddItem:        true,
	ActionRemoveItem:     true,
	ActionUpdateQuantity: true,
	ActionShowCart:       true,
	ActionCheckout:       true,
	ActionSuggestItems:   true,
	ActionAnswerQuestion: true,
}

// needsItem reports whether an action type is meaningless without an
// item id.
func needsItem(t ActionType) bool {
	switch t {
	case ActionAddItem, ActionRemoveItem, ActionUpdateQuantity:
		return true
	}
	return false
}

// Action is the structured result of parsing one assistant reply.
// Message always carries the natural-language text shown to the user.
type Action struct {
	Type     ActionType     `json:"type"`
	ItemID   string         `json:"itemId,omitempty"`
	Quantity int            `json:"quantity,omitempty"`
	Message  string         `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
