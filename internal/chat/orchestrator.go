package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"sommelier/internal/cart"
	"sommelier/internal/menu"
)

// State tracks where a turn is in its lifecycle.
type State string

const (
	StateIdle     State = "idle"
	StateSending  State = "sending"
	StateApplying State = "applying"
	StateFailed   State = "failed"
)

// MaxQuantity bounds any single add or quantity update.
const MaxQuantity = 100

// Fixed user-facing messages for recoverable turn outcomes.
const (
	msgItemNotFound      = "Sorry, I couldn't find that item on the menu."
	msgNotInCart         = "I couldn't find that item in your cart."
	msgQuantityRange     = "Quantities must be between 1 and 100."
	msgEmptyCartCheckout = "Your cart is empty. Add something before checking out."

	fallbackConfiguration = "The ordering assistant isn't configured right now. Please use the menu to add items to your cart."
	fallbackUnavailable   = "The ordering assistant is temporarily unavailable due to high demand. Please try again in a moment."
	fallbackEmptyReply    = "The ordering assistant sent back something I couldn't read. Please try again."
	fallbackGeneric       = "Something went wrong while reaching the ordering assistant. Please try again."
)

// FallbackMessage maps a classified generation failure to its fixed
// user-facing message.
func FallbackMessage(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return fallbackConfiguration
	case errors.Is(err, ErrUnavailable):
		return fallbackUnavailable
	case errors.Is(err, ErrEmptyReply):
		return fallbackEmptyReply
	default:
		return fallbackGeneric
	}
}

// Recorder receives turn-level events for metrics and analytics.
type Recorder interface {
	TurnCompleted(outcome string)
	ActionParsed(actionType string)
}

// TurnResult is what one completed turn hands back to the caller.
// CheckoutRequested signals that the caller should open its checkout
// surface; the orchestrator never does that itself.
type TurnResult struct {
	Reply             string
	Action            *Action
	CheckoutRequested bool
}

// RunTurn drives one stateless chat turn: build context, call the
// generator, parse the reply, validate and apply the action. All
// collaborator failures are recovered into a fallback message; the
// returned error carries the classification for callers that expose an
// HTTP status. The cart is never left mid-mutation.
func RunTurn(ctx context.Context, gen Generator, m *menu.Menu, c *cart.Cart, transcript []Message) (TurnResult, error) {
	systemContext := BuildSystemContext(m, c.Lines())

	reply, err := gen.Generate(ctx, systemContext, transcript)
	if err != nil {
		return TurnResult{Reply: FallbackMessage(err)}, err
	}

	action := Parse(reply, m)
	userReply, checkout := applyAction(&action, m, c)

	return TurnResult{
		Reply:             userReply,
		Action:            &action,
		CheckoutRequested: checkout,
	}, nil
}

// applyAction validates the parsed action against menu and cart state
// and applies it. Validation failures take no cart action and swap the
// reply for the fixed explanatory message.
func applyAction(action *Action, m *menu.Menu, c *cart.Cart) (string, bool) {
	switch action.Type {
	case ActionAddItem:
		quantity := action.Quantity
		if quantity == 0 {
			quantity = 1
		}
		item := m.ItemByID(action.ItemID)
		if item == nil {
			return msgItemNotFound, false
		}
		if quantity < 1 || quantity > MaxQuantity {
			return msgQuantityRange, false
		}
		for i := 0; i < quantity; i++ {
			c.AddItem(item.ID, item.Name, item.Price, nil)
		}
		return action.Message, false

	case ActionRemoveItem:
		if !c.Contains(action.ItemID) {
			return msgNotInCart, false
		}
		c.RemoveItem(action.ItemID)
		return action.Message, false

	case ActionUpdateQuantity:
		if !c.Contains(action.ItemID) {
			return msgNotInCart, false
		}
		if action.Quantity < 1 || action.Quantity > MaxQuantity {
			return msgQuantityRange, false
		}
		c.UpdateQuantity(action.ItemID, action.Quantity)
		return action.Message, false

	case ActionCheckout:
		if c.IsEmpty() {
			return msgEmptyCartCheckout, false
		}
		return action.Message, true

	case ActionSuggestItems:
		if popular := m.ItemsByTag("popular"); len(popular) > 0 {
			names := make([]string, len(popular))
			for i, item := range popular {
				names[i] = item.Name
			}
			if action.Metadata == nil {
				action.Metadata = make(map[string]any)
			}
			action.Metadata["suggestions"] = names
		}
		return action.Message, false

	default:
		// SHOW_CART and ANSWER_QUESTION surface the text unchanged.
		return action.Message, false
	}
}

// Orchestrator runs a session's chat turns against one cart. One turn
// is in flight at a time; the transcript is append-only and ordered by
// turn completion.
type Orchestrator struct {
	menu      *menu.Menu
	cart      *cart.Cart
	gen       Generator
	recorders []Recorder

	mu         sync.Mutex
	transcript []Message

	// state is observable mid-turn, so it sits under its own lock
	// instead of the turn mutex.
	stateMu sync.Mutex
	state   State
}

// NewOrchestrator creates a session orchestrator over the given menu,
// cart and generator.
func NewOrchestrator(m *menu.Menu, c *cart.Cart, gen Generator, recorders ...Recorder) *Orchestrator {
	return &Orchestrator{
		menu:      m,
		cart:      c,
		gen:       gen,
		recorders: recorders,
		state:     StateIdle,
	}
}

// Turn processes one user message start to finish. Concurrent callers
// serialize; a turn always ends back in the idle state with both the
// user text and the assistant reply appended to the transcript.
func (o *Orchestrator) Turn(ctx context.Context, userText string) TurnResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.setState(StateIdle)

	o.setState(StateSending)
	o.transcript = append(o.transcript, Message{
		Role:      RoleUser,
		Content:   userText,
		Timestamp: time.Now(),
	})

	result, err := RunTurn(ctx, o.gen, o.menu, o.cart, o.transcript)
	if err != nil {
		o.setState(StateFailed)
		o.record("fallback", "")
	} else {
		o.setState(StateApplying)
		o.record("ok", string(result.Action.Type))
	}

	o.transcript = append(o.transcript, Message{
		Role:      RoleAssistant,
		Content:   result.Reply,
		Timestamp: time.Now(),
	})

	return result
}

// Transcript returns a copy of the conversation so far.
func (o *Orchestrator) Transcript() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// Cart returns the cart this session mutates.
func (o *Orchestrator) Cart() *cart.Cart {
	return o.cart
}

// State reports where the session is in its turn lifecycle. It is safe
// to call while a turn is in flight.
func (o *Orchestrator) State() State {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.stateMu.Lock()
	o.state = s
	o.stateMu.Unlock()
}

func (o *Orchestrator) record(outcome, actionType string) {
	for _, r := range o.recorders {
		r.TurnCompleted(outcome)
		if actionType != "" {
			r.ActionParsed(actionType)
		}
	}
}
