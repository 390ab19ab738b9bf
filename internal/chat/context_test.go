package chat

import (
	"testing"

	"sommelier/internal/cart"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemContextEmptyCart(t *testing.T) {
	prompt := BuildSystemContext(testMenu(), nil)

	assert.Contains(t, prompt, "ordering assistant for Test Sushi")
	assert.Contains(t, prompt, "AVAILABLE MENU ITEMS:")
	assert.Contains(t, prompt, "- Edamame (ID: edamame): $4.50")
	assert.Contains(t, prompt, "- California Roll (ID: cal-roll): $8.99")
	assert.Contains(t, prompt, "Cart is empty")
	assert.Contains(t, prompt, "Total: $0.00")
}

func TestBuildSystemContextIncludesDescriptions(t *testing.T) {
	m := testMenu()
	m.Categories[0].Items[0].Description = "Steamed soybeans with sea salt"

	prompt := BuildSystemContext(m, nil)

	assert.Contains(t, prompt, "- Edamame (ID: edamame): $4.50 - Steamed soybeans with sea salt")
}

func TestBuildSystemContextCartLines(t *testing.T) {
	lines := []cart.Line{
		{ItemID: "cal-roll", Name: "California Roll", Price: 8.99, Quantity: 2},
		{ItemID: "edamame", Name: "Edamame", Price: 4.5, Quantity: 1},
	}

	prompt := BuildSystemContext(testMenu(), lines)

	assert.Contains(t, prompt, "- California Roll (ID: cal-roll): $8.99 × 2 = $17.98")
	assert.Contains(t, prompt, "- Edamame (ID: edamame): $4.50 × 1 = $4.50")
	assert.Contains(t, prompt, "Total: $22.48")
	assert.NotContains(t, prompt, "Cart is empty")
}

func TestBuildSystemContextTeachesMarkerGrammar(t *testing.T) {
	prompt := BuildSystemContext(testMenu(), nil)

	assert.Contains(t, prompt, `"Action: ADD_ITEM with ID [item-id]"`)
	assert.Contains(t, prompt, `"Action: UPDATE_QUANTITY with ID [item-id] quantity [number]"`)
	assert.Contains(t, prompt, `"Action: SHOW_CART"`)
	assert.Contains(t, prompt, `"Action: CHECKOUT"`)
}
