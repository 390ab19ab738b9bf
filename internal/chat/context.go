package chat

import (
	"fmt"
	"strings"

	"sommelier/internal/cart"
	"sommelier/internal/menu"
)

// BuildSystemContext renders the menu, the current cart and the
// marker-grammar instructions into the system message for the
// generation collaborator. Pure function; unit-testable without any
// network call.
func BuildSystemContext(m *menu.Menu, lines []cart.Line) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a helpful restaurant ordering assistant for %s.\n\n", m.Name)

	b.WriteString("Your role is to help customers place orders by:\n")
	b.WriteString("1. Answering questions about menu items\n")
	b.WriteString("2. Adding items to the cart when customers request them\n")
	b.WriteString("3. Removing items from the cart when requested\n")
	b.WriteString("4. Suggesting popular or recommended items\n")
	b.WriteString("5. Helping with checkout when ready\n\n")

	b.WriteString("AVAILABLE MENU ITEMS:\n")
	for _, item := range m.Items() {
		fmt.Fprintf(&b, "- %s (ID: %s): $%.2f", item.Name, item.ID, item.Price)
		if item.Description != "" {
			fmt.Fprintf(&b, " - %s", item.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nCURRENT CART:\n")
	if len(lines) == 0 {
		b.WriteString("Cart is empty\n")
	} else {
		for _, line := range lines {
			fmt.Fprintf(&b, "- %s (ID: %s): $%.2f × %d = $%.2f\n",
				line.Name, line.ItemID, line.Price, line.Quantity, line.Subtotal())
		}
	}
	var total float64
	for _, line := range lines {
		total += line.Subtotal()
	}
	fmt.Fprintf(&b, "Total: $%.2f\n\n", total)

	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("- When a customer asks to add an item, identify it from the menu and respond with: \"Action: ADD_ITEM with ID [item-id]\"\n")
	b.WriteString("- When a customer asks to remove an item, identify it and respond with: \"Action: REMOVE_ITEM with ID [item-id]\"\n")
	b.WriteString("- When a customer asks to update quantity, respond with: \"Action: UPDATE_QUANTITY with ID [item-id] quantity [number]\"\n")
	b.WriteString("- When a customer asks about the cart, respond with: \"Action: SHOW_CART\"\n")
	b.WriteString("- When a customer is ready to checkout, respond with: \"Action: CHECKOUT\"\n")
	b.WriteString("- Be friendly, helpful, and confirm actions clearly\n")
	b.WriteString("- Always use the exact item ID from the menu (e.g., \"coconut-shrimp\", not \"Coconut Shrimp\")\n")
	b.WriteString("- If an item is not found, politely let the customer know and suggest similar items\n\n")

	b.WriteString("IMPORTANT: Always include the action in the format \"Action: [ACTION_TYPE] with ID [item-id]\" when performing cart operations.")

	return b.String()
}
