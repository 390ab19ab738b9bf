package api

import (
	"net/http"
	"time"

	"sommelier/internal/cart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// cartView is the JSON shape for a hydrated cart.
type cartView struct {
	Device    string      `json:"device"`
	Lines     []cart.Line `json:"lines"`
	Total     float64     `json:"total"`
	ItemCount int         `json:"itemCount"`
}

func viewOf(device string, c *cart.Cart) cartView {
	lines := c.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartView{
		Device:    device,
		Lines:     lines,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

// GetCart returns the hydrated cart for a device.
func (s *Server) GetCart(c *gin.Context) {
	device := c.Param("device")
	c.JSON(http.StatusOK, viewOf(device, s.carts.Cart(device)))
}

// AddCartItem adds one unit of a menu item to the device cart. The
// price snapshot is taken from the menu at add time.
func (s *Server) AddCartItem(c *gin.Context) {
	device := c.Param("device")

	var req struct {
		ItemID    string          `json:"itemId" binding:"required"`
		Modifiers []cart.Modifier `json:"modifiers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := s.menu.ItemByID(req.ItemID)
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found on menu"})
		return
	}

	crt := s.carts.Cart(device)
	crt.AddItem(item.ID, item.Name, item.Price, req.Modifiers)

	c.JSON(http.StatusOK, viewOf(device, crt))
}

// UpdateCartItem sets the quantity on a cart line; zero removes it.
func (s *Server) UpdateCartItem(c *gin.Context) {
	device := c.Param("device")
	itemID := c.Param("itemId")

	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crt := s.carts.Cart(device)
	if *req.Quantity > 0 && !crt.Contains(itemID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	crt.UpdateQuantity(itemID, *req.Quantity)
	c.JSON(http.StatusOK, viewOf(device, crt))
}

// RemoveCartItem removes every variant of an item from the cart.
func (s *Server) RemoveCartItem(c *gin.Context) {
	device := c.Param("device")
	crt := s.carts.Cart(device)
	crt.RemoveItem(c.Param("itemId"))
	c.JSON(http.StatusOK, viewOf(device, crt))
}

// ClearCart empties the device cart.
func (s *Server) ClearCart(c *gin.Context) {
	device := c.Param("device")
	crt := s.carts.Cart(device)
	crt.Clear()
	c.JSON(http.StatusOK, viewOf(device, crt))
}

// Checkout runs the mock checkout: a non-empty cart produces a
// confirmation payload and the cart is cleared; an empty cart is
// rejected.
func (s *Server) Checkout(c *gin.Context) {
	device := c.Param("device")
	crt := s.carts.Cart(device)

	if crt.IsEmpty() {
		c.JSON(http.StatusConflict, gin.H{"error": "Cart is empty"})
		return
	}

	order := gin.H{
		"order_id":  uuid.NewString(),
		"lines":     crt.Lines(),
		"total":     crt.Total(),
		"currency":  s.menu.Currency,
		"placed_at": time.Now().UTC().Format(time.RFC3339),
	}
	crt.Clear()

	c.JSON(http.StatusOK, order)
}
