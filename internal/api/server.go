package api

import (
	"errors"
	"net/http"
	"time"

	"sommelier/internal/cart"
	"sommelier/internal/chat"
	"sommelier/internal/menu"
	"sommelier/internal/monitoring"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP surface for the ordering service.
type Server struct {
	Router  *gin.Engine
	menu    *menu.Menu
	carts   *cart.Manager
	gen     chat.Generator
	monitor *monitoring.Monitor
}

// NewServer creates the server and wires all routes.
func NewServer(m *menu.Menu, carts *cart.Manager, gen chat.Generator, monitor *monitoring.Monitor) *Server {
	router := gin.Default()

	s := &Server{
		Router:  router,
		menu:    m,
		carts:   carts,
		gen:     gen,
		monitor: monitor,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Sommelier API is running"})
	})

	s.Router.GET("/ws/chat", s.HandleChatSocket)

	v1 := s.Router.Group("/api/v1")
	{
		v1.GET("/menu", s.GetMenu)
		v1.GET("/metrics", s.GetMetrics)

		// Conversational ordering
		v1.POST("/chat", s.Chat)

		// Cart session management
		v1.GET("/cart/:device", s.GetCart)
		v1.POST("/cart/:device/items", s.AddCartItem)
		v1.PUT("/cart/:device/items/:itemId", s.UpdateCartItem)
		v1.DELETE("/cart/:device/items/:itemId", s.RemoveCartItem)
		v1.DELETE("/cart/:device", s.ClearCart)
		v1.POST("/cart/:device/checkout", s.Checkout)
	}
}

// GetMenu returns the configured menu.
func (s *Server) GetMenu(c *gin.Context) {
	c.JSON(http.StatusOK, s.menu)
}

// GetMetrics returns the monitor's metric snapshot.
func (s *Server) GetMetrics(c *gin.Context) {
	if s.monitor == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}

// chatRequest is the wire contract for one stateless chat turn. All
// three fields must be present; cart may be empty but not absent.
type chatRequest struct {
	Messages *[]chat.Message `json:"messages"`
	Menu     *menu.Menu      `json:"menu"`
	Cart     *[]cart.Line    `json:"cart"`
}

// Chat runs one conversational turn against the menu and cart supplied
// in the request. The caller owns its cart copy; the response carries
// the action for it to apply locally.
func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.chatError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Messages == nil || len(*req.Messages) == 0 {
		s.chatError(c, http.StatusBadRequest, "messages array is required")
		return
	}
	if req.Menu == nil {
		s.chatError(c, http.StatusBadRequest, "menu is required")
		return
	}
	if req.Cart == nil {
		s.chatError(c, http.StatusBadRequest, "cart array is required")
		return
	}
	if err := req.Menu.Validate(); err != nil {
		s.chatError(c, http.StatusBadRequest, err.Error())
		return
	}
	for _, line := range *req.Cart {
		if line.ItemID == "" || line.Quantity < 1 {
			s.chatError(c, http.StatusBadRequest, "invalid cart line")
			return
		}
	}

	// The request cart is a detached snapshot; mutations happen on the
	// caller's copy, so the turn runs against a throwaway aggregate.
	turnCart := cartFromLines(*req.Cart)

	result, err := chat.RunTurn(c.Request.Context(), s.gen, req.Menu, turnCart, *req.Messages)
	if err != nil {
		s.recordTurn("fallback", "")
		c.JSON(statusForError(err), gin.H{
			"error":            err.Error(),
			"response_to_user": result.Reply,
			"action":           nil,
		})
		return
	}

	s.recordTurn("ok", string(result.Action.Type))
	c.JSON(http.StatusOK, gin.H{
		"response_to_user": result.Reply,
		"action":           result.Action,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) chatError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"error":            msg,
		"response_to_user": "I couldn't process that request. Please try again.",
		"action":           nil,
	})
}

// statusForError maps the classified generation failures onto the
// wire's status taxonomy: 500 configuration/internal, 503 unavailable.
func statusForError(err error) int {
	switch {
	case errors.Is(err, chat.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// cartFromLines builds a detached in-memory cart preloaded with the
// given lines.
func cartFromLines(lines []cart.Line) *cart.Cart {
	c := cart.New("request", cart.NewMemoryStore())
	for _, line := range lines {
		for i := 0; i < line.Quantity; i++ {
			c.AddItem(line.ItemID, line.Name, line.Price, line.Modifiers)
		}
	}
	return c
}

func (s *Server) recordTurn(outcome, actionType string) {
	if s.monitor == nil {
		return
	}
	s.monitor.TurnCompleted(outcome)
	if actionType != "" {
		s.monitor.ActionParsed(actionType)
	}
}
