package handlers

import (
	"net/http"

	"pub_pos_backend/internal/cart"
	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler exposes the in-memory carts and their checkout.
type CartHandler struct {
	carts           *cart.Registry
	menuService     services.MenuService
	orderService    services.OrderService
	settingsService services.SettingsService
}

func NewCartHandler(carts *cart.Registry, ms services.MenuService, os services.OrderService, ss services.SettingsService) *CartHandler {
	return &CartHandler{carts: carts, menuService: ms, orderService: os, settingsService: ss}
}

// CartResponse is a cart priced under the settings in effect.
type CartResponse struct {
	ID         string      `json:"id"`
	Items      []cart.Item `json:"items"`
	TotalItems int         `json:"totalItems"`
	TaxRate    float64     `json:"taxRate"`
	cart.Quote
}

type addCartItemRequest struct {
	ItemID   string `json:"id" binding:"required"`
	Quantity int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) render(c *gin.Context, status int, id string, basket *cart.Cart) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		utils.LogWarn(err, "CartHandler: settings unavailable, pricing with defaults")
	}
	c.JSON(status, CartResponse{
		ID:         id,
		Items:      basket.Items(),
		TotalItems: basket.TotalItems(),
		TaxRate:    settings.TaxRate,
		Quote:      basket.Quote(settings.TaxRate),
	})
}

func (h *CartHandler) load(c *gin.Context) (string, *cart.Cart, bool) {
	id := c.Param("id")
	basket, err := h.carts.Get(id)
	if err != nil {
		respondServiceError(c, err, "Failed to load cart.")
		return "", nil, false
	}
	return id, basket, true
}

func (h *CartHandler) CreateCart(c *gin.Context) {
	id, basket := h.carts.Create()
	h.render(c, http.StatusCreated, id, basket)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	if id, basket, ok := h.load(c); ok {
		h.render(c, http.StatusOK, id, basket)
	}
}

// AddItem adds a catalog item at its current price.
func (h *CartHandler) AddItem(c *gin.Context) {
	id, basket, ok := h.load(c)
	if !ok {
		return
	}
	var req addCartItemRequest
	if !bindJSON(c, &req, "AddItem") {
		return
	}

	item, err := h.menuService.GetMenuItem(c.Request.Context(), req.ItemID)
	if err != nil {
		utils.LogError(err, "AddItem: Error from menuService.GetMenuItem for ID "+req.ItemID)
		respondServiceError(c, err, "Failed to add item.")
		return
	}
	basket.Add(*item, req.Quantity)
	h.render(c, http.StatusOK, id, basket)
}

// UpdateItem sets a line's quantity; zero or less removes it.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, basket, ok := h.load(c)
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !bindJSON(c, &req, "UpdateItem") {
		return
	}
	basket.UpdateQuantity(c.Param("itemId"), req.Quantity)
	h.render(c, http.StatusOK, id, basket)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, basket, ok := h.load(c)
	if !ok {
		return
	}
	basket.UpdateQuantity(c.Param("itemId"), 0)
	h.render(c, http.StatusOK, id, basket)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	id, basket, ok := h.load(c)
	if !ok {
		return
	}
	basket.Clear()
	h.render(c, http.StatusOK, id, basket)
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	h.carts.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Checkout submits the cart as an order. A signed-in caller is recorded as the
// staff member who placed it.
func (h *CartHandler) Checkout(c *gin.Context) {
	_, basket, ok := h.load(c)
	if !ok {
		return
	}
	var req services.SubmitOrderRequest
	if !bindJSON(c, &req, "Checkout") {
		return
	}

	placed, err := h.orderService.Submit(c.Request.Context(), basket, req, staffContext(c))
	if err != nil {
		utils.LogError(err, "Checkout: Error from orderService.Submit")
		respondServiceError(c, err, "Failed to place order.")
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func staffContext(c *gin.Context) *services.StaffContext {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return nil
	}
	return &services.StaffContext{StaffID: sess.StaffID, Name: sess.Name}
}
