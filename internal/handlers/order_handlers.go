package handlers

import (
	"net/http"
	"strconv"

	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateOrder places an order from explicit lines, attributed to the signed-in staff member.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.PlaceOrderRequest
	if !bindJSON(c, &req, "CreateOrder") {
		return
	}

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), req, staffContext(c))
	if err != nil {
		utils.LogError(err, "CreateOrder: Error from orderService.PlaceOrder")
		respondServiceError(c, err, "Failed to create order.")
		return
	}
	c.JSON(http.StatusCreated, placed)
}

// GetOrders lists orders newest first. Filters: status, view (active|ready|completed),
// table, staff_id.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters

	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	filters.View = c.Query("view")
	if tableStr := c.Query("table"); tableStr != "" {
		table, err := strconv.Atoi(tableStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid table format.", err.Error()))
			return
		}
		filters.Table = &table
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		filters.StaffID = &staffID
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetOrders: Error from orderService.ListOrders")
		respondServiceError(c, err, "Failed to fetch orders.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  orders,
		"total": len(orders),
	})
}

// GetOrderByID handles fetching a single order by ID
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	idStr := c.Param("id")
	order, err := h.orderService.GetOrderByID(c.Request.Context(), idStr)
	if err != nil {
		utils.LogError(err, "GetOrderByID: Error from orderService.GetOrderByID for ID "+idStr)
		respondServiceError(c, err, "Failed to fetch order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus advances an order along the lifecycle.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	idStr := c.Param("id")
	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req, "UpdateOrderStatus") {
		return
	}

	sess, ok := middleware.CurrentSession(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing session in context"))
		return
	}

	to, valid := models.ParseOrderStatus(req.Status)
	if !valid {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order status provided.", req.Status))
		return
	}

	order, err := h.orderService.Advance(c.Request.Context(), idStr, to, sess.Role)
	if err != nil {
		utils.LogError(err, "UpdateOrderStatus: Error from orderService.Advance for ID "+idStr)
		respondServiceError(c, err, "Failed to update order status.")
		return
	}
	c.JSON(http.StatusOK, order)
}
