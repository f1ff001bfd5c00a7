package handlers

import (
	"net/http"

	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MenuHandler serves the catalog and the catalog-derived views.
type MenuHandler struct {
	menuService   services.MenuService
	reportService services.ReportService
}

func NewMenuHandler(ms services.MenuService, rs services.ReportService) *MenuHandler {
	return &MenuHandler{menuService: ms, reportService: rs}
}

// GetMenu lists the catalog, optionally filtered by ?q= on name or description.
func (h *MenuHandler) GetMenu(c *gin.Context) {
	items, err := h.menuService.ListMenu(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetMenu: Error from menuService.ListMenu")
		respondServiceError(c, err, "Failed to fetch menu.")
		return
	}
	if q := c.Query("q"); q != "" {
		filtered := make([]models.MenuItem, 0, len(items))
		for _, item := range items {
			if services.MatchesQuery(item, q) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func (h *MenuHandler) GetMenuItemByID(c *gin.Context) {
	item, err := h.menuService.GetMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.LogError(err, "GetMenuItemByID: Error from menuService.GetMenuItem for ID "+c.Param("id"))
		respondServiceError(c, err, "Failed to fetch menu item.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetPopularItems ranks the most ordered items.
func (h *MenuHandler) GetPopularItems(c *gin.Context) {
	items, err := h.reportService.PopularItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		utils.LogError(err, "GetPopularItems: Error from reportService.PopularItems")
		respondServiceError(c, err, "Failed to compute popular items.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

// GetCategories groups the catalog by category.
func (h *MenuHandler) GetCategories(c *gin.Context) {
	groups, err := h.reportService.MenuByCategory(c.Request.Context(), c.Query("q"))
	if err != nil {
		utils.LogError(err, "GetCategories: Error from reportService.MenuByCategory")
		respondServiceError(c, err, "Failed to group menu.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups, "total": len(groups)})
}

func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	var req services.CreateMenuItemRequest
	if !bindJSON(c, &req, "CreateMenuItem") {
		return
	}

	item, err := h.menuService.CreateMenuItem(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateMenuItem: Error from menuService.CreateMenuItem")
		respondServiceError(c, err, "Failed to create menu item.")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	var req services.UpdateMenuItemRequest
	if !bindJSON(c, &req, "UpdateMenuItem") {
		return
	}

	item, err := h.menuService.UpdateMenuItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.LogError(err, "UpdateMenuItem: Error from menuService.UpdateMenuItem for ID "+c.Param("id"))
		respondServiceError(c, err, "Failed to update menu item.")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	if err := h.menuService.DeleteMenuItem(c.Request.Context(), c.Param("id")); err != nil {
		utils.LogError(err, "DeleteMenuItem: Error from menuService.DeleteMenuItem for ID "+c.Param("id"))
		respondServiceError(c, err, "Failed to delete menu item.")
		return
	}
	c.Status(http.StatusNoContent)
}

// SeedMenu writes the demo catalog.
func (h *MenuHandler) SeedMenu(c *gin.Context) {
	n, err := h.menuService.SeedMenu(c.Request.Context())
	if err != nil {
		utils.LogError(err, "SeedMenu: Error from menuService.SeedMenu")
		respondServiceError(c, err, "Failed to seed menu.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"seeded": n})
}

type describeRequest struct {
	Name string `json:"name" binding:"required"`
}

// DescribeMenuItem returns generated menu copy. Generator failures still answer 200
// with the fallback text.
func (h *MenuHandler) DescribeMenuItem(c *gin.Context) {
	var req describeRequest
	if !bindJSON(c, &req, "DescribeMenuItem") {
		return
	}

	text, err := h.menuService.DescribeItem(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err, "Failed to describe menu item.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}
