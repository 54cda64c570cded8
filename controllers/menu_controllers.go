package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

type MenuController struct {
	Menu *repository.MenuRepository
}

func NewMenuController(menu *repository.MenuRepository) *MenuController {
	return &MenuController{Menu: menu}
}

type menuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    models.Category `json:"category"`
	Image       string          `json:"image"`
	Available   *bool           `json:"available"`
}

func (r menuItemRequest) toModel() *models.MenuItem {
	item := &models.MenuItem{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Image:       r.Image,
		Available:   true,
	}
	if r.Available != nil {
		item.Available = *r.Available
	}
	return item
}

// ListMenu -> GET /menu?category=&available=
func (mc *MenuController) ListMenu(c *gin.Context) {
	filter := repository.MenuFilter{Category: models.Category(c.Query("category"))}
	if filter.Category != "" && !filter.Category.Valid() {
		utils.RespondAppError(c, utils.NewValidationError("category", "unknown category"))
		return
	}
	if v := c.Query("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondAppError(c, utils.NewValidationError("available", "must be true or false"))
			return
		}
		filter.AvailableOnly = available
	}

	items, err := mc.Menu.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetMenuItem -> GET /menu/:item_id
func (mc *MenuController) GetMenuItem(c *gin.Context) {
	item, err := mc.Menu.Get(c.Request.Context(), c.Param("item_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item", item)
}

// CreateMenuItem -> POST /admin/menu
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	item := req.toModel()
	if err := mc.Menu.Create(c.Request.Context(), item); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Menu item created: %s (%s)", item.Name, item.ID)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenuItem -> PUT /admin/menu/:item_id
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	item, err := mc.Menu.Save(c.Request.Context(), c.Param("item_id"), req.toModel())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// SetAvailability -> PATCH /admin/menu/:item_id/availability {available}
func (mc *MenuController) SetAvailability(c *gin.Context) {
	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("available is required"))
		return
	}

	item, err := mc.Menu.SetAvailability(c.Request.Context(), c.Param("item_id"), *req.Available)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability updated", item)
}

// DeleteMenuItem -> DELETE /admin/menu/:item_id
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id := c.Param("item_id")
	if err := mc.Menu.Delete(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Menu item deleted: %s", id)
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}
