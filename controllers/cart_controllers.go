package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/tastehub/cart"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

// CartController exposes the session cart of a table guest.
type CartController struct {
	Sessions *cart.Sessions
	Menu     *repository.MenuRepository
}

func NewCartController(sessions *cart.Sessions, menu *repository.MenuRepository) *CartController {
	return &CartController{Sessions: sessions, Menu: menu}
}

type cartView struct {
	SessionID   string          `json:"sessionId"`
	Items       []cart.Item     `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	TableNumber string          `json:"tableNumber"`
	Signal      string          `json:"signal,omitempty"`
}

func (cc *CartController) open(c *gin.Context) (*cart.Store, bool) {
	store, err := cc.Sessions.Open(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return nil, false
	}
	return store, true
}

func (cc *CartController) respond(c *gin.Context, store *cart.Store, message string, signal cart.Signal) {
	table, err := store.Table(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	view := cartView{
		SessionID:   c.Param("session_id"),
		Items:       store.Items(),
		TotalItems:  store.TotalItems(),
		TotalPrice:  store.TotalPrice(),
		TableNumber: table,
	}
	if view.Items == nil {
		view.Items = []cart.Item{}
	}
	if signal != cart.SignalNone {
		view.Signal = signal.String()
	}
	utils.RespondJSON(c, http.StatusOK, message, view)
}

// GetCart -> GET /cart/:session_id
func (cc *CartController) GetCart(c *gin.Context) {
	store, ok := cc.open(c)
	if !ok {
		return
	}
	cc.respond(c, store, "Cart", cart.SignalNone)
}

// AddItem -> POST /cart/:session_id/items {menuItemId}
func (cc *CartController) AddItem(c *gin.Context) {
	var req struct {
		MenuItemID string `json:"menuItemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("menuItemId is required"))
		return
	}

	store, ok := cc.open(c)
	if !ok {
		return
	}

	item, err := cc.Menu.Get(c.Request.Context(), req.MenuItemID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if !item.Available {
		utils.RespondAppError(c, utils.NewValidationError("menuItemId", item.Name+" is currently unavailable"))
		return
	}

	signal, err := store.AddItem(c.Request.Context(), *item)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cc.respond(c, store, item.Name+" added to cart", signal)
}

// UpdateQuantity -> PATCH /cart/:session_id/items/:item_id {quantity}
// Quantity di bawah 1 menghapus item.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("quantity is required"))
		return
	}

	store, ok := cc.open(c)
	if !ok {
		return
	}

	signal, err := store.UpdateQuantity(c.Request.Context(), c.Param("item_id"), *req.Quantity)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cc.respond(c, store, "Cart updated", signal)
}

// RemoveItem -> DELETE /cart/:session_id/items/:item_id
func (cc *CartController) RemoveItem(c *gin.Context) {
	store, ok := cc.open(c)
	if !ok {
		return
	}

	signal, err := store.RemoveItem(c.Request.Context(), c.Param("item_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cc.respond(c, store, "Item removed from cart", signal)
}

// ClearCart -> DELETE /cart/:session_id
func (cc *CartController) ClearCart(c *gin.Context) {
	store, ok := cc.open(c)
	if !ok {
		return
	}

	if err := store.Clear(c.Request.Context()); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cc.respond(c, store, "Cart cleared", cart.SignalCleared)
}

// SetTable -> PUT /cart/:session_id/table {tableNumber}
// Dipanggil saat tamu membuka menu dari QR meja.
func (cc *CartController) SetTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"tableNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	store, ok := cc.open(c)
	if !ok {
		return
	}

	if err := store.RememberTable(c.Request.Context(), req.TableNumber); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cc.respond(c, store, "Table number saved", cart.SignalNone)
}
