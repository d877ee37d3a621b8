package handler

import (
	"net/http"

	"auction-storefront/services/common"
	"auction-storefront/services/storefront/helpers"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	service CartService
}

func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

// GetCartHandler handles GET /cart
func (h *CartHandler) GetCartHandler(c *gin.Context) {
	user, ok := signedIn(c, "GetCartHandler")
	if !ok {
		return
	}

	cart, err := h.service.Get(user.UserID)
	if err != nil {
		common.RespondError(c, "GetCartHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewCartResponse(cart), "cart retrieved successfully")
}

// AddItemHandler handles POST /cart/items
func (h *CartHandler) AddItemHandler(c *gin.Context) {
	user, ok := signedIn(c, "AddItemHandler")
	if !ok {
		return
	}

	var req helpers.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "AddItemHandler", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.service.Add(user.UserID, req.ProductID, req.Quantity, req.Customizations)
	if err != nil {
		common.RespondError(c, "AddItemHandler", err, map[string]any{
			"user_id":    user.UserID,
			"product_id": req.ProductID,
			"quantity":   req.Quantity,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewCartResponse(cart), "item added to cart")
	common.LogSuccess("AddItemHandler", "item added to cart", map[string]any{
		"user_id":     user.UserID,
		"product_id":  req.ProductID,
		"total_items": cart.TotalItems,
	})
}

// UpdateItemHandler handles PATCH /cart/items/:item_id. A quantity of zero
// or less removes the line.
func (h *CartHandler) UpdateItemHandler(c *gin.Context) {
	user, ok := signedIn(c, "UpdateItemHandler")
	if !ok {
		return
	}

	var req helpers.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "UpdateItemHandler", err)
		return
	}

	itemID := c.Param("item_id")
	cart, err := h.service.UpdateQuantity(user.UserID, itemID, *req.Quantity)
	if err != nil {
		common.RespondError(c, "UpdateItemHandler", err, map[string]any{"user_id": user.UserID, "item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewCartResponse(cart), "cart updated")
}

// RemoveItemHandler handles DELETE /cart/items/:item_id
func (h *CartHandler) RemoveItemHandler(c *gin.Context) {
	user, ok := signedIn(c, "RemoveItemHandler")
	if !ok {
		return
	}

	itemID := c.Param("item_id")
	cart, err := h.service.Remove(user.UserID, itemID)
	if err != nil {
		common.RespondError(c, "RemoveItemHandler", err, map[string]any{"user_id": user.UserID, "item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewCartResponse(cart), "item removed from cart")
}

// ClearCartHandler handles DELETE /cart
func (h *CartHandler) ClearCartHandler(c *gin.Context) {
	user, ok := signedIn(c, "ClearCartHandler")
	if !ok {
		return
	}

	if err := h.service.Clear(user.UserID); err != nil {
		common.RespondError(c, "ClearCartHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.CartResponse{Items: []helpers.CartItemResponse{}}, "cart cleared")
}
