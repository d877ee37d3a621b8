package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/services/common"
	"auction-storefront/services/storefront/helpers"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service CheckoutService
}

func NewCheckoutHandler(service CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// QuoteHandler handles GET /checkout/:product_id?quantity=
func (h *CheckoutHandler) QuoteHandler(c *gin.Context) {
	user, ok := signedIn(c, "QuoteHandler")
	if !ok {
		return
	}

	productID := c.Param("product_id")
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		common.RespondError(c, "QuoteHandler", fmt.Errorf("%w - %v", biddingerrors.ErrInvalidQuantity, err), map[string]any{"product_id": productID})
		return
	}

	quote, err := h.service.Quote(user.UserID, productID, quantity)
	if err != nil {
		common.RespondError(c, "QuoteHandler", err, map[string]any{"user_id": user.UserID, "product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewQuoteResponse(quote), "checkout quote ready")
}

// PlaceOrderHandler handles POST /checkout/:product_id
func (h *CheckoutHandler) PlaceOrderHandler(c *gin.Context) {
	user, ok := signedIn(c, "PlaceOrderHandler")
	if !ok {
		return
	}

	var req helpers.PlaceOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.HandleBindError(c, "PlaceOrderHandler", err)
			return
		}
	}

	productID := c.Param("product_id")
	order, err := h.service.PlaceOrder(user.UserID, productID, req.Quantity, req.Customizations)
	if err != nil {
		common.RespondError(c, "PlaceOrderHandler", err, map[string]any{"user_id": user.UserID, "product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewOrderResponse(order), "order placed")
	common.LogSuccess("PlaceOrderHandler", "order placed", map[string]any{
		"user_id":  user.UserID,
		"order_id": order.OrderID,
		"amount":   order.TotalAmount.StringFixed(2),
	})
}

// CheckoutCartHandler handles POST /checkout/cart
func (h *CheckoutHandler) CheckoutCartHandler(c *gin.Context) {
	user, ok := signedIn(c, "CheckoutCartHandler")
	if !ok {
		return
	}

	orders, err := h.service.CheckoutCart(user.UserID)
	if err != nil {
		common.RespondError(c, "CheckoutCartHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewOrderResponses(orders), "cart checked out")
	common.LogSuccess("CheckoutCartHandler", "cart checked out", map[string]any{
		"user_id": user.UserID,
		"orders":  len(orders),
	})
}

// OrdersHandler handles GET /account/orders
func (h *CheckoutHandler) OrdersHandler(c *gin.Context) {
	user, ok := signedIn(c, "OrdersHandler")
	if !ok {
		return
	}

	orders, err := h.service.Orders(user.UserID)
	if err != nil {
		common.RespondError(c, "OrdersHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewOrderResponses(orders), "orders retrieved successfully")
}
