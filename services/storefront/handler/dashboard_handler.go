package handler

import (
	"net/http"

	"auction-storefront/services/common"
	"auction-storefront/services/storefront/helpers"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the seller and admin dashboards and seller applications
type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// SellerProductsHandler handles GET /seller/products
func (h *DashboardHandler) SellerProductsHandler(c *gin.Context) {
	user, ok := signedIn(c, "SellerProductsHandler")
	if !ok {
		return
	}

	products, err := h.service.SellerProducts(user.UserID)
	if err != nil {
		common.RespondError(c, "SellerProductsHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewProductResponses(products), "products retrieved successfully")
}

// CreateProductHandler handles POST /seller/products
func (h *DashboardHandler) CreateProductHandler(c *gin.Context) {
	user, ok := signedIn(c, "CreateProductHandler")
	if !ok {
		return
	}

	var req helpers.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "CreateProductHandler", err)
		return
	}

	product, err := h.service.CreateProduct(*user, req.ToInput())
	if err != nil {
		common.RespondError(c, "CreateProductHandler", err, map[string]any{"user_id": user.UserID, "name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, common.NewProductResponse(product), "product created")
	common.LogSuccess("CreateProductHandler", "product created", map[string]any{
		"user_id":    user.UserID,
		"product_id": product.ProductID,
		"type":       string(product.Type),
	})
}

// UpdateProductHandler handles PUT /seller/products/:product_id
func (h *DashboardHandler) UpdateProductHandler(c *gin.Context) {
	user, ok := signedIn(c, "UpdateProductHandler")
	if !ok {
		return
	}

	var req helpers.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "UpdateProductHandler", err)
		return
	}

	productID := c.Param("product_id")
	product, err := h.service.UpdateProduct(*user, productID, req.ToInput())
	if err != nil {
		common.RespondError(c, "UpdateProductHandler", err, map[string]any{"user_id": user.UserID, "product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewProductResponse(product), "product updated")
}

// DeleteProductHandler handles DELETE /seller/products/:product_id and DELETE /admin/products/:product_id
func (h *DashboardHandler) DeleteProductHandler(c *gin.Context) {
	user, ok := signedIn(c, "DeleteProductHandler")
	if !ok {
		return
	}

	productID := c.Param("product_id")
	if err := h.service.DeleteProduct(*user, productID); err != nil {
		common.RespondError(c, "DeleteProductHandler", err, map[string]any{"user_id": user.UserID, "product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "product deleted")
	common.LogSuccess("DeleteProductHandler", "product deleted", map[string]any{"user_id": user.UserID, "product_id": productID})
}

// SellerAnalyticsHandler handles GET /seller/analytics
func (h *DashboardHandler) SellerAnalyticsHandler(c *gin.Context) {
	user, ok := signedIn(c, "SellerAnalyticsHandler")
	if !ok {
		return
	}

	report, err := h.service.SellerAnalytics(user.UserID)
	if err != nil {
		common.RespondError(c, "SellerAnalyticsHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewSalesReportResponse(report), "analytics retrieved successfully")
}

// RequestSellerHandler handles POST /account/seller-request
func (h *DashboardHandler) RequestSellerHandler(c *gin.Context) {
	user, ok := signedIn(c, "RequestSellerHandler")
	if !ok {
		return
	}

	var req helpers.SellerApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "RequestSellerHandler", err)
		return
	}

	request, err := h.service.RequestSeller(*user, req.Reason)
	if err != nil {
		common.RespondError(c, "RequestSellerHandler", err, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, request, "seller application submitted")
}

// UsersHandler handles GET /admin/users
func (h *DashboardHandler) UsersHandler(c *gin.Context) {
	users, err := h.service.Users()
	if err != nil {
		common.RespondError(c, "UsersHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, users, "users retrieved successfully")
}

// SetUserRoleHandler handles PATCH /admin/users/:user_id/role
func (h *DashboardHandler) SetUserRoleHandler(c *gin.Context) {
	var req helpers.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "SetUserRoleHandler", err)
		return
	}

	userID := c.Param("user_id")
	user, err := h.service.SetUserRole(userID, req.Role)
	if err != nil {
		common.RespondError(c, "SetUserRoleHandler", err, map[string]any{"user_id": userID, "role": string(req.Role)})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "user role updated")
	common.LogSuccess("SetUserRoleHandler", "user role updated", map[string]any{"user_id": userID, "role": string(req.Role)})
}

// SetUserStatusHandler handles PATCH /admin/users/:user_id/status
func (h *DashboardHandler) SetUserStatusHandler(c *gin.Context) {
	var req helpers.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "SetUserStatusHandler", err)
		return
	}

	userID := c.Param("user_id")
	user, err := h.service.SetUserStatus(userID, req.Status)
	if err != nil {
		common.RespondError(c, "SetUserStatusHandler", err, map[string]any{"user_id": userID, "status": string(req.Status)})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "user status updated")
	common.LogSuccess("SetUserStatusHandler", "user status updated", map[string]any{"user_id": userID, "status": string(req.Status)})
}

// SellerRequestsHandler handles GET /admin/seller-requests
func (h *DashboardHandler) SellerRequestsHandler(c *gin.Context) {
	requests, err := h.service.SellerRequests()
	if err != nil {
		common.RespondError(c, "SellerRequestsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, requests, "seller requests retrieved successfully")
}

// DecideSellerRequestHandler handles POST /admin/seller-requests/:request_id/decision
func (h *DashboardHandler) DecideSellerRequestHandler(c *gin.Context) {
	var req helpers.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "DecideSellerRequestHandler", err)
		return
	}

	requestID := c.Param("request_id")
	decided, err := h.service.DecideSellerRequest(requestID, *req.Approve)
	if err != nil {
		common.RespondError(c, "DecideSellerRequestHandler", err, map[string]any{"request_id": requestID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, decided, "seller request "+string(decided.Status))
	common.LogSuccess("DecideSellerRequestHandler", "seller request decided", map[string]any{
		"request_id": requestID,
		"user_id":    decided.UserID,
		"status":     string(decided.Status),
	})
}

// SiteAnalyticsHandler handles GET /admin/analytics
func (h *DashboardHandler) SiteAnalyticsHandler(c *gin.Context) {
	report, err := h.service.SiteAnalytics()
	if err != nil {
		common.RespondError(c, "SiteAnalyticsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewSiteReportResponse(report), "analytics retrieved successfully")
}
