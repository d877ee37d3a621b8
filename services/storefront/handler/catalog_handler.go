package handler

import (
	"net/http"

	"auction-storefront/internal/catalog"
	"auction-storefront/services/common"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service CatalogService
}

func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProductsHandler handles GET /products?search=&category=&type=&sort=
func (h *CatalogHandler) ListProductsHandler(c *gin.Context) {
	filter := catalog.Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Sort:     catalog.SortOrder(c.Query("sort")),
	}

	products, err := h.service.List(filter)
	if err != nil {
		common.RespondError(c, "ListProductsHandler", err, map[string]any{
			"search":   filter.Search,
			"category": filter.Category,
			"type":     filter.Type,
			"sort":     string(filter.Sort),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewProductResponses(products), "products retrieved successfully")
}

// GetProductHandler handles GET /products/:product_id
func (h *CatalogHandler) GetProductHandler(c *gin.Context) {
	productID := c.Param("product_id")
	product, err := h.service.Get(productID)
	if err != nil {
		common.RespondError(c, "GetProductHandler", err, map[string]any{"product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewProductResponse(product), "product retrieved successfully")
}

// FeaturedHandler handles GET /products/featured
func (h *CatalogHandler) FeaturedHandler(c *gin.Context) {
	products, err := h.service.Featured()
	if err != nil {
		common.RespondError(c, "FeaturedHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, common.NewProductResponses(products), "featured products retrieved successfully")
}

// CategoriesHandler handles GET /categories
func (h *CatalogHandler) CategoriesHandler(c *gin.Context) {
	categories, err := h.service.Categories()
	if err != nil {
		common.RespondError(c, "CategoriesHandler", err, nil)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}
