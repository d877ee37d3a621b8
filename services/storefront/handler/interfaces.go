package handler

import (
	"auction-storefront/internal/cart"
	"auction-storefront/internal/catalog"
	"auction-storefront/internal/checkout"
	"auction-storefront/internal/dashboard"
	"auction-storefront/internal/identity"
	"auction-storefront/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces.go -package=handler

type AuthService interface {
	Register(name, email, password string) (identity.Session, error)
	Login(email, password string) (identity.Session, error)
	Logout(token string) error
}

type CatalogService interface {
	List(f catalog.Filter) ([]models.Product, error)
	Get(productID string) (models.Product, error)
	Featured() ([]models.Product, error)
	Categories() ([]string, error)
}

type CartService interface {
	Get(userID string) (cart.Cart, error)
	Add(userID, productID string, quantity int, customizations map[string]string) (cart.Cart, error)
	Remove(userID, itemID string) (cart.Cart, error)
	UpdateQuantity(userID, itemID string, quantity int) (cart.Cart, error)
	Clear(userID string) error
}

type CheckoutService interface {
	Quote(userID, productID string, quantity int) (checkout.Quote, error)
	PlaceOrder(userID, productID string, quantity int, customizations map[string]string) (models.Order, error)
	CheckoutCart(userID string) ([]models.Order, error)
	Orders(userID string) ([]models.Order, error)
}

type DashboardService interface {
	CreateProduct(seller models.User, in dashboard.ProductInput) (models.Product, error)
	UpdateProduct(editor models.User, productID string, in dashboard.ProductInput) (models.Product, error)
	DeleteProduct(editor models.User, productID string) error
	SellerProducts(sellerID string) ([]models.Product, error)
	SellerAnalytics(sellerID string) (dashboard.SalesReport, error)
	SiteAnalytics() (dashboard.SiteReport, error)
	Users() ([]models.User, error)
	SetUserRole(userID string, role models.Role) (models.User, error)
	SetUserStatus(userID string, status models.UserStatus) (models.User, error)
	RequestSeller(user models.User, reason string) (models.SellerRequest, error)
	SellerRequests() ([]models.SellerRequest, error)
	DecideSellerRequest(requestID string, approve bool) (models.SellerRequest, error)
}
