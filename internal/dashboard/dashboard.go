package dashboard

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"auction-storefront/internal/auction"
	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"
	"auction-storefront/utils"

	"github.com/shopspring/decimal"
)

// Auctions is the auction registry the dashboards keep in step with the catalog
type Auctions interface {
	Open(product models.Product) error
	Remove(productID string)
	ListAuctionStatuses() []auction.Snapshot
}

// ProductInput is a seller's product listing form
type ProductInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	Category       string
	Type           models.ProductType
	Stock          int
	ImageURL       string
	DigitalFileURL string
	AuctionEndDate *time.Time
}

// Validate applies the listing form rules
func (in ProductInput) Validate(now time.Time) error {
	invalid := func(reason string) error {
		return fmt.Errorf("dashboard: %w - %s", biddingerrors.ErrInvalidProduct, reason)
	}
	switch {
	case len(strings.TrimSpace(in.Name)) < 3:
		return invalid("product name must be at least 3 characters")
	case len(strings.TrimSpace(in.Description)) < 10:
		return invalid("description must be at least 10 characters")
	case !in.Price.IsPositive():
		return invalid("price must be positive")
	case len(strings.TrimSpace(in.Category)) < 2:
		return invalid("category must be at least 2 characters")
	case in.Stock < 0:
		return invalid("stock cannot be negative")
	}
	switch in.Type {
	case models.ProductPhysical, models.ProductDigital:
	case models.ProductAuction:
		if in.AuctionEndDate == nil || !in.AuctionEndDate.After(now) {
			return invalid("auction end date must be in the future")
		}
	default:
		return invalid("type must be physical, digital or auction")
	}
	if u, err := url.ParseRequestURI(in.ImageURL); err != nil || u.Host == "" {
		return invalid("image url must be a valid url")
	}
	return nil
}

// SalesReport summarises orders for a seller or the whole site
type SalesReport struct {
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	TotalOrders    int              `json:"total_orders"`
	ItemsSold      int              `json:"items_sold"`
	ActiveListings int              `json:"active_listings"`
	OutOfStock     int              `json:"out_of_stock"`
	OpenAuctions   int              `json:"open_auctions"`
	TopProducts    []ProductRevenue `json:"top_products"`
}

// ProductRevenue is one row of the top selling products table
type ProductRevenue struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Units       int             `json:"units"`
}

// SiteReport is the admin analytics view
type SiteReport struct {
	SalesReport
	UsersByRole           map[models.Role]int        `json:"users_by_role"`
	ActiveUsers           int                        `json:"active_users"`
	ProductsByType        map[models.ProductType]int `json:"products_by_type"`
	PendingSellerRequests int                        `json:"pending_seller_requests"`
}

const topProductsShown = 5

// Service backs the seller and admin dashboards
type Service struct {
	products repository.CatalogDB
	users    repository.UserDB
	orders   repository.OrderDB
	auctions Auctions
	now      func() time.Time
}

// NewService creates a dashboard service
func NewService(products repository.CatalogDB, users repository.UserDB, orders repository.OrderDB, auctions Auctions) *Service {
	return &Service{products: products, users: users, orders: orders, auctions: auctions, now: time.Now}
}

// CreateProduct lists a new product for seller. Auction listings open their
// bidding session right away.
func (s *Service) CreateProduct(seller models.User, in ProductInput) (models.Product, error) {
	now := s.now().UTC()
	if err := in.Validate(now); err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		ProductID:      utils.GeneratePrefixedID("prod"),
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Price:          in.Price.Round(2),
		Images:         []string{in.ImageURL},
		Category:       strings.TrimSpace(in.Category),
		Type:           in.Type,
		SellerID:       seller.UserID,
		Stock:          in.Stock,
		DigitalFileURL: in.DigitalFileURL,
		CreatedAt:      now,
	}
	if p.IsAuction() {
		end := in.AuctionEndDate.UTC()
		p.AuctionEndDate = &end
		p.CurrentBid = p.Price
		p.Stock = 1
	}

	if err := s.products.SaveProduct(p); err != nil {
		return models.Product{}, fmt.Errorf("dashboard: failed to save product: %w", err)
	}
	if p.IsAuction() {
		if err := s.auctions.Open(p); err != nil {
			if delErr := s.products.DeleteProduct(p.ProductID); delErr != nil {
				utils.Warn("dashboard: failed to roll back auction listing", map[string]any{
					"product_id": p.ProductID,
					"error":      delErr.Error(),
				})
			}
			return models.Product{}, fmt.Errorf("dashboard: failed to open auction: %w", err)
		}
	}

	utils.Info("product listed", map[string]any{
		"product_id": p.ProductID,
		"seller_id":  seller.UserID,
		"type":       string(p.Type),
	})
	return p, nil
}

// UpdateProduct edits a fixed-price listing. Auctions cannot be edited once listed.
func (s *Service) UpdateProduct(editor models.User, productID string, in ProductInput) (models.Product, error) {
	p, err := s.ownedProduct(editor, productID)
	if err != nil {
		return models.Product{}, err
	}
	if p.IsAuction() || in.Type == models.ProductAuction {
		return models.Product{}, fmt.Errorf("dashboard: %w - auction listings cannot be edited", biddingerrors.ErrInvalidProduct)
	}
	if err := in.Validate(s.now()); err != nil {
		return models.Product{}, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.Type = in.Type
	p.Stock = in.Stock
	p.DigitalFileURL = in.DigitalFileURL
	if len(p.Images) == 0 || p.Images[0] != in.ImageURL {
		p.Images = append([]string{in.ImageURL}, p.Images...)
	}

	if err := s.products.SaveProduct(p); err != nil {
		return models.Product{}, fmt.Errorf("dashboard: failed to save product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a listing. Sellers may only delete their own; an
// auction's session is stopped without announcing an outcome.
func (s *Service) DeleteProduct(editor models.User, productID string) error {
	p, err := s.ownedProduct(editor, productID)
	if err != nil {
		return err
	}
	if p.IsAuction() {
		s.auctions.Remove(productID)
	}
	if err := s.products.DeleteProduct(productID); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	utils.Info("product deleted", map[string]any{"product_id": productID, "by": editor.UserID})
	return nil
}

func (s *Service) ownedProduct(editor models.User, productID string) (models.Product, error) {
	p, err := s.products.GetProduct(productID)
	if err != nil {
		return models.Product{}, fmt.Errorf("dashboard: %w", err)
	}
	if editor.Role != models.RoleAdmin && p.SellerID != editor.UserID {
		return models.Product{}, fmt.Errorf("dashboard: %w - product %s", biddingerrors.ErrForbiddenProduct, productID)
	}
	return p, nil
}

// SellerProducts lists the products a seller has listed
func (s *Service) SellerProducts(sellerID string) ([]models.Product, error) {
	all, err := s.products.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to list products: %w", err)
	}
	own := make([]models.Product, 0)
	for _, p := range all {
		if p.SellerID == sellerID {
			own = append(own, p)
		}
	}
	return own, nil
}

// SellerAnalytics reports a seller's sales and listings
func (s *Service) SellerAnalytics(sellerID string) (SalesReport, error) {
	products, err := s.SellerProducts(sellerID)
	if err != nil {
		return SalesReport{}, err
	}
	orders, err := s.orders.ListOrders()
	if err != nil {
		return SalesReport{}, fmt.Errorf("dashboard: failed to list orders: %w", err)
	}
	own := make([]models.Order, 0)
	for _, o := range orders {
		if o.SellerID == sellerID {
			own = append(own, o)
		}
	}
	return s.report(products, own), nil
}

func (s *Service) report(products []models.Product, orders []models.Order) SalesReport {
	r := SalesReport{TotalRevenue: decimal.Zero, TopProducts: []ProductRevenue{}}

	open := make(map[string]bool)
	for _, snap := range s.auctions.ListAuctionStatuses() {
		if snap.State == auction.Open {
			open[snap.ProductID] = true
		}
	}
	for _, p := range products {
		switch {
		case p.IsAuction():
			if open[p.ProductID] {
				r.OpenAuctions++
				r.ActiveListings++
			}
		case p.Type == models.ProductPhysical && p.Stock == 0:
			r.OutOfStock++
		default:
			r.ActiveListings++
		}
	}

	// a won auction is one sale: once the winner pays, the paid order stands for it
	paid := make(map[string]bool)
	for _, o := range orders {
		if o.Status != models.OrderAuctionWon {
			paid[o.UserID+"/"+o.ProductID] = true
		}
	}

	byProduct := make(map[string]*ProductRevenue)
	for _, o := range orders {
		if o.Status == models.OrderAuctionWon && paid[o.UserID+"/"+o.ProductID] {
			continue
		}
		r.TotalOrders++
		r.TotalRevenue = r.TotalRevenue.Add(o.TotalAmount)
		qty := o.Quantity
		if qty == 0 {
			qty = 1
		}
		r.ItemsSold += qty

		row, ok := byProduct[o.ProductID]
		if !ok {
			row = &ProductRevenue{ProductID: o.ProductID, ProductName: o.ProductName, Revenue: decimal.Zero}
			byProduct[o.ProductID] = row
		}
		row.Revenue = row.Revenue.Add(o.TotalAmount)
		row.Units += qty
	}
	for _, row := range byProduct {
		r.TopProducts = append(r.TopProducts, *row)
	}
	sort.Slice(r.TopProducts, func(i, j int) bool {
		if !r.TopProducts[i].Revenue.Equal(r.TopProducts[j].Revenue) {
			return r.TopProducts[i].Revenue.GreaterThan(r.TopProducts[j].Revenue)
		}
		return r.TopProducts[i].ProductID < r.TopProducts[j].ProductID
	})
	if len(r.TopProducts) > topProductsShown {
		r.TopProducts = r.TopProducts[:topProductsShown]
	}
	return r
}

// SiteAnalytics reports sales, users and listings across the storefront
func (s *Service) SiteAnalytics() (SiteReport, error) {
	products, err := s.products.ListProducts()
	if err != nil {
		return SiteReport{}, fmt.Errorf("dashboard: failed to list products: %w", err)
	}
	orders, err := s.orders.ListOrders()
	if err != nil {
		return SiteReport{}, fmt.Errorf("dashboard: failed to list orders: %w", err)
	}
	users, err := s.users.ListUsers()
	if err != nil {
		return SiteReport{}, fmt.Errorf("dashboard: failed to list users: %w", err)
	}
	reqs, err := s.users.ListSellerRequests()
	if err != nil {
		return SiteReport{}, fmt.Errorf("dashboard: failed to list seller requests: %w", err)
	}

	r := SiteReport{
		SalesReport:    s.report(products, orders),
		UsersByRole:    make(map[models.Role]int),
		ProductsByType: make(map[models.ProductType]int),
	}
	for _, u := range users {
		r.UsersByRole[u.Role]++
		if u.Status == models.UserActive {
			r.ActiveUsers++
		}
	}
	for _, p := range products {
		r.ProductsByType[p.Type]++
	}
	for _, req := range reqs {
		if req.Status == models.RequestPending {
			r.PendingSellerRequests++
		}
	}
	return r, nil
}

// Users lists every account
func (s *Service) Users() ([]models.User, error) {
	users, err := s.users.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to list users: %w", err)
	}
	return users, nil
}

// SetUserRole changes an account's role
func (s *Service) SetUserRole(userID string, role models.Role) (models.User, error) {
	switch role {
	case models.RoleCustomer, models.RoleSeller, models.RoleAdmin:
	default:
		return models.User{}, fmt.Errorf("dashboard: %w - unknown role %q", biddingerrors.ErrInvalidArgument, role)
	}
	return s.updateUser(userID, func(u *models.User) { u.Role = role })
}

// SetUserStatus suspends or reinstates an account
func (s *Service) SetUserStatus(userID string, status models.UserStatus) (models.User, error) {
	switch status {
	case models.UserActive, models.UserSuspended, models.UserPending:
	default:
		return models.User{}, fmt.Errorf("dashboard: %w - unknown status %q", biddingerrors.ErrInvalidArgument, status)
	}
	return s.updateUser(userID, func(u *models.User) { u.Status = status })
}

func (s *Service) updateUser(userID string, change func(u *models.User)) (models.User, error) {
	u, err := s.users.GetUser(userID)
	if err != nil {
		return models.User{}, fmt.Errorf("dashboard: %w", err)
	}
	change(&u)
	if err := s.users.SaveUser(u); err != nil {
		return models.User{}, fmt.Errorf("dashboard: %w", err)
	}
	utils.Info("user updated", map[string]any{"user_id": userID, "role": string(u.Role), "status": string(u.Status)})
	return u, nil
}

// RequestSeller files a customer's application to sell
func (s *Service) RequestSeller(user models.User, reason string) (models.SellerRequest, error) {
	if user.Role != models.RoleCustomer {
		return models.SellerRequest{}, fmt.Errorf("dashboard: %w - only customers can apply", biddingerrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(reason) == "" {
		return models.SellerRequest{}, fmt.Errorf("dashboard: %w - a reason is required", biddingerrors.ErrInvalidArgument)
	}
	reqs, err := s.users.ListSellerRequests()
	if err != nil {
		return models.SellerRequest{}, fmt.Errorf("dashboard: failed to list seller requests: %w", err)
	}
	for _, r := range reqs {
		if r.UserID == user.UserID && r.Status == models.RequestPending {
			return models.SellerRequest{}, fmt.Errorf("dashboard: %w - request %s is pending", biddingerrors.ErrInvalidArgument, r.RequestID)
		}
	}

	req := models.SellerRequest{
		RequestID:   utils.GeneratePrefixedID("req"),
		UserID:      user.UserID,
		Reason:      strings.TrimSpace(reason),
		Status:      models.RequestPending,
		RequestedAt: s.now().UTC(),
	}
	if err := s.users.SaveSellerRequest(req); err != nil {
		return models.SellerRequest{}, fmt.Errorf("dashboard: failed to save seller request: %w", err)
	}
	if _, err := s.updateUser(user.UserID, func(u *models.User) { u.Status = models.UserPending }); err != nil {
		return models.SellerRequest{}, err
	}
	return req, nil
}

// SellerRequests lists every seller application, oldest first
func (s *Service) SellerRequests() ([]models.SellerRequest, error) {
	reqs, err := s.users.ListSellerRequests()
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to list seller requests: %w", err)
	}
	return reqs, nil
}

// DecideSellerRequest approves or denies a pending application. Approval
// makes the applicant an active seller.
func (s *Service) DecideSellerRequest(requestID string, approve bool) (models.SellerRequest, error) {
	req, err := s.users.GetSellerRequest(requestID)
	if err != nil {
		return models.SellerRequest{}, fmt.Errorf("dashboard: %w", err)
	}
	if req.Status != models.RequestPending {
		return models.SellerRequest{}, fmt.Errorf("dashboard: %w - request %s is %s", biddingerrors.ErrRequestDecided, requestID, req.Status)
	}

	decided := s.now().UTC()
	req.DecidedAt = &decided
	req.Status = models.RequestDenied
	if approve {
		req.Status = models.RequestApproved
	}
	if err := s.users.SaveSellerRequest(req); err != nil {
		return models.SellerRequest{}, fmt.Errorf("dashboard: failed to save seller request: %w", err)
	}

	_, err = s.updateUser(req.UserID, func(u *models.User) {
		u.Status = models.UserActive
		if approve {
			u.Role = models.RoleSeller
		}
	})
	if err != nil {
		return models.SellerRequest{}, err
	}
	return req, nil
}
