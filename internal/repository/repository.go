package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// CatalogDB defines product storage for the catalog, checkout and dashboards
type CatalogDB interface {
	GetProduct(productID string) (models.Product, error)
	ListProducts() ([]models.Product, error)
	SaveProduct(product models.Product) error
	DeleteProduct(productID string) error
}

// AuctionDB defines the auction view of the catalog. Bids are owned by the
// auction sessions; the repository keeps the shared copy other views read.
type AuctionDB interface {
	GetProduct(productID string) (models.Product, error)
	ListAuctions() ([]models.Product, error)
	UpdateAuctionState(productID string, currentBid decimal.Decimal, highestBidder string, bids []models.Bid) error
	GetItemsByUser(userID string) ([]models.Product, error)
}

// UserDB defines account and seller-application storage
type UserDB interface {
	GetUser(userID string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	ListUsers() ([]models.User, error)
	CreateUser(user models.User) error
	SaveUser(user models.User) error
	ListSellerRequests() ([]models.SellerRequest, error)
	GetSellerRequest(requestID string) (models.SellerRequest, error)
	SaveSellerRequest(req models.SellerRequest) error
}

// OrderDB defines order storage
type OrderDB interface {
	CreateOrder(order models.Order) error
	ListOrdersByUser(userID string) ([]models.Order, error)
	ListOrders() ([]models.Order, error)
}

// Fixtures is the data a MemoryRepo is seeded with
type Fixtures struct {
	Products       []models.Product
	Users          []models.User
	Orders         []models.Order
	SellerRequests []models.SellerRequest
}

// MemoryRepo is a concurrency-safe in-memory implementation of every storage interface
type MemoryRepo struct {
	mu             sync.RWMutex
	products       map[string]models.Product       // key: productID
	productOrder   []string                        // insertion order of productIDs
	users          map[string]models.User          // key: userID
	emails         map[string]string               // key: lower-cased email -> userID
	orders         []models.Order                  // placement order
	sellerRequests map[string]models.SellerRequest // key: requestID
	userItems      map[string][]string             // key: userID -> auction productIDs the user has bid on
}

// NewMemoryRepo creates an empty in-memory repository
func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{}
	r.reset()
	return r
}

// Seed replaces the repository contents with fixtures
func (r *MemoryRepo) Seed(f Fixtures) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reset()
	for _, p := range f.Products {
		r.putProduct(p.Clone())
	}
	for _, u := range f.Users {
		r.users[u.UserID] = u
		r.emails[strings.ToLower(u.Email)] = u.UserID
	}
	r.orders = append(r.orders, f.Orders...)
	for _, req := range f.SellerRequests {
		r.sellerRequests[req.RequestID] = req
	}
}

// Reset empties the repository
func (r *MemoryRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

func (r *MemoryRepo) reset() {
	r.products = make(map[string]models.Product)
	r.productOrder = nil
	r.users = make(map[string]models.User)
	r.emails = make(map[string]string)
	r.orders = nil
	r.sellerRequests = make(map[string]models.SellerRequest)
	r.userItems = make(map[string][]string)
}

func (r *MemoryRepo) putProduct(p models.Product) {
	if _, exists := r.products[p.ProductID]; !exists {
		r.productOrder = append(r.productOrder, p.ProductID)
	}
	r.products[p.ProductID] = p
	for _, b := range p.Bids {
		r.indexBidder(b.UserID, p.ProductID)
	}
}

func (r *MemoryRepo) indexBidder(userID, productID string) {
	for _, id := range r.userItems[userID] {
		if id == productID {
			return
		}
	}
	r.userItems[userID] = append(r.userItems[userID], productID)
}

// GetProduct returns a product by ID
func (r *MemoryRepo) GetProduct(productID string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[productID]
	if !ok {
		return models.Product{}, fmt.Errorf("get product %s: %w", productID, biddingerrors.ErrItemNotFound)
	}
	return p.Clone(), nil
}

// ListProducts returns all products in insertion order
func (r *MemoryRepo) ListProducts() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.productOrder))
	for _, id := range r.productOrder {
		products = append(products, r.products[id].Clone())
	}
	return products, nil
}

// SaveProduct inserts or replaces a product
func (r *MemoryRepo) SaveProduct(product models.Product) error {
	if product.ProductID == "" {
		return fmt.Errorf("save product: %w - empty product ID", biddingerrors.ErrInvalidProduct)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putProduct(product.Clone())
	return nil
}

// DeleteProduct removes a product
func (r *MemoryRepo) DeleteProduct(productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[productID]; !ok {
		return fmt.Errorf("delete product %s: %w", productID, biddingerrors.ErrItemNotFound)
	}
	delete(r.products, productID)
	for i, id := range r.productOrder {
		if id == productID {
			r.productOrder = append(r.productOrder[:i:i], r.productOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ListAuctions returns all auction products
func (r *MemoryRepo) ListAuctions() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var auctions []models.Product
	for _, id := range r.productOrder {
		if p := r.products[id]; p.IsAuction() {
			auctions = append(auctions, p.Clone())
		}
	}
	return auctions, nil
}

// UpdateAuctionState stores the latest bidding state of an auction product
func (r *MemoryRepo) UpdateAuctionState(productID string, currentBid decimal.Decimal, highestBidder string, bids []models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("update auction %s: %w", productID, biddingerrors.ErrItemNotFound)
	}
	if !p.IsAuction() {
		return fmt.Errorf("update auction %s: %w", productID, biddingerrors.ErrNotAnAuction)
	}

	p.CurrentBid = currentBid
	p.HighestBidder = highestBidder
	p.Bids = append([]models.Bid(nil), bids...)
	r.products[productID] = p
	for _, b := range bids {
		r.indexBidder(b.UserID, productID)
	}
	return nil
}

// GetItemsByUser returns all auction products a user has bid on
func (r *MemoryRepo) GetItemsByUser(userID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.userItems[userID]
	if !ok || len(ids) == 0 {
		return nil, fmt.Errorf("get items for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}

	items := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, exists := r.products[id]; exists {
			items = append(items, p.Clone())
		}
	}
	return items, nil
}

// GetUser returns a user by ID
func (r *MemoryRepo) GetUser(userID string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return u, nil
}

// GetUserByEmail looks a user up by email, ignoring case
func (r *MemoryRepo) GetUserByEmail(email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return models.User{}, fmt.Errorf("get user by email: %w", biddingerrors.ErrUserNotFound)
	}
	return r.users[id], nil
}

// ListUsers returns all users ordered by join date
func (r *MemoryRepo) ListUsers() ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].JoinedAt.Equal(users[j].JoinedAt) {
			return users[i].UserID < users[j].UserID
		}
		return users[i].JoinedAt.Before(users[j].JoinedAt)
	})
	return users, nil
}

// CreateUser adds a new user; the email must not be registered yet
func (r *MemoryRepo) CreateUser(user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := r.emails[key]; taken {
		return fmt.Errorf("create user: %w", biddingerrors.ErrEmailTaken)
	}
	r.users[user.UserID] = user
	r.emails[key] = user.UserID
	return nil
}

// SaveUser replaces an existing user
func (r *MemoryRepo) SaveUser(user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; !ok {
		return fmt.Errorf("save user %s: %w", user.UserID, biddingerrors.ErrUserNotFound)
	}
	r.users[user.UserID] = user
	return nil
}

// ListSellerRequests returns all seller applications, oldest first
func (r *MemoryRepo) ListSellerRequests() ([]models.SellerRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reqs := make([]models.SellerRequest, 0, len(r.sellerRequests))
	for _, req := range r.sellerRequests {
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].RequestedAt.Before(reqs[j].RequestedAt) })
	return reqs, nil
}

// GetSellerRequest returns a seller application by ID
func (r *MemoryRepo) GetSellerRequest(requestID string) (models.SellerRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.sellerRequests[requestID]
	if !ok {
		return models.SellerRequest{}, fmt.Errorf("get seller request %s: %w", requestID, biddingerrors.ErrItemNotFound)
	}
	return req, nil
}

// SaveSellerRequest inserts or replaces a seller application
func (r *MemoryRepo) SaveSellerRequest(req models.SellerRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sellerRequests[req.RequestID] = req
	return nil
}

// CreateOrder records a placed order
func (r *MemoryRepo) CreateOrder(order models.Order) error {
	if order.OrderID == "" || order.UserID == "" {
		return fmt.Errorf("create order: %w - missing order or user ID", biddingerrors.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	return nil
}

// ListOrdersByUser returns a user's orders, newest first
func (r *MemoryRepo) ListOrdersByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			orders = append(orders, r.orders[i])
		}
	}
	return orders, nil
}

// ListOrders returns every order in placement order
func (r *MemoryRepo) ListOrders() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Order(nil), r.orders...), nil
}
