package catalog

import (
	"fmt"
	"sort"
	"strings"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"
)

// SortOrder names a product listing order
type SortOrder string

const (
	SortNameAsc   SortOrder = "name_asc"
	SortNameDesc  SortOrder = "name_desc"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNewest    SortOrder = "newest"
)

// Filter narrows a product listing. Empty fields and "all" match everything.
type Filter struct {
	Search   string
	Category string
	Type     string
	Sort     SortOrder
}

// Service answers catalog queries
type Service struct {
	products repository.CatalogDB
}

// NewService creates a catalog service
func NewService(products repository.CatalogDB) *Service {
	return &Service{products: products}
}

func matchesAll(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

// List returns the products matching f in the requested order
func (s *Service) List(f Filter) ([]models.Product, error) {
	if f.Sort == "" {
		f.Sort = SortNameAsc
	}
	less, ok := orderings[f.Sort]
	if !ok {
		return nil, fmt.Errorf("catalog: %w - unknown sort %q", biddingerrors.ErrInvalidArgument, f.Sort)
	}
	if !matchesAll(f.Type) {
		switch models.ProductType(strings.ToLower(f.Type)) {
		case models.ProductPhysical, models.ProductDigital, models.ProductAuction:
		default:
			return nil, fmt.Errorf("catalog: %w - unknown product type %q", biddingerrors.ErrInvalidArgument, f.Type)
		}
	}

	all, err := s.products.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list products: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	products := make([]models.Product, 0, len(all))
	for _, p := range all {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if !matchesAll(f.Category) && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if !matchesAll(f.Type) && !strings.EqualFold(string(p.Type), f.Type) {
			continue
		}
		products = append(products, p)
	}

	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
	return products, nil
}

var orderings = map[SortOrder]func(a, b models.Product) bool{
	SortNameAsc: func(a, b models.Product) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	},
	SortNameDesc: func(a, b models.Product) bool {
		return strings.ToLower(a.Name) > strings.ToLower(b.Name)
	},
	SortPriceAsc: func(a, b models.Product) bool {
		return a.DisplayPrice().LessThan(b.DisplayPrice())
	},
	SortPriceDesc: func(a, b models.Product) bool {
		return a.DisplayPrice().GreaterThan(b.DisplayPrice())
	},
	SortNewest: func(a, b models.Product) bool {
		return a.CreatedAt.After(b.CreatedAt)
	},
}

// Get returns a single product
func (s *Service) Get(productID string) (models.Product, error) {
	if productID == "" {
		return models.Product{}, fmt.Errorf("catalog: %w - empty product ID", biddingerrors.ErrInvalidArgument)
	}
	p, err := s.products.GetProduct(productID)
	if err != nil {
		return models.Product{}, fmt.Errorf("catalog: %w", err)
	}
	return p, nil
}

// Featured returns the products highlighted on the home page
func (s *Service) Featured() ([]models.Product, error) {
	all, err := s.products.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list products: %w", err)
	}
	featured := make([]models.Product, 0)
	for _, p := range all {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

// Categories returns the distinct product categories, sorted
func (s *Service) Categories() ([]string, error) {
	all, err := s.products.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list products: %w", err)
	}
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range all {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}
