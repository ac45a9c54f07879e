package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/rs/zerolog"
)

// ProductFilter holds the optional listing filters as the caller supplied them.
type ProductFilter struct {
	FarmerID  string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// ProductQuery is a ProductFilter reduced to store predicates: the category is
// trimmed and lowercased, ProducedFrom is inclusive and ProducedBefore exclusive.
type ProductQuery struct {
	FarmerID       string
	Category       string
	ProducedFrom   *time.Time
	ProducedBefore *time.Time
}

func (f ProductFilter) Query() ProductQuery {
	q := ProductQuery{
		FarmerID: strings.TrimSpace(f.FarmerID),
		Category: models.NormalizeCategory(f.Category),
	}
	if f.StartDate != nil {
		from := models.DateOnly(*f.StartDate)
		q.ProducedFrom = &from
	}
	if f.EndDate != nil {
		before := models.DateOnly(*f.EndDate).AddDate(0, 0, 1)
		q.ProducedBefore = &before
	}
	return q
}

type ProductService struct {
	products ProductStore
	log      zerolog.Logger
}

func NewProductService(products ProductStore, log zerolog.Logger) *ProductService {
	return &ProductService{
		products: products,
		log:      log.With().Str("service", "product").Logger(),
	}
}

// AddProduct stores a product for product.FarmerID, which the caller must take
// from the authenticated session. Store failures are returned.
func (s *ProductService) AddProduct(ctx context.Context, product *models.Product) error {
	if product == nil {
		return ValidationErrors{{Message: "Product is required."}}
	}

	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)

	var errs ValidationErrors
	switch {
	case product.Name == "":
		errs.Add("Name", "Product name is required.")
	case utf8.RuneCountInString(product.Name) > models.ProductNameMaxLength:
		errs.Add("Name", fmt.Sprintf("Product name cannot exceed %d characters.", models.ProductNameMaxLength))
	}
	switch {
	case product.Category == "":
		errs.Add("Category", "Product category is required.")
	case utf8.RuneCountInString(product.Category) > models.ProductCategoryMaxLength:
		errs.Add("Category", fmt.Sprintf("Category cannot exceed %d characters.", models.ProductCategoryMaxLength))
	}
	if product.ProductionDate.IsZero() {
		errs.Add("ProductionDate", "Production date is required.")
	}
	if strings.TrimSpace(product.FarmerID) == "" {
		errs.Add("FarmerID", "Owning farmer is required.")
	}
	if len(errs) > 0 {
		return errs
	}

	product.ProductionDate = models.DateOnly(product.ProductionDate)
	if err := s.products.Create(ctx, product); err != nil {
		s.log.Error().Err(err).Str("product", product.Name).Str("farmer_id", product.FarmerID).Msg("add product")
		return persistence("create product", err)
	}

	s.log.Info().Str("product", product.Name).Str("farmer_id", product.FarmerID).Msg("product added")
	return nil
}

// GetProductsByFarmer lists the farmer's products, newest production date
// first. Store failures are logged and yield an empty list.
func (s *ProductService) GetProductsByFarmer(ctx context.Context, farmerID string) []models.Product {
	farmerID = strings.TrimSpace(farmerID)
	if farmerID == "" {
		return []models.Product{}
	}
	products, err := s.products.ListByFarmer(ctx, farmerID)
	if err != nil {
		s.log.Error().Err(err).Str("farmer_id", farmerID).Msg("list products for farmer")
		return []models.Product{}
	}
	return products
}

// GetFilteredProducts lists products matching every set filter, ordered by
// farmer full name then product name. Store failures yield an empty list.
func (s *ProductService) GetFilteredProducts(ctx context.Context, filter ProductFilter) []models.Product {
	products, err := s.products.ListFiltered(ctx, filter.Query())
	if err != nil {
		s.log.Error().Err(err).Msg("list filtered products")
		return []models.Product{}
	}
	return products
}

// GetDistinctCategories lists categories in use, alphabetically. Store failures yield an empty list.
func (s *ProductService) GetDistinctCategories(ctx context.Context) []string {
	categories, err := s.products.DistinctCategories(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list distinct categories")
		return []string{}
	}
	return categories
}
