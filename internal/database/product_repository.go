package database

import (
	"context"

	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/agrienergy/agri-produce/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ services.ProductStore = (*ProductRepository)(nil)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *ProductRepository) ListByFarmer(ctx context.Context, farmerID string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("production_date desc").
		Order("id desc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) ListFiltered(ctx context.Context, q services.ProductQuery) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*").
		Joins("LEFT JOIN users ON users.id = products.farmer_id").
		Preload("Farmer")

	if q.FarmerID != "" {
		query = query.Where("products.farmer_id = ?", q.FarmerID)
	}
	if q.Category != "" {
		query = query.Where("products.normalized_category = ?", q.Category)
	}
	if q.ProducedFrom != nil {
		query = query.Where("products.production_date >= ?", *q.ProducedFrom)
	}
	if q.ProducedBefore != nil {
		query = query.Where("products.production_date < ?", *q.ProducedBefore)
	}

	products := make([]models.Product, 0)
	if err := query.
		Order("COALESCE(users.full_name, '') asc").
		Order("products.name asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct().
		Order("category asc").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *ProductRepository) CountByFarmer(ctx context.Context, farmerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("farmer_id = ?", farmerID).Count(&count).Error
	return count, err
}
