package sales

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory_api/internal/catalog"
)

// GormStorage keeps sales and stock in the relational database.
type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// Transaction maps onto a database transaction; gorm rolls back when fn
// returns an error or the context is cancelled.
func (g *GormStorage) Transaction(ctx context.Context, fn func(Ledger) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedger{tx: tx})
	})
}

func itemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("sale_items.id ASC")
}

func (g *GormStorage) Read(ctx context.Context, id string) (*Sale, error) {
	var s Sale
	err := g.db.WithContext(ctx).
		Preload("SaleItems", itemsByID).
		Preload("SaleItems.Product").
		First(&s, "sale_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (g *GormStorage) GetAll(ctx context.Context) ([]*Sale, error) {
	sales := make([]*Sale, 0)
	err := g.db.WithContext(ctx).
		Preload("SaleItems", itemsByID).
		Preload("SaleItems.Product").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "sale_id"}}).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

type gormLedger struct {
	tx *gorm.DB
}

func (l *gormLedger) FindProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	var p catalog.Product
	err := l.tx.WithContext(ctx).
		Preload("Sizes", catalog.SizesByID).
		First(&p, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock is a check-and-set on the stock column. A concurrent sale
// that drained the size first leaves no row to update.
func (l *gormLedger) DecrementStock(ctx context.Context, productID, size string, quantity int) error {
	res := l.tx.WithContext(ctx).
		Model(&catalog.ProductSize{}).
		Where("product_id = ? AND size = ? AND stock_quantity >= ?", productID, size, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %s, size %s", ErrInsufficientStock, productID, size)
	}
	return nil
}

func (l *gormLedger) Set(ctx context.Context, sale *Sale) error {
	if sale.SaleID == "" {
		return ErrEmptyID
	}
	return l.tx.WithContext(ctx).Create(sale).Error
}
