package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when no product has the given ID.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists is returned when creating a product whose ID is taken.
	ErrProductExists = errors.New("product ID already exists")
	// ErrBranchNotFound is returned when no branch has the given ID.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrSizeNotAvailable is returned when a product has no entry for a size.
	ErrSizeNotAvailable = errors.New("size not available")
	// ErrNegativeStock is returned when an adjustment would take stock below zero.
	ErrNegativeStock = errors.New("stock cannot go below zero")
)

// Storage is the persistence port of the catalog.
type Storage interface {
	ListProducts(ctx context.Context, search string) ([]*Product, error)
	ReadProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, productID string) error
	AdjustStock(ctx context.Context, productID, size string, delta int) (*ProductSize, error)

	ListBranches(ctx context.Context) ([]*Branch, error)
	ReadBranch(ctx context.Context, branchID string) (*Branch, error)
	CreateBranch(ctx context.Context, branch *Branch) error
	UpdateBranch(ctx context.Context, branch *Branch) error
	DeleteBranch(ctx context.Context, branchID string) error
}

// Models lists the tables owned by the catalog, in migration order.
func Models() []any {
	return []any{&Branch{}, &Product{}, &ProductSize{}}
}

// GormStorage implements Storage on top of a gorm handle.
type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// SizesByID orders preloaded sizes by insertion.
func SizesByID(db *gorm.DB) *gorm.DB {
	return db.Order("product_sizes.id ASC")
}

func (g *GormStorage) ListProducts(ctx context.Context, search string) ([]*Product, error) {
	q := g.db.WithContext(ctx).Preload("Sizes", SizesByID).Order("name ASC").Order("product_id ASC")
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	products := make([]*Product, 0)
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (g *GormStorage) ReadProduct(ctx context.Context, productID string) (*Product, error) {
	return readProduct(g.db.WithContext(ctx), productID)
}

func readProduct(tx *gorm.DB, productID string) (*Product, error) {
	var p Product
	err := tx.Preload("Sizes", SizesByID).First(&p, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func productExists(tx *gorm.DB, productID string) (bool, error) {
	var count int64
	if err := tx.Model(&Product{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func checkBranch(tx *gorm.DB, branchID *string) error {
	if branchID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&Branch{}).Where("branch_id = ?", *branchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, *branchID)
	}
	return nil
}

// CreateProduct inserts the product together with its sizes.
func (g *GormStorage) CreateProduct(ctx context.Context, product *Product) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := productExists(tx, product.ProductID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrProductExists, product.ProductID)
		}
		if err := checkBranch(tx, product.BranchID); err != nil {
			return err
		}
		return tx.Create(product).Error
	})
}

// UpdateProduct overwrites the descriptive columns and reloads the product.
func (g *GormStorage) UpdateProduct(ctx context.Context, product *Product) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := productExists(tx, product.ProductID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrProductNotFound, product.ProductID)
		}
		if err := checkBranch(tx, product.BranchID); err != nil {
			return err
		}

		err = tx.Model(&Product{ProductID: product.ProductID}).
			Select("Name", "Price", "Rating", "Description", "Gender", "BranchID").
			Updates(product).Error
		if err != nil {
			return err
		}

		updated, err := readProduct(tx, product.ProductID)
		if err != nil {
			return err
		}
		*product = *updated
		return nil
	})
}

func (g *GormStorage) DeleteProduct(ctx context.Context, productID string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := productExists(tx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		if err := tx.Where("product_id = ?", productID).Delete(&ProductSize{}).Error; err != nil {
			return err
		}
		return tx.Where("product_id = ?", productID).Delete(&Product{}).Error
	})
}

// AdjustStock applies delta to one size. A new size entry is created when
// stock is added to a label the product does not carry yet.
func (g *GormStorage) AdjustStock(ctx context.Context, productID, size string, delta int) (*ProductSize, error) {
	var result ProductSize
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := readProduct(tx, productID)
		if err != nil {
			return err
		}

		existing := product.FindSize(size)
		if existing == nil {
			if delta < 0 {
				return fmt.Errorf("%w: size %s of product %s", ErrSizeNotAvailable, size, productID)
			}
			result = ProductSize{ProductID: productID, Size: size, StockQuantity: delta}
			return tx.Create(&result).Error
		}

		res := tx.Model(&ProductSize{}).
			Where("id = ? AND stock_quantity + ? >= 0", existing.ID, delta).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: product %s, size %s", ErrNegativeStock, productID, size)
		}
		return tx.First(&result, existing.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *GormStorage) ListBranches(ctx context.Context) ([]*Branch, error) {
	branches := make([]*Branch, 0)
	if err := g.db.WithContext(ctx).Order("name ASC").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func (g *GormStorage) ReadBranch(ctx context.Context, branchID string) (*Branch, error) {
	var b Branch
	err := g.db.WithContext(ctx).First(&b, "branch_id = ?", branchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (g *GormStorage) CreateBranch(ctx context.Context, branch *Branch) error {
	return g.db.WithContext(ctx).Create(branch).Error
}

func (g *GormStorage) UpdateBranch(ctx context.Context, branch *Branch) error {
	res := g.db.WithContext(ctx).Model(&Branch{BranchID: branch.BranchID}).
		Select("Name", "Location").
		Updates(branch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, branch.BranchID)
	}
	updated, err := g.ReadBranch(ctx, branch.BranchID)
	if err != nil {
		return err
	}
	*branch = *updated
	return nil
}

// DeleteBranch removes the branch and detaches the products assigned to it.
func (g *GormStorage) DeleteBranch(ctx context.Context, branchID string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Product{}).Where("branch_id = ?", branchID).Update("branch_id", nil)
		if res.Error != nil {
			return res.Error
		}
		res = tx.Where("branch_id = ?", branchID).Delete(&Branch{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
		}
		return nil
	})
}
