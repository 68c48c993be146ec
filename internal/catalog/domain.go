package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch is a physical store that products can be assigned to.
type Branch struct {
	BranchID  string    `gorm:"primaryKey;size:36" json:"branchId"`
	Name      string    `gorm:"not null" json:"name"`
	Location  string    `gorm:"not null" json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a sellable item identified by its external product ID.
type Product struct {
	ProductID   string          `gorm:"primaryKey;size:64" json:"productId"`
	Name        string          `gorm:"not null;index" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Rating      *float64        `json:"rating,omitempty"`
	Description *string         `json:"description,omitempty"`
	Gender      *string         `gorm:"size:16" json:"gender,omitempty"`
	BranchID    *string         `gorm:"size:36;index" json:"branchId,omitempty"`
	Sizes       []ProductSize   `gorm:"foreignKey:ProductID;references:ProductID" json:"sizes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductSize holds the stock of one size label of a product.
// The label is unique within its product.
type ProductSize struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ProductID     string `gorm:"size:64;not null;uniqueIndex:idx_product_size" json:"productId"`
	Size          string `gorm:"size:16;not null;uniqueIndex:idx_product_size" json:"size"`
	StockQuantity int    `gorm:"not null;default:0" json:"stockQuantity"`
}

// FindSize returns the entry for the given label, or nil.
func (p *Product) FindSize(label string) *ProductSize {
	for i := range p.Sizes {
		if p.Sizes[i].Size == label {
			return &p.Sizes[i]
		}
	}
	return nil
}

// Clone returns a copy that shares no sizes with p.
func (p *Product) Clone() *Product {
	c := *p
	c.Sizes = append([]ProductSize(nil), p.Sizes...)
	return &c
}

// ProductInput is the create payload for a product and its initial sizes.
type ProductInput struct {
	ProductID   string           `json:"productId" validate:"notblank,max=64"`
	Name        string           `json:"name" validate:"notblank"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Rating      *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Description *string          `json:"description"`
	Gender      *string          `json:"gender" validate:"omitempty,max=16"`
	BranchID    *string          `json:"branchId"`
	Sizes       []SizeInput      `json:"sizes" validate:"unique=Size,dive"`
}

// SizeInput describes the initial stock of one size.
type SizeInput struct {
	Size          string `json:"size" validate:"notblank,max=16"`
	StockQuantity int    `json:"stockQuantity" validate:"gte=0"`
}

// ProductUpdate replaces the descriptive fields of a product. Sizes are
// changed only through stock adjustments.
type ProductUpdate struct {
	Name        string           `json:"name" validate:"notblank"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Rating      *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Description *string          `json:"description"`
	Gender      *string          `json:"gender" validate:"omitempty,max=16"`
	BranchID    *string          `json:"branchId"`
}

// StockAdjustment adds (or with a negative delta removes) stock of one size.
type StockAdjustment struct {
	Size  string `json:"size" validate:"notblank,max=16"`
	Delta int    `json:"delta" validate:"ne=0"`
}

// BranchInput is the create and update payload for a branch.
type BranchInput struct {
	Name     string `json:"name" validate:"notblank"`
	Location string `json:"location" validate:"notblank"`
}
