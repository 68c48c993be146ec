package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"inventory_api/internal/catalog"
)

// Sale represents a completed sales transaction in the system.
type Sale struct {
	SaleID        string          `gorm:"primaryKey;size:36" json:"saleId"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaymentMethod string          `gorm:"size:32;not null" json:"paymentMethod"`
	Timestamp     time.Time       `gorm:"not null;index" json:"timestamp"`
	SaleItems     []SaleItem      `gorm:"foreignKey:SaleID;references:SaleID" json:"saleItems"`
}

// SaleItem is one sold line. Price is the unit price at the time of sale
// and is never recomputed from the product.
type SaleItem struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	SaleID    string           `gorm:"size:36;not null;index" json:"saleId"`
	ProductID string           `gorm:"size:64;not null;index" json:"productId"`
	Size      string           `gorm:"size:16;not null" json:"size"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID;references:ProductID" json:"product,omitempty"`
}

// LineTotal is the unit price times the quantity.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineItem is one (product, size, quantity) entry of a sale request.
type LineItem struct {
	ProductID string `json:"productId" validate:"notblank"`
	Size      string `json:"size" validate:"notblank"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// CreateSaleRequest is the payload accepted by Service.CreateSale.
type CreateSaleRequest struct {
	Items         []LineItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string     `json:"paymentMethod" validate:"notblank,max=32"`
}

// Models lists the tables owned by sales, in migration order.
func Models() []any {
	return []any{&Sale{}, &SaleItem{}}
}
