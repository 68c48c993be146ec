package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory_api/internal/validation"
)

var (
	// ErrInvalidRequest is returned for malformed sale requests, before any write.
	ErrInvalidRequest = errors.New("invalid sale request")
	// ErrProductNotFound is returned when a line item names an unknown product.
	ErrProductNotFound = errors.New("product not found")
	// ErrSizeNotAvailable is returned when the product has no entry for the size.
	ErrSizeNotAvailable = errors.New("size not available")
	// ErrInsufficientStock is returned when a size holds fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStorageFailure wraps any other error raised while the transaction ran.
	ErrStorageFailure = errors.New("storage failure")
)

// Service provides high-level sales management operations on a Storage backend.
type Service struct {
	storage  Storage
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		storage:  storage,
		logger:   logger,
		validate: validation.New(),
		now:      time.Now,
	}
}

// CreateSale checks stock, decrements it and records the sale as a single
// atomic unit. On any error no stock changes and no sale is stored.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, validation.Describe(err))
	}

	sale := &Sale{
		SaleID:        uuid.NewString(),
		PaymentMethod: req.PaymentMethod,
		Timestamp:     s.now().UTC().Truncate(time.Microsecond),
	}

	err := s.storage.Transaction(ctx, func(l Ledger) error {
		total := decimal.Zero
		items := make([]SaleItem, 0, len(req.Items))

		for _, item := range req.Items {
			product, err := l.FindProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}

			size := product.FindSize(item.Size)
			if size == nil {
				return fmt.Errorf("%w: size %s of product %s", ErrSizeNotAvailable, item.Size, product.Name)
			}
			if size.StockQuantity < item.Quantity {
				return fmt.Errorf("%w: product %s, size %s", ErrInsufficientStock, product.Name, item.Size)
			}

			line := SaleItem{
				ProductID: item.ProductID,
				Size:      item.Size,
				Quantity:  item.Quantity,
				Price:     product.Price,
			}
			total = total.Add(line.LineTotal())
			items = append(items, line)

			if err := l.DecrementStock(ctx, item.ProductID, item.Size, item.Quantity); err != nil {
				return err
			}
		}

		sale.TotalAmount = total
		sale.SaleItems = items
		return l.Set(ctx, sale)
	})
	if err != nil {
		err = classify(err)
		s.logger.Error("failed to create sale",
			zap.String("sale_id", sale.SaleID),
			zap.String("payment_method", req.PaymentMethod),
			zap.Int("items", len(req.Items)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.SaleID),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
		zap.Int("items", len(sale.SaleItems)),
	)
	return sale, nil
}

// classify keeps domain errors as they are and marks everything else as a
// storage failure.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrSizeNotAvailable),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidRequest):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
}

// GetSales lists every sale with its items and their products.
func (s *Service) GetSales(ctx context.Context) ([]*Sale, error) {
	sales, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get all sales from storage", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return sales, nil
}

func (s *Service) GetSale(ctx context.Context, saleID string) (*Sale, error) {
	sale, err := s.storage.Read(ctx, saleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to read sale", zap.String("sale_id", saleID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return sale, nil
}
