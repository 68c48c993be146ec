package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory_api/internal/validation"
)

var (
	// ErrInvalidProduct wraps schema violations of product payloads.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidBranch wraps schema violations of branch payloads.
	ErrInvalidBranch = errors.New("invalid branch")
)

// Service exposes product, stock and branch management on a Storage backend.
type Service struct {
	storage  Storage
	logger   *zap.Logger
	validate *validator.Validate
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
	}
}

func (s *Service) check(kind error, payload any) error {
	if err := s.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %s", kind, validation.Describe(err))
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context, search string) ([]*Product, error) {
	products, err := s.storage.ListProducts(ctx, search)
	if err != nil {
		s.logger.Error("failed to list products", zap.String("search", search), zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, productID string) (*Product, error) {
	return s.storage.ReadProduct(ctx, productID)
}

// CreateProduct validates the payload and stores the product with its sizes.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := s.check(ErrInvalidProduct, in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}

	product := &Product{
		ProductID:   in.ProductID,
		Name:        in.Name,
		Price:       *in.Price,
		Rating:      in.Rating,
		Description: in.Description,
		Gender:      in.Gender,
		BranchID:    in.BranchID,
		Sizes:       make([]ProductSize, 0, len(in.Sizes)),
	}
	for _, size := range in.Sizes {
		product.Sizes = append(product.Sizes, ProductSize{Size: size.Size, StockQuantity: size.StockQuantity})
	}

	if err := s.storage.CreateProduct(ctx, product); err != nil {
		s.logger.Error("failed to create product", zap.String("product_id", in.ProductID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("product created", zap.String("product_id", product.ProductID), zap.Int("sizes", len(product.Sizes)))
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, in ProductUpdate) (*Product, error) {
	if err := s.check(ErrInvalidProduct, in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}

	product := &Product{
		ProductID:   productID,
		Name:        in.Name,
		Price:       *in.Price,
		Rating:      in.Rating,
		Description: in.Description,
		Gender:      in.Gender,
		BranchID:    in.BranchID,
	}
	if err := s.storage.UpdateProduct(ctx, product); err != nil {
		s.logger.Error("failed to update product", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.storage.DeleteProduct(ctx, productID); err != nil {
		s.logger.Error("failed to delete product", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	s.logger.Info("product deleted", zap.String("product_id", productID))
	return nil
}

// AdjustStock restocks or writes off units of one size.
func (s *Service) AdjustStock(ctx context.Context, productID string, in StockAdjustment) (*ProductSize, error) {
	if err := s.check(ErrInvalidProduct, in); err != nil {
		return nil, err
	}

	size, err := s.storage.AdjustStock(ctx, productID, in.Size, in.Delta)
	if err != nil {
		s.logger.Error("failed to adjust stock",
			zap.String("product_id", productID),
			zap.String("size", in.Size),
			zap.Int("delta", in.Delta),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("product_id", productID),
		zap.String("size", in.Size),
		zap.Int("delta", in.Delta),
		zap.Int("stock_quantity", size.StockQuantity),
	)
	return size, nil
}

func (s *Service) ListBranches(ctx context.Context) ([]*Branch, error) {
	return s.storage.ListBranches(ctx)
}

func (s *Service) GetBranch(ctx context.Context, branchID string) (*Branch, error) {
	return s.storage.ReadBranch(ctx, branchID)
}

func (s *Service) CreateBranch(ctx context.Context, in BranchInput) (*Branch, error) {
	if err := s.check(ErrInvalidBranch, in); err != nil {
		return nil, err
	}

	branch := &Branch{BranchID: uuid.NewString(), Name: in.Name, Location: in.Location}
	if err := s.storage.CreateBranch(ctx, branch); err != nil {
		s.logger.Error("failed to create branch", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	return branch, nil
}

func (s *Service) UpdateBranch(ctx context.Context, branchID string, in BranchInput) (*Branch, error) {
	if err := s.check(ErrInvalidBranch, in); err != nil {
		return nil, err
	}

	branch := &Branch{BranchID: branchID, Name: in.Name, Location: in.Location}
	if err := s.storage.UpdateBranch(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *Service) DeleteBranch(ctx context.Context, branchID string) error {
	if err := s.storage.DeleteBranch(ctx, branchID); err != nil {
		s.logger.Error("failed to delete branch", zap.String("branch_id", branchID), zap.Error(err))
		return err
	}
	return nil
}
