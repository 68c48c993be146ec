package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"inventory_api/internal/catalog"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to store a sale with an empty ID.
var ErrEmptyID = errors.New("empty sale ID")

// Ledger is the set of reads and writes available inside one sale
// transaction. Everything done through a Ledger commits or rolls back together.
type Ledger interface {
	// FindProduct returns the product with its sizes, or ErrProductNotFound.
	FindProduct(ctx context.Context, productID string) (*catalog.Product, error)
	// DecrementStock subtracts quantity from a size, failing with
	// ErrInsufficientStock instead of going negative.
	DecrementStock(ctx context.Context, productID, size string, quantity int) error
	// Set persists the sale and its items.
	Set(ctx context.Context, sale *Sale) error
}

// Storage is the main interface for our sales storage layer.
type Storage interface {
	// Transaction runs fn atomically. A non-nil error from fn discards every
	// write made through the Ledger.
	Transaction(ctx context.Context, fn func(Ledger) error) error
	Read(ctx context.Context, id string) (*Sale, error)
	GetAll(ctx context.Context) ([]*Sale, error)
}

// LocalStorage provides an in-memory implementation for storing sales
// together with the stock they draw from.
type LocalStorage struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	m        map[string]*Sale
	nextItem uint
}

// NewLocalStorage instantiates a new LocalStorage with empty maps.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		products: map[string]*catalog.Product{},
		m:        map[string]*Sale{},
	}
}

// PutProduct stores a copy of the product, replacing any previous one.
func (l *LocalStorage) PutProduct(p *catalog.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products[p.ProductID] = p.Clone()
}

// Product returns a copy of the stored product, or nil.
func (l *LocalStorage) Product(productID string) *catalog.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.products[productID]
	if !ok {
		return nil
	}
	return p.Clone()
}

// Transaction holds the storage lock for the whole call, so transactions are
// serialised. fn works on copies that are swapped in only on success.
func (l *LocalStorage) Transaction(ctx context.Context, fn func(Ledger) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &localLedger{
		products: make(map[string]*catalog.Product, len(l.products)),
		nextItem: l.nextItem,
	}
	for id, p := range l.products {
		tx.products[id] = p.Clone()
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.products = tx.products
	l.nextItem = tx.nextItem
	for _, sale := range tx.sales {
		l.m[sale.SaleID] = sale
	}
	return nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(_ context.Context, id string) (*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.withProducts(s), nil
}

// GetAll retrieves all sales ordered by timestamp, products attached.
func (l *LocalStorage) GetAll(_ context.Context) ([]*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sales := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		sales = append(sales, l.withProducts(s))
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].Timestamp.Equal(sales[j].Timestamp) {
			return sales[i].Timestamp.Before(sales[j].Timestamp)
		}
		return sales[i].SaleID < sales[j].SaleID
	})
	return sales, nil
}

func (l *LocalStorage) withProducts(s *Sale) *Sale {
	c := *s
	c.SaleItems = make([]SaleItem, len(s.SaleItems))
	for i, item := range s.SaleItems {
		if p, ok := l.products[item.ProductID]; ok {
			item.Product = p.Clone()
			item.Product.Sizes = nil
		}
		c.SaleItems[i] = item
	}
	return &c
}

type localLedger struct {
	products map[string]*catalog.Product
	sales    []*Sale
	nextItem uint
}

func (t *localLedger) FindProduct(_ context.Context, productID string) (*catalog.Product, error) {
	p, ok := t.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return p.Clone(), nil
}

func (t *localLedger) DecrementStock(_ context.Context, productID, size string, quantity int) error {
	p, ok := t.products[productID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	ps := p.FindSize(size)
	if ps == nil {
		return fmt.Errorf("%w: size %s of product %s", ErrSizeNotAvailable, size, productID)
	}
	if ps.StockQuantity < quantity {
		return fmt.Errorf("%w: product %s, size %s", ErrInsufficientStock, productID, size)
	}
	ps.StockQuantity -= quantity
	return nil
}

// Returns ErrEmptyID if the sale has an empty ID.
func (t *localLedger) Set(_ context.Context, sale *Sale) error {
	if sale.SaleID == "" {
		return ErrEmptyID
	}
	for i := range sale.SaleItems {
		t.nextItem++
		sale.SaleItems[i].ID = t.nextItem
		sale.SaleItems[i].SaleID = sale.SaleID
	}
	stored := *sale
	stored.SaleItems = append([]SaleItem(nil), sale.SaleItems...)
	t.sales = append(t.sales, &stored)
	return nil
}
