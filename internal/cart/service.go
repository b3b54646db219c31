package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agure1996/cinab-website/internal/catalog"
)

// productReader is the slice of the catalog the cart needs: price lookups
// when a line is added or its quantity changes.
type productReader interface {
	GetByID(ctx context.Context, productID string) (*catalog.Product, error)
}

// Service owns the cart rules: one cart per user, price snapshotted on add,
// totals recomputed on every mutation. Each mutation runs as a single
// transaction via Repository.Mutate.
type Service struct {
	carts    Repository
	products productReader
}

func NewService(carts Repository, products productReader) *Service {
	return &Service{carts: carts, products: products}
}

// GetOrCreate returns the user's cart, creating an empty one when none exists.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	c, err = s.carts.Mutate(ctx, userID, true, nil)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Total, nil
}

// AddItem puts quantity units of the product into the user's cart. An
// existing line keeps its original unit price and only grows its quantity;
// a new line snapshots the product's current price.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	return s.carts.Mutate(ctx, userID, true, func(c *Cart) error {
		if line := c.FindLine(productID); line != nil {
			line.Quantity += quantity
			return nil
		}

		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		c.Lines = append(c.Lines, Line{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: p.Price,
		})
		return nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	return s.carts.Mutate(ctx, userID, false, func(c *Cart) error {
		if !c.removeLine(productID) {
			return ErrLineNotFound
		}
		return nil
	})
}

// UpdateItemQuantity sets the line's quantity and refreshes its unit price
// from the catalog. A non-positive quantity drops the line. When the cart
// holds no line for the product the call is a no-op.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	return s.carts.Mutate(ctx, userID, false, func(c *Cart) error {
		line := c.FindLine(productID)
		if line == nil {
			return nil
		}

		if quantity <= 0 {
			c.removeLine(productID)
			return nil
		}

		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		line.Quantity = quantity
		line.UnitPrice = p.Price
		return nil
	})
}

func (s *Service) GetItem(ctx context.Context, userID, productID string) (*Line, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	line := c.FindLine(productID)
	if line == nil {
		return nil, ErrLineNotFound
	}
	return line, nil
}

// Clear deletes the user's cart and all of its lines.
func (s *Service) Clear(ctx context.Context, userID string) error {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.carts.Delete(ctx, c.ID)
}
