package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService - корзины и список желаний пользователя
type CartService struct {
	store repository.Store
}

func NewCartService(store repository.Store) *CartService {
	return &CartService{store: store}
}

// === CARTS ===

func (s *CartService) CreateCart(ctx context.Context, userID uuid.UUID) (*entity.CartResponse, error) {
	cart, err := entity.NewCart(userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &entity.CartResponse{ID: cart.ID, CreatedAt: cart.CreatedAt, Items: []entity.CartItemResponse{}, Total: decimal.Zero}, nil
}

func (s *CartService) ListCarts(ctx context.Context, userID uuid.UUID) ([]entity.CartResponse, error) {
	carts, err := s.store.Carts().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	return s.cartResponses(ctx, s.store, carts)
}

func (s *CartService) GetCart(ctx context.Context, userID, cartID uuid.UUID) (*entity.CartResponse, error) {
	cart, err := ownCart(ctx, s.store, userID, cartID)
	if err != nil {
		return nil, err
	}
	responses, err := s.cartResponses(ctx, s.store, []entity.Cart{*cart})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *CartService) DeleteCart(ctx context.Context, userID, cartID uuid.UUID) error {
	if _, err := ownCart(ctx, s.store, userID, cartID); err != nil {
		return err
	}
	if _, err := s.store.Delete(ctx, repository.TableCarts, cartID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCartNotFound
		}
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// AddItem добавляет товар в корзину. Отсутствующий товар - ошибка валидации reference_missing.
func (s *CartService) AddItem(ctx context.Context, userID, cartID uuid.UUID, req *entity.AddCartItemRequest) (*entity.CartResponse, error) {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if _, err := ownCart(ctx, tx, userID, cartID); err != nil {
			return err
		}
		if err := productExists(ctx, tx, req.ProductID); err != nil {
			return err
		}
		item, err := entity.NewCartItem(cartID, req.ProductID, req.Quantity)
		if err != nil {
			return err
		}
		return tx.Carts().AddItem(ctx, item)
	})
	if err != nil {
		return nil, cartError("add item to cart", err)
	}
	return s.GetCart(ctx, userID, cartID)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, cartID, itemID uuid.UUID, req *entity.UpdateCartItemRequest) (*entity.CartResponse, error) {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if _, err := ownCart(ctx, tx, userID, cartID); err != nil {
			return err
		}
		item, err := tx.Carts().GetItem(ctx, cartID, itemID)
		if err != nil {
			return err
		}
		item.Quantity = req.Quantity
		if err := item.Validate(); err != nil {
			return err
		}
		return tx.Carts().UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, cartError("update cart item", err)
	}
	return s.GetCart(ctx, userID, cartID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, cartID, itemID uuid.UUID) error {
	if _, err := ownCart(ctx, s.store, userID, cartID); err != nil {
		return err
	}
	if _, err := s.store.Carts().GetItem(ctx, cartID, itemID); err != nil {
		return cartError("remove cart item", err)
	}
	if _, err := s.store.Delete(ctx, repository.TableCartItems, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) cartResponses(ctx context.Context, store repository.Store, carts []entity.Cart) ([]entity.CartResponse, error) {
	cartIDs := make([]uuid.UUID, 0, len(carts))
	for _, c := range carts {
		cartIDs = append(cartIDs, c.ID)
	}

	items, err := store.Carts().ListItems(ctx, cartIDs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := store.Products().ListByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byCart := make(map[uuid.UUID][]entity.CartItemResponse, len(carts))
	for _, item := range items {
		product := products[item.ProductID]
		price := product.DiscountedPrice()
		byCart[item.CartID] = append(byCart[item.CartID], entity.CartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Discount:    product.Discount,
			LineTotal:   price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Currency:    product.Currency,
		})
	}

	responses := make([]entity.CartResponse, 0, len(carts))
	for _, c := range carts {
		resp := entity.CartResponse{ID: c.ID, CreatedAt: c.CreatedAt, Items: byCart[c.ID], Total: decimal.Zero}
		if resp.Items == nil {
			resp.Items = []entity.CartItemResponse{}
		}
		for _, item := range resp.Items {
			resp.Total = resp.Total.Add(item.LineTotal)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// === WISHLIST ===

// GetWishlist возвращает список желаний, создавая его при первом обращении
func (s *CartService) GetWishlist(ctx context.Context, userID uuid.UUID) (*entity.WishlistResponse, error) {
	wishlist, err := s.wishlist(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}

	links, err := s.store.Wishlists().ListProducts(ctx, wishlist.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ProductID)
	}
	products, err := s.store.Products().ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	resp := &entity.WishlistResponse{ID: wishlist.ID, Products: make([]entity.WishlistProductResponse, 0, len(links))}
	for _, l := range links {
		p := products[l.ProductID]
		resp.Products = append(resp.Products, entity.WishlistProductResponse{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Currency: p.Currency,
			AddedAt:  l.AddedAt,
		})
	}
	return resp, nil
}

func (s *CartService) AddToWishlist(ctx context.Context, userID uuid.UUID, req *entity.AddWishlistProductRequest) (*entity.WishlistResponse, error) {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		wishlist, err := s.wishlist(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := productExists(ctx, tx, req.ProductID); err != nil {
			return err
		}
		return tx.Wishlists().AddProduct(ctx, wishlist.ID, req.ProductID)
	})
	if err != nil {
		if errors.Is(err, validation.ErrInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add product to wishlist: %w", err)
	}
	return s.GetWishlist(ctx, userID)
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	wishlist, err := s.wishlist(ctx, s.store, userID)
	if err != nil {
		return err
	}
	removed, err := s.store.Wishlists().RemoveProduct(ctx, wishlist.ID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove product from wishlist: %w", err)
	}
	if !removed {
		return ErrProductNotFound
	}
	return nil
}

func (s *CartService) wishlist(ctx context.Context, store repository.Store, userID uuid.UUID) (*entity.Wishlist, error) {
	wishlist, err := store.Wishlists().GetByUser(ctx, userID)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, repository.ErrWishlistNotFound) {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	wishlist, err = entity.NewWishlist(userID)
	if err != nil {
		return nil, err
	}
	if err := store.Wishlists().Create(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}
	return wishlist, nil
}

// ownCart загружает корзину и проверяет, что она принадлежит пользователю
func ownCart(ctx context.Context, store repository.Store, userID, cartID uuid.UUID) (*entity.Cart, error) {
	cart, err := store.Carts().GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.UserID != userID {
		return nil, ErrForbidden
	}
	return cart, nil
}

func productExists(ctx context.Context, store repository.Store, productID uuid.UUID) error {
	if _, err := store.Products().GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return validation.MissingReference("product_id", invalidPK(productID))
		}
		return err
	}
	return nil
}

func cartError(op string, err error) error {
	switch {
	case errors.Is(err, ErrCartNotFound), errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, repository.ErrCartItemNotFound):
		return ErrCartItemNotFound
	case errors.Is(err, validation.ErrInvalid):
		return trackValidation("cart_item", err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
