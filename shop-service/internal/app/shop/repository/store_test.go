package repository

import (
	"context"
	"errors"
	"testing"

	"storefront/shop-service/internal/app/shop/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	store   Store
	user    *entity.CustomerUser
	unit    *entity.Unit
	product *entity.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	store := NewStore(db)

	user := &entity.CustomerUser{
		Account: entity.Account{ID: uuid.New(), Username: "buyer01", Email: "buyer@example.com", PasswordHash: "hash", IsActive: true},
		Profile: entity.CustomerProfile{FirstName: "Ann", LastName: "Lee"},
	}
	require.NoError(t, store.Accounts().Create(ctx, user))

	unit := &entity.Unit{ID: uuid.New(), Name: "kilogram", Symbol: "kg"}
	require.NoError(t, store.Units().Create(ctx, unit))

	product := &entity.Product{
		ID:              uuid.New(),
		Name:            "Apples",
		Description:     "Green apples",
		Price:           decimal.RequireFromString("12.50"),
		UnitID:          unit.ID,
		QuantityPerUnit: decimal.NewFromInt(1),
		Currency:        "USD",
	}
	require.NoError(t, store.Products().Create(ctx, product))

	return &fixture{db: db, store: store, user: user, unit: unit, product: product}
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestStore_DeleteAccountCascades(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	cart := &entity.Cart{ID: uuid.New(), UserID: f.user.Account.ID}
	require.NoError(t, f.store.Carts().Create(ctx, cart))
	require.NoError(t, f.store.Carts().AddItem(ctx, &entity.CartItem{CartID: cart.ID, ProductID: f.product.ID, Quantity: 2}))

	wishlist := &entity.Wishlist{ID: uuid.New(), UserID: f.user.Account.ID}
	require.NoError(t, f.store.Wishlists().Create(ctx, wishlist))
	require.NoError(t, f.store.Wishlists().AddProduct(ctx, wishlist.ID, f.product.ID))

	pid := f.product.ID
	order, err := entity.NewOrder(f.user.Account.ID, "USD", []entity.OrderItem{
		{ProductID: &pid, ProductName: "Apples", Quantity: 1, Price: f.product.Price},
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Orders().Create(ctx, order))

	// Act
	res, err := f.store.Delete(ctx, TableAccounts, f.user.Account.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Deleted[TableAccounts])
	assert.Equal(t, int64(1), res.Deleted[TableCartItems])
	assert.Equal(t, int64(1), res.Deleted[TableOrderItems])
	for _, table := range []string{TableAccounts, TableCustomerProfiles, TableCarts, TableCartItems, TableWishlists, TableWishlistProducts, TableOrders, TableOrderItems} {
		assert.Zero(t, count(t, f.db, table), table)
	}
	assert.Equal(t, int64(1), count(t, f.db, TableProducts))
}

func TestStore_DeleteProductKeepsOrderHistory(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Images().Create(ctx, &entity.Image{ImageFile: "product_images/a.png", ProductID: f.product.ID}))
	category := &entity.Category{ID: uuid.New(), Name: "Fruit"}
	require.NoError(t, f.store.Categories().Create(ctx, category))
	require.NoError(t, f.store.Products().SetCategories(ctx, f.product.ID, []uuid.UUID{category.ID}))

	pid := f.product.ID
	order, err := entity.NewOrder(f.user.Account.ID, "USD", []entity.OrderItem{
		{ProductID: &pid, ProductName: "Apples", Quantity: 3, Price: f.product.Price},
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Orders().Create(ctx, order))

	// Act
	res, err := f.store.Delete(ctx, TableProducts, f.product.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"product_images/a.png"}, res.Files)
	assert.Equal(t, int64(1), res.Nulled[TableOrderItems])
	assert.Zero(t, count(t, f.db, TableImages))
	assert.Zero(t, count(t, f.db, TableProductCategories))
	assert.Equal(t, int64(1), count(t, f.db, TableCategories))

	saved, err := f.store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)
	assert.Nil(t, saved.Items[0].ProductID)
	assert.Equal(t, "Apples", saved.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("37.50").Equal(saved.TotalPrice))
}

func TestStore_DeleteCategoryNullsChildren(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	parent := &entity.Category{ID: uuid.New(), Name: "Food"}
	require.NoError(t, f.store.Categories().Create(ctx, parent))
	child := &entity.Category{ID: uuid.New(), Name: "Fruit", ParentID: &parent.ID}
	require.NoError(t, f.store.Categories().Create(ctx, child))
	require.NoError(t, f.store.Products().SetCategories(ctx, f.product.ID, []uuid.UUID{parent.ID, child.ID}))

	// Act
	res, err := f.store.Delete(ctx, TableCategories, parent.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Nulled[TableCategories])

	saved, err := f.store.Categories().GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, saved.ParentID)

	n, err := f.store.Products().CountCategories(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_DeleteUnitRemovesProductsAndImages(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Images().Create(ctx, &entity.Image{ImageFile: "product_images/b.jpg", ProductID: f.product.ID}))

	// Act
	res, err := f.store.Delete(ctx, TableUnits, f.unit.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Deleted[TableProducts])
	assert.Equal(t, []string{"product_images/b.jpg"}, res.Files)
	assert.Zero(t, count(t, f.db, TableProducts))
}

func TestStore_DeleteMissingReturnsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Delete(context.Background(), TableCarts, uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_WithinTransactionRollsBack(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	// Act
	err := f.store.WithinTransaction(ctx, func(tx Store) error {
		if err := tx.Units().Create(ctx, &entity.Unit{Name: "litre", Symbol: "l"}); err != nil {
			return err
		}
		return boom
	})

	// Assert
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), count(t, f.db, TableUnits))
}

func TestProductRepository_SetCategoriesDeduplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := &entity.Category{ID: uuid.New(), Name: "Fruit"}
	require.NoError(t, f.store.Categories().Create(ctx, category))

	require.NoError(t, f.store.Products().SetCategories(ctx, f.product.ID, []uuid.UUID{category.ID, category.ID}))

	n, err := f.store.Products().CountCategories(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	byProduct, err := f.store.Categories().ListByProducts(ctx, []uuid.UUID{f.product.ID})
	require.NoError(t, err)
	require.Len(t, byProduct[f.product.ID], 1)
	assert.Equal(t, "Fruit", byProduct[f.product.ID][0].Name)
}

func TestProductRepository_ListPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.store.Products().Create(ctx, &entity.Product{
			Name: "Pear", Description: "Pear", Price: decimal.NewFromInt(2), UnitID: f.unit.ID,
			QuantityPerUnit: decimal.NewFromInt(1), Currency: "USD",
		}))
	}

	products, total, err := f.store.Products().List(ctx, 2, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, products, 2)
}

func TestWishlistRepository_AddProductIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wishlist := &entity.Wishlist{ID: uuid.New(), UserID: f.user.Account.ID}
	require.NoError(t, f.store.Wishlists().Create(ctx, wishlist))

	require.NoError(t, f.store.Wishlists().AddProduct(ctx, wishlist.ID, f.product.ID))
	require.NoError(t, f.store.Wishlists().AddProduct(ctx, wishlist.ID, f.product.ID))

	links, err := f.store.Wishlists().ListProducts(ctx, wishlist.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	removed, err := f.store.Wishlists().RemoveProduct(ctx, wishlist.ID, f.product.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.store.Wishlists().RemoveProduct(ctx, wishlist.ID, f.product.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCartRepository_AddItemUnknownProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart := &entity.Cart{ID: uuid.New(), UserID: f.user.Account.ID}
	require.NoError(t, f.store.Carts().Create(ctx, cart))

	err := f.store.Carts().AddItem(ctx, &entity.CartItem{CartID: cart.ID, ProductID: uuid.New(), Quantity: 1})

	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestAccountRepository_ExistsIgnoresCaseAndSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accounts := f.store.Accounts()

	exists, err := accounts.ExistsUsername(ctx, "BUYER01", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = accounts.ExistsUsername(ctx, "buyer01", f.user.Account.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = accounts.ExistsEmail(ctx, "Buyer@Example.com", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountRepository_CreateDuplicateUsername(t *testing.T) {
	f := newFixture(t)

	err := f.store.Accounts().Create(context.Background(), &entity.CustomerUser{
		Account: entity.Account{Username: "buyer01", Email: "other@example.com", PasswordHash: "hash", IsActive: true},
		Profile: entity.CustomerProfile{FirstName: "Bob", LastName: "Ray"},
	})

	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestAccountRepository_GetLoadsProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.store.Accounts().GetByUsername(ctx, "buyer01")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Profile.FirstName)

	require.NoError(t, f.store.Accounts().UpdatePassword(ctx, user.Account.ID, "new-hash"))
	user, err = f.store.Accounts().GetByID(ctx, user.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.Account.PasswordHash)

	_, err = f.store.Accounts().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.product.ID
	order, err := entity.NewOrder(f.user.Account.ID, "USD", []entity.OrderItem{
		{ProductID: &pid, ProductName: "Apples", Quantity: 1, Price: f.product.Price},
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Orders().Create(ctx, order))

	require.NoError(t, f.store.Orders().UpdateStatus(ctx, order.ID, "shipped"))
	saved, err := f.store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "shipped", saved.Status)

	assert.ErrorIs(t, f.store.Orders().UpdateStatus(ctx, uuid.New(), "shipped"), ErrOrderNotFound)
}

func TestUnitRepository_GetByNameDuplicatesIsDeterministic(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	high := &entity.Unit{ID: uuid.MustParse("ffffffff-0000-4000-8000-000000000000"), Name: "litre", Symbol: "l"}
	low := &entity.Unit{ID: uuid.MustParse("00000000-0000-4000-8000-000000000000"), Name: "litre", Symbol: "L"}
	require.NoError(t, f.store.Units().Create(ctx, high))
	require.NoError(t, f.store.Units().Create(ctx, low))

	// Act
	found, err := f.store.Units().GetByName(ctx, "litre")

	// Assert: побеждает наименьший id, а не порядок вставки
	require.NoError(t, err)
	assert.Equal(t, low.ID, found.ID)
}

func TestProductRepository_ListByUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := &entity.Unit{ID: uuid.New(), Name: "piece", Symbol: "pc"}
	require.NoError(t, f.store.Units().Create(ctx, other))
	require.NoError(t, f.store.Products().Create(ctx, &entity.Product{
		Name: "Pear", Description: "Pear", Price: decimal.NewFromInt(2), UnitID: other.ID,
		QuantityPerUnit: decimal.NewFromInt(1), Currency: "USD",
	}))

	products, err := f.store.Products().ListByUnit(ctx, f.unit.ID)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, f.product.ID, products[0].ID)
}
