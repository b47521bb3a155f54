package service

import (
	"context"
	"errors"
	"testing"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, env *testEnv) (*entity.Unit, *entity.Category) {
	t.Helper()
	ctx := context.Background()

	unit, err := env.catalog.CreateUnit(ctx, &entity.CreateUnitRequest{Name: "Kilogram", Symbol: "kg"})
	require.NoError(t, err)
	category, err := env.catalog.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Electronics"})
	require.NoError(t, err)
	return unit, category
}

func productForm() *entity.ProductForm {
	return &entity.ProductForm{
		Name:            str("Test Product"),
		Description:     str("A product for tests"),
		Price:           str("100.00"),
		Discount:        str("10"),
		Unit:            str("Kilogram"),
		QuantityPerUnit: str("1.00"),
		Currency:        str("USD"),
		Categories:      []string{"Electronics"},
		HasCategories:   true,
	}
}

func TestCatalogService_CreateProductScenario(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	unit, category := seedCatalog(t, env)

	// Act
	product, err := env.catalog.CreateProduct(ctx, productForm())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.count(t, repository.TableProducts))

	n, err := env.store.Products().CountCategories(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, unit.ID, product.UnitDetails.ID)
	assert.Equal(t, "kg", product.UnitDetails.Symbol)
	require.Len(t, product.CategoriesDetails, 1)
	assert.Equal(t, category.ID, product.CategoriesDetails[0].ID)
	assert.True(t, decimal.NewFromInt(100).Equal(product.Price))
	assert.Nil(t, product.ImageURL)
	assert.Equal(t, []string{entity.EventProductCreated}, env.publisher.EventTypes())
}

func TestCatalogService_CreateProductWithImage(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	form := productForm()
	form.Image = image("Photo.PNG")

	product, err := env.catalog.CreateProduct(context.Background(), form)

	require.NoError(t, err)
	require.NotNil(t, product.ImageURL)
	files := env.storedFiles(t)
	require.Len(t, files, 1)
	assert.Equal(t, "/media/"+files[0], *product.ImageURL)
	assert.Equal(t, ".png", files[0][len(files[0])-4:])
}

func TestCatalogService_CreateProductUnknownCategory(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	seedCatalog(t, env)
	form := productForm()
	form.Categories = []string{"Electronics, Garden"}
	form.Image = image("a.png")

	// Act
	_, err := env.catalog.CreateProduct(context.Background(), form)

	// Assert
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Category 'Garden' not found", notFound.Message)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Zero(t, env.count(t, repository.TableProducts))
	assert.Empty(t, env.storedFiles(t), "uploaded file must be discarded")
}

func TestCatalogService_CreateProductUnitErrors(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)

	form := productForm()
	form.Unit = str("Litre")
	_, err := env.catalog.CreateProduct(context.Background(), form)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Unit 'Litre' not found", notFound.Message)

	form.Unit = nil
	_, err = env.catalog.CreateProduct(context.Background(), form)
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Unit cannot be empty", notFound.Message)
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestCatalogService_CreateProductValidation(t *testing.T) {
	tests := []struct {
		name  string
		apply func(f *entity.ProductForm)
		field string
	}{
		{"zero price", func(f *entity.ProductForm) { f.Price = str("0") }, "price"},
		{"discount over 100", func(f *entity.ProductForm) { f.Discount = str("101") }, "discount"},
		{"zero quantity", func(f *entity.ProductForm) { f.QuantityPerUnit = str("0") }, "quantity_per_unit"},
		{"long currency", func(f *entity.ProductForm) { f.Currency = str("USDT") }, "currency"},
		{"three decimals", func(f *entity.ProductForm) { f.Price = str("1.005") }, "price"},
		{"not a number", func(f *entity.ProductForm) { f.Price = str("abc") }, "price"},
		{"missing name", func(f *entity.ProductForm) { f.Name = nil }, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedCatalog(t, env)
			form := productForm()
			tt.apply(form)

			_, err := env.catalog.CreateProduct(context.Background(), form)

			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Contains(t, verrs.Fields(), tt.field)
			assert.Zero(t, env.count(t, repository.TableProducts))
		})
	}
}

func TestCatalogService_UpdateProductPartial(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	_, err := env.catalog.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Garden"})
	require.NoError(t, err)

	form := productForm()
	form.Image = image("old.png")
	created, err := env.catalog.CreateProduct(ctx, form)
	require.NoError(t, err)
	oldFiles := env.storedFiles(t)
	require.Len(t, oldFiles, 1)

	// Act
	updated, err := env.catalog.UpdateProduct(ctx, created.ID, &entity.ProductForm{
		Price:         str("80.50"),
		Categories:    []string{"Garden", "Garden"},
		HasCategories: true,
		Image:         image("new.jpg"),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Test Product", updated.Name)
	assert.True(t, decimal.RequireFromString("80.50").Equal(updated.Price))
	assert.Equal(t, 10, updated.Discount)
	require.Len(t, updated.CategoriesDetails, 1)
	assert.Equal(t, "Garden", updated.CategoriesDetails[0].Name)

	assert.Equal(t, int64(1), env.count(t, repository.TableImages))
	assert.False(t, env.fileExists(oldFiles[0]))
	assert.Len(t, env.storedFiles(t), 1)

	// событие сообщает, сколько строк images удалила замена
	updates := env.publisher.Removed(entity.EventProductUpdated)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(1), updates[0][repository.TableImages])
}

func TestCatalogService_UpdateProductWithoutImageReportsNothingRemoved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	form := productForm()
	form.Image = image("a.png")
	created, err := env.catalog.CreateProduct(ctx, form)
	require.NoError(t, err)

	_, err = env.catalog.UpdateProduct(ctx, created.ID, &entity.ProductForm{Price: str("50")})

	require.NoError(t, err)
	updates := env.publisher.Removed(entity.EventProductUpdated)
	require.Len(t, updates, 1)
	assert.Zero(t, updates[0][repository.TableImages])
	assert.Len(t, env.storedFiles(t), 1)
}

func TestCatalogService_UpdateProductInvalidKeepsState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	created, err := env.catalog.CreateProduct(ctx, productForm())
	require.NoError(t, err)

	_, err = env.catalog.UpdateProduct(ctx, created.ID, &entity.ProductForm{Discount: str("-1"), Image: image("x.png")})

	assert.ErrorIs(t, err, validation.ErrInvalid)
	saved, err := env.catalog.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, saved.Discount)
	assert.Empty(t, env.storedFiles(t))
}

func TestCatalogService_DeleteProductRemovesImage(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	form := productForm()
	form.Image = image("a.png")
	created, err := env.catalog.CreateProduct(ctx, form)
	require.NoError(t, err)

	// Act
	err = env.catalog.DeleteProduct(ctx, created.ID)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, env.count(t, repository.TableImages))
	assert.Zero(t, env.count(t, repository.TableProductCategories))
	assert.Empty(t, env.storedFiles(t))
	assert.ErrorIs(t, env.catalog.DeleteProduct(ctx, created.ID), ErrProductNotFound)
	assert.Contains(t, env.publisher.EventTypes(), entity.EventProductDeleted)
}

func TestCatalogService_ListProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)
	for i := 0; i < 3; i++ {
		_, err := env.catalog.CreateProduct(ctx, productForm())
		require.NoError(t, err)
	}

	page, err := env.catalog.ListProducts(ctx, 2, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 2, page.Limit)

	page, err = env.catalog.ListProducts(ctx, 1000, -5)
	require.NoError(t, err)
	assert.Equal(t, MaxProductLimit, page.Limit)
	assert.Equal(t, 0, page.Offset)
}

func TestCatalogService_CategoriesCache(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	seedCatalog(t, env)

	// Act
	categories, err := env.catalog.ListCategories(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.True(t, env.redis.Exists("categories:all"))

	_, err = env.catalog.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Garden"})
	require.NoError(t, err)
	assert.False(t, env.redis.Exists("categories:all"))

	categories, err = env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestCatalogService_CategoryParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, parent := seedCatalog(t, env)

	missing := uuid.New()
	_, err := env.catalog.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Phones", ParentID: &missing})
	assert.ErrorIs(t, err, validation.ErrReferenceMissing)

	child, err := env.catalog.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Phones", ParentID: &parent.ID})
	require.NoError(t, err)

	_, err = env.catalog.UpdateCategory(ctx, child.ID, &entity.UpdateCategoryRequest{ParentID: str(child.ID.String())})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	updated, err := env.catalog.UpdateCategory(ctx, child.ID, &entity.UpdateCategoryRequest{ParentID: str("")})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)
}

func TestCatalogService_DeleteCategoryKeepsChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, parent := seedCatalog(t, env)
	child, err := env.catalog.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Phones", ParentID: &parent.ID})
	require.NoError(t, err)

	require.NoError(t, env.catalog.DeleteCategory(ctx, parent.ID))

	saved, err := env.catalog.GetCategory(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, saved.ParentID)
	assert.ErrorIs(t, env.catalog.DeleteCategory(ctx, parent.ID), ErrCategoryNotFound)
}

func TestCatalogService_Units(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	unit, _ := seedCatalog(t, env)
	_, err := env.catalog.CreateProduct(ctx, productForm())
	require.NoError(t, err)

	_, err = env.catalog.CreateUnit(ctx, &entity.CreateUnitRequest{Name: "", Symbol: "toolongsymbol"})
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"Name cannot be empty."}, verrs.Fields()["name"])
	assert.Contains(t, verrs.Fields(), "symbol")

	updated, err := env.catalog.UpdateUnit(ctx, unit.ID, &entity.UpdateUnitRequest{Symbol: str("KG")})
	require.NoError(t, err)
	assert.Equal(t, "Kilogram", updated.Name)
	assert.Equal(t, "KG", updated.Symbol)

	units, err := env.catalog.ListUnits(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 1)

	require.NoError(t, env.catalog.DeleteUnit(ctx, unit.ID))
	assert.Zero(t, env.count(t, repository.TableProducts))
	_, err = env.catalog.GetUnit(ctx, unit.ID)
	assert.ErrorIs(t, err, ErrUnitNotFound)
	assert.ErrorIs(t, env.catalog.DeleteUnit(ctx, unit.ID), ErrUnitNotFound)
}

func TestCatalogService_DeleteUnitPublishesCascade(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	unit, _ := seedCatalog(t, env)
	for _, name := range []string{"a.png", "b.png"} {
		form := productForm()
		form.Image = image(name)
		_, err := env.catalog.CreateProduct(ctx, form)
		require.NoError(t, err)
	}
	require.Len(t, env.storedFiles(t), 2)

	// Act
	err := env.catalog.DeleteUnit(ctx, unit.ID)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, env.storedFiles(t))
	assert.Len(t, env.publisher.Removed(entity.EventProductDeleted), 2)

	unitEvents := env.publisher.Removed(entity.EventUnitDeleted)
	require.Len(t, unitEvents, 1)
	assert.Equal(t, int64(1), unitEvents[0][repository.TableUnits])
	assert.Equal(t, int64(2), unitEvents[0][repository.TableProducts])
	assert.Equal(t, int64(2), unitEvents[0][repository.TableImages])
}

func TestCategoryNames(t *testing.T) {
	got := CategoryNames([]string{" Fruit, Vegetables ", "Fruit", "", ",Dairy,"})

	assert.Equal(t, []string{"Fruit", "Vegetables", "Dairy"}, got)
}
