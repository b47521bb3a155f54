package entity

import (
	"errors"
	"testing"

	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs.Fields()
}

func validProductParams() ProductParams {
	return ProductParams{
		Name:            "Test Product",
		Description:     "Test Description",
		Price:           decimal.RequireFromString("100.00"),
		Discount:        10,
		UnitID:          uuid.New(),
		QuantityPerUnit: decimal.RequireFromString("1.00"),
		Currency:        "USD",
	}
}

func TestNewUnit(t *testing.T) {
	u, err := NewUnit("Kilogram", "kg")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)

	_, err = NewUnit("", "kg")
	assert.Equal(t, []string{"Name cannot be empty."}, fieldErrors(t, err)["name"])

	_, err = NewUnit("Kilogram", "kilograms!")
	assert.Equal(t, []string{"Symbol cannot exceed 9 characters."}, fieldErrors(t, err)["symbol"])
}

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("Electronics", nil)
	require.NoError(t, err)
	assert.Nil(t, c.ParentID)

	_, err = NewCategory(string(make([]byte, 201)), nil)
	assert.Contains(t, fieldErrors(t, err)["name"], "Name cannot exceed 200 characters.")
}

func TestCategory_CannotBeOwnParent(t *testing.T) {
	c, err := NewCategory("Electronics", nil)
	require.NoError(t, err)

	c.ParentID = &c.ID

	assert.Contains(t, fieldErrors(t, c.Validate())["parent_id"], "Category cannot be its own parent.")
}

func TestNewProduct_Valid(t *testing.T) {
	p, err := NewProduct(validProductParams())

	require.NoError(t, err)
	assert.Equal(t, "Test Product", p.Name)
	assert.True(t, p.DiscountedPrice().Equal(decimal.RequireFromString("90.00")))
}

func TestNewProduct_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *ProductParams)
		field   string
		message string
	}{
		{"empty name", func(p *ProductParams) { p.Name = "" }, "name", "Name cannot be empty."},
		{"empty description", func(p *ProductParams) { p.Description = "" }, "description", "Description cannot be empty."},
		{"zero price", func(p *ProductParams) { p.Price = decimal.Zero }, "price", "Price must be greater than 0."},
		{"price with three decimals", func(p *ProductParams) { p.Price = decimal.RequireFromString("1.005") }, "price", "Ensure that there are no more than 2 decimal places."},
		{"discount above 100", func(p *ProductParams) { p.Discount = 101 }, "discount", "Discount must be between 0 and 100."},
		{"negative discount", func(p *ProductParams) { p.Discount = -5 }, "discount", "Discount must be between 0 and 100."},
		{"missing unit", func(p *ProductParams) { p.UnitID = uuid.Nil }, "unit_id", "Unit cannot be empty."},
		{"zero quantity per unit", func(p *ProductParams) { p.QuantityPerUnit = decimal.Zero }, "quantity_per_unit", "Quantity per unit must be greater than 0."},
		{"empty currency", func(p *ProductParams) { p.Currency = "" }, "currency", "Currency cannot be empty."},
		{"long currency", func(p *ProductParams) { p.Currency = "USDT" }, "currency", "Currency cannot exceed 3 characters."},
		{"invalid currency", func(p *ProductParams) { p.Currency = "$$" }, "currency", "Currency must be a valid ISO 4217 code."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validProductParams()
			tt.mutate(&params)

			p, err := NewProduct(params)

			assert.Nil(t, p)
			assert.ErrorIs(t, err, validation.ErrInvalid)
			assert.Contains(t, fieldErrors(t, err)[tt.field], tt.message)
		})
	}
}

func TestNewProduct_BoundaryDiscounts(t *testing.T) {
	for _, discount := range []int{0, 100} {
		params := validProductParams()
		params.Discount = discount

		_, err := NewProduct(params)
		assert.NoError(t, err)
	}
}

func TestNewImage(t *testing.T) {
	_, err := NewImage(uuid.Nil, "")

	fields := fieldErrors(t, err)
	assert.Equal(t, []string{"Image file cannot be empty."}, fields["image_file"])
	assert.Equal(t, []string{"Product cannot be empty."}, fields["product_id"])
}

func TestNewCartItem_Quantity(t *testing.T) {
	cartID, productID := uuid.New(), uuid.New()

	item, err := NewCartItem(cartID, productID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	for _, q := range []int{0, -3} {
		_, err := NewCartItem(cartID, productID, q)
		assert.Equal(t, []string{"Quantity must be greater than 0."}, fieldErrors(t, err)["quantity"])
	}
}

func TestNewCart_RequiresUser(t *testing.T) {
	_, err := NewCart(uuid.Nil)
	assert.Equal(t, []string{"User cannot be empty."}, fieldErrors(t, err)["user_id"])
}

func TestNewOrder_SnapshotsAndTotal(t *testing.T) {
	productID := uuid.New()
	items := []OrderItem{
		{ProductID: &productID, ProductName: "Tea", Quantity: 2, Price: decimal.RequireFromString("100.00"), Discount: 10},
		{ProductName: "Cup", Quantity: 3, Price: decimal.RequireFromString("0.99"), Discount: 50},
	}

	order, err := NewOrder(uuid.New(), "USD", items)

	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, order.Status)
	// 2 * 90.00 + 3 * round(0.495) = 180.00 + 3 * 0.50
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("181.50")), order.TotalPrice.String())
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
		assert.NotEqual(t, uuid.Nil, item.ID)
	}
}

func TestNewOrder_Empty(t *testing.T) {
	_, err := NewOrder(uuid.New(), "USD", nil)
	assert.Contains(t, fieldErrors(t, err), "items")
}

func TestNewOrder_InvalidItem(t *testing.T) {
	_, err := NewOrder(uuid.New(), "USD", []OrderItem{{ProductName: "Tea", Quantity: 0, Price: decimal.NewFromInt(1)}})
	assert.Contains(t, fieldErrors(t, err)["quantity"], "Quantity must be greater than 0.")
}

func plainHash(p string) (string, error) {
	return "hashed:" + p, nil
}

func validUserParams() CustomerUserParams {
	return CustomerUserParams{
		Username:    "testuser",
		Email:       "test@Example.COM",
		Password:    "Str0ng@Pass",
		FirstName:   "Test",
		LastName:    "User",
		PhoneNumber: "+1-555-0100",
		DateOfBirth: "1990-05-17",
	}
}

func TestNewCustomerUser_Valid(t *testing.T) {
	u, err := NewCustomerUser(validUserParams(), plainHash)

	require.NoError(t, err)
	assert.Equal(t, u.Account.ID, u.Profile.AccountID)
	assert.Equal(t, "test@example.com", u.Account.Email)
	assert.Equal(t, "hashed:Str0ng@Pass", u.Account.PasswordHash)
	assert.True(t, u.Account.IsActive)
	require.NotNil(t, u.Profile.DateOfBirth)
	assert.Equal(t, "1990-05-17", u.Profile.DateOfBirth.Format(DateLayout))
}

func TestNewCustomerUser_WeakPasswordNamesPasswordField(t *testing.T) {
	params := validUserParams()
	params.Password = "Weakpassword1"

	_, err := NewCustomerUser(params, plainHash)

	assert.Equal(t, []string{"Password must contain at least 1 special character."}, fieldErrors(t, err)["password"])
}

func TestNewCustomerUser_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *CustomerUserParams)
		field  string
	}{
		{"short username", func(p *CustomerUserParams) { p.Username = "cat" }, "username"},
		{"long username", func(p *CustomerUserParams) { p.Username = "Twenty-1_characters.0" }, "username"},
		{"invalid email", func(p *CustomerUserParams) { p.Email = "not-an-email" }, "email"},
		{"missing first name", func(p *CustomerUserParams) { p.FirstName = "" }, "first_name"},
		{"missing last name", func(p *CustomerUserParams) { p.LastName = " " }, "last_name"},
		{"long phone", func(p *CustomerUserParams) { p.PhoneNumber = "123456789012345678901" }, "phone_number"},
		{"phone letters", func(p *CustomerUserParams) { p.PhoneNumber = "555-CALL" }, "phone_number"},
		{"short password", func(p *CustomerUserParams) { p.Password = "Short@1" }, "password"},
		{"empty password", func(p *CustomerUserParams) { p.Password = "" }, "password"},
		{"bad birth date", func(p *CustomerUserParams) { p.DateOfBirth = "17.05.1990" }, "date_of_birth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validUserParams()
			tt.mutate(&params)

			u, err := NewCustomerUser(params, plainHash)

			assert.Nil(t, u)
			assert.Contains(t, fieldErrors(t, err), tt.field)
		})
	}
}

func TestNewCustomerUser_DoesNotHashInvalidInput(t *testing.T) {
	params := validUserParams()
	params.Username = ""
	called := false

	_, err := NewCustomerUser(params, func(p string) (string, error) {
		called = true
		return p, nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John.Doe@example.com", NormalizeEmail(" John.Doe@EXAMPLE.com "))
	assert.Equal(t, "plain", NormalizeEmail("plain"))
}
