package entity

import (
	"time"

	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Unit - единица измерения (килограмм, литр, штука)
type Unit struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name   string    `json:"name" gorm:"size:200;not null;index" validate:"required,max=200"`
	Symbol string    `json:"symbol" gorm:"size:9;not null" validate:"required,max=9"`
}

func (Unit) TableName() string {
	return "units"
}

func NewUnit(name, symbol string) (*Unit, error) {
	u := &Unit{ID: uuid.New(), Name: name, Symbol: symbol}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Unit) Validate() error {
	return validation.Struct(u)
}

func (u *Unit) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Category - узел дерева категорий. При удалении родителя parent_id детей обнуляется.
type Category struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"size:200;not null;index" validate:"required,max=200"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	Parent    *Category  `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" validate:"-"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (Category) TableName() string {
	return "categories"
}

func NewCategory(name string, parentID *uuid.UUID) (*Category, error) {
	c := &Category{ID: uuid.New(), Name: name, ParentID: parentID}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Category) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return validation.Invalid("parent_id", "Category cannot be its own parent.")
	}
	return nil
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	return c.Validate()
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Product - товар каталога. Цена и количество хранятся как decimal.
type Product struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string          `json:"name" gorm:"size:200;not null" validate:"required,max=200"`
	Description     string          `json:"description" gorm:"type:text;not null" validate:"required"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(9,2);not null" validate:"gt=0,lt=10000000"`
	Discount        int             `json:"discount" gorm:"not null;default:0" validate:"min=0,max=100"`
	UnitID          uuid.UUID       `json:"unit_id" gorm:"type:uuid;not null;index" validate:"required"`
	Unit            *Unit           `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" gorm:"type:decimal(5,2);not null" validate:"gt=0,lt=1000"`
	Currency        string          `json:"currency" gorm:"size:3;not null" validate:"required,max=3,slug"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// ProductParams - значения полей товара до валидации
type ProductParams struct {
	Name            string
	Description     string
	Price           decimal.Decimal
	Discount        int
	UnitID          uuid.UUID
	QuantityPerUnit decimal.Decimal
	Currency        string
}

func NewProduct(p ProductParams) (*Product, error) {
	product := &Product{
		ID:              uuid.New(),
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Discount:        p.Discount,
		UnitID:          p.UnitID,
		QuantityPerUnit: p.QuantityPerUnit,
		Currency:        p.Currency,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

func (p *Product) Validate() error {
	errs, err := validation.Errors{}.Merge(validation.Struct(p))
	if err != nil {
		return err
	}
	errs = checkDecimalPlaces(errs, "price", p.Price, 2)
	errs = checkDecimalPlaces(errs, "quantity_per_unit", p.QuantityPerUnit, 2)
	return errs.Err()
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	return p.Validate()
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DiscountedPrice - цена за единицу с учётом скидки, округлённая до копеек
func (p *Product) DiscountedPrice() decimal.Decimal {
	return ApplyDiscount(p.Price, p.Discount)
}

func ApplyDiscount(price decimal.Decimal, discount int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(100 - discount))).Div(decimal.NewFromInt(100)).Round(2)
}

func checkDecimalPlaces(errs validation.Errors, field string, d decimal.Decimal, places int32) validation.Errors {
	if !d.Equal(d.Round(places)) {
		return errs.Add(field, "Ensure that there are no more than 2 decimal places.")
	}
	return errs
}

// ProductCategory - явная связь товар-категория. Уникальность пары в схеме не задана.
type ProductCategory struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index" validate:"required"`
	Product    *Product  `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index" validate:"required"`
	Category   *Category `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

func (pc *ProductCategory) BeforeSave(tx *gorm.DB) error {
	return validation.Struct(pc)
}

func (pc *ProductCategory) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == uuid.Nil {
		pc.ID = uuid.New()
	}
	return nil
}

// Image - фотография товара. ImageFile - ключ файла в хранилище.
type Image struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ImageFile string    `json:"image_file" gorm:"size:255;not null" validate:"required,max=255"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index" validate:"required"`
	Product   *Product  `json:"-" gorm:"constraint:OnDelete:CASCADE" validate:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Image) TableName() string {
	return "images"
}

func NewImage(productID uuid.UUID, imageFile string) (*Image, error) {
	img := &Image{ID: uuid.New(), ImageFile: imageFile, ProductID: productID}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func (i *Image) Validate() error {
	return validation.Struct(i)
}

func (i *Image) BeforeSave(tx *gorm.DB) error {
	return i.Validate()
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
