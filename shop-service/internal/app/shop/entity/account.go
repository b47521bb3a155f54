package entity

import (
	"strings"
	"time"

	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

// Account - учётные данные для входа. Профиль покупателя хранится отдельно и связан по account_id.
type Account struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string     `json:"username" gorm:"size:20;not null;uniqueIndex" validate:"required,min=4,max=20,username"`
	Email        string     `json:"email" gorm:"size:254;not null;uniqueIndex" validate:"required,max=254,email"`
	PasswordHash string     `json:"-" gorm:"not null" validate:"required"`
	IsSuperuser  bool       `json:"is_superuser" gorm:"not null;default:false"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	DateJoined   time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin    *time.Time `json:"last_login"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) Validate() error {
	return validation.Struct(a)
}

func (a *Account) BeforeSave(tx *gorm.DB) error {
	return a.Validate()
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// CustomerProfile - персональные данные и адреса покупателя
type CustomerProfile struct {
	AccountID       uuid.UUID  `json:"-" gorm:"type:uuid;primaryKey" validate:"required"`
	Account         *Account   `json:"-" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" validate:"-"`
	FirstName       string     `json:"first_name" gorm:"size:150;not null" validate:"required,max=150"`
	LastName        string     `json:"last_name" gorm:"size:150;not null" validate:"required,max=150"`
	DateOfBirth     *time.Time `json:"date_of_birth" gorm:"type:date"`
	PhoneNumber     string     `json:"phone_number" gorm:"size:20" validate:"max=20,phone"`
	ShippingAddress string     `json:"shipping_address" gorm:"type:text"`
	BillingAddress  string     `json:"billing_address" gorm:"type:text"`
}

func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

func (p *CustomerProfile) Validate() error {
	return validation.Struct(p)
}

func (p *CustomerProfile) BeforeSave(tx *gorm.DB) error {
	return p.Validate()
}

// CustomerUser - учётная запись вместе с профилем
type CustomerUser struct {
	Account Account
	Profile CustomerProfile
}

// PasswordHasher хэширует уже проверенный пароль
type PasswordHasher func(password string) (string, error)

// CustomerUserParams - данные регистрации до валидации
type CustomerUserParams struct {
	Username        string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	PhoneNumber     string
	DateOfBirth     string
	ShippingAddress string
	BillingAddress  string
	IsSuperuser     bool
}

// NewCustomerUser проверяет все поля сразу и только потом хэширует пароль
func NewCustomerUser(p CustomerUserParams, hash PasswordHasher) (*CustomerUser, error) {
	id := uuid.New()
	u := &CustomerUser{
		Account: Account{
			ID:          id,
			Username:    strings.TrimSpace(p.Username),
			Email:       NormalizeEmail(p.Email),
			IsSuperuser: p.IsSuperuser,
			IsActive:    true,
		},
		Profile: CustomerProfile{
			AccountID:       id,
			FirstName:       strings.TrimSpace(p.FirstName),
			LastName:        strings.TrimSpace(p.LastName),
			PhoneNumber:     strings.TrimSpace(p.PhoneNumber),
			ShippingAddress: p.ShippingAddress,
			BillingAddress:  p.BillingAddress,
		},
	}

	var errs validation.Errors
	var err error

	if errs, err = errs.Merge(validation.Var("username", u.Account.Username, "required,min=4,max=20,username")); err != nil {
		return nil, err
	}
	if errs, err = errs.Merge(validation.Var("email", u.Account.Email, "required,max=254,email")); err != nil {
		return nil, err
	}
	if p.Password == "" {
		errs = errs.Add("password", "Password cannot be empty.")
	} else {
		errs, _ = errs.Merge(validation.Password("password", p.Password))
	}
	if errs, err = errs.Merge(u.Profile.Validate()); err != nil {
		return nil, err
	}

	dob, dobErr := ParseDate(p.DateOfBirth)
	if dobErr != nil {
		errs = errs.Add("date_of_birth", dobErr.Error())
	}
	u.Profile.DateOfBirth = dob

	if err := errs.Err(); err != nil {
		return nil, err
	}

	hashed, err := hash(p.Password)
	if err != nil {
		return nil, err
	}
	u.Account.PasswordHash = hashed

	return u, nil
}

// NormalizeEmail приводит доменную часть адреса к нижнему регистру
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

type dateError string

func (e dateError) Error() string {
	return string(e)
}

// ParseDate разбирает дату в формате YYYY-MM-DD, пустая строка - отсутствие даты
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, dateError("Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return &t, nil
}
