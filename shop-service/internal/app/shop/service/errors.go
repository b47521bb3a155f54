package service

import (
	"errors"
	"fmt"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrUnitNotFound     = errors.New("unit not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAccountNotFound  = errors.New("account not found")

	ErrForbidden        = errors.New("forbidden")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrUnauthorized     = errors.New("unauthorized")
)

// NotFoundError - отсутствующий объект, найденный по имени; Message уходит в ответ как есть
type NotFoundError struct {
	Err     error
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func unitNotFound(name string) error {
	return &NotFoundError{Err: ErrUnitNotFound, Message: fmt.Sprintf("Unit '%s' not found", name)}
}

func categoryNotFound(name string) error {
	return &NotFoundError{Err: ErrCategoryNotFound, Message: fmt.Sprintf("Category '%s' not found", name)}
}

func invalidPK(id fmt.Stringer) string {
	return fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", id)
}
