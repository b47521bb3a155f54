package validation

import (
	"errors"
	"strings"
)

var (
	// ErrInvalid совпадает (errors.Is) с любой ошибкой валидации
	ErrInvalid = errors.New("validation failed")
	// ErrReferenceMissing совпадает, если среди нарушений есть отсутствующая связанная запись
	ErrReferenceMissing = errors.New("reference missing")
)

type Kind string

const (
	KindInvalid          Kind = "invalid"
	KindReferenceMissing Kind = "reference_missing"
)

// FieldError - нарушение правила для одного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Errors - список нарушений, возвращается конструкторами сущностей и методами Validate
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	switch target {
	case ErrInvalid:
		return len(e) > 0
	case ErrReferenceMissing:
		for _, fe := range e {
			if fe.Kind == KindReferenceMissing {
				return true
			}
		}
	}
	return false
}

// Fields группирует сообщения по полям для ответа API
func (e Errors) Fields() map[string][]string {
	fields := make(map[string][]string, len(e))
	for _, fe := range e {
		key := fe.Field
		if key == "" {
			key = "non_field_errors"
		}
		fields[key] = append(fields[key], fe.Message)
	}
	return fields
}

// Err возвращает nil для пустого списка, чтобы не получить typed-nil в интерфейсе error
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Add(field, message string) Errors {
	return append(e, FieldError{Field: field, Message: message, Kind: KindInvalid})
}

func (e Errors) AddMissing(field, message string) Errors {
	return append(e, FieldError{Field: field, Message: message, Kind: KindReferenceMissing})
}

// Merge добавляет нарушения из err, если это ошибка валидации. Иные ошибки возвращаются вторым значением.
func (e Errors) Merge(err error) (Errors, error) {
	if err == nil {
		return e, nil
	}
	var other Errors
	if errors.As(err, &other) {
		return append(e, other...), nil
	}
	return e, err
}

func Invalid(field, message string) error {
	return Errors{}.Add(field, message)
}

func MissingReference(field, message string) error {
	return Errors{}.AddMissing(field, message)
}
