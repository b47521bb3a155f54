package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryNames разбирает значения поля categories: значения могут повторяться и содержать имена через запятую.
// Пустые имена отбрасываются, дубликаты удаляются с сохранением порядка.
func CategoryNames(values []string) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0, len(values))
	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// resolveCategories превращает имена в ID. Неизвестное имя - ошибка, категории не создаются автоматически.
func resolveCategories(ctx context.Context, repo repository.CategoryRepository, names []string) ([]uuid.UUID, error) {
	found, err := repo.GetByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		category, ok := found[name]
		if !ok {
			return nil, categoryNotFound(name)
		}
		ids = append(ids, category.ID)
	}
	return ids, nil
}

func resolveUnit(ctx context.Context, repo repository.UnitRepository, name *string) (uuid.UUID, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return uuid.Nil, &NotFoundError{Err: ErrUnitNotFound, Message: "Unit cannot be empty"}
	}

	unitName := strings.TrimSpace(*name)
	unit, err := repo.GetByName(ctx, unitName)
	if err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			return uuid.Nil, unitNotFound(unitName)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve unit: %w", err)
	}
	return unit.ID, nil
}

// productFields - поля формы после разбора типов
type productFields struct {
	errs validation.Errors
}

func (f *productFields) text(field string, raw *string, dst *string, required bool) {
	if raw == nil {
		if required {
			f.errs = f.errs.Add(field, validation.Label(field)+" cannot be empty.")
		}
		return
	}
	*dst = strings.TrimSpace(*raw)
}

func (f *productFields) decimal(field string, raw *string, dst *decimal.Decimal, required bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		if required || raw != nil {
			f.errs = f.errs.Add(field, validation.Label(field)+" cannot be empty.")
		}
		return
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		f.errs = f.errs.Add(field, "A valid number is required.")
		return
	}
	*dst = d
}

func (f *productFields) integer(field string, raw *string, dst *int) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		f.errs = f.errs.Add(field, "A valid integer is required.")
		return
	}
	*dst = n
}

// applyForm переносит переданные поля формы в params. При create обязательные поля должны присутствовать.
func applyForm(form *entity.ProductForm, params *entity.ProductParams, create bool) error {
	f := &productFields{}
	f.text("name", form.Name, &params.Name, create)
	f.text("description", form.Description, &params.Description, create)
	f.decimal("price", form.Price, &params.Price, create)
	f.integer("discount", form.Discount, &params.Discount)
	f.decimal("quantity_per_unit", form.QuantityPerUnit, &params.QuantityPerUnit, create)
	f.text("currency", form.Currency, &params.Currency, create)
	return f.errs.Err()
}

func productParams(p *entity.Product) entity.ProductParams {
	return entity.ProductParams{
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Discount:        p.Discount,
		UnitID:          p.UnitID,
		QuantityPerUnit: p.QuantityPerUnit,
		Currency:        p.Currency,
	}
}
