package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Имена таблиц, участвующих в каскадном удалении
const (
	TableUnits             = "units"
	TableCategories        = "categories"
	TableProducts          = "products"
	TableProductCategories = "product_categories"
	TableImages            = "images"
	TableCarts             = "carts"
	TableCartItems         = "cart_items"
	TableWishlists         = "wishlists"
	TableWishlistProducts  = "wishlist_products"
	TableOrders            = "orders"
	TableOrderItems        = "order_items"
	TableAccounts          = "accounts"
	TableCustomerProfiles  = "customer_profiles"
)

const maxCascadeDepth = 16

type Policy int

const (
	// Cascade удаляет дочерние строки
	Cascade Policy = iota
	// SetNull обнуляет ссылку в дочерних строках
	SetNull
)

func (p Policy) String() string {
	if p == SetNull {
		return "set_null"
	}
	return "cascade"
}

// Relation - ссылка Table.Column на родительскую таблицу и правило при удалении родителя
type Relation struct {
	Table  string
	Column string
	Policy Policy
}

// Schema - правила удаления по родительским таблицам. Files - колонки с ключами файлов в хранилище.
type Schema struct {
	Relations map[string][]Relation
	Files     map[string]string
}

// DefaultSchema совпадает с constraint:OnDelete тегами моделей entity
var DefaultSchema = Schema{
	Relations: map[string][]Relation{
		TableUnits: {
			{Table: TableProducts, Column: "unit_id", Policy: Cascade},
		},
		TableCategories: {
			{Table: TableCategories, Column: "parent_id", Policy: SetNull},
			{Table: TableProductCategories, Column: "category_id", Policy: Cascade},
		},
		TableProducts: {
			{Table: TableImages, Column: "product_id", Policy: Cascade},
			{Table: TableProductCategories, Column: "product_id", Policy: Cascade},
			{Table: TableCartItems, Column: "product_id", Policy: Cascade},
			{Table: TableWishlistProducts, Column: "product_id", Policy: Cascade},
			{Table: TableOrderItems, Column: "product_id", Policy: SetNull},
		},
		TableCarts: {
			{Table: TableCartItems, Column: "cart_id", Policy: Cascade},
		},
		TableWishlists: {
			{Table: TableWishlistProducts, Column: "wishlist_id", Policy: Cascade},
		},
		TableOrders: {
			{Table: TableOrderItems, Column: "order_id", Policy: Cascade},
		},
		TableAccounts: {
			{Table: TableCustomerProfiles, Column: "account_id", Policy: Cascade},
			{Table: TableCarts, Column: "user_id", Policy: Cascade},
			{Table: TableWishlists, Column: "user_id", Policy: Cascade},
			{Table: TableOrders, Column: "user_id", Policy: Cascade},
		},
	},
	Files: map[string]string{
		TableImages: "image_file",
	},
}

// DeleteResult - итог каскадного удаления. Files удаляются из хранилища после фиксации транзакции.
type DeleteResult struct {
	Deleted map[string]int64
	Nulled  map[string]int64
	Files   []string
}

func newDeleteResult() *DeleteResult {
	return &DeleteResult{
		Deleted: make(map[string]int64),
		Nulled:  make(map[string]int64),
	}
}

// Cascader выполняет удаление по правилам Schema внутри переданной транзакции
type Cascader struct {
	schema Schema
}

func NewCascader(schema Schema) *Cascader {
	return &Cascader{schema: schema}
}

// Delete удаляет строки table с указанными id. Сначала обрабатываются зависимые таблицы, родитель - последним.
func (c *Cascader) Delete(tx *gorm.DB, table string, ids []uuid.UUID) (*DeleteResult, error) {
	res := newDeleteResult()
	if err := c.deleteWhere(tx, table, "id", ids, res, 0); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Cascader) deleteWhere(tx *gorm.DB, table, column string, values []uuid.UUID, res *DeleteResult, depth int) error {
	if len(values) == 0 {
		return nil
	}
	if depth > maxCascadeDepth {
		return fmt.Errorf("cascade from %s exceeds depth %d", table, maxCascadeDepth)
	}

	if fileColumn, ok := c.schema.Files[table]; ok {
		var files []string
		if err := tx.Table(table).Where(column+" IN ?", values).Pluck(fileColumn, &files).Error; err != nil {
			return fmt.Errorf("failed to collect files from %s: %w", table, err)
		}
		res.Files = append(res.Files, files...)
	}

	relations := c.schema.Relations[table]
	if len(relations) > 0 {
		ids := values
		if column != "id" {
			ids = nil
			if err := tx.Table(table).Where(column+" IN ?", values).Pluck("id", &ids).Error; err != nil {
				return fmt.Errorf("failed to collect ids from %s: %w", table, err)
			}
		}

		for _, rel := range relations {
			if len(ids) == 0 {
				break
			}
			switch rel.Policy {
			case SetNull:
				result := tx.Exec("UPDATE "+rel.Table+" SET "+rel.Column+" = NULL WHERE "+rel.Column+" IN ?", ids)
				if result.Error != nil {
					return fmt.Errorf("failed to null %s.%s: %w", rel.Table, rel.Column, result.Error)
				}
				res.Nulled[rel.Table] += result.RowsAffected
			case Cascade:
				if err := c.deleteWhere(tx, rel.Table, rel.Column, ids, res, depth+1); err != nil {
					return err
				}
			}
		}
	}

	result := tx.Exec("DELETE FROM "+table+" WHERE "+column+" IN ?", values)
	if result.Error != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, result.Error)
	}
	res.Deleted[table] += result.RowsAffected

	return nil
}
