package repository

import (
	"context"
	"errors"
	"time"

	"storefront/shop-service/internal/app/shop/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository создает репозиторий учётных записей покупателей
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create сохраняет учётную запись и профиль в одной транзакции
func (r *accountRepository) Create(ctx context.Context, user *entity.CustomerUser) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user.Account).Error; err != nil {
			return err
		}
		user.Profile.AccountID = user.Account.ID
		return tx.Create(&user.Profile).Error
	})
	return mapError(err, ErrAccountNotFound)
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomerUser, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, mapError(err, ErrAccountNotFound)
	}
	return r.withProfile(ctx, account)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*entity.CustomerUser, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, mapError(err, ErrAccountNotFound)
	}
	return r.withProfile(ctx, account)
}

func (r *accountRepository) withProfile(ctx context.Context, account entity.Account) (*entity.CustomerUser, error) {
	user := &entity.CustomerUser{Account: account, Profile: entity.CustomerProfile{AccountID: account.ID}}
	err := r.db.WithContext(ctx).First(&user.Profile, "account_id = ?", account.ID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return user, nil
}

func (r *accountRepository) ExistsUsername(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	return r.exists(ctx, "LOWER(username) = LOWER(?)", username, exclude)
}

func (r *accountRepository) ExistsEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return r.exists(ctx, "LOWER(email) = LOWER(?)", email, exclude)
}

func (r *accountRepository) exists(ctx context.Context, cond, value string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where(cond, value).
		Where("id <> ?", exclude).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountRepository) Update(ctx context.Context, user *entity.CustomerUser) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user.Account).Error; err != nil {
			return err
		}
		user.Profile.AccountID = user.Account.ID
		return tx.Save(&user.Profile).Error
	})
	return mapError(err, ErrAccountNotFound)
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateColumn(ctx, id, "last_login", at)
}

func (r *accountRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&entity.Account{}).Where("id = ?", id).UpdateColumn(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
