package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/storage"
	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/util"
	"storefront/shop-service/internal/app/shop/validation"

	"github.com/google/uuid"
)

const (
	msgUsernameTaken = "A user with that username already exists."
	msgEmailTaken    = "A user with that email already exists."
)

// Principal - аутентифицированный пользователь текущего запроса
type Principal struct {
	UserID      uuid.UUID
	Username    string
	IsSuperuser bool
	Token       string
	ExpiresAt   time.Time
}

// AccountService - регистрация, вход, профиль и смена пароля
type AccountService struct {
	store      repository.Store
	tokenRepo  repository.TokenRepository
	jwtManager *util.JWTManager
	publisher  util.MessagePublisher
	files      storage.FileStorage
}

func NewAccountService(
	store repository.Store,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
	publisher util.MessagePublisher,
	files storage.FileStorage,
) *AccountService {
	return &AccountService{
		store:      store,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		publisher:  publisher,
		files:      files,
	}
}

// Register создает покупателя и сразу выдает токен
func (s *AccountService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.TokenResponse, error) {
	user, err := s.createUser(ctx, entity.CustomerUserParams{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		DateOfBirth:     req.DateOfBirth,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	})
	if err != nil {
		return nil, err
	}

	metrics.ShopRegistrations.Inc()
	publish(ctx, s.publisher, user.Account.ID.String(), entity.AccountEvent{
		EventType: entity.EventUserRegistered,
		UserID:    user.Account.ID,
		Username:  user.Account.Username,
		Timestamp: time.Now().UTC(),
	})

	return s.issueToken(&user.Account)
}

// CreateSuperuser создает администратора; используется командой createsuperuser
func (s *AccountService) CreateSuperuser(ctx context.Context, params entity.CustomerUserParams) (*entity.CustomerUser, error) {
	params.IsSuperuser = true
	return s.createUser(ctx, params)
}

func (s *AccountService) createUser(ctx context.Context, params entity.CustomerUserParams) (*entity.CustomerUser, error) {
	user, err := entity.NewCustomerUser(params, util.HashPassword)
	if err != nil {
		return nil, trackValidation("account", err)
	}

	if err := s.checkUnique(ctx, user.Account.Username, user.Account.Email, uuid.Nil); err != nil {
		return nil, trackValidation("account", err)
	}

	if err := s.store.Accounts().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// уникальность нарушена параллельной регистрацией
			return nil, validation.Invalid("username", msgUsernameTaken)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return user, nil
}

// Login проверяет учетные данные. Любая ошибка входа - ErrWrongCredentials.
func (s *AccountService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error) {
	user, err := s.store.Accounts().GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			metrics.ShopLogins.WithLabelValues("failed").Inc()
			return nil, ErrWrongCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !user.Account.IsActive || !util.CheckPassword(req.Password, user.Account.PasswordHash) {
		metrics.ShopLogins.WithLabelValues("failed").Inc()
		return nil, ErrWrongCredentials
	}

	if err := s.store.Accounts().TouchLastLogin(ctx, user.Account.ID, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Str("user_id", user.Account.ID.String()).Msg("failed to update last login")
	}

	metrics.ShopLogins.WithLabelValues("success").Inc()
	return s.issueToken(&user.Account)
}

// Logout отзывает текущий токен до истечения его срока
func (s *AccountService) Logout(ctx context.Context, principal *Principal) error {
	if err := s.tokenRepo.AddToBlacklist(ctx, principal.Token, principal.ExpiresAt); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// Authenticate проверяет токен: подпись, срок, черный список и активность учетной записи
func (s *AccountService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	blacklisted, err := s.tokenRepo.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if blacklisted {
		return nil, ErrUnauthorized
	}

	user, err := s.store.Accounts().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if !user.Account.IsActive {
		return nil, ErrUnauthorized
	}

	principal := &Principal{
		UserID:      user.Account.ID,
		Username:    user.Account.Username,
		IsSuperuser: user.Account.IsSuperuser,
		Token:       token,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := entity.NewProfileResponse(user)
	return &resp, nil
}

// UpdateProfile - частичное обновление; все нарушения возвращаются вместе
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *entity.UpdateProfileRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	var errs validation.Errors
	if req.Username != nil {
		user.Account.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Account.Email = entity.NormalizeEmail(*req.Email)
	}
	if req.FirstName != nil {
		user.Profile.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.Profile.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.PhoneNumber != nil {
		user.Profile.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.ShippingAddress != nil {
		user.Profile.ShippingAddress = *req.ShippingAddress
	}
	if req.BillingAddress != nil {
		user.Profile.BillingAddress = *req.BillingAddress
	}
	if req.DateOfBirth != nil {
		dob, err := entity.ParseDate(*req.DateOfBirth)
		if err != nil {
			errs = errs.Add("date_of_birth", err.Error())
		}
		user.Profile.DateOfBirth = dob
	}

	if errs, err = errs.Merge(user.Account.Validate()); err != nil {
		return err
	}
	if errs, err = errs.Merge(user.Profile.Validate()); err != nil {
		return err
	}
	if err := errs.Err(); err != nil {
		return trackValidation("account", err)
	}

	if err := s.checkUnique(ctx, user.Account.Username, user.Account.Email, userID); err != nil {
		return trackValidation("account", err)
	}

	if err := s.store.Accounts().Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return validation.Invalid("username", msgUsernameTaken)
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль после проверки старого и сложности нового
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, req *entity.ChangePasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !util.CheckPassword(req.OldPassword, user.Account.PasswordHash) {
		return trackValidation("account", validation.Invalid("old_password", "Wrong password."))
	}
	if req.NewPassword == "" {
		return trackValidation("account", validation.Invalid("new_password", "New password cannot be empty."))
	}
	if err := validation.Password("new_password", req.NewPassword); err != nil {
		return trackValidation("account", err)
	}

	hash, err := util.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.Accounts().UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// DeleteAccount удаляет пользователя вместе с профилем, корзинами, списком желаний и заказами.
// Текущий токен отзывается.
func (s *AccountService) DeleteAccount(ctx context.Context, principal *Principal) error {
	res, err := s.store.Delete(ctx, repository.TableAccounts, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	removeFiles(ctx, s.files, res.Files)
	if err := s.tokenRepo.AddToBlacklist(ctx, principal.Token, principal.ExpiresAt); err != nil {
		logger.Warn().Err(err).Msg("failed to revoke token of deleted account")
	}

	publish(ctx, s.publisher, principal.UserID.String(), entity.AccountEvent{
		EventType: entity.EventUserDeleted,
		UserID:    principal.UserID,
		Username:  principal.Username,
		Removed:   res.Deleted,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *AccountService) getUser(ctx context.Context, userID uuid.UUID) (*entity.CustomerUser, error) {
	user, err := s.store.Accounts().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return user, nil
}

func (s *AccountService) checkUnique(ctx context.Context, username, email string, exclude uuid.UUID) error {
	var errs validation.Errors

	taken, err := s.store.Accounts().ExistsUsername(ctx, username, exclude)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		errs = errs.Add("username", msgUsernameTaken)
	}

	taken, err = s.store.Accounts().ExistsEmail(ctx, email, exclude)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		errs = errs.Add("email", msgEmailTaken)
	}

	return errs.Err()
}

func (s *AccountService) issueToken(account *entity.Account) (*entity.TokenResponse, error) {
	token, err := s.jwtManager.GenerateAccessToken(account.ID, account.Username, account.IsSuperuser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	metrics.ShopTokensIssued.Inc()
	return &entity.TokenResponse{Token: token}, nil
}
