package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storefront/pkg/storage"
	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/util"
	"storefront/shop-service/internal/app/shop/util/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Str0ng!pass"

type testEnv struct {
	db        *gorm.DB
	store     repository.Store
	redis     *miniredis.Miniredis
	files     *storage.LocalStorage
	publisher *mocks.MockMessagePublisher
	catalog   *CatalogService
	carts     *CartService
	orders    *OrderService
	accounts  *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	files, err := storage.NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)

	publisher := new(mocks.MockMessagePublisher)
	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	store := repository.NewStore(db)
	cache := util.NewRedisClientFromConn(client, "test")
	jwtManager := util.NewJWTManager("test-secret", time.Hour)

	return &testEnv{
		db:        db,
		store:     store,
		redis:     mr,
		files:     files,
		publisher: publisher,
		catalog:   NewCatalogService(store, cache, publisher, files),
		carts:     NewCartService(store),
		orders:    NewOrderService(store, publisher),
		accounts:  NewAccountService(store, repository.NewRedisTokenRepository(client, "test"), jwtManager, publisher, files),
	}
}

// register создает пользователя и возвращает его Principal
func (e *testEnv) register(t *testing.T, username string) *Principal {
	t.Helper()
	ctx := context.Background()

	resp, err := e.accounts.Register(ctx, &entity.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  testPassword,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)

	principal, err := e.accounts.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	return principal
}

func (e *testEnv) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Table(table).Count(&n).Error)
	return n
}

func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	objects, err := e.files.List(context.Background(), storage.ProductImagesPrefix)
	require.NoError(t, err)
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	return keys
}

func (e *testEnv) fileExists(key string) bool {
	_, err := os.Stat(filepath.Join(e.files.Root(), filepath.FromSlash(key)))
	return err == nil
}

func str(s string) *string {
	return &s
}

func image(name string) *entity.ImageUpload {
	return &entity.ImageUpload{Filename: name, ContentType: "image/png", Content: strings.NewReader("png-bytes")}
}
