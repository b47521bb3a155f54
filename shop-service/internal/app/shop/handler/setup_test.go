package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/pkg/storage"
	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/service"
	"storefront/shop-service/internal/app/shop/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Str0ng!pass"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	files    *storage.LocalStorage
	accounts *service.AccountService
}

// newTestServer поднимает весь стек shop-service поверх SQLite в памяти, miniredis и временного каталога
func newTestServer(t *testing.T) *testServer {
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

	mediaRoot := t.TempDir()
	files, err := storage.NewLocalStorage(mediaRoot, "/media/")
	require.NoError(t, err)

	store := repository.NewStore(db)
	cache := util.NewRedisClientFromConn(client, "test")
	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	tokenRepo := repository.NewRedisTokenRepository(client, "test")

	accounts := service.NewAccountService(store, tokenRepo, jwtManager, nil, files)
	handlers := Handlers{
		Accounts: NewAccountHandler(accounts),
		Catalog:  NewCatalogHandler(service.NewCatalogService(store, cache, nil, files)),
		Carts:    NewCartHandler(service.NewCartService(store)),
		Orders:   NewOrderHandler(service.NewOrderService(store, nil)),
	}

	router := SetupRoutes(handlers, NewAuthMiddleware(accounts), MediaConfig{URLPrefix: "/media", Root: mediaRoot})

	return &testServer{router: router, db: db, files: files, accounts: accounts}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// doJSON отправляет JSON-запрос; пустой token означает анонимный запрос
func (s *testServer) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

// doForm отправляет multipart форму; file == nil означает форму без изображения
func (s *testServer) doForm(t *testing.T, method, path, token string, fields map[string][]string, file []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, writer.WriteField(name, v))
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()

	w := s.doJSON(t, http.MethodPost, "/register", "", entity.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  testPassword,
		FirstName: "Test",
		LastName:  "User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp entity.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) superuser(t *testing.T) string {
	t.Helper()

	_, err := s.accounts.CreateSuperuser(context.Background(), entity.CustomerUserParams{
		Username:    "admin01",
		Email:       "admin01@example.com",
		Password:    testPassword,
		FirstName:   "Admin",
		LastName:    "User",
		IsSuperuser: true,
	})
	require.NoError(t, err)

	w := s.doJSON(t, http.MethodPost, "/login", "", entity.LoginRequest{Username: "admin01", Password: testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp entity.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Table(table).Count(&n).Error)
	return n
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// fields достает сообщения валидации по полю из тела ответа 400
func fields(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body struct {
		Fields map[string][]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Fields
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
