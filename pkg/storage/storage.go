// Package storage хранит файлы изображений товаров на локальном диске или в S3-совместимом бакете.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductImagesPrefix - каталог, в который складываются загруженные изображения товаров
const ProductImagesPrefix = "product_images/"

var ErrInvalidKey = errors.New("invalid storage key")

// Object описывает сохранённый файл
type Object struct {
	Key        string
	Size       int64
	ModifiedAt time.Time
}

// FileStorage - хранилище файлов. Delete для отсутствующего ключа не возвращает ошибку.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	URL(key string) string
}

// NewKey генерирует уникальный ключ, сохраняя расширение исходного файла
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return prefix + uuid.NewString() + ext
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return ErrInvalidKey
		}
	}
	return nil
}

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config выбирает реализацию хранилища по Driver
type Config struct {
	Driver    string
	MediaRoot string
	MediaURL  string
	S3        S3Config
}

// Open создаёт хранилище по конфигурации; для S3 бакет создаётся при необходимости
func Open(ctx context.Context, cfg Config) (FileStorage, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	case DriverS3:
		s3Storage, err := NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
