// Package imagesource загружает изображения по ссылке.
//
// Ссылка - непрозрачная строка для ядра: локальный путь к файлу или
// s3://key (ключ в бакете из конфига). Ссылка сохраняется в журнал как есть.
package imagesource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ilkoid/sortbot/pkg/config"
)

// S3Scheme - префикс ссылок на объекты в бакете.
const S3Scheme = "s3://"

// Ошибки загрузки.
var (
	ErrEmptyRef          = errors.New("image reference is empty")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrNotFound          = errors.New("image not found")
	ErrS3Disabled        = errors.New("s3 is not configured")
)

// AllowedExtensions - форматы, которые можно выбрать для анализа.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

// Loader - контракт источника изображений.
type Loader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Source загружает изображения из файловой системы или S3.
type Source struct {
	objects ObjectStore // nil если S3 не настроен
}

var _ Loader = (*Source)(nil)

// New создает источник. S3 клиент создается только если задан endpoint.
func New(cfg config.S3Config) (*Source, error) {
	if !cfg.Enabled() {
		return &Source{}, nil
	}

	client, err := NewS3Client(cfg)
	if err != nil {
		return nil, err
	}
	return &Source{objects: client}, nil
}

// NewWithStore создает источник с произвольным объектным хранилищем.
func NewWithStore(objects ObjectStore) *Source {
	return &Source{objects: objects}
}

// Load возвращает байты изображения по ссылке.
func (s *Source) Load(ctx context.Context, ref string) ([]byte, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrEmptyRef
	}

	if err := ValidateRef(ref); err != nil {
		return nil, err
	}

	if key, ok := ParseS3Ref(ref); ok {
		if s.objects == nil {
			return nil, fmt.Errorf("%w: %s", ErrS3Disabled, ref)
		}
		data, err := s.objects.DownloadFile(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ref, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return data, nil
}

// List возвращает ссылки на изображения в локальной директории или по
// S3 префиксу. Файлы с неподходящим расширением пропускаются.
func (s *Source) List(ctx context.Context, location string) ([]string, error) {
	if prefix, ok := ParseS3Ref(location); ok {
		if s.objects == nil {
			return nil, fmt.Errorf("%w: %s", ErrS3Disabled, location)
		}
		objects, err := s.objects.ListFiles(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", location, err)
		}

		var refs []string
		for _, obj := range objects {
			if IsAllowedExtension(obj.Key) {
				refs = append(refs, S3Scheme+obj.Key)
			}
		}
		sort.Strings(refs)
		return refs, nil
	}

	if location == "" {
		location = "."
	}
	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", location, err)
	}

	var refs []string
	for _, e := range entries {
		if !e.IsDir() && IsAllowedExtension(e.Name()) {
			refs = append(refs, filepath.Join(location, e.Name()))
		}
	}
	return refs, nil
}

// ValidateRef проверяет формат по расширению и, для локальных файлов,
// что файл существует и это не директория.
func ValidateRef(ref string) error {
	if !IsAllowedExtension(ref) {
		return fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFormat, ref, strings.Join(AllowedExtensions, " "))
	}

	if _, ok := ParseS3Ref(ref); ok {
		return nil
	}

	info, err := os.Stat(ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, ref)
	}
	return nil
}

// ParseS3Ref возвращает ключ объекта для ссылки вида s3://key.
func ParseS3Ref(ref string) (string, bool) {
	if !strings.HasPrefix(ref, S3Scheme) {
		return "", false
	}
	return strings.TrimPrefix(ref, S3Scheme), true
}

// IsAllowedExtension - регистр расширения не важен.
func IsAllowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
