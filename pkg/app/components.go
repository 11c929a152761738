// Package app собирает компоненты sortbot из конфигурации.
//
// Используется и TUI, и CLI: вся инициализация (журнал, источник
// изображений, vision клиент, конвейер) живет здесь, а cmd/ остается
// тонким слоем разбора флагов и вывода.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilkoid/sortbot/pkg/audit"
	"github.com/ilkoid/sortbot/pkg/config"
	"github.com/ilkoid/sortbot/pkg/events"
	"github.com/ilkoid/sortbot/pkg/imagesource"
	"github.com/ilkoid/sortbot/pkg/prompt"
	"github.com/ilkoid/sortbot/pkg/sorter"
	"github.com/ilkoid/sortbot/pkg/utils"
	"github.com/ilkoid/sortbot/pkg/vision"
	"github.com/ilkoid/sortbot/pkg/waste"
)

// Components содержит все компоненты приложения.
type Components struct {
	Config *config.AppConfig
	Store  *audit.Store
	Images *imagesource.Source
	Vision *vision.Client
	Sorter *sorter.Sorter
}

// ConfigPathFinder определяет стратегию поиска пути к config.yaml.
type ConfigPathFinder interface {
	FindConfigPath() string
}

// DefaultConfigPathFinder ищет config.yaml в порядке:
// флаг -config, текущая директория, директория бинарника.
type DefaultConfigPathFinder struct {
	// ConfigFlag - значение флага -config, если указан
	ConfigFlag string
}

// FindConfigPath находит путь к config.yaml.
//
// Если файл нигде не найден, возвращает ./config.yaml (ошибка будет в Load).
func (f *DefaultConfigPathFinder) FindConfigPath() string {
	if f.ConfigFlag != "" {
		return resolveAbsPath(f.ConfigFlag)
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return resolveAbsPath("config.yaml")
	}

	if execPath, err := os.Executable(); err == nil {
		cfgPath := filepath.Join(filepath.Dir(execPath), "config.yaml")
		if _, err := os.Stat(cfgPath); err == nil {
			return cfgPath
		}
	}

	return resolveAbsPath("config.yaml")
}

// InitializeConfig загружает конфигурацию.
//
// Относительные app.prompts_dir, app.log_dir и storage.path
// пересчитываются от директории конфига.
func InitializeConfig(finder ConfigPathFinder) (*config.AppConfig, string, error) {
	cfgPath := finder.FindConfigPath()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}

	cfgDir := filepath.Dir(cfgPath)
	cfg.App.PromptsDir = relativeTo(cfgDir, cfg.App.PromptsDir)
	cfg.App.LogDir = relativeTo(cfgDir, cfg.App.LogDir)
	cfg.Storage.Path = relativeTo(cfgDir, cfg.Storage.Path)

	return cfg, cfgPath, nil
}

// Initialize создаёт и инициализирует все компоненты приложения.
//
// emitter может быть nil (CLI не подписывается на события).
// Журнал открывается и его схема создается здесь же: если хранилище
// недоступно, приложение не стартует.
func Initialize(ctx context.Context, cfg *config.AppConfig, emitter events.Emitter) (*Components, error) {
	utils.Info("Initializing components",
		"model", cfg.Vision.DefaultModel,
		"storage", cfg.Storage.Path,
		"s3", cfg.S3.Enabled())

	// 1. Журнал
	store, err := audit.Open(cfg.Storage)
	if err != nil {
		utils.Error("Audit store open failed", "error", err)
		return nil, fmt.Errorf("failed to open audit store: %w", err)
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		utils.Error("Audit store initialization failed", "error", err)
		return nil, fmt.Errorf("failed to initialize audit store: %w", err)
	}
	utils.Info("Audit store ready", "path", store.Path())

	// 2. Источник изображений
	images, err := imagesource.New(cfg.S3)
	if err != nil {
		_ = store.Close()
		utils.Error("Image source creation failed", "error", err)
		return nil, fmt.Errorf("failed to create image source: %w", err)
	}

	// 3. Промпт
	pf, err := prompt.LoadClassify(cfg.App.PromptsDir)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	// 4. Vision клиент
	modelDef, ok := cfg.GetVisionModel("")
	if !ok {
		_ = store.Close()
		return nil, fmt.Errorf("default_model '%s' not found in definitions", cfg.Vision.DefaultModel)
	}
	visionClient := vision.NewClient(modelDef, images,
		vision.WithSystemPrompt(pf.SystemPrompt()),
		vision.WithImageProcessing(cfg.ImageProcessing),
		vision.WithRateLimit(cfg.Vision.RateLimit, cfg.Vision.BurstLimit))
	utils.Info("Vision client created", "provider", modelDef.Provider, "model", modelDef.ModelName)

	// 5. Конвейер
	opts := []sorter.Option{
		sorter.WithExtractor(waste.NewExtractor(cfg.Categories)),
		sorter.WithPrompt(pf),
	}
	if emitter != nil {
		opts = append(opts, sorter.WithEmitter(emitter))
	}

	return &Components{
		Config: cfg,
		Store:  store,
		Images: images,
		Vision: visionClient,
		Sorter: sorter.New(visionClient, store, opts...),
	}, nil
}

// Close освобождает ресурсы компонентов.
func (c *Components) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// relativeTo делает относительный путь p относительным к dir.
func relativeTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// resolveAbsPath преобразует путь в абсолютный (если это не уже абсолютный путь).
func resolveAbsPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
