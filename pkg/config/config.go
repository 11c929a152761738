package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig - корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Vision          VisionConfig        `yaml:"vision"`
	S3              S3Config            `yaml:"s3"`
	ImageProcessing ImageProcConfig     `yaml:"image_processing"`
	Storage         StorageConfig       `yaml:"storage"`
	Categories      map[string][]string `yaml:"categories"` // Доп. ключевые слова: метка -> слова
	App             AppSpecific         `yaml:"app"`
}

// VisionConfig - модели для описания изображений.
type VisionConfig struct {
	DefaultModel string              `yaml:"default_model"` // Алиас модели по умолчанию
	Definitions  map[string]ModelDef `yaml:"definitions"`
	RateLimit    int                 `yaml:"rate_limit"`  // Запросов в минуту (0 = без лимита)
	BurstLimit   int                 `yaml:"burst_limit"` // Burst для rate limiter
}

// ModelDef - параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "zai" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`   // Для OpenAI-совместимых провайдеров
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // "60s", "1m"
}

// S3Config - настройки объектного хранилища для ссылок вида s3://key.
// Секция опциональна: без endpoint работают только локальные файлы.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled - задан ли S3 вообще.
func (c S3Config) Enabled() bool {
	return c.Endpoint != ""
}

// ImageProcConfig - настройки подготовки изображения перед отправкой в модель.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"` // 0 = без ресайза
	Quality  int `yaml:"quality"`   // JPEG quality 1-100
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c ImageProcConfig) GetDefaults() ImageProcConfig {
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = 85
	}
	return c
}

// StorageConfig - журнал решений (SQLite).
type StorageConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c StorageConfig) GetDefaults() StorageConfig {
	if c.Path == "" {
		c.Path = "sortbot.db"
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
	return c
}

// AppSpecific - общие настройки приложения.
type AppSpecific struct {
	Debug      bool   `yaml:"debug"`
	PromptsDir string `yaml:"prompts_dir"` // Опционально: prompts/classify.yaml
	LogDir     string `yaml:"log_dir"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(rawBytes)
}

// Parse разбирает YAML из памяти. ${VAR} и $VAR заменяются значениями окружения.
func Parse(data []byte) (*AppConfig, error) {
	contentWithEnv := os.ExpandEnv(string(data))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Storage = cfg.Storage.GetDefaults()
	cfg.ImageProcessing = cfg.ImageProcessing.GetDefaults()

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Vision.DefaultModel == "" {
		return fmt.Errorf("vision.default_model is required")
	}
	def, ok := c.Vision.Definitions[c.Vision.DefaultModel]
	if !ok {
		return fmt.Errorf("default_model '%s' is not defined in vision.definitions", c.Vision.DefaultModel)
	}
	if def.ModelName == "" {
		return fmt.Errorf("vision.definitions.%s.model_name is required", c.Vision.DefaultModel)
	}
	if c.S3.Enabled() && c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when s3.endpoint is set")
	}
	if c.Vision.RateLimit < 0 {
		return fmt.Errorf("vision.rate_limit must not be negative")
	}
	return nil
}

// GetVisionModel возвращает конфигурацию модели по умолчанию или по имени.
func (c *AppConfig) GetVisionModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Vision.DefaultModel
	}
	m, ok := c.Vision.Definitions[name]
	return m, ok
}
