// Структуры данных - описывает формат YAML файла промпта.
package prompt

// PromptFile описывает структуру YAML-файла с промптом
type PromptFile struct {
	Config   PromptConfig `yaml:"config"`
	Messages []Message    `yaml:"messages"`
}

// PromptConfig - настройки модели для конкретного промпта.
// Нулевые значения означают "взять из config.yaml".
type PromptConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Message - одно сообщение в чате
type Message struct {
	Role    string `yaml:"role"`    // system, user
	Content string `yaml:"content"` // Шаблон с {{.Variables}}
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)
