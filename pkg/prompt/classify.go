// Package prompt предоставляет функции для загрузки и рендеринга промптов.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ClassifyFile - имя файла промпта классификации внутри prompts_dir.
const ClassifyFile = "classify.yaml"

// DefaultBasePrompt - базовый запрос к vision модели. Дополнительный
// промпт пользователя добавляется с новой строки.
const DefaultBasePrompt = "Analyze this image and tell me its recycling category " +
	"(e.g. plastic, paper, metal, general waste) and how it should be disposed of."

const defaultSystemPrompt = `You assist a recycling sorting line.
Describe the item in the image in plain text. Always name the material
(plastic, paper, cardboard, metal, aluminum can, glass) or say that it is
general waste. Mention if the item is contaminated or soiled, and say
explicitly when its parts cannot be separated.`

const defaultUserTemplate = "{{.BasePrompt}}{{if .Extra}}\n{{.Extra}}{{end}}"

// ClassifyData - данные для шаблона промпта классификации.
type ClassifyData struct {
	BasePrompt string
	Extra      string
}

// DefaultClassify возвращает встроенный промпт классификации.
func DefaultClassify() *PromptFile {
	return &PromptFile{
		Messages: []Message{
			{Role: RoleSystem, Content: defaultSystemPrompt},
			{Role: RoleUser, Content: defaultUserTemplate},
		},
	}
}

// LoadClassify загружает {promptsDir}/classify.yaml.
//
// Если promptsDir пустой или файла нет - возвращает DefaultClassify().
func LoadClassify(promptsDir string) (*PromptFile, error) {
	if promptsDir == "" {
		return DefaultClassify(), nil
	}

	path := filepath.Join(promptsDir, ClassifyFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultClassify(), nil
	}

	pf, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load classify prompt from %s: %w", path, err)
	}

	if len(pf.Messages) == 0 {
		return DefaultClassify(), nil
	}
	return pf, nil
}

// SystemPrompt возвращает склеенные system сообщения (без шаблонизации).
func (pf *PromptFile) SystemPrompt() string {
	var parts []string
	for _, m := range pf.Messages {
		if m.Role == RoleSystem && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, strings.TrimSpace(m.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

// BuildUserPrompt рендерит user сообщения с базовым и дополнительным промптом.
//
// Если в файле нет user сообщений, собирает промпт по умолчанию.
func (pf *PromptFile) BuildUserPrompt(extra string) (string, error) {
	data := ClassifyData{
		BasePrompt: DefaultBasePrompt,
		Extra:      strings.TrimSpace(extra),
	}

	rendered, err := pf.RenderMessages(data)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, m := range rendered {
		if m.Role == RoleUser && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}

	if len(parts) == 0 {
		return DefaultClassify().BuildUserPrompt(extra)
	}
	return strings.Join(parts, "\n"), nil
}
