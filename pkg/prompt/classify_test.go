package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserPrompt_Default(t *testing.T) {
	pf := DefaultClassify()

	got, err := pf.BuildUserPrompt("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBasePrompt, got)

	got, err = pf.BuildUserPrompt("  Is the label removable?  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultBasePrompt+"\nIs the label removable?", got)

	assert.Contains(t, pf.SystemPrompt(), "recycling sorting line")
}

func TestLoadClassify(t *testing.T) {
	pf, err := LoadClassify("")
	require.NoError(t, err)
	assert.Equal(t, DefaultClassify(), pf)

	dir := t.TempDir()
	pf, err = LoadClassify(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultClassify(), pf, "missing file falls back to default")

	content := `
config:
  temperature: 0.1
messages:
  - role: system
    content: "Sorting assistant."
  - role: user
    content: "{{.BasePrompt}} Answer briefly.{{if .Extra}} Note: {{.Extra}}{{end}}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClassifyFile), []byte(content), 0o644))

	pf, err = LoadClassify(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.1, pf.Config.Temperature)
	assert.Equal(t, "Sorting assistant.", pf.SystemPrompt())

	got, err := pf.BuildUserPrompt("lid attached")
	require.NoError(t, err)
	assert.Equal(t, DefaultBasePrompt+" Answer briefly. Note: lid attached", got)
}

func TestLoadClassify_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClassifyFile), []byte("messages: [::"), 0o644))

	_, err := LoadClassify(dir)
	assert.ErrorContains(t, err, "yaml parse error")
}

func TestBuildUserPrompt_NoUserMessages(t *testing.T) {
	pf := &PromptFile{Messages: []Message{{Role: RoleSystem, Content: "only system"}}}

	got, err := pf.BuildUserPrompt("extra")
	require.NoError(t, err)
	assert.Equal(t, DefaultBasePrompt+"\nextra", got)
}

func TestBuildUserPrompt_BadTemplate(t *testing.T) {
	pf := &PromptFile{Messages: []Message{{Role: RoleUser, Content: "{{.Missing"}}}

	_, err := pf.BuildUserPrompt("")
	assert.ErrorContains(t, err, "template parse error")
}
