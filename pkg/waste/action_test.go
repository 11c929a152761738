package waste

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAction(t *testing.T) {
	tests := []struct {
		name        string
		category    string
		description string
		want        Action
	}{
		{"plastic", "plastic", "clean bottle", ActionPlasticBin},
		{"plastic ignores contamination", "plastic", "soiled", ActionPlasticBin},
		{"paper soiled", "paper", "item is soiled", ActionGeneralWasteCleaning},
		{"paper contaminated upper case", "paper", "CONTAMINATED with food", ActionGeneralWasteCleaning},
		{"paper clean", "paper", "clean item", ActionPaperBin},
		{"paper inseparable stays paper", "paper", "cannot be separated", ActionPaperBin},
		{"metal", "metal", "", ActionMetalBin},
		{"can in label", "tin can", "", ActionMetalBin},
		{"general waste", "general waste", "", ActionManualRemoval},
		{"inseparable description", "uncategorized", "parts cannot be separated", ActionManualRemoval},
		{"undeterminable", "uncategorized", "a glass jar", ActionUndeterminable},
		{"empty", "", "", ActionUndeterminable},
		{"lenient label", "Mixed PLASTIC items", "", ActionPlasticBin},
		{"plastic before paper", "plastic paper", "soiled", ActionPlasticBin},
		{"legacy korean paper", "종이", "오염된 종이", ActionGeneralWasteCleaning},
		{"legacy korean metal", "금속", "", ActionMetalBin},
		{"legacy korean inseparable", "기타", "분리 불가", ActionManualRemoval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.want), ResolveAction(tt.category, tt.description))
		})
	}
}

func TestResolve_NeverEmpty(t *testing.T) {
	for _, c := range []Category{Uncategorized, Plastic, Paper, Metal, GeneralWaste, Category(99)} {
		for _, d := range []string{"", "soiled", "cannot be separated", "whatever"} {
			assert.NotEmpty(t, Resolve(c, d), "category=%s description=%q", c, d)
		}
	}
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, Plastic, ParseLabel(LabelPlastic))
	assert.Equal(t, Paper, ParseLabel(LabelPaper))
	assert.Equal(t, Metal, ParseLabel(LabelMetal))
	assert.Equal(t, GeneralWaste, ParseLabel(LabelGeneralWaste))
	assert.Equal(t, Uncategorized, ParseLabel(LabelUncategorized))
	assert.Equal(t, Uncategorized, ParseLabel("glass"))
}

// Метка, полученная из ExtractCategory, всегда разбирается обратно в ту же категорию.
func TestParseLabel_RoundTrip(t *testing.T) {
	for _, c := range []Category{Uncategorized, Plastic, Paper, Metal, GeneralWaste} {
		assert.Equal(t, c, ParseLabel(c.Label()))
	}
}
