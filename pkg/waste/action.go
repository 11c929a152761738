package waste

import "strings"

// Action - инструкция для манипулятора (или оператора).
type Action string

const (
	ActionPlasticBin           Action = "Move to the plastic bin (right)"
	ActionGeneralWasteCleaning Action = "Move to general waste (cleaning required)"
	ActionPaperBin             Action = "Move to the paper bin (left)"
	ActionMetalBin             Action = "Move to the metal bin"
	ActionManualRemoval        Action = "Warn user and request manual removal"
	ActionUndeterminable       Action = "Undeterminable - manual check required"
)

// Токены, по которым строковая метка сопоставляется с категорией.
// Сравнение - вхождение подстроки без учета регистра, а не равенство.
var (
	plasticTokens = []string{"plastic", "플라스틱"}
	paperTokens   = []string{"paper", "종이"}
	metalTokens   = []string{"can", "metal", "캔", "금속"}
	generalTokens = []string{"general waste", "일반 쓰레기"}

	contaminationKeywords = []string{"contaminated", "soiled", "오염", "더러움"}
	inseparableKeywords   = []string{"cannot be separated", "분리 불가"}
)

// ParseLabel сопоставляет произвольную метку с категорией.
//
// Проверки идут в том же порядке, что и в таблице решений: метка
// "plastic paper" считается пластиком.
func ParseLabel(label string) Category {
	l := strings.ToLower(label)
	switch {
	case containsAny(l, plasticTokens):
		return Plastic
	case containsAny(l, paperTokens):
		return Paper
	case containsAny(l, metalTokens):
		return Metal
	case containsAny(l, generalTokens):
		return GeneralWaste
	default:
		return Uncategorized
	}
}

// Resolve выбирает действие по категории и исходному описанию.
//
// Загрязнение проверяется только для бумаги. Фраза "cannot be separated"
// в описании отправляет на ручное удаление всё, что не попало в пластик,
// бумагу или металл.
func Resolve(c Category, description string) Action {
	d := strings.ToLower(description)

	switch c {
	case Plastic:
		return ActionPlasticBin
	case Paper:
		if containsAny(d, contaminationKeywords) {
			return ActionGeneralWasteCleaning
		}
		return ActionPaperBin
	case Metal:
		return ActionMetalBin
	case GeneralWaste:
		return ActionManualRemoval
	case Uncategorized:
		if containsAny(d, inseparableKeywords) {
			return ActionManualRemoval
		}
	}

	return ActionUndeterminable
}

// ResolveAction - строковый вариант Resolve для меток из журнала или
// внешних источников.
func ResolveAction(category, description string) string {
	return string(Resolve(ParseLabel(category), description))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
