// Package waste содержит логику сортировки: извлечение категории отхода из
// текстового описания и выбор действия для манипулятора.
//
// Обе операции - чистые функции без I/O и состояния, их можно вызывать
// из любого количества горутин.
package waste

import (
	"regexp"
	"strings"
)

// Category - грубая категория отхода.
//
// Внутри пакета используется как закрытый набор значений, наружу
// (в журнал) уходит только текстовая метка Label().
type Category int

const (
	Uncategorized Category = iota
	Plastic
	Paper
	Metal
	GeneralWaste
)

// Метки категорий в том виде, в каком они сохраняются в журнал.
const (
	LabelPlastic       = "plastic"
	LabelPaper         = "paper"
	LabelMetal         = "metal"
	LabelGeneralWaste  = "general waste"
	LabelUncategorized = "uncategorized"
)

// Label возвращает человекочитаемую метку категории.
func (c Category) Label() string {
	switch c {
	case Plastic:
		return LabelPlastic
	case Paper:
		return LabelPaper
	case Metal:
		return LabelMetal
	case GeneralWaste:
		return LabelGeneralWaste
	default:
		return LabelUncategorized
	}
}

func (c Category) String() string {
	return c.Label()
}

// Rule - группа ключевых слов, указывающих на одну категорию.
type Rule struct {
	Category Category
	Keywords []string

	// Match - дополнительная проверка для слов, которые нельзя искать
	// подстрокой. Может быть nil.
	Match func(text string) bool
}

// DefaultRules - упорядоченный список групп. Порядок - это приоритет:
// описание с "plastic" и "paper" одновременно станет пластиком.
//
// Корейские термины оставлены для совместимости с описаниями, которые
// возвращала модель в первой версии приложения.
var DefaultRules = []Rule{
	{Category: Plastic, Keywords: []string{"plastic", "플라스틱"}},
	{Category: Paper, Keywords: []string{"paper", "cardboard", "종이"}},
	{Category: Metal, Keywords: []string{"metal", "캔", "금속"}, Match: mentionsCan},
	{Category: GeneralWaste, Keywords: []string{"general waste", "일반 쓰레기", "일반쓰레기"}},
}

// Extractor выполняет поиск категории по упорядоченным правилам.
// Нулевое значение не годится, используйте NewExtractor.
type Extractor struct {
	rules []Rule
}

// NewExtractor создает экстрактор на базе DefaultRules.
//
// extra добавляет ключевые слова к существующим группам (ключ - метка
// категории, например "paper"). Порядок групп не меняется, неизвестные
// метки игнорируются.
func NewExtractor(extra map[string][]string) *Extractor {
	rules := make([]Rule, len(DefaultRules))
	for i, r := range DefaultRules {
		keywords := make([]string, 0, len(r.Keywords)+len(extra[r.Category.Label()]))
		keywords = append(keywords, r.Keywords...)
		for _, kw := range extra[r.Category.Label()] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		rules[i] = Rule{Category: r.Category, Keywords: keywords, Match: r.Match}
	}
	return &Extractor{rules: rules}
}

// Extract возвращает категорию первой сработавшей группы или Uncategorized.
func (e *Extractor) Extract(description string) Category {
	text := strings.ToLower(description)

	for _, rule := range e.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Category
			}
		}
		if rule.Match != nil && rule.Match(text) {
			return rule.Category
		}
	}

	return Uncategorized
}

var canWord = regexp.MustCompile(`\bcans?\b`)

// Слова, после которых "can" - модальный глагол, а не банка.
var modalFollowers = map[string]bool{
	"be": true, "not": true, "also": true, "only": true, "still": true,
	"easily": true, "usually": true, "often": true, "typically": true,
	"go": true, "then": true, "probably": true, "likely": true,
}

// mentionsCan ищет "can"/"cans" целым словом в тексте в нижнем регистре.
// "cannot", "can't" и "can be ..." банкой не считаются.
func mentionsCan(text string) bool {
	for _, loc := range canWord.FindAllStringIndex(text, -1) {
		if text[loc[0]:loc[1]] == "cans" {
			return true
		}

		rest := text[loc[1]:]
		if strings.HasPrefix(rest, "'t") || strings.HasPrefix(rest, "’t") {
			continue
		}
		next := strings.Fields(rest)
		if len(next) > 0 && modalFollowers[strings.Trim(next[0], ".,;:!?")] {
			continue
		}
		return true
	}
	return false
}

var defaultExtractor = NewExtractor(nil)

// Extract определяет категорию по DefaultRules.
func Extract(description string) Category {
	return defaultExtractor.Extract(description)
}

// ExtractCategory возвращает метку категории для описания.
// Никогда не возвращает пустую строку.
func ExtractCategory(description string) string {
	return Extract(description).Label()
}
