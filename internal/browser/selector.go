package browser

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	containsDouble = regexp.MustCompile(`:contains\("([^"]*)"\)`)
	containsSingle = regexp.MustCompile(`:contains\('([^']*)'\)`)
)

// ValidateSelector отсекает то, что оператор мог вставить вместо селектора: пустую строку и URL.
func ValidateSelector(selector string) error {
	trimmed := strings.TrimSpace(selector)
	if trimmed == "" {
		return fmt.Errorf("селектор не может быть пустым")
	}
	if strings.Contains(trimmed, "://") {
		return fmt.Errorf("селектор не может быть URL: %s", selector)
	}
	return nil
}

// NormalizeSelector переводит jQuery :contains() в :has-text() playwright.
// Возвращает нормализованный селектор и флаг изменения.
func NormalizeSelector(selector string) (string, bool) {
	normalized := strings.TrimSpace(selector)
	normalized = containsDouble.ReplaceAllString(normalized, `:has-text("$1")`)
	normalized = containsSingle.ReplaceAllString(normalized, `:has-text('$1')`)
	return normalized, normalized != selector
}

// Nth адресует i-й элемент из совпавших с selector.
func Nth(selector string, i int) string {
	if i == 0 {
		return selector
	}
	return fmt.Sprintf("%s >> nth=%d", selector, i)
}
