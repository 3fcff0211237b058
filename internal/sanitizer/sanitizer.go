// Package sanitizer маскирует карточные данные и одноразовые коды перед записью в логи,
// диагностические снимки страниц и журнал запусков.
package sanitizer

import (
	"sort"
	"strings"
	"unicode"
)

const Mask = "[FILTERED]"

type SanitizerRule interface {
	Sanitize(text string) string
}

type DataSanitizer struct {
	rules []SanitizerRule
}

func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []SanitizerRule{
			&CardSanitizer{},
			&SecretSanitizer{},
			&CookieSanitizer{},
		},
	}
}

// WithSecrets возвращает копию, которая дополнительно вырезает точные значения,
// известные из запроса (PAN, CVV, OTP, PIN). Короткие значения игнорируются,
// иначе маска съест половину текста.
func (s *DataSanitizer) WithSecrets(values ...string) *DataSanitizer {
	literal := &LiteralSanitizer{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if len(v) >= 3 {
			literal.values = append(literal.values, v)
		}
	}
	// длинные первыми: PAN не должен остаться частично открытым из-за CVV
	sort.Slice(literal.values, func(i, j int) bool {
		return len(literal.values[i]) > len(literal.values[j])
	})

	rules := make([]SanitizerRule, 0, len(s.rules)+1)
	rules = append(rules, literal)
	rules = append(rules, s.rules...)
	return &DataSanitizer{rules: rules}
}

// Literals вырезает только точные значения из запроса, без шаблонных правил.
// Для текста, который должен дойти до оркестратора как есть.
func Literals(values ...string) *DataSanitizer {
	return (&DataSanitizer{}).WithSecrets(values...)
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, rule := range s.rules {
		result = rule.Sanitize(result)
	}

	return result
}

// SanitizeFields маскирует значения карты полей формы по именам ключей.
func (s *DataSanitizer) SanitizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if isSensitiveKey(k) {
			out[k] = Mask
			continue
		}
		out[k] = s.Sanitize(v)
	}
	return out
}

var (
	sensitivePrefixes = []string{"card", "cvv", "cvc", "otp", "expire", "password", "passwd"}
	sensitiveTokens   = map[string]struct{}{"pin": {}, "pincode": {}, "pan": {}, "sifre": {}}
)

// isSensitiveKey сравнивает по словам ключа: cardCVV -> card, cvv; shipping не совпадает с pin.
func isSensitiveKey(key string) bool {
	for _, token := range keyTokens(key) {
		if _, ok := sensitiveTokens[token]; ok {
			return true
		}
		for _, prefix := range sensitivePrefixes {
			if strings.HasPrefix(token, prefix) {
				return true
			}
		}
	}
	return false
}

// keyTokens режет ключ по разделителям и границам camelCase.
func keyTokens(key string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(key)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

type LiteralSanitizer struct {
	values []string
}

func (s *LiteralSanitizer) Sanitize(text string) string {
	for _, v := range s.values {
		text = strings.ReplaceAll(text, v, Mask)
	}
	return text
}
