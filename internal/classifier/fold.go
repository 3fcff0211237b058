package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dotless ı и İ не раскладываются через NFD, поэтому заменяются явно.
var turkishReplacer = strings.NewReplacer("ı", "i", "İ", "i", "I", "i")

// Fold приводит текст к нижнему регистру без диакритики, чтобы "BAŞARILI",
// "başarılı" и "basarili" совпадали с одним ключевым словом.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, turkishReplacer.Replace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
