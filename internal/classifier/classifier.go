// Package classifier распознает по URL и тексту страницы, чем закончился челлендж ACS.
// Таблицы слов и маркеров передаются снаружи, классификатор ничего не знает о банках.
package classifier

import (
	"net/url"
	"strings"
)

type Signal int

const (
	SignalNone Signal = iota
	SignalSuccess
	SignalError
)

func (s Signal) String() string {
	switch s {
	case SignalSuccess:
		return "success"
	case SignalError:
		return "error"
	default:
		return "none"
	}
}

type Table struct {
	ErrorKeywords   []string
	SuccessKeywords []string
	SuccessURL      []string
	ChallengeHost   []string
	ChallengeURL    []string
	Merchant        []string
	ErrorTitle      []string
	AutoSubmit      []string
}

type Classifier struct {
	table Table
}

func New(table Table) *Classifier {
	return &Classifier{table: foldTable(table)}
}

func foldTable(t Table) Table {
	return Table{
		ErrorKeywords:   foldAll(t.ErrorKeywords),
		SuccessKeywords: foldAll(t.SuccessKeywords),
		SuccessURL:      foldAll(t.SuccessURL),
		ChallengeHost:   foldAll(t.ChallengeHost),
		ChallengeURL:    foldAll(t.ChallengeURL),
		Merchant:        foldAll(t.Merchant),
		ErrorTitle:      foldAll(t.ErrorTitle),
		AutoSubmit:      foldAll(t.AutoSubmit),
	}
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := Fold(strings.TrimSpace(s)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) (string, bool) {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return n, true
		}
	}
	return "", false
}

// IsChallengeURL проверяет, что страница уже у банка: маркер в хосте или в пути.
func (c *Classifier) IsChallengeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if _, ok := containsAny(Fold(u.Hostname()), c.table.ChallengeHost); ok {
		return true
	}
	_, ok := containsAny(Fold(u.Path), c.table.ChallengeURL)
	return ok
}

func (c *Classifier) IsMerchantURL(raw string) bool {
	if raw == "" {
		return false
	}
	_, ok := containsAny(Fold(raw), c.table.Merchant)
	return ok
}

// URLSignal дает только успех или ничего: ошибку по URL не определяем,
// банковские адреса возврата содержат "error" в query даже при успехе.
func (c *Classifier) URLSignal(raw string) Signal {
	if raw == "" {
		return SignalNone
	}
	if _, ok := containsAny(Fold(raw), c.table.SuccessURL); ok {
		return SignalSuccess
	}
	return SignalNone
}

// IsErrorTitle распознает страницу ошибки самого 3DS-хоста по заголовку.
func (c *Classifier) IsErrorTitle(title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	_, ok := containsAny(Fold(title), c.table.ErrorTitle)
	return ok
}

// MatchErrorElement возвращает первый непустой текст из стилизованных элементов ошибки.
// Текст возвращается как есть, без свертки.
func (c *Classifier) MatchErrorElement(texts []string) (string, bool) {
	for _, t := range texts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// MatchErrorText ищет строку видимого текста с ключевым словом ошибки.
func (c *Classifier) MatchErrorText(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if _, ok := containsAny(Fold(trimmed), c.table.ErrorKeywords); ok {
			return trimmed, true
		}
	}
	return "", false
}

func (c *Classifier) MatchSuccessText(text string) bool {
	_, ok := containsAny(Fold(text), c.table.SuccessKeywords)
	return ok
}

// LooksAutoSubmitting определяет, что тело ответа само отправит форму дальше.
func (c *Classifier) LooksAutoSubmitting(body string) bool {
	_, ok := containsAny(Fold(body), c.table.AutoSubmit)
	return ok
}
