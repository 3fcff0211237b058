package sanitizer

import "regexp"

var cookiePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:set-)?cookie\s*[:=]\s*["']?)([^"'\n]{10,})["']?`),
}

// CookieSanitizer нужен для заголовков ответов банка, которые пишутся в debug-лог.
type CookieSanitizer struct{}

func (s *CookieSanitizer) Sanitize(text string) string {
	for _, pattern := range cookiePatterns {
		text = pattern.ReplaceAllString(text, `${1}`+Mask)
	}
	return text
}
