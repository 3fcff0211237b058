package sanitizer

import "regexp"

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)("?(?:otp|pin|sms[_-]?code|sifre|password)"?\s*[:=]\s*)"?([^"'\s,&}]{3,})"?`),
	regexp.MustCompile(`(?i)(<input[^>]*type=["']password["'][^>]*value=["'])([^"']+)`),
}

// SecretSanitizer вырезает одноразовые коды и пароли в формах key=value, JSON и HTML.
type SecretSanitizer struct{}

func (s *SecretSanitizer) Sanitize(text string) string {
	for _, pattern := range secretPatterns {
		text = pattern.ReplaceAllString(text, `${1}`+Mask)
	}
	return text
}
