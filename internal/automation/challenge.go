package automation

import (
	"context"

	"go.uber.org/zap"

	"acsWorker/internal/browser"
	"acsWorker/internal/catalog"
	"acsWorker/internal/classifier"
)

type Challenger struct {
	cat *catalog.Catalog
	cls *classifier.Classifier
	t   Timings
	log *zap.Logger
}

// PatternPresent - однократная проверка шаблона успеха, без ожидания.
func (c *Challenger) PatternPresent(ctx context.Context, page browser.Page, pattern string) bool {
	if pattern == "" {
		return false
	}
	states, err := page.Inspect(ctx, pattern)
	return err == nil && len(states) > 0
}

// Complete вводит OTP посимвольно, отправляет форму и определяет исход челленджа.
func (c *Challenger) Complete(ctx context.Context, page browser.Page, found DiscoveredElements, req *Request) ChallengeResult {
	if err := page.Type(ctx, found.OTPSelector, string(req.OTP), c.t.TypeDelay); err != nil {
		c.log.Error("Не удалось ввести OTP", zap.String("selector", found.OTPSelector), zap.Error(err))
		return ChallengeResult{FinalURL: page.URL(), Reason: ErrOTPEntryFailed, ErrorText: err.Error()}
	}
	sleep(ctx, c.t.SubmitPause)

	before := page.URL()
	c.submit(ctx, page, found.SubmitSelector)

	return c.Decide(ctx, page, before, req)
}

func (c *Challenger) submit(ctx context.Context, page browser.Page, selector string) {
	if selector != "" {
		err := page.Click(ctx, selector)
		if err == nil {
			c.log.Info("OTP отправлен кликом", zap.String("selector", selector))
			return
		}
		c.log.Warn("Клик не удался, пробуем Enter", zap.String("selector", selector), zap.Error(err))
	}
	if err := page.Press(ctx, "Enter"); err != nil {
		c.log.Warn("Enter не отправлен", zap.Error(err))
		return
	}
	c.log.Info("OTP отправлен клавишей Enter")
}

// Decide применяет порядок: шаблон успеха, затем ошибка на странице, успех по URL, успех по тексту.
// Без сигнала результат - неудача.
func (c *Challenger) Decide(ctx context.Context, page browser.Page, before string, req *Request) ChallengeResult {
	timeout := req.Timeout()

	if req.SuccessPattern != "" {
		if err := page.WaitForSelector(ctx, req.SuccessPattern, timeout); err != nil {
			c.log.Warn("Шаблон успеха не появился", zap.String("pattern", req.SuccessPattern), zap.Error(err))
			return ChallengeResult{FinalURL: page.URL(), Reason: ErrSuccessNotConfirmed}
		}
		c.log.Info("Шаблон успеха найден", zap.String("pattern", req.SuccessPattern))
		return ChallengeResult{ACSSuccess: true, FinalURL: page.URL()}
	}

	if err := page.WaitForURL(ctx, func(u string) bool { return u != before }, timeout); err != nil {
		c.log.Debug("Навигации после отправки OTP не было", zap.Error(err))
	}
	finalURL := page.URL()

	if text, ok := c.errorText(ctx, page); ok {
		c.log.Warn("На странице ошибка", zap.String("error_text", text))
		return ChallengeResult{FinalURL: finalURL, Reason: ErrSuccessNotConfirmed, ErrorText: text}
	}

	if c.cls.URLSignal(finalURL) == classifier.SignalSuccess {
		c.log.Info("Успех по URL", zap.String("url", finalURL))
		return ChallengeResult{ACSSuccess: true, FinalURL: finalURL}
	}

	if text, err := page.VisibleText(ctx); err == nil && c.cls.MatchSuccessText(text) {
		c.log.Info("Успех по тексту страницы")
		return ChallengeResult{ACSSuccess: true, FinalURL: finalURL}
	}

	return ChallengeResult{FinalURL: finalURL, Reason: ErrSuccessNotConfirmed}
}

// errorText: сначала стилизованные элементы ошибки, потом ключевые слова в видимом тексте.
func (c *Challenger) errorText(ctx context.Context, page browser.Page) (string, bool) {
	for _, sel := range c.cat.Selectors.Error {
		texts, err := page.Texts(ctx, sel)
		if err != nil {
			continue
		}
		if text, ok := c.cls.MatchErrorElement(texts); ok {
			return text, true
		}
	}

	text, err := page.VisibleText(ctx)
	if err != nil {
		return "", false
	}
	return c.cls.MatchErrorText(text)
}
