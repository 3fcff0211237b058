package automation

import (
	"context"

	"go.uber.org/zap"

	"acsWorker/internal/browser"
	"acsWorker/internal/catalog"
)

type Discoverer struct {
	cat *catalog.Catalog
	t   Timings
	log *zap.Logger
}

// Candidates собирает упорядоченный список: селектор оператора, затем каталог.
// Невалидный селектор оператора пропускается, дубликаты убираются с сохранением порядка.
func Candidates(override string, known []string) []string {
	out := make([]string, 0, len(known)+1)
	seen := make(map[string]struct{}, len(known)+1)

	add := func(sel string) {
		if browser.ValidateSelector(sel) != nil {
			return
		}
		sel, _ = browser.NormalizeSelector(sel)
		if _, ok := seen[sel]; ok {
			return
		}
		seen[sel] = struct{}{}
		out = append(out, sel)
	}

	if override != "" {
		add(override)
	}
	for _, sel := range known {
		add(sel)
	}
	return out
}

// FindVisible возвращает первый кандидат, у которого есть видимый элемент.
// Наличие в DOM без видимости не засчитывается; порядок кандидатов не меняется.
func (d *Discoverer) FindVisible(ctx context.Context, page browser.Page, candidates []string, requireEnabled bool) (string, bool) {
	for _, sel := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if err := page.WaitForSelector(ctx, sel, d.t.CandidateTimeout); err != nil {
			continue
		}

		states, err := page.Inspect(ctx, sel)
		if err != nil {
			d.log.Debug("Не удалось проверить видимость", zap.String("selector", sel), zap.Error(err))
			continue
		}

		for i, st := range states {
			if Visible(st, requireEnabled) {
				return browser.Nth(sel, i), true
			}
		}
		d.log.Debug("Элемент есть, но невидим", zap.String("selector", sel), zap.Int("matches", len(states)))
	}
	return "", false
}

func (d *Discoverer) Discover(ctx context.Context, page browser.Page, req *Request) DiscoveredElements {
	var found DiscoveredElements

	if sel, ok := d.FindVisible(ctx, page, Candidates(req.ChallengeSelector, d.cat.Selectors.OTP), false); ok {
		found.OTPSelector = sel
	}
	if found.OTPSelector == "" {
		d.log.Warn("Поле OTP не найдено")
		return found
	}

	if sel, ok := d.FindVisible(ctx, page, Candidates(req.SubmitSelector, d.cat.Selectors.Submit), true); ok {
		found.SubmitSelector = sel
	}

	d.log.Info("Элементы челленджа найдены",
		zap.String("otp_selector", found.OTPSelector),
		zap.String("submit_selector", found.SubmitSelector),
	)
	return found
}
