package automation

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"acsWorker/internal/browser"
	"acsWorker/internal/classifier"
	"acsWorker/internal/sanitizer"
)

type Navigator struct {
	cls *classifier.Classifier
	t   Timings
	log *zap.Logger
	san *sanitizer.DataSanitizer
}

func leftStart(start string) func(string) bool {
	return func(u string) bool {
		return u != "" && u != start && u != "about:blank" && !strings.HasPrefix(u, "data:")
	}
}

// sameEndpoint сравнивает хост и путь, без query и регистра.
func sameEndpoint(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host) &&
		strings.EqualFold(strings.TrimRight(ua.Path, "/"), strings.TrimRight(ub.Path, "/"))
}

// Acquire ждет, пока страница уйдет с внедренной формы и осядет на странице банка.
// Адрес инициации (initiation) сам по себе челленджем не считается: хост шлюза
// совпадает с маркерами банков, а ACS еще не открыт.
func (n *Navigator) Acquire(ctx context.Context, page browser.Page, startURL, initiation string) NavigationOutcome {
	var out NavigationOutcome
	left := leftStart(startURL)

	for attempt := 1; attempt <= n.t.NavMaxAttempts; attempt++ {
		timeout := n.t.NavNextAttempts
		if attempt == 1 {
			timeout = n.t.NavFirstAttempt
		}
		out.Attempts = attempt

		err := page.WaitForURL(ctx, left, timeout)
		if err == nil {
			err = page.WaitForLoadState(ctx, browser.LoadStateNetworkIdle, timeout)
		}

		out.CurrentURL = page.URL()
		log := n.log.With(zap.Int("attempt", attempt), zap.String("url", out.CurrentURL))

		if title, terr := page.Title(ctx); terr == nil && left(out.CurrentURL) && n.cls.IsErrorTitle(title) {
			log.Warn("3DS-хост показал страницу ошибки", zap.String("title", title))
			out.ErrorPage = true
			out.Title = strings.TrimSpace(title)
			return out
		}

		if n.cls.IsChallengeURL(out.CurrentURL) && !sameEndpoint(out.CurrentURL, initiation) {
			log.Info("Страница челленджа получена")
			out.Reached = true
			return out
		}

		if err == nil && left(out.CurrentURL) {
			log.Info("Навигация завершена, URL вне известных маркеров банка")
			out.Reached = true
			return out
		}

		if err != nil {
			out.LastError = err.Error()
		}
		log.Warn("Страница челленджа еще не получена", zap.String("last_error", out.LastError))

		if ctx.Err() != nil {
			break
		}
	}

	if content, err := page.Content(ctx); err == nil {
		out.Snapshot = truncate(n.san.Sanitize(content), n.t.SnapshotLimit)
	}
	return out
}
