package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var ErrNotRunning = errors.New("браузер не запущен")

// PlaywrightLauncher держит драйвер playwright на весь процесс,
// а Chromium запускает отдельно на каждый запрос.
type PlaywrightLauncher struct {
	pw  *playwright.Playwright
	cfg Config
	log *zap.Logger
}

func Start(cfg Config, log *zap.Logger) (*PlaywrightLauncher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Locale == "" {
		cfg.Locale = "tr-TR"
	}
	if cfg.BrowsersPath != "" {
		_ = os.Setenv("PLAYWRIGHT_BROWSERS_PATH", cfg.BrowsersPath)
	}

	if cfg.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("установка chromium: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("запуск playwright: %w", err)
	}

	return &PlaywrightLauncher{pw: pw, cfg: cfg, log: log}, nil
}

func (l *PlaywrightLauncher) getBrowserArgs() []string {
	return []string{
		"--no-sandbox",
		"--disable-setuid-sandbox",
		"--disable-gpu",
		"--disable-dev-shm-usage",
	}
}

func (l *PlaywrightLauncher) getHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": acceptLanguage(l.cfg.Locale),
	}
}

// acceptLanguage строит заголовок вида "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7".
func acceptLanguage(locale string) string {
	lang := locale
	for i, r := range locale {
		if r == '-' || r == '_' {
			lang = locale[:i]
			break
		}
	}
	if lang == "en" {
		return locale + ",en;q=0.9"
	}
	return locale + "," + lang + ";q=0.9,en-US;q=0.8,en;q=0.7"
}

func (l *PlaywrightLauncher) Acquire(ctx context.Context) (Session, error) {
	if l.pw == nil {
		return nil, ErrNotRunning
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &PlaywrightSession{log: l.log}

	// без await: Launch ограничен собственным таймаутом, а s должен остаться закрываемым
	err := func() error {
		br, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(l.cfg.Headless),
			Args:     l.getBrowserArgs(),
		})
		if err != nil {
			return fmt.Errorf("запуск chromium: %w", err)
		}
		s.browser = br

		bctx, err := br.NewContext(playwright.BrowserNewContextOptions{
			UserAgent:         playwright.String(l.cfg.UserAgent),
			Locale:            playwright.String(l.cfg.Locale),
			ExtraHttpHeaders:  l.getHeaders(),
			IgnoreHttpsErrors: playwright.Bool(true),
			JavaScriptEnabled: playwright.Bool(true),
			Viewport:          &playwright.Size{Width: 1366, Height: 768},
		})
		if err != nil {
			return fmt.Errorf("создание контекста: %w", err)
		}
		s.context = bctx

		page, err := bctx.NewPage()
		if err != nil {
			return fmt.Errorf("создание страницы: %w", err)
		}
		page.SetDefaultTimeout(float64(l.cfg.Timeout.Milliseconds()))
		s.page = &playwrightPage{page: page}
		return nil
	}()
	if err != nil {
		// наполовину поднятый браузер все равно надо погасить
		if cerr := s.Close(); cerr != nil {
			l.log.Warn("Не удалось закрыть браузер после ошибки запуска", zap.Error(cerr))
		}
		return nil, err
	}

	return s, nil
}

func (l *PlaywrightLauncher) Stop() error {
	if l.pw == nil {
		return nil
	}
	return l.pw.Stop()
}

type PlaywrightSession struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    *playwrightPage
	log     *zap.Logger

	once     sync.Once
	closeErr error
}

func (s *PlaywrightSession) Page() Page {
	return s.page
}

// Close идемпотентен: повторный вызов возвращает результат первого.
func (s *PlaywrightSession) Close() error {
	s.once.Do(func() {
		var errs []error
		if s.page != nil && s.page.page != nil {
			if err := s.page.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("закрытие страницы: %w", err))
			}
		}
		if s.context != nil {
			if err := s.context.Close(); err != nil {
				errs = append(errs, fmt.Errorf("закрытие контекста: %w", err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("закрытие браузера: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// await выполняет блокирующий вызов playwright, не давая ему пережить ctx.
func await(ctx context.Context, fn func() error) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}
