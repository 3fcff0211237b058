package browser

import (
	"context"
	"time"
)

type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// Response - сетевой ответ или результат навигации. Status 0 означает, что статус неизвестен.
type Response struct {
	URL     string
	Status  int
	Headers map[string]string
}

// ElementState - вычисленные стили одного элемента, совпавшего с селектором.
type ElementState struct {
	Display    string  `json:"display"`
	Visibility string  `json:"visibility"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Disabled   bool    `json:"disabled"`
}

type Form struct {
	Action string
	Method string
	Fields map[string]string
}

// FetchRequest выполняется из контекста страницы, с ее cookies.
// Если задан JSON, тело отправляется как application/json, иначе Form кодируется как urlencoded.
type FetchRequest struct {
	URL    string
	Method string
	Form   map[string]string
	JSON   any
}

type FetchResult struct {
	URL        string            `json:"url"`
	Status     int               `json:"status"`
	Redirected bool              `json:"redirected"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Page - все, что пайплайну нужно от открытой страницы.
// Методы с ctx блокируются не дольше timeout и прерываются отменой ctx.
type Page interface {
	URL() string
	Title(ctx context.Context) (string, error)
	Content(ctx context.Context) (string, error)
	VisibleText(ctx context.Context) (string, error)

	SetContent(ctx context.Context, html string) error
	Goto(ctx context.Context, url string, timeout time.Duration) (*Response, error)
	SubmitForm(ctx context.Context, form Form, timeout time.Duration) (*Response, error)
	DispatchForm(ctx context.Context, form Form) error
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)

	WaitForLoadState(ctx context.Context, state LoadState, timeout time.Duration) error
	WaitForURL(ctx context.Context, match func(string) bool, timeout time.Duration) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	Inspect(ctx context.Context, selector string) ([]ElementState, error)
	Texts(ctx context.Context, selector string) ([]string, error)
	Type(ctx context.Context, selector, text string, delay time.Duration) error
	Click(ctx context.Context, selector string) error
	Press(ctx context.Context, key string) error

	// OnResponse регистрирует слушатель сетевых ответов. Слушатель живет до закрытия сессии.
	OnResponse(fn func(Response))
}

// Session владеет одним процессом браузера и одной страницей.
type Session interface {
	Page() Page
	Close() error
}

type Launcher interface {
	Acquire(ctx context.Context) (Session, error)
}

type Config struct {
	Headless     bool
	Install      bool
	BrowsersPath string
	Locale       string
	UserAgent    string
	Timeout      time.Duration
}
