package automation

import (
	"context"
	"errors"
	"sync"
	"time"

	"acsWorker/internal/browser"
)

var errFakeTimeout = errors.New("timeout exceeded")

// fakePage - сценарная страница: состояние DOM задается картой селекторов,
// реакции на действия - хуками. Ожидания не блокируются: несработавшее
// условие сразу возвращает ошибку таймаута.
type fakePage struct {
	mu sync.Mutex

	url      string
	title    string
	text     string
	content  string
	elements map[string][]browser.ElementState
	texts    map[string][]string
	idleErr  error

	listeners []func(browser.Response)

	onIdle         func(p *fakePage)
	onSetContent   func(p *fakePage, html string)
	onClick        func(p *fakePage, selector string)
	onPress        func(p *fakePage, key string)
	onGoto         func(p *fakePage, url string) (*browser.Response, error)
	onSubmitForm   func(p *fakePage, form browser.Form) (*browser.Response, error)
	onDispatchForm func(p *fakePage, form browser.Form) error
	onFetch        func(p *fakePage, req browser.FetchRequest) (*browser.FetchResult, error)

	typed    map[string]string
	clicked  []string
	pressed  []string
	fetches  []browser.FetchRequest
	contents []string
	waited   []string
}

func newFakePage() *fakePage {
	return &fakePage{
		url:      "about:blank",
		elements: map[string][]browser.ElementState{},
		texts:    map[string][]string{},
		typed:    map[string]string{},
	}
}

func shown() browser.ElementState {
	return browser.ElementState{Display: "block", Visibility: "visible", Width: 120, Height: 30}
}

func hidden() browser.ElementState {
	return browser.ElementState{Display: "none", Visibility: "visible"}
}

// navigate меняет URL и рассылает ответ слушателям, как это делает браузер.
func (p *fakePage) navigate(url string, status int) {
	p.mu.Lock()
	p.url = url
	listeners := append([]func(browser.Response){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(browser.Response{URL: url, Status: status})
	}
}

func (p *fakePage) set(selector string, states ...browser.ElementState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = states
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *fakePage) Title(context.Context) (string, error)   { return p.title, nil }
func (p *fakePage) Content(context.Context) (string, error) { return p.content, nil }

func (p *fakePage) VisibleText(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text, nil
}

func (p *fakePage) SetContent(_ context.Context, html string) error {
	p.contents = append(p.contents, html)
	if p.onSetContent != nil {
		p.onSetContent(p, html)
	}
	return nil
}

func (p *fakePage) Goto(_ context.Context, url string, _ time.Duration) (*browser.Response, error) {
	if p.onGoto != nil {
		return p.onGoto(p, url)
	}
	p.navigate(url, 200)
	return &browser.Response{URL: url, Status: 200}, nil
}

func (p *fakePage) SubmitForm(_ context.Context, form browser.Form, _ time.Duration) (*browser.Response, error) {
	if p.onSubmitForm != nil {
		return p.onSubmitForm(p, form)
	}
	return nil, errFakeTimeout
}

func (p *fakePage) DispatchForm(_ context.Context, form browser.Form) error {
	if p.onDispatchForm != nil {
		return p.onDispatchForm(p, form)
	}
	return nil
}

func (p *fakePage) Fetch(_ context.Context, req browser.FetchRequest) (*browser.FetchResult, error) {
	p.fetches = append(p.fetches, req)
	if p.onFetch != nil {
		return p.onFetch(p, req)
	}
	return nil, errors.New("fetch failed")
}

func (p *fakePage) WaitForLoadState(context.Context, browser.LoadState, time.Duration) error {
	if p.onIdle != nil {
		p.onIdle(p)
	}
	return p.idleErr
}

func (p *fakePage) WaitForURL(_ context.Context, match func(string) bool, _ time.Duration) error {
	if match(p.URL()) {
		return nil
	}
	return errFakeTimeout
}

func (p *fakePage) WaitForSelector(_ context.Context, selector string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waited = append(p.waited, selector)
	if len(p.elements[selector]) > 0 {
		return nil
	}
	return errFakeTimeout
}

func (p *fakePage) Inspect(_ context.Context, selector string) ([]browser.ElementState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[selector], nil
}

func (p *fakePage) Texts(_ context.Context, selector string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.texts[selector], nil
}

func (p *fakePage) Type(_ context.Context, selector, text string, _ time.Duration) error {
	p.typed[selector] = text
	return nil
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.clicked = append(p.clicked, selector)
	if p.onClick != nil {
		p.onClick(p, selector)
	}
	return nil
}

func (p *fakePage) Press(_ context.Context, key string) error {
	p.pressed = append(p.pressed, key)
	if p.onPress != nil {
		p.onPress(p, key)
	}
	return nil
}

func (p *fakePage) OnResponse(fn func(browser.Response)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

type fakeSession struct {
	page     *fakePage
	launcher *fakeLauncher
}

func (s *fakeSession) Page() browser.Page { return s.page }

func (s *fakeSession) Close() error {
	s.launcher.mu.Lock()
	defer s.launcher.mu.Unlock()
	s.launcher.released++
	return nil
}

type fakeLauncher struct {
	mu       sync.Mutex
	page     *fakePage
	err      error
	launched int
	released int
}

func (l *fakeLauncher) Acquire(context.Context) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.launched++
	return &fakeSession{page: l.page, launcher: l}, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	urls  []string
	calls []Result
}

func (n *fakeNotifier) Notify(_ context.Context, url string, res Result) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
	n.calls = append(n.calls, res)
	return n.err
}

type fakeRecorder struct {
	records []Result
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, _ *Request, res Result) error {
	r.records = append(r.records, res)
	return r.err
}
