package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightPage struct {
	page playwright.Page
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func toResponse(r playwright.Response) *Response {
	if r == nil {
		return nil
	}
	return &Response{URL: r.URL(), Status: r.Status(), Headers: r.Headers()}
}

// decode перекладывает результат Evaluate (map/[]interface{}) в типизированную структуру.
func decode(raw interface{}, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (p *playwrightPage) URL() string {
	if p.page == nil {
		return ""
	}
	return p.page.URL()
}

func (p *playwrightPage) Title(ctx context.Context) (string, error) {
	var title string
	err := await(ctx, func() error {
		var err error
		title, err = p.page.Title()
		return err
	})
	return title, err
}

func (p *playwrightPage) Content(ctx context.Context) (string, error) {
	var content string
	err := await(ctx, func() error {
		var err error
		content, err = p.page.Content()
		return err
	})
	return content, err
}

func (p *playwrightPage) VisibleText(ctx context.Context) (string, error) {
	var text string
	err := await(ctx, func() error {
		raw, err := p.page.Evaluate(visibleTextScript)
		if err != nil {
			return err
		}
		text, _ = raw.(string)
		return nil
	})
	return text, err
}

func (p *playwrightPage) SetContent(ctx context.Context, html string) error {
	return await(ctx, func() error {
		return p.page.SetContent(html, playwright.PageSetContentOptions{
			WaitUntil: playwright.WaitUntilStateCommit,
		})
	})
}

func (p *playwrightPage) Goto(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	var resp *Response
	err := await(ctx, func() error {
		r, err := p.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   ms(timeout),
		})
		if err != nil {
			return err
		}
		resp = toResponse(r)
		return nil
	})
	return resp, err
}

func formArg(form Form) map[string]any {
	method := strings.ToUpper(form.Method)
	if method == "" {
		method = "POST"
	}
	fields := form.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return map[string]any{"action": form.Action, "method": method, "fields": fields}
}

func (p *playwrightPage) SubmitForm(ctx context.Context, form Form, timeout time.Duration) (*Response, error) {
	var resp *Response
	err := await(ctx, func() error {
		r, err := p.page.ExpectNavigation(func() error {
			_, err := p.page.Evaluate(formScript, formArg(form))
			return err
		}, playwright.PageExpectNavigationOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   ms(timeout),
		})
		if err != nil {
			return fmt.Errorf("отправка формы на %s: %w", form.Action, err)
		}
		resp = toResponse(r)
		return nil
	})
	return resp, err
}

func (p *playwrightPage) DispatchForm(ctx context.Context, form Form) error {
	return await(ctx, func() error {
		_, err := p.page.Evaluate(formScript, formArg(form))
		return err
	})
}

func (p *playwrightPage) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = "POST"
	}
	arg := map[string]any{"url": req.URL, "method": method, "form": req.Form, "json": req.JSON}

	var res FetchResult
	err := await(ctx, func() error {
		raw, err := p.page.Evaluate(fetchScript, arg)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", req.URL, err)
		}
		return decode(raw, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *playwrightPage) WaitForLoadState(ctx context.Context, state LoadState, timeout time.Duration) error {
	var loadState *playwright.LoadState
	switch state {
	case LoadStateDOMContentLoaded:
		loadState = playwright.LoadStateDomcontentloaded
	case LoadStateNetworkIdle:
		loadState = playwright.LoadStateNetworkidle
	default:
		loadState = playwright.LoadStateLoad
	}

	return await(ctx, func() error {
		return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   loadState,
			Timeout: ms(timeout),
		})
	})
}

func (p *playwrightPage) WaitForURL(ctx context.Context, match func(string) bool, timeout time.Duration) error {
	return await(ctx, func() error {
		return p.page.WaitForURL(match, playwright.PageWaitForURLOptions{
			WaitUntil: playwright.WaitUntilStateCommit,
			Timeout:   ms(timeout),
		})
	})
}

func (p *playwrightPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return await(ctx, func() error {
		return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: ms(timeout),
		})
	})
}

func (p *playwrightPage) Inspect(ctx context.Context, selector string) ([]ElementState, error) {
	var states []ElementState
	err := await(ctx, func() error {
		raw, err := p.page.Locator(selector).EvaluateAll(inspectScript)
		if err != nil {
			return err
		}
		return decode(raw, &states)
	})
	return states, err
}

func (p *playwrightPage) Texts(ctx context.Context, selector string) ([]string, error) {
	var texts []string
	err := await(ctx, func() error {
		raw, err := p.page.Locator(selector).EvaluateAll(textsScript)
		if err != nil {
			return err
		}
		return decode(raw, &texts)
	})
	return texts, err
}

func (p *playwrightPage) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	return await(ctx, func() error {
		field := p.page.Locator(selector).First()
		if err := field.Fill(""); err != nil {
			return fmt.Errorf("очистка поля %s: %w", selector, err)
		}
		return field.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
			Delay: ms(delay),
		})
	})
}

func (p *playwrightPage) Click(ctx context.Context, selector string) error {
	return await(ctx, func() error {
		return p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(5000),
		})
	})
}

func (p *playwrightPage) Press(ctx context.Context, key string) error {
	return await(ctx, func() error {
		return p.page.Keyboard().Press(key)
	})
}

func (p *playwrightPage) OnResponse(fn func(Response)) {
	p.page.OnResponse(func(r playwright.Response) {
		fn(Response{URL: r.URL(), Status: r.Status(), Headers: r.Headers()})
	})
}
