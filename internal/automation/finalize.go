package automation

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"acsWorker/internal/browser"
	"acsWorker/internal/catalog"
	"acsWorker/internal/classifier"
	"acsWorker/internal/sanitizer"
)

type landing struct {
	URL    string
	Status int
}

func statusOK(status int) bool {
	return status == 0 || (status >= 200 && status < 300)
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

func statusOf(r *browser.Response) int {
	if r == nil {
		return 0
	}
	return r.Status
}

// Finalizer доводит мерчанта до результата после успеха на стороне ACS.
// Каскад: automatic -> forced-post -> forced-get -> fetch-post-retry ->
// html-auto-submit -> manual-form-submit -> manual-callback.
type Finalizer struct {
	cat *catalog.Catalog
	cls *classifier.Classifier
	t   Timings
	log *zap.Logger
	san *sanitizer.DataSanitizer
	now func() time.Time
}

func (f *Finalizer) reached(method FinalizeMethod, l landing) FinalizeResult {
	return FinalizeResult{
		Reached:          true,
		MerchantFinalize: f.cls.IsMerchantURL(l.URL) && statusOK(l.Status),
		FinalURL:         l.URL,
		HTTPStatus:       l.Status,
		Method:           method,
	}
}

// awaitMerchant запускает action и ждет первого из двух сигналов: страница перешла
// на новый адрес мерчанта или пришел сетевой ответ с таким адресом. Проигравший брошен.
func (f *Finalizer) awaitMerchant(ctx context.Context, page browser.Page, timeout time.Duration, action func() error) (landing, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	responses := make(chan browser.Response, 1)
	var done atomic.Bool
	defer done.Store(true)

	page.OnResponse(func(r browser.Response) {
		// 3xx - промежуточный шаг цепочки редиректов, итоговый статус придет следом
		if done.Load() || !f.cls.IsMerchantURL(r.URL) || isRedirect(r.Status) {
			return
		}
		select {
		case responses <- r:
		default:
		}
	})

	before := page.URL()
	if action != nil {
		if err := action(); err != nil {
			f.log.Warn("Действие финализации не выполнено", zap.Error(err))
			return landing{URL: page.URL()}, false
		}
	}

	navigated := make(chan error, 1)
	go func() {
		navigated <- page.WaitForURL(ctx, func(u string) bool {
			return u != before && f.cls.IsMerchantURL(u)
		}, timeout)
	}()

	select {
	case r := <-responses:
		return landing{URL: r.URL, Status: r.Status}, true
	case err := <-navigated:
		select {
		case r := <-responses:
			// URL мог совпасть раньше, статус берем из ответа
			u := page.URL()
			if err != nil {
				u = r.URL
			}
			return landing{URL: u, Status: r.Status}, true
		default:
		}
		if err != nil {
			return landing{URL: page.URL()}, false
		}
		return landing{URL: page.URL()}, true
	case <-ctx.Done():
		return landing{URL: page.URL()}, false
	}
}

func (f *Finalizer) Finalize(ctx context.Context, page browser.Page, req *Request) FinalizeResult {
	timeout := req.Timeout()
	log := f.log

	if f.cls.IsMerchantURL(page.URL()) {
		log.Info("Мерчант уже достигнут", zap.String("url", page.URL()))
		return f.reached(MethodAutomatic, landing{URL: page.URL()})
	}
	if l, ok := f.awaitMerchant(ctx, page, f.t.AutoFinalize, nil); ok {
		log.Info("Автоматический переход к мерчанту", zap.String("url", l.URL), zap.Int("status", l.Status))
		return f.reached(MethodAutomatic, l)
	}

	target, err := f.cat.MerchantResultURL(req.Environment, string(req.SessionID))
	if err != nil {
		log.Error("Не удалось построить адрес результата мерчанта", zap.Error(err))
		return f.lastResort(ctx, page, req)
	}
	fields := map[string]string{f.cat.SessionParam: string(req.SessionID)}

	method := MethodForcedPost
	resp, err := page.SubmitForm(ctx, browser.Form{Action: target, Method: "POST", Fields: fields}, timeout)
	if err != nil {
		log.Warn("forced-post не удался, пробуем GET", zap.Error(err))
		method = MethodForcedGet
		resp, err = page.Goto(ctx, target, timeout)
	}

	var forced *landing
	if err != nil {
		log.Warn("Принудительная навигация к мерчанту не удалась", zap.Error(err))
	} else {
		l := landing{URL: page.URL(), Status: statusOf(resp)}
		if l.URL == "" && resp != nil {
			l.URL = resp.URL
		}
		log.Info("Принудительная навигация", zap.String("method", string(method)), zap.String("url", l.URL), zap.Int("status", l.Status))

		suspicious := l.Status == 405 || (method == MethodForcedGet && l.URL == target)
		if !suspicious && f.cls.IsMerchantURL(l.URL) && statusOK(l.Status) {
			return f.reached(method, l)
		}
		forced = &l
	}

	if res, ok := f.fetchRetry(ctx, page, target, fields, timeout); ok {
		return res
	}

	if forced != nil && f.cls.IsMerchantURL(forced.URL) {
		log.Warn("Мерчант достигнут без подтверждения статуса", zap.String("url", forced.URL), zap.Int("status", forced.Status))
		return f.reached(method, *forced)
	}

	return f.lastResort(ctx, page, req)
}

func (f *Finalizer) fetchRetry(ctx context.Context, page browser.Page, target string, fields map[string]string, timeout time.Duration) (FinalizeResult, bool) {
	fr, err := page.Fetch(ctx, browser.FetchRequest{URL: target, Method: "POST", Form: fields})
	if err != nil {
		f.log.Warn("fetch-post-retry не удался", zap.Error(err))
		return FinalizeResult{}, false
	}

	preview := truncate(f.san.Sanitize(fr.Body), f.t.BodyPreviewLimit)
	f.log.Info("fetch-post-retry",
		zap.String("url", fr.URL),
		zap.Int("status", fr.Status),
		zap.Bool("redirected", fr.Redirected),
		zap.Any("headers", f.san.SanitizeFields(fr.Headers)),
		zap.String("body_preview", preview),
	)

	if !is2xx(fr.Status) {
		return FinalizeResult{}, false
	}

	if !f.cls.LooksAutoSubmitting(fr.Body) {
		if f.cls.IsMerchantURL(fr.URL) {
			return f.reached(MethodFetchPostRetry, landing{URL: fr.URL, Status: fr.Status}), true
		}
		return FinalizeResult{}, false
	}

	if l, ok := f.awaitMerchant(ctx, page, timeout, func() error {
		return page.SetContent(ctx, fr.Body)
	}); ok {
		f.log.Info("Тело ответа отправило себя само", zap.String("url", l.URL))
		return f.reached(MethodHTMLAutoSubmit, l), true
	}

	if l, ok := f.awaitMerchant(ctx, page, timeout, func() error {
		return page.DispatchForm(ctx, browser.Form{Action: target, Method: "POST", Fields: fields})
	}); ok {
		f.log.Info("Ручная форма дошла до мерчанта", zap.String("url", l.URL))
		return f.reached(MethodManualFormSubmit, l), true
	}

	return FinalizeResult{}, false
}

// lastResort уведомляет колбэк оркестратора напрямую из страницы.
// Это деградированный успех: ACS пройден, мерчант не подтвержден.
func (f *Finalizer) lastResort(ctx context.Context, page browser.Page, req *Request) FinalizeResult {
	none := FinalizeResult{Method: MethodNone, FinalURL: page.URL()}

	cb := req.Callback()
	if !cb.Enabled() {
		f.log.Warn("Финализация не удалась, колбэк не задан")
		return none
	}

	payload := map[string]any{
		"runKey":           cb.RunKey,
		"threeDSessionId":  string(req.SessionID),
		"success":          true,
		"acsSuccess":       true,
		"merchantFinalize": false,
		"source":           string(MethodManualCallback),
		"finalUrl":         page.URL(),
		"timestamp":        f.now().UTC().Format(TimestampLayout),
	}

	fr, err := page.Fetch(ctx, browser.FetchRequest{URL: f.cat.CallbackURL(cb.BaseURL), Method: "POST", JSON: payload})
	if err != nil {
		f.log.Error("manual-callback не доставлен", zap.Error(err))
		return none
	}
	if !is2xx(fr.Status) {
		f.log.Error("manual-callback отклонен", zap.Int("status", fr.Status))
		return none
	}

	f.log.Warn("Мерчант не подтвержден, оркестратор уведомлен напрямую")
	return FinalizeResult{
		Reached:    true,
		FinalURL:   page.URL(),
		HTTPStatus: fr.Status,
		Method:     MethodManualCallback,
	}
}
