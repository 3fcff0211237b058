package automation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"acsWorker/internal/browser"
	"acsWorker/internal/catalog"
	"acsWorker/internal/classifier"
	"acsWorker/internal/sanitizer"
)

// Notifier доставляет итог на колбэк оркестратора.
type Notifier interface {
	Notify(ctx context.Context, url string, res Result) error
}

// Recorder пишет итог в журнал запусков.
type Recorder interface {
	Record(ctx context.Context, req *Request, res Result) error
}

type Deps struct {
	Launcher  browser.Launcher
	Catalog   *catalog.Catalog
	Notifier  Notifier
	Recorder  Recorder
	Sanitizer *sanitizer.DataSanitizer
	Log       *zap.Logger
	Timings   *Timings
	Now       func() time.Time
}

type Runner struct {
	launcher browser.Launcher
	cat      *catalog.Catalog
	cls      *classifier.Classifier
	notifier Notifier
	recorder Recorder
	san      *sanitizer.DataSanitizer
	log      *zap.Logger
	t        Timings
	now      func() time.Time
}

func NewRunner(d Deps) *Runner {
	r := &Runner{
		launcher: d.Launcher,
		cat:      d.Catalog,
		notifier: d.Notifier,
		recorder: d.Recorder,
		san:      d.Sanitizer,
		log:      d.Log,
		t:        DefaultTimings(),
		now:      d.Now,
	}
	if d.Timings != nil {
		r.t = *d.Timings
	}
	if r.san == nil {
		r.san = sanitizer.New()
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.cls = classifier.New(classifier.Table{
		ErrorKeywords:   r.cat.Keywords.Error,
		SuccessKeywords: r.cat.Keywords.Success,
		SuccessURL:      r.cat.Markers.SuccessURL,
		ChallengeHost:   r.cat.Markers.ChallengeHost,
		ChallengeURL:    r.cat.Markers.ChallengeURL,
		Merchant:        r.cat.Markers.Merchant,
		ErrorTitle:      r.cat.Markers.ErrorTitle,
		AutoSubmit:      r.cat.Markers.AutoSubmit,
	})
	return r
}

// Run выполняет один запрос целиком и всегда возвращает Result.
// req должен быть нормализован и провалидирован вызывающим.
func (r *Runner) Run(ctx context.Context, req *Request) Result {
	started := r.now()
	log := r.log.With(
		zap.String("session_id", string(req.SessionID)),
		zap.String("run_key", req.RunKey),
		zap.String("environment", req.Environment),
	)
	if id := RequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	san := r.san.WithSecrets(req.Secrets()...)

	o := r.perform(ctx, req, log, san)
	res := o.result(req, started, r.now())
	res.ErrorDetails = sanitizer.Literals(req.Secrets()...).Sanitize(res.ErrorDetails)

	log.Info("Автоматизация завершена",
		zap.Bool("success", res.Success),
		zap.Bool("acs_success", res.ACSSuccess),
		zap.Bool("merchant_finalize", res.MerchantFinalize),
		zap.String("finalize_method", string(res.FinalizeMethod)),
		zap.String("error", res.Error),
		zap.Int("result_code", res.ResultCode),
		zap.Int64("duration_ms", res.DurationMs),
	)

	r.report(ctx, req, res, log)
	return res
}

func (r *Runner) report(ctx context.Context, req *Request, res Result, log *zap.Logger) {
	// отчет не должен зависеть от того, жив ли еще вызывающий
	ctx = context.WithoutCancel(ctx)

	if cb := req.Callback(); cb.Enabled() && r.notifier != nil {
		url := r.cat.CallbackURL(cb.BaseURL)
		if err := r.notifier.Notify(ctx, url, res); err != nil {
			log.Error("Колбэк не доставлен", zap.String("callback_url", url), zap.Error(err))
		} else {
			log.Info("Колбэк доставлен", zap.String("callback_url", url))
		}
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, req, res); err != nil {
			log.Error("Запись в журнал не удалась", zap.Error(err))
		}
	}
}

func (r *Runner) perform(ctx context.Context, req *Request, log *zap.Logger, san *sanitizer.DataSanitizer) (o outcome) {
	sess, err := r.launcher.Acquire(ctx)
	if err != nil {
		log.Error("Браузер не запустился", zap.Error(err))
		o.failure = &StageError{Kind: KindLaunch, Message: ErrLaunchFailed, Details: err.Error(), Err: err}
		return o
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("Ошибка закрытия браузера", zap.Error(err))
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			log.Error("Непредвиденная ошибка автоматизации", zap.Any("panic", p), zap.Stack("stack"))
			o.failure = &StageError{Kind: KindException, Message: fmt.Sprint(p)}
		}
	}()

	page := sess.Page()
	page.OnResponse(r.bankResponseLogger(log, san))

	return r.pipeline(ctx, page, req, log, san)
}

func (r *Runner) bankResponseLogger(log *zap.Logger, san *sanitizer.DataSanitizer) func(browser.Response) {
	return func(resp browser.Response) {
		if !r.cls.IsChallengeURL(resp.URL) && !r.cls.IsMerchantURL(resp.URL) {
			return
		}
		log.Debug("Ответ банка", zap.String("url", san.Sanitize(resp.URL)), zap.Int("status", resp.Status))
	}
}

func (r *Runner) pipeline(ctx context.Context, page browser.Page, req *Request, log *zap.Logger, san *sanitizer.DataSanitizer) outcome {
	var o outcome

	action, err := r.cat.InitiationURL(req.Environment)
	if err != nil {
		o.failure = &StageError{Kind: KindValidation, Message: err.Error(), Err: err}
		return o
	}

	startURL := page.URL()
	injector := &Injector{log: log}
	if err := injector.Inject(ctx, page, action, r.cat.SessionParam, req); err != nil {
		o.failure = &StageError{Kind: KindException, Message: err.Error(), Err: err}
		return o
	}

	nav := (&Navigator{cls: r.cls, t: r.t, log: log, san: san}).Acquire(ctx, page, startURL, action)
	o.finalURL = nav.CurrentURL
	o.attempts = nav.Attempts

	if nav.ErrorPage {
		o.failure = &StageError{Kind: KindErrorPage, Message: nav.Title, Details: "3DS host rendered an error page at " + nav.CurrentURL}
		return o
	}
	if !nav.Reached {
		details := strings.TrimSpace(nav.LastError + "\n" + nav.Snapshot)
		o.failure = &StageError{Kind: KindNavigation, Message: ErrNoChallengePage, Details: details}
		return o
	}

	found := (&Discoverer{cat: r.cat, t: r.t, log: log}).Discover(ctx, page, req)
	challenger := &Challenger{cat: r.cat, cls: r.cls, t: r.t, log: log}

	var ch ChallengeResult
	switch {
	case found.OTPSelector != "":
		ch = challenger.Complete(ctx, page, found, req)
	case challenger.PatternPresent(ctx, page, req.SuccessPattern):
		log.Info("Поле OTP не найдено, но шаблон успеха уже на странице")
		ch = ChallengeResult{ACSSuccess: true, FinalURL: page.URL()}
	default:
		o.finalURL = page.URL()
		o.failure = &StageError{Kind: KindDiscovery, Message: ErrNoOTPInput}
		return o
	}

	o.finalURL = ch.FinalURL
	if !ch.ACSSuccess {
		o.failure = &StageError{Kind: KindChallengeNotConfirmed, Message: ch.Reason, Details: ch.ErrorText}
		return o
	}
	o.acs = true

	if !req.FinalizeEnabled() {
		return o
	}

	fin := (&Finalizer{cat: r.cat, cls: r.cls, t: r.t, log: log, san: san, now: r.now}).Finalize(ctx, page, req)
	o.finalize = &fin
	if !fin.Reached {
		o.failure = &StageError{Kind: KindFinalize, Message: ErrMerchantFinalize, Details: "ACS passed, merchant result endpoint not reached"}
	}
	return o
}
