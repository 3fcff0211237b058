package automation

import (
	"fmt"
	"time"
)

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindLaunch
	KindNavigation
	KindErrorPage
	KindDiscovery
	KindChallengeNotConfirmed
	KindFinalize
	KindException
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindLaunch:
		return "launch"
	case KindNavigation:
		return "navigation"
	case KindErrorPage:
		return "error_page"
	case KindDiscovery:
		return "discovery"
	case KindChallengeNotConfirmed:
		return "challenge_not_confirmed"
	case KindFinalize:
		return "finalize"
	case KindException:
		return "exception"
	default:
		return ""
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	CodeOK          = 0
	CodeSoftFailure = 1
	CodeException   = 500
)

const (
	ErrNoChallengePage     = "No challenge page reached"
	ErrNoOTPInput          = "No OTP input found"
	ErrSuccessNotConfirmed = "Success not confirmed"
	ErrOTPEntryFailed      = "OTP entry failed"
	ErrMerchantFinalize    = "Merchant finalize failed"
	ErrLaunchFailed        = "Browser launch failed"
)

type FinalizeMethod string

const (
	MethodAutomatic        FinalizeMethod = "automatic"
	MethodForcedPost       FinalizeMethod = "forced-post"
	MethodForcedGet        FinalizeMethod = "forced-get"
	MethodFetchPostRetry   FinalizeMethod = "fetch-post-retry"
	MethodHTMLAutoSubmit   FinalizeMethod = "html-auto-submit"
	MethodManualFormSubmit FinalizeMethod = "manual-form-submit"
	MethodManualCallback   FinalizeMethod = "manual-callback"
	MethodNone             FinalizeMethod = "none"
)

type NavigationOutcome struct {
	Reached    bool
	ErrorPage  bool
	Title      string
	CurrentURL string
	Attempts   int
	LastError  string
	Snapshot   string
}

type DiscoveredElements struct {
	OTPSelector    string
	SubmitSelector string
}

type ChallengeResult struct {
	ACSSuccess bool
	FinalURL   string
	Reason     string
	ErrorText  string
}

// FinalizeResult. Reached - какой-то путь дошел до мерчанта или уведомил его;
// MerchantFinalize - адрес мерчанта достигнут со статусом 2xx (или статус неизвестен).
type FinalizeResult struct {
	Reached          bool
	MerchantFinalize bool
	FinalURL         string
	HTTPStatus       int
	Method           FinalizeMethod
}

// Result - итог одного запроса. Собирается один раз и дальше не меняется.
type Result struct {
	Success      bool      `json:"success"`
	FinalURL     string    `json:"finalUrl"`
	Error        string    `json:"error,omitempty"`
	ErrorDetails string    `json:"errorDetails,omitempty"`
	ErrorType    ErrorKind `json:"errorType,omitempty"`
	ResultCode   int       `json:"resultCode"`
	Timestamp    string    `json:"timestamp"`

	SessionID        string         `json:"sessionId"`
	RunKey           string         `json:"runKey,omitempty"`
	ACSSuccess       bool           `json:"acsSuccess"`
	MerchantFinalize bool           `json:"merchantFinalize"`
	FinalizeMethod   FinalizeMethod `json:"finalizeMethod,omitempty"`
	HTTPStatus       int            `json:"httpStatus,omitempty"`
	Attempts         int            `json:"attempts,omitempty"`
	DurationMs       int64          `json:"durationMs"`
}

// StageError переносит классифицированный отказ этапа до раннера.
type StageError struct {
	Kind    ErrorKind
	Message string
	Details string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Code() int {
	switch e.Kind {
	case KindLaunch, KindException:
		return CodeException
	default:
		return CodeSoftFailure
	}
}

// TimestampLayout - ISO-8601 с миллисекундами, как в ответах оркестратора.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// outcome накапливает то, что этапы успели узнать, до сборки Result.
type outcome struct {
	finalURL string
	attempts int
	acs      bool
	finalize *FinalizeResult
	failure  *StageError
}

func (o outcome) result(req *Request, started, now time.Time) Result {
	res := Result{
		FinalURL:   o.finalURL,
		Timestamp:  now.UTC().Format(TimestampLayout),
		SessionID:  string(req.SessionID),
		RunKey:     req.RunKey,
		ACSSuccess: o.acs,
		Attempts:   o.attempts,
		DurationMs: now.Sub(started).Milliseconds(),
	}

	if o.finalize != nil {
		res.MerchantFinalize = o.finalize.MerchantFinalize
		res.FinalizeMethod = o.finalize.Method
		res.HTTPStatus = o.finalize.HTTPStatus
		if o.finalize.FinalURL != "" {
			res.FinalURL = o.finalize.FinalURL
		}
	}

	if o.failure != nil {
		res.Success = false
		res.Error = o.failure.Message
		res.ErrorDetails = o.failure.Details
		res.ErrorType = o.failure.Kind
		res.ResultCode = o.failure.Code()
		return res
	}

	res.Success = true
	res.ResultCode = CodeOK
	return res
}
