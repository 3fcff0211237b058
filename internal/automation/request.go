package automation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultTimeout = 25 * time.Second
	minTimeout     = time.Second
	maxTimeout     = 120 * time.Second
)

// Field принимает из JSON строку, число или bool и хранит как строку:
// оркестратор шлет amount то числом, то строкой.
type Field string

func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.(type) {
	case float64, bool:
		*f = Field(string(data))
		return nil
	}
	return fmt.Errorf("ожидалось скалярное значение, получено %s", string(data))
}

type Callback struct {
	BaseURL string
	RunKey  string
}

// Enabled: результат отправляется, только если заданы оба поля.
func (c Callback) Enabled() bool {
	return c.BaseURL != "" && c.RunKey != ""
}

// Request - тело POST /simulate-3d.
type Request struct {
	SessionID Field `json:"threeDSessionId" validate:"required"`
	OTP       Field `json:"otp" validate:"required"`

	CardNumber      Field `json:"cardnumber"`
	CardExpireMonth Field `json:"cardexpiredatemonth"`
	CardExpireYear  Field `json:"cardexpiredateyear"`
	CardCVV         Field `json:"cardCVV"`
	Amount          Field `json:"amount"`
	CardHolderName  Field `json:"cardholdername"`
	PIN             Field `json:"pin"`
	UserCode        Field `json:"userCode"`

	ChallengeSelector string `json:"challengeSelector"`
	SubmitSelector    string `json:"submitSelector"`
	SuccessPattern    string `json:"successPattern"`

	RunKey       string `json:"runKey"`
	CallbackBase string `json:"n8nCallbackBase" validate:"omitempty,url"`
	Environment  string `json:"environment" validate:"omitempty,oneof=stb prp prod"`

	TimeoutMs int   `json:"timeoutMs" validate:"gte=0"`
	Finalize  *bool `json:"finalize"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize обрезает пробелы и проставляет значения по умолчанию.
func (r *Request) Normalize() {
	r.SessionID = Field(strings.TrimSpace(string(r.SessionID)))
	r.OTP = Field(strings.TrimSpace(string(r.OTP)))
	r.ChallengeSelector = strings.TrimSpace(r.ChallengeSelector)
	r.SubmitSelector = strings.TrimSpace(r.SubmitSelector)
	r.SuccessPattern = strings.TrimSpace(r.SuccessPattern)
	r.RunKey = strings.TrimSpace(r.RunKey)
	r.CallbackBase = strings.TrimSpace(r.CallbackBase)
	r.Environment = strings.ToLower(strings.TrimSpace(r.Environment))
	if r.Environment == "" {
		r.Environment = "stb"
	}
}

// Validate возвращает первую ошибку в виде "<поле> is required".
func (r *Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Errorf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

func (r *Request) Timeout() time.Duration {
	if r.TimeoutMs <= 0 {
		return DefaultTimeout
	}
	d := time.Duration(r.TimeoutMs) * time.Millisecond
	if d < minTimeout {
		return minTimeout
	}
	if d > maxTimeout {
		return maxTimeout
	}
	return d
}

func (r *Request) FinalizeEnabled() bool {
	return r.Finalize == nil || *r.Finalize
}

func (r *Request) Callback() Callback {
	return Callback{BaseURL: r.CallbackBase, RunKey: r.RunKey}
}

// ContextFields - поля, которые уходят в банковскую форму как есть.
func (r *Request) ContextFields() map[string]string {
	return map[string]string{
		"cardnumber":          string(r.CardNumber),
		"cardexpiredatemonth": string(r.CardExpireMonth),
		"cardexpiredateyear":  string(r.CardExpireYear),
		"cardCVV":             string(r.CardCVV),
		"amount":              string(r.Amount),
		"cardholdername":      string(r.CardHolderName),
		"pin":                 string(r.PIN),
		"userCode":            string(r.UserCode),
	}
}

// Secrets - значения, которые не должны попасть в логи.
func (r *Request) Secrets() []string {
	return []string{string(r.CardNumber), string(r.CardCVV), string(r.OTP), string(r.PIN)}
}
