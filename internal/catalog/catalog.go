// Package catalog хранит все банковские литералы: хосты окружений, пути,
// списки селекторов и маркеры URL. Код пайплайна литералов не содержит.
package catalog

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Environment struct {
	BankHost     string `yaml:"bankHost"`
	MerchantHost string `yaml:"merchantHost"`
}

type Paths struct {
	Initiation     string `yaml:"initiation"`
	MerchantResult string `yaml:"merchantResult"`
	Callback       string `yaml:"callback"`
}

type Selectors struct {
	OTP    []string `yaml:"otp"`
	Submit []string `yaml:"submit"`
	Error  []string `yaml:"error"`
}

type Markers struct {
	ChallengeHost []string `yaml:"challengeHost"`
	ChallengeURL  []string `yaml:"challengeURL"`
	SuccessURL    []string `yaml:"successURL"`
	Merchant      []string `yaml:"merchant"`
	ErrorTitle    []string `yaml:"errorTitle"`
	AutoSubmit    []string `yaml:"autoSubmit"`
}

type Keywords struct {
	Error   []string `yaml:"error"`
	Success []string `yaml:"success"`
}

type Catalog struct {
	Environments map[string]Environment `yaml:"environments"`
	Paths        Paths                  `yaml:"paths"`
	SessionParam string                 `yaml:"sessionParam"`
	Selectors    Selectors              `yaml:"selectors"`
	Markers      Markers                `yaml:"markers"`
	Keywords     Keywords               `yaml:"keywords"`
}

// Default возвращает встроенный каталог.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("разбор каталога: %w", err)
	}
	return &c, nil
}

// Load читает встроенный каталог и накладывает поверх него файл path, если он задан.
func Load(path string) (*Catalog, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, base.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение каталога %s: %w", path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}

	base.Merge(override)
	return base, base.Validate()
}

// Merge заменяет разделы c непустыми разделами o. Списки не склеиваются:
// порядок кандидатов значим, и оператор задает его целиком.
func (c *Catalog) Merge(o *Catalog) {
	for name, env := range o.Environments {
		if c.Environments == nil {
			c.Environments = map[string]Environment{}
		}
		c.Environments[name] = env
	}
	if o.Paths.Initiation != "" {
		c.Paths.Initiation = o.Paths.Initiation
	}
	if o.Paths.MerchantResult != "" {
		c.Paths.MerchantResult = o.Paths.MerchantResult
	}
	if o.Paths.Callback != "" {
		c.Paths.Callback = o.Paths.Callback
	}
	if o.SessionParam != "" {
		c.SessionParam = o.SessionParam
	}

	replace(&c.Selectors.OTP, o.Selectors.OTP)
	replace(&c.Selectors.Submit, o.Selectors.Submit)
	replace(&c.Selectors.Error, o.Selectors.Error)
	replace(&c.Markers.ChallengeHost, o.Markers.ChallengeHost)
	replace(&c.Markers.ChallengeURL, o.Markers.ChallengeURL)
	replace(&c.Markers.SuccessURL, o.Markers.SuccessURL)
	replace(&c.Markers.Merchant, o.Markers.Merchant)
	replace(&c.Markers.ErrorTitle, o.Markers.ErrorTitle)
	replace(&c.Markers.AutoSubmit, o.Markers.AutoSubmit)
	replace(&c.Keywords.Error, o.Keywords.Error)
	replace(&c.Keywords.Success, o.Keywords.Success)
}

func replace(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

func (c *Catalog) Validate() error {
	for name, env := range c.Environments {
		if _, err := url.ParseRequestURI(env.BankHost); err != nil {
			return fmt.Errorf("окружение %s: некорректный bankHost: %w", name, err)
		}
		if _, err := url.ParseRequestURI(env.MerchantHost); err != nil {
			return fmt.Errorf("окружение %s: некорректный merchantHost: %w", name, err)
		}
	}
	if c.Paths.Initiation == "" || c.Paths.MerchantResult == "" || c.Paths.Callback == "" {
		return fmt.Errorf("каталог: пути initiation, merchantResult и callback обязательны")
	}
	if c.SessionParam == "" {
		return fmt.Errorf("каталог: sessionParam обязателен")
	}
	return nil
}

// Env возвращает окружение по имени; пустое имя означает stb.
func (c *Catalog) Env(name string) (Environment, error) {
	if name == "" {
		name = "stb"
	}
	env, ok := c.Environments[strings.ToLower(name)]
	if !ok {
		return Environment{}, fmt.Errorf("неизвестное окружение %q", name)
	}
	return env, nil
}

func (c *Catalog) InitiationURL(env string) (string, error) {
	e, err := c.Env(env)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(e.BankHost, "/") + c.Paths.Initiation, nil
}

// MerchantResultURL строит адрес результата мерчанта с идентификатором сессии в query.
func (c *Catalog) MerchantResultURL(env, sessionID string) (string, error) {
	e, err := c.Env(env)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set(c.SessionParam, sessionID)
	return strings.TrimRight(e.MerchantHost, "/") + c.Paths.MerchantResult + "?" + q.Encode(), nil
}

func (c *Catalog) CallbackURL(base string) string {
	return strings.TrimRight(base, "/") + c.Paths.Callback
}
