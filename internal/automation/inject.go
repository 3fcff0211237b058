package automation

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"

	"go.uber.org/zap"

	"acsWorker/internal/browser"
)

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>3DS</title></head>
<body>
<form id="threeDSForm" method="POST" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
</form>
<script>window.onload = function () { document.getElementById('threeDSForm').submit(); };</script>
</body>
</html>`))

type formField struct {
	Name  string
	Value string
}

// BuildForm рендерит документ с автоотправляемой формой. Значения экранирует html/template.
func BuildForm(action, sessionParam, sessionID string, fields map[string]string) (string, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name != sessionParam {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	list := make([]formField, 0, len(names)+1)
	list = append(list, formField{Name: sessionParam, Value: sessionID})
	for _, name := range names {
		list = append(list, formField{Name: name, Value: fields[name]})
	}

	var buf bytes.Buffer
	err := formTemplate.Execute(&buf, struct {
		Action template.URL
		Fields []formField
	}{Action: template.URL(action), Fields: list})
	if err != nil {
		return "", fmt.Errorf("рендер формы: %w", err)
	}
	return buf.String(), nil
}

type Injector struct {
	log *zap.Logger
}

// Inject загружает форму прямо в страницу, без сетевой навигации. Дальше страницу
// ведет сама форма; ошибка SetContent после старта отправки ожидаема и не фатальна.
func (i *Injector) Inject(ctx context.Context, page browser.Page, action, sessionParam string, req *Request) error {
	doc, err := BuildForm(action, sessionParam, string(req.SessionID), req.ContextFields())
	if err != nil {
		return err
	}

	if err := page.SetContent(ctx, doc); err != nil {
		i.log.Warn("SetContent вернул ошибку, навигация могла уже начаться", zap.Error(err))
	}
	i.log.Info("Форма 3DS отправлена", zap.String("action", action))
	return nil
}
