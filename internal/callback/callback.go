// Package callback доставляет итог запуска на вебхук оркестратора.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"acsWorker/internal/automation"
)

const bodyPreviewLimit = 300

type Notifier struct {
	client *http.Client
	log    *zap.Logger
}

func New(timeout time.Duration, log *zap.Logger) *Notifier {
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Notify шлет Result одним POST без повторов. Не-2xx считается ошибкой.
func (n *Notifier) Notify(ctx context.Context, url string, res automation.Result) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("сериализация результата: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if res.RunKey != "" {
		req.Header.Set("X-Run-Key", res.RunKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(resp.Body, bodyPreviewLimit))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: статус %d: %s", url, resp.StatusCode, bytes.TrimSpace(preview))
	}

	n.log.Debug("Ответ колбэка", zap.Int("status", resp.StatusCode))
	return nil
}
