package database

import (
	"context"

	"acsWorker/internal/automation"
)

type runSaver interface {
	Save(ctx context.Context, rec *RunRecord) error
}

// Journal пишет итоги запусков в automation_runs.
type Journal struct {
	repo runSaver
}

func NewJournal(repo *RunRepository) *Journal {
	return &Journal{repo: repo}
}

func (j *Journal) Record(ctx context.Context, req *automation.Request, res automation.Result) error {
	return j.repo.Save(ctx, NewRunRecord(req, res))
}

// NewRunRecord переносит в запись только итог; ErrorDetails уже очищен раннером.
func NewRunRecord(req *automation.Request, res automation.Result) *RunRecord {
	return &RunRecord{
		SessionID:        res.SessionID,
		RunKey:           res.RunKey,
		Environment:      req.Environment,
		Success:          res.Success,
		ACSSuccess:       res.ACSSuccess,
		MerchantFinalize: res.MerchantFinalize,
		FinalizeMethod:   string(res.FinalizeMethod),
		ResultCode:       res.ResultCode,
		ErrorType:        res.ErrorType.String(),
		Error:            res.Error,
		ErrorDetails:     res.ErrorDetails,
		FinalURL:         res.FinalURL,
		HTTPStatus:       res.HTTPStatus,
		Attempts:         res.Attempts,
		DurationMs:       res.DurationMs,
	}
}
