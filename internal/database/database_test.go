package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acsWorker/internal/automation"
	"acsWorker/internal/config"
)

func TestDSN_EscapesPassword(t *testing.T) {
	dsn := DSN(config.Database{Host: "db", Port: "5432", Name: "acs", User: "worker", Password: "p@ss/w:rd"})
	assert.Equal(t, "postgres://worker:p%40ss%2Fw%3Ard@db:5432/acs?sslmode=disable", dsn)
}

func TestNewRunRecord(t *testing.T) {
	req := &automation.Request{SessionID: "S1", OTP: "123456", CardNumber: "4543600299100712", Environment: "prp"}
	res := automation.Result{
		Success:        false,
		SessionID:      "S1",
		RunKey:         "run-1",
		ACSSuccess:     true,
		FinalizeMethod: automation.MethodNone,
		ResultCode:     automation.CodeSoftFailure,
		ErrorType:      automation.KindFinalize,
		Error:          automation.ErrMerchantFinalize,
		FinalURL:       "https://acs.example/result",
		Attempts:       2,
		DurationMs:     4200,
	}

	rec := NewRunRecord(req, res)

	assert.Equal(t, "S1", rec.SessionID)
	assert.Equal(t, "run-1", rec.RunKey)
	assert.Equal(t, "prp", rec.Environment)
	assert.True(t, rec.ACSSuccess)
	assert.Equal(t, "none", rec.FinalizeMethod)
	assert.Equal(t, "finalize", rec.ErrorType)
	assert.Equal(t, int64(4200), rec.DurationMs)
	assert.Equal(t, "automation_runs", rec.TableName())
}

type saverFunc func(ctx context.Context, rec *RunRecord) error

func (f saverFunc) Save(ctx context.Context, rec *RunRecord) error { return f(ctx, rec) }

func TestJournal_Record(t *testing.T) {
	var saved *RunRecord
	j := &Journal{repo: saverFunc(func(_ context.Context, rec *RunRecord) error {
		saved = rec
		return nil
	})}

	err := j.Record(context.Background(), &automation.Request{Environment: "stb"}, automation.Result{SessionID: "S1", Success: true})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.Success)
	assert.Empty(t, saved.ErrorType)
}

func TestJournal_PropagatesError(t *testing.T) {
	j := &Journal{repo: saverFunc(func(context.Context, *RunRecord) error { return errors.New("db down") })}

	err := j.Record(context.Background(), &automation.Request{}, automation.Result{})
	assert.EqualError(t, err, "db down")
}
