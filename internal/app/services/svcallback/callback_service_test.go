package svcallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcb/internal/entity"
	"dcb/internal/model"
)

type fakeReportStore struct {
	report        *entity.AnalysisReport
	getErr        error
	updateErr     error
	updateCalled  bool
	updatedStatus string
	updatedError  string
}

func (f *fakeReportStore) GetReportByID(_ context.Context, _ string) (*entity.AnalysisReport, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.report, nil
}

func (f *fakeReportStore) UpdateAnalysisResult(_ context.Context, _ string, _ *model.AnalysisResultData, status string, errorMsg string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updateCalled = true
	f.updatedStatus = status
	f.updatedError = errorMsg
	return nil
}

type noopLogger struct{}

func (noopLogger) Debugf(context.Context, string, ...interface{}) {}
func (noopLogger) Infof(context.Context, string, ...interface{})  {}
func (noopLogger) Warnf(context.Context, string, ...interface{})  {}
func (noopLogger) Errorf(context.Context, string, ...interface{}) {}
func (noopLogger) Sync() error                                    { return nil }

func TestHandleCallbackIdempotentSkip(t *testing.T) {
	store := &fakeReportStore{
		report: &entity.AnalysisReport{ID: "rpt-1", Status: entity.ReportStatusAnalyzed},
	}
	svc := NewCallbackService(store, noopLogger{})

	callback := &model.DepotAnalyzeCallback{
		ReportID: "rpt-1",
		Status:   model.CallbackStatusSuccess,
	}
	require.NoError(t, svc.HandleCallback(context.Background(), callback))
	assert.False(t, store.updateCalled)
}

func TestHandleCallbackReconcilesStaleReport(t *testing.T) {
	// worker 落库后崩溃、状态停留在 ANALYZING，回调重投触发对账
	store := &fakeReportStore{
		report: &entity.AnalysisReport{ID: "rpt-1", Status: entity.ReportStatusAnalyzing},
	}
	svc := NewCallbackService(store, noopLogger{})

	callback := &model.DepotAnalyzeCallback{
		ReportID:       "rpt-1",
		Status:         model.CallbackStatusSuccess,
		AnalysisResult: &model.AnalysisResultData{},
	}
	require.NoError(t, svc.HandleCallback(context.Background(), callback))
	assert.True(t, store.updateCalled)
	assert.Equal(t, entity.ReportStatusAnalyzed, store.updatedStatus)
}

func TestHandleCallbackFailedStatus(t *testing.T) {
	store := &fakeReportStore{
		report: &entity.AnalysisReport{ID: "rpt-2", Status: entity.ReportStatusAnalyzing},
	}
	svc := NewCallbackService(store, noopLogger{})

	callback := &model.DepotAnalyzeCallback{
		ReportID: "rpt-2",
		Status:   model.CallbackStatusFailed,
		Error:    "no metrics found for depot 7634 on 2026-08-31",
	}
	require.NoError(t, svc.HandleCallback(context.Background(), callback))
	assert.Equal(t, entity.ReportStatusFailed, store.updatedStatus)
	assert.Contains(t, store.updatedError, "no metrics found")
}

func TestHandleCallbackStoreErrors(t *testing.T) {
	svc := NewCallbackService(&fakeReportStore{getErr: errors.New("record not found")}, noopLogger{})
	err := svc.HandleCallback(context.Background(), &model.DepotAnalyzeCallback{ReportID: "rpt-x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get report failed")

	store := &fakeReportStore{
		report:    &entity.AnalysisReport{ID: "rpt-1", Status: entity.ReportStatusAnalyzing},
		updateErr: errors.New("connection reset"),
	}
	svc = NewCallbackService(store, noopLogger{})
	err = svc.HandleCallback(context.Background(), &model.DepotAnalyzeCallback{
		ReportID: "rpt-1",
		Status:   model.CallbackStatusSuccess,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconcile report failed")
}
