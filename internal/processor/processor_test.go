package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-control-backend/internal/alert"
	"quality-control-backend/internal/store"
)

// fakeStore implements only the pipeline method the processor exercises.
type fakeStore struct {
	store.Store
	result *store.SubmissionResult
	err    error
	got    store.Submission
}

func (f *fakeStore) ProcessSubmission(_ context.Context, sub store.Submission) (*store.SubmissionResult, error) {
	f.got = sub
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestProcessDispatchesAlerts(t *testing.T) {
	fs := &fakeStore{result: &store.SubmissionResult{
		SubmissionID: "batch-1",
		Persisted:    3,
		Alerts: []store.MoldAlert{
			{MoldID: 7, Health: store.HealthDueSoon},
		},
	}}
	pool := alert.NewWorkerPool(4, nil, &webpush.Options{})
	svc := NewService(fs, pool)

	result, err := svc.Process(context.Background(), store.Submission{MachineNumber: "M-01"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Persisted)
	assert.Equal(t, "M-01", fs.got.MachineNumber)

	select {
	case a := <-pool.Jobs():
		assert.Equal(t, int64(7), a.MoldID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for alert dispatch")
	}
}

func TestProcessPropagatesError(t *testing.T) {
	fs := &fakeStore{err: store.ErrDuplicateSubmission}
	svc := NewService(fs, nil)

	_, err := svc.Process(context.Background(), store.Submission{})
	assert.ErrorIs(t, err, store.ErrDuplicateSubmission)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		err  error
		want ErrorKind
	}{
		{store.ErrEmptyBatch, KindValidation},
		{store.ErrInvalidCount, KindValidation},
		{store.ErrMissingMachine, KindValidation},
		{store.ErrMissingInspector, KindValidation},
		{store.ErrInvalidThreshold, KindValidation},
		{store.ErrDuplicateSubmission, KindDuplicate},
		{store.ErrProductNotFound, KindNotFound},
		{store.ErrMoldNotFound, KindNotFound},
		{store.ErrMaintenanceNotFound, KindNotFound},
		{store.ErrReworkNotFound, KindNotFound},
		{fmt.Errorf("wrapped: %w", store.ErrDuplicateSubmission), KindDuplicate},
		{errors.New("connection reset"), KindInternal},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, Classify(tc.err), tc.err.Error())
	}
}
