package processor

import (
	"context"
	"errors"
	"log"

	"quality-control-backend/internal/alert"
	"quality-control-backend/internal/store"
)

// Service is the production event processor: it runs the submission pipeline
// through the store and fans resulting maintenance alerts out to the worker
// pool. Each submission is handled synchronously within its request.
type Service struct {
	store  store.Store
	alerts *alert.WorkerPool
}

// NewService creates a new production event processor.
func NewService(s store.Store, alerts *alert.WorkerPool) *Service {
	return &Service{store: s, alerts: alerts}
}

// Process handles one measurement submission end to end. The store runs the
// whole sequence in a single transaction, so an error here means nothing was
// persisted.
func (s *Service) Process(ctx context.Context, sub store.Submission) (*store.SubmissionResult, error) {
	result, err := s.store.ProcessSubmission(ctx, sub)
	if err != nil {
		if Classify(err) == KindInternal {
			log.Printf("Submission for machine %s failed: %v", sub.MachineNumber, err)
		}
		return nil, err
	}

	log.Printf("Persisted %d measurements for machine %s (submission %s)",
		result.Persisted, sub.MachineNumber, result.SubmissionID)

	if s.alerts != nil {
		for _, a := range result.Alerts {
			s.alerts.Dispatch(a)
		}
	}
	return result, nil
}

// ErrorKind buckets pipeline errors for the boundary layer.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindDuplicate  ErrorKind = "duplicate"
	KindNotFound   ErrorKind = "not_found"
	KindInternal   ErrorKind = "internal"
)

// Classify maps a pipeline error onto its kind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, store.ErrEmptyBatch),
		errors.Is(err, store.ErrInvalidCount),
		errors.Is(err, store.ErrMissingMachine),
		errors.Is(err, store.ErrMissingInspector),
		errors.Is(err, store.ErrInvalidThreshold):
		return KindValidation
	case errors.Is(err, store.ErrDuplicateSubmission):
		return KindDuplicate
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrMoldNotFound),
		errors.Is(err, store.ErrMaintenanceNotFound),
		errors.Is(err, store.ErrReworkNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
