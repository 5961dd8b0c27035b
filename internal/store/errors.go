package store

import "errors"

// Sentinel errors for the submission pipeline. Handlers map these onto HTTP
// statuses with errors.Is.
var (
	ErrEmptyBatch          = errors.New("submission contains no readings")
	ErrInvalidCount        = errors.New("count must be a positive integer")
	ErrMissingMachine      = errors.New("machine number is required")
	ErrMissingInspector    = errors.New("inspector is required")
	ErrDuplicateSubmission = errors.New("likely duplicate submission")
	ErrProductNotFound     = errors.New("product not found")
	ErrMoldNotFound        = errors.New("mold not found")
	ErrProductExists       = errors.New("product with this name and drawing number already exists")
	ErrMaintenanceNotFound = errors.New("maintenance record not found")
	ErrReworkNotFound      = errors.New("rework record not found")
	ErrInvalidThreshold    = errors.New("maintenance threshold must be a positive integer")
)
