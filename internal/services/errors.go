package services

import "errors"

// Service-level sentinel errors. Handlers translate these into HTTP
// responses; repositories never see them.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamFetch       = errors.New("order source unavailable")
	ErrInternalConsistency = errors.New("report failed internal consistency check")
	ErrPersistence         = errors.New("report persistence failed")
	ErrReportNotFound      = errors.New("report not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
)
