package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Named counters backing number generation and the per-day order serial.
const (
	CounterEODReport   = "eod_report"
	CounterOrderNumber = "order_number"
	CounterDailySerial = "daily_order_serial"
)

// CounterRepository wraps the database-side number primitives. GenerateNumber
// advances the named counter; PeekNumber is its side-effect-free variant and
// must never advance anything.
type CounterRepository interface {
	GenerateNumber(counter, prefix string) (string, error)
	PeekNumber(counter, prefix string) (string, error)
	NextSerial(executor SQLExecutor, counter string) (int64, error)
	ResetCounter(counter string) error
}

type counterRepository struct {
	db *sql.DB
}

// NewCounterRepository creates a new instance of CounterRepository.
func NewCounterRepository(db *sql.DB) CounterRepository {
	return &counterRepository{db: db}
}

// GenerateNumber calls the next_counter_number database function, which
// atomically increments the counter row and returns the formatted number.
func (r *counterRepository) GenerateNumber(counter, prefix string) (string, error) {
	var number string
	err := r.db.QueryRow(`SELECT next_counter_number($1, $2)`, counter, prefix).Scan(&number)
	if err != nil {
		return "", fmt.Errorf("%w: generating number for counter %s: %v", ErrDatabaseError, counter, err)
	}
	return number, nil
}

// PeekNumber reads the number the counter would produce next without
// advancing it.
func (r *counterRepository) PeekNumber(counter, prefix string) (string, error) {
	var number string
	err := r.db.QueryRow(`SELECT peek_counter_number($1, $2)`, counter, prefix).Scan(&number)
	if err != nil {
		return "", fmt.Errorf("%w: peeking number for counter %s: %v", ErrDatabaseError, counter, err)
	}
	return number, nil
}

// NextSerial atomically increments the named counter and returns the new
// value. Used for the per-day order serial, inside the order transaction.
func (r *counterRepository) NextSerial(executor SQLExecutor, counter string) (int64, error) {
	var value int64
	err := executor.QueryRow(
		`UPDATE counters SET value = value + 1, updated_at = NOW() WHERE name = $1 RETURNING value`,
		counter,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: advancing counter %s: %v", ErrDatabaseError, counter, err)
	}
	return value, nil
}

// ResetCounter sets the named counter back to zero. Resetting an already
// reset counter is a no-op, so the call is safe to repeat.
func (r *counterRepository) ResetCounter(counter string) error {
	result, err := r.db.Exec(
		`UPDATE counters SET value = 0, updated_at = NOW() WHERE name = $1`,
		counter,
	)
	if err != nil {
		return fmt.Errorf("%w: resetting counter %s: %v", ErrDatabaseError, counter, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for counter reset %s: %v", ErrDatabaseError, counter, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
