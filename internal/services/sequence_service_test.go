package services

import (
	"errors"
	"testing"
	"time"

	"restaurant_pos_backend/internal/repositories"
)

// fakeCounterRepo scripts the database counter primitives and records calls.
type fakeCounterRepo struct {
	generateNumber string
	generateErr    error
	peekNumber     string
	peekErr        error

	generateCalls int
	peekCalls     int
	resetCalls    int
	resetErr      error
}

func (f *fakeCounterRepo) GenerateNumber(counter, prefix string) (string, error) {
	f.generateCalls++
	return f.generateNumber, f.generateErr
}

func (f *fakeCounterRepo) PeekNumber(counter, prefix string) (string, error) {
	f.peekCalls++
	return f.peekNumber, f.peekErr
}

func (f *fakeCounterRepo) NextSerial(executor repositories.SQLExecutor, counter string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeCounterRepo) ResetCounter(counter string) error {
	f.resetCalls++
	return f.resetErr
}

func newTestSequence(counters repositories.CounterRepository, lastNumber LastNumberFunc) *sequenceService {
	return NewSequenceService("EOD", repositories.CounterEODReport, counters, lastNumber).(*sequenceService)
}

func lastNumberNone() (string, error) {
	return "", repositories.ErrNotFound
}

func TestSequenceNextUsesCounterPrimitive(t *testing.T) {
	counters := &fakeCounterRepo{generateNumber: "EOD-0042"}
	seq := newTestSequence(counters, func() (string, error) {
		t.Fatal("last-number lookup should not run when the primitive succeeds")
		return "", nil
	})

	if got := seq.Next(); got != "EOD-0042" {
		t.Errorf("Next() = %q, want EOD-0042", got)
	}
	if counters.generateCalls != 1 {
		t.Errorf("generateCalls = %d, want 1", counters.generateCalls)
	}
}

func TestSequenceNextRejectsMalformedPrimitiveOutput(t *testing.T) {
	tests := []struct {
		name   string
		number string
	}{
		{"wrong prefix", "ORD-0042"},
		{"short suffix", "EOD-042"},
		{"long suffix", "EOD-00042"},
		{"no separator", "EOD0042"},
		{"trailing junk", "EOD-0042x"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counters := &fakeCounterRepo{generateNumber: tt.number}
			seq := newTestSequence(counters, func() (string, error) {
				return "EOD-0007", nil
			})
			if got := seq.Next(); got != "EOD-0008" {
				t.Errorf("Next() = %q, want fallback EOD-0008", got)
			}
		})
	}
}

func TestSequenceNextDerivesFromLastNumber(t *testing.T) {
	tests := []struct {
		name string
		last string
		want string
	}{
		{"simple increment", "EOD-0009", "EOD-0010"},
		{"re-pads short suffix", "EOD-7", "EOD-0008"},
		{"grows past four digits", "EOD-9999", "EOD-10000"},
		{"suffix only, odd shape", "REPORT17", "EOD-0018"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counters := &fakeCounterRepo{generateErr: errors.New("db down")}
			seq := newTestSequence(counters, func() (string, error) {
				return tt.last, nil
			})
			if got := seq.Next(); got != tt.want {
				t.Errorf("Next() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSequenceNextStartsAtOneWithNoHistory(t *testing.T) {
	counters := &fakeCounterRepo{generateErr: errors.New("db down")}
	seq := newTestSequence(counters, lastNumberNone)

	if got := seq.Next(); got != "EOD-0001" {
		t.Errorf("Next() = %q, want EOD-0001", got)
	}
}

func TestSequenceNextTimestampTier(t *testing.T) {
	counters := &fakeCounterRepo{generateErr: errors.New("db down")}

	tests := []struct {
		name       string
		lastNumber LastNumberFunc
	}{
		{"last-number lookup fails", func() (string, error) { return "", errors.New("also down") }},
		{"last number has no digits", func() (string, error) { return "EOD-????", nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := newTestSequence(counters, tt.lastNumber)
			seq.now = func() time.Time { return time.UnixMilli(1757000003456) }

			if got := seq.Next(); got != "EOD-3456" {
				t.Errorf("Next() = %q, want EOD-3456", got)
			}
		})
	}
}

func TestSequencePreviewDoesNotAdvance(t *testing.T) {
	counters := &fakeCounterRepo{peekNumber: "EOD-0042"}
	seq := newTestSequence(counters, lastNumberNone)

	if got := seq.Preview(); got != "EOD-0042" {
		t.Errorf("Preview() = %q, want EOD-0042", got)
	}
	if got := seq.Preview(); got != "EOD-0042" {
		t.Errorf("second Preview() = %q, want EOD-0042", got)
	}
	if counters.generateCalls != 0 {
		t.Errorf("Preview advanced the counter %d times", counters.generateCalls)
	}
	if counters.peekCalls != 2 {
		t.Errorf("peekCalls = %d, want 2", counters.peekCalls)
	}
}

func TestSequencePreviewFallsBackLikeNext(t *testing.T) {
	counters := &fakeCounterRepo{peekErr: errors.New("db down")}
	seq := newTestSequence(counters, func() (string, error) {
		return "EOD-0011", nil
	})

	if got := seq.Preview(); got != "EOD-0012" {
		t.Errorf("Preview() = %q, want EOD-0012", got)
	}
}
