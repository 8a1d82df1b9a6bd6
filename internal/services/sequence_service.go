package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/pkg/utils"
)

// SequenceProvider mints sequential display numbers such as "EOD-0042" or
// "ORD-0137". Three tiers are tried in order, first success wins:
//
//  1. the database counter primitive, accepted only when the result matches
//     PREFIX-dddd exactly;
//  2. the numeric suffix of the last issued number, incremented and
//     re-padded (starts at 1 when no prior number exists);
//  3. the last four digits of the current Unix-millisecond timestamp.
//
// Tier 3 cannot fail, so Next never returns an error — but it also cannot
// guarantee uniqueness under collision, and concurrent tier-2 derivations can
// produce the same number. Both weaknesses are accepted; callers that need a
// hard guarantee must rely on the tier-1 primitive being available.
type SequenceProvider interface {
	Next() string
	Preview() string
}

// LastNumberFunc returns the most recently issued number, or
// repositories.ErrNotFound when none exists yet.
type LastNumberFunc func() (string, error)

var numberSuffixPattern = regexp.MustCompile(`(\d+)$`)

type sequenceService struct {
	prefix     string
	counter    string
	counters   repositories.CounterRepository
	lastNumber LastNumberFunc
	pattern    *regexp.Regexp
	now        func() time.Time
}

// NewSequenceService creates a provider for one counter. prefix is the
// display prefix ("EOD", "ORD"); counter names the backing counter row.
func NewSequenceService(prefix, counter string, counters repositories.CounterRepository, lastNumber LastNumberFunc) SequenceProvider {
	return &sequenceService{
		prefix:     prefix,
		counter:    counter,
		counters:   counters,
		lastNumber: lastNumber,
		pattern:    regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-\d{4}$`),
		now:        time.Now,
	}
}

// Next returns the next number, advancing the backing counter when the
// database primitive is reachable.
func (s *sequenceService) Next() string {
	number, err := s.counters.GenerateNumber(s.counter, s.prefix)
	if err == nil && s.pattern.MatchString(number) {
		return number
	}
	if err != nil {
		utils.LogWarn("Sequence: counter primitive unavailable, falling back", map[string]interface{}{
			"counter": s.counter, "error": err.Error(),
		})
	} else {
		utils.LogWarn("Sequence: counter primitive returned malformed number, falling back", map[string]interface{}{
			"counter": s.counter, "number": number,
		})
	}
	if n, ok := s.fromLastNumber(); ok {
		return n
	}
	return s.fromTimestamp()
}

// Preview returns the number the next call to Next would most likely
// produce, without advancing the counter. The fallback tiers only read, so
// they are naturally side-effect-free.
func (s *sequenceService) Preview() string {
	number, err := s.counters.PeekNumber(s.counter, s.prefix)
	if err == nil && s.pattern.MatchString(number) {
		return number
	}
	if n, ok := s.fromLastNumber(); ok {
		return n
	}
	return s.fromTimestamp()
}

// fromLastNumber derives the next number from the most recent issued one:
// extract the numeric suffix, increment, re-pad to 4 digits. With no prior
// number the sequence starts at 1.
func (s *sequenceService) fromLastNumber() (string, bool) {
	last, err := s.lastNumber()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Sprintf("%s-%04d", s.prefix, 1), true
		}
		utils.LogWarn("Sequence: last-number lookup failed, falling back", map[string]interface{}{
			"counter": s.counter, "error": err.Error(),
		})
		return "", false
	}
	match := numberSuffixPattern.FindString(last)
	if match == "" {
		utils.LogWarn("Sequence: last number has no numeric suffix, falling back", map[string]interface{}{
			"counter": s.counter, "last": last,
		})
		return "", false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%04d", s.prefix, n+1), true
}

// fromTimestamp uses the last four digits of the Unix-millisecond clock.
// Unique enough in practice, but not guaranteed under collision.
func (s *sequenceService) fromTimestamp() string {
	return fmt.Sprintf("%s-%04d", s.prefix, s.now().UnixMilli()%10000)
}
