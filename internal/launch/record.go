package launch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Outcome is the launch result. The source encodes it as 1/0.
type Outcome int

const (
	// Failure is encoded as 0.
	Failure Outcome = iota
	// Success is encoded as 1.
	Success
)

// Outcome labels used as aggregate category keys.
const (
	LabelFailure = "failure"
	LabelSuccess = "success"
)

// String returns the outcome label.
func (o Outcome) String() string {
	if o == Success {
		return LabelSuccess
	}
	return LabelFailure
}

// Numeric returns 1 for success and 0 for failure.
func (o Outcome) Numeric() int {
	if o == Success {
		return 1
	}
	return 0
}

// ParseOutcome parses the source encoding of an outcome.
// Accepted (case-insensitive): 1, 0, 1.0, 0.0, true, false, success, failure.
func ParseOutcome(s string) (Outcome, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "1", "true", LabelSuccess:
		return Success, nil
	case "0", "false", LabelFailure:
		return Failure, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err == nil {
		switch f {
		case 1:
			return Success, nil
		case 0:
			return Failure, nil
		}
	}
	return Failure, fmt.Errorf("unrecognized outcome %q", s)
}

// Record is a single launch row. Records never change after load.
type Record struct {
	Site            string
	PayloadMassKg   float64
	BoosterCategory string
	Outcome         Outcome

	// FlightNumber is display metadata only; nil when the source omits it.
	FlightNumber *int
}

// Validate checks the record invariants: non-empty site and a finite,
// non-negative payload.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Site) == "" {
		return fmt.Errorf("site is empty")
	}
	if math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0) {
		return fmt.Errorf("payload mass %v is not finite", r.PayloadMassKg)
	}
	if r.PayloadMassKg < 0 {
		return fmt.Errorf("payload mass %v is negative", r.PayloadMassKg)
	}
	if r.Outcome != Success && r.Outcome != Failure {
		return fmt.Errorf("outcome %d is out of range", int(r.Outcome))
	}
	return nil
}

// IntPtr returns a pointer to v. Used for optional flight numbers.
func IntPtr(v int) *int {
	return &v
}
