package analysis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

// Policy selects which within-tolerance reading of the second series is
// paired with a reading of the first.
type Policy string

const (
	// PolicyLast pairs with the last matching reading in series order.
	PolicyLast Policy = "last"

	// PolicyClosest pairs with the matching reading nearest in time. Ties
	// go to the later one in series order.
	PolicyClosest Policy = "closest"
)

// ParsePolicy validates a policy name. An empty name selects PolicyLast.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return PolicyLast, nil
	case PolicyLast, PolicyClosest:
		return p, nil
	default:
		return "", fmt.Errorf("analysis: unknown correlation policy %q", s)
	}
}

// Difference is the outcome of a correlation. Present is false when no
// pair of readings matched, and Value is then meaningless.
type Difference struct {
	Value   decimal.Decimal `json:"value"`
	Present bool            `json:"present"`
}

// MarshalJSON omits the value of an absent difference.
func (d Difference) MarshalJSON() ([]byte, error) {
	if !d.Present {
		return []byte(`{"present":false}`), nil
	}
	type plain Difference
	return json.Marshal(plain(d))
}

// Correlator pairs readings of two series that lie within a tolerance of
// each other.
type Correlator struct {
	tolerance time.Duration
	policy    Policy
}

// NewCorrelator creates a Correlator. A negative tolerance is treated as zero.
func NewCorrelator(tolerance time.Duration, policy Policy) *Correlator {
	if tolerance < 0 {
		tolerance = 0
	}
	if policy == "" {
		policy = PolicyLast
	}
	return &Correlator{tolerance: tolerance, policy: policy}
}

// Tolerance returns the configured tolerance.
func (c *Correlator) Tolerance() time.Duration { return c.tolerance }

// MaxAbsoluteDifference returns the largest |a - b| over readings a of
// series a within [start, end] and their paired reading b of series b.
// Readings of a outside the window, or without a partner within the
// tolerance, are ignored. Every reading of a inside the window must parse,
// matched or not.
func (c *Correlator) MaxAbsoluteDifference(a, b []measurement.Reading, start, end time.Time) (Difference, error) {
	if err := measurement.CheckRange(start, end); err != nil {
		return Difference{}, err
	}

	var result Difference
	for _, ra := range a {
		if ra.Time.Before(start) || ra.Time.After(end) {
			continue
		}
		va, err := ra.Number()
		if err != nil {
			return Difference{}, err
		}
		rb, ok := c.match(ra, b)
		if !ok {
			continue
		}
		vb, err := rb.Number()
		if err != nil {
			return Difference{}, err
		}
		diff := va.Sub(vb).Abs()
		if !result.Present || diff.GreaterThan(result.Value) {
			result = Difference{Value: diff, Present: true}
		}
	}
	return result, nil
}

func (c *Correlator) match(ra measurement.Reading, b []measurement.Reading) (measurement.Reading, bool) {
	var best measurement.Reading
	var bestGap time.Duration
	found := false
	for _, rb := range b {
		gap := absDuration(ra.Time.Sub(rb.Time))
		if gap > c.tolerance {
			continue
		}
		if c.policy == PolicyClosest && found && gap > bestGap {
			continue
		}
		best, bestGap, found = rb, gap, true
	}
	return best, found
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
