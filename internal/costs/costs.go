// Package costs tracks billable provider calls for one search session and
// converts the tally into an estimated spend.
package costs

import "sync"

// Operation is a billable provider operation kind.
type Operation string

const (
	NearbySearch Operation = "nearby_search"
	PlaceDetails Operation = "place_details"
)

// Tally counts billable calls. It is session-scoped and passed into the
// aggregator explicitly; counters only ever go up.
type Tally struct {
	mu     sync.Mutex
	counts map[Operation]int
}

func NewTally() *Tally {
	return &Tally{counts: make(map[Operation]int)}
}

func (t *Tally) Record(op Operation) {
	t.mu.Lock()
	t.counts[op]++
	t.mu.Unlock()
}

func (t *Tally) Count(op Operation) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[op]
}

// RateTable maps an operation to its per-call price in USD.
type RateTable map[Operation]float64

// DefaultRates follows the provider's published pricing: nearby search bills
// at the basic tier, details lookups request advanced fields.
var DefaultRates = RateTable{
	NearbySearch: 0.032,
	PlaceDetails: 0.020,
}

type OperationCost struct {
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

type Estimate struct {
	Operations map[Operation]OperationCost `json:"operations"`
	TotalCost  float64                     `json:"total_cost"`
}

// EstimateCost is a pure read of the tally; safe to call mid-session.
func EstimateCost(t *Tally, rates RateTable) Estimate {
	est := Estimate{Operations: make(map[Operation]OperationCost, len(rates))}
	for op, rate := range rates {
		count := t.Count(op)
		cost := float64(count) * rate
		est.Operations[op] = OperationCost{Count: count, Cost: cost}
		est.TotalCost += cost
	}
	return est
}
