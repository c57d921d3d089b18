package domain

import "time"

// Aux keys carried by agent-specific tick payloads.
const (
	AuxCashierPresent = "cashier_present"
	AuxPPEViolation   = "ppe_violation"
	AuxNewVisitors    = "new_visitors"
	AuxWeightGrams    = "weight_grams"
	AuxScaleOverload  = "scale_overload"
)

// Tick is one sampling iteration's worth of input signal. It is produced by
// an external capture/detection collaborator, consumed immediately, and
// never persisted.
type Tick struct {
	At     time.Time
	Signal bool
	Value  float64
	Aux    map[string]float64
}

// Flag reports whether an aux payload is set and positive.
func (t Tick) Flag(key string) bool {
	return t.Aux[key] > 0
}
