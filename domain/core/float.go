package core

import (
	"encoding/json"
	"math"
)

// Float is a float64 that encodes NaN and ±Inf as JSON null. Statistics use
// NaN as the "undefined" sentinel, which encoding/json otherwise rejects.
type Float float64

// MarshalJSON writes null for non-finite values
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
