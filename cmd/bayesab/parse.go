package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bayesab/internal/errors"
)

// parseSample reads comma or whitespace separated numbers
func parseSample(raw string) ([]float64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("value %d (%q) is not a number", i, f))
		}
		out[i] = v
	}
	return out, nil
}

// parseParams reads name=value pairs separated by commas
func parseParams(raw string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("%q is not name=value", pair))
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := out[name]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("parameter %q given twice", name))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("parameter %q: %q is not a number", name, value))
		}
		out[name] = v
	}
	return out, nil
}

// parseProbabilities reads quantile probabilities, accepting 0.9 or 90%
func parseProbabilities(raw string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		scale := 1.0
		if strings.HasSuffix(f, "%") {
			f, scale = strings.TrimSuffix(f, "%"), 100
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) {
			return nil, errors.InvalidInput(fmt.Sprintf("%q is not a probability", f))
		}
		out = append(out, v/scale)
	}
	return out, nil
}
