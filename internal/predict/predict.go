// Package predict scores heart-disease risk from the clinical form features.
//
// The score is a logistic curve over a count of classic risk factors. It is a
// stand-in for a trained model and makes no claim about clinical accuracy.
package predict

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"heart-clinic/internal/api"
)

type Result struct {
	Prediction int
	RiskScore  int
}

// Features are the parsed numeric inputs in api.Features order.
type Features [10]float64

const (
	age = iota
	sex
	cp
	trestbps
	chol
	fbs
	restecg
	thalach
	exang
	oldpeak
)

// Parse reads the scorer features out of a form map. Missing or non-numeric
// values are an error naming the field.
func Parse(form map[string]string) (Features, error) {
	var f Features
	for i, key := range api.Features {
		raw := strings.TrimSpace(form[key])
		if raw == "" {
			return f, fmt.Errorf("missing %s", key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return f, fmt.Errorf("invalid value for %s: %q", key, raw)
		}
		f[i] = v
	}
	return f, nil
}

// Factors counts the risk factors present.
func (f Features) Factors() int {
	n := 0
	for _, hit := range []bool{
		f[age] > 55,
		f[trestbps] > 140,
		f[chol] > 240,
		f[thalach] < 140,
		f[oldpeak] > 1.5,
	} {
		if hit {
			n++
		}
	}
	return n
}

// Score is deterministic: equal inputs always give equal results.
func Score(f Features) Result {
	n := f.Factors()
	p := 1 / (1 + math.Exp(-2.2*(float64(n)-2.5)))
	r := Result{RiskScore: int(math.Floor(100 * p))}
	if n >= 3 {
		r.Prediction = 1
	}
	return r
}
