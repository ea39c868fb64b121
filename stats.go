package main

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// fieldStats summarizes one time level of the field.
type fieldStats struct {
	MaxAbs   float64
	Min      float64
	Max      float64
	Energy   float64
	Diverged bool
}

// measureField computes the statistics used by progress logging and the
// viewer overlay. Energy is the discrete kinetic plus potential proxy
// sum((u_t)^2 + c^2 (u_x)^2) * dx with first differences over the two levels.
func measureField(prev, curr []float64, p simParams) fieldStats {
	if len(curr) == 0 {
		return fieldStats{}
	}
	st := fieldStats{
		MaxAbs: floats.Norm(curr, math.Inf(1)),
		Min:    floats.Min(curr),
		Max:    floats.Max(curr),
	}
	if floats.HasNaN(curr) || math.IsInf(st.MaxAbs, 0) {
		st.Diverged = true
		return st
	}
	var kinetic, potential float64
	for i, u := range curr {
		if len(prev) == len(curr) {
			ut := (u - prev[i]) / p.Dt
			kinetic += ut * ut
		}
		if i+1 < len(curr) {
			ux := (curr[i+1] - u) / p.Dx
			potential += ux * ux
		}
	}
	st.Energy = 0.5 * (kinetic + p.C*p.C*potential) * p.Dx
	return st
}
