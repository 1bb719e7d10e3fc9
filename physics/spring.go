package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Springs are specified as a stiffness frequency in hertz plus a
// non-dimensional damping ratio (1 = critical damping), but Chipmunk wants a
// raw spring constant and damping coefficient. The conversion uses the
// reduced mass (or reduced moment, for rotary springs) of the two bodies:
//
//	omega = 2*pi*hertz
//	k = m*omega^2
//	c = 2*m*zeta*omega

func reduced(a, b float64) float64 {
	ia, ib := 0.0, 0.0
	if a > 0 && !math.IsInf(a, 1) {
		ia = 1 / a
	}
	if b > 0 && !math.IsInf(b, 1) {
		ib = 1 / b
	}
	if ia+ib == 0 {
		return 0
	}
	return 1 / (ia + ib)
}

func springConstants(hertz, dampingRatio, reducedMass float64) (stiffness, damping float64) {
	omega := 2 * math.Pi * hertz
	return reducedMass * omega * omega, 2 * reducedMass * dampingRatio * omega
}

func (w *World) linearSpring(hertz, dampingRatio float64, a, b *bodyState) (stiffness, damping float64) {
	return springConstants(hertz, dampingRatio, reduced(bodyMass(a), bodyMass(b)))
}

func (w *World) angularSpring(hertz, dampingRatio float64, a, b *bodyState) (stiffness, damping float64) {
	return springConstants(hertz, dampingRatio, reduced(bodyMoment(a), bodyMoment(b)))
}

func bodyMass(st *bodyState) float64 {
	if st.body.GetType() != cp.BODY_DYNAMIC {
		return math.Inf(1)
	}
	return st.mass
}

func bodyMoment(st *bodyState) float64 {
	if st.body.GetType() != cp.BODY_DYNAMIC {
		return math.Inf(1)
	}
	return st.moment
}

// softErrorBias turns a stiffness frequency into a Chipmunk error bias: the
// fraction of positional error left uncorrected after one second. Zero hertz
// keeps the solver default (rigid).
func softErrorBias(hertz float64) float64 {
	rate := hertz / 60.0
	if rate > 1 {
		rate = 1
	}
	return math.Pow(1.0-rate, 60.0)
}
