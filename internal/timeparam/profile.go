package timeparam

import "math"

// segment is the timing of one straight path piece, parameterized by arc
// length s in [0, length].
type segment struct {
	start   float64 // absolute start time
	length  float64
	v0, v1  float64 // path speed at both ends
	cruise  float64
	acc     float64
	tAcc    float64
	tCruise float64
	tDec    float64
}

func (s *segment) duration() float64 { return s.tAcc + s.tCruise + s.tDec }
func (s *segment) end() float64      { return s.start + s.duration() }

// newSegment times a piece of the given length with a trapezoidal speed
// profile. The end speeds must be reachable from each other within length,
// which the forward and backward passes guarantee.
func newSegment(start, length, v0, v1, vmax, acc float64) segment {
	seg := segment{start: start, length: length, v0: v0, v1: v1, acc: acc}
	if length <= 0 {
		seg.cruise = math.Max(v0, v1)
		return seg
	}
	peak := math.Sqrt((2*acc*length + v0*v0 + v1*v1) / 2)
	vc := math.Max(math.Min(peak, vmax), math.Max(v0, v1))
	seg.cruise = vc

	seg.tAcc = (vc - v0) / acc
	seg.tDec = (vc - v1) / acc
	dAcc := (vc*vc - v0*v0) / (2 * acc)
	dDec := (vc*vc - v1*v1) / (2 * acc)
	if cruise := length - dAcc - dDec; cruise > 0 && vc > 0 {
		seg.tCruise = cruise / vc
	}
	return seg
}

// sample returns arc length, path speed and path acceleration at absolute
// time t, clamped to the segment.
func (s *segment) sample(t float64) (pos, vel, acc float64) {
	tau := math.Min(math.Max(t-s.start, 0), s.duration())
	switch {
	case s.tAcc > 0 && tau <= s.tAcc:
		return s.v0*tau + 0.5*s.acc*tau*tau, s.v0 + s.acc*tau, s.acc
	case tau <= s.tAcc+s.tCruise:
		dAcc := s.v0*s.tAcc + 0.5*s.acc*s.tAcc*s.tAcc
		return dAcc + s.cruise*(tau-s.tAcc), s.cruise, 0
	default:
		dAcc := s.v0*s.tAcc + 0.5*s.acc*s.tAcc*s.tAcc
		d := tau - s.tAcc - s.tCruise
		pos = dAcc + s.cruise*s.tCruise + s.cruise*d - 0.5*s.acc*d*d
		if tau >= s.duration() {
			return s.length, s.v1, -s.acc
		}
		return math.Min(pos, s.length), s.cruise - s.acc*d, -s.acc
	}
}
