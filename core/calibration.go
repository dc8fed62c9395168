// Gauge calibration
// Maps a physical gauge reading (dial units, 0-300) to a PWM duty value
// through a quadratic fitted against measured needle positions.
package core

import (
	"errors"
	"math"
)

// Fitted curve y = A*r^2 + B*r + C, where y is the duty on the bench timer
// and r the gauge reading. The coefficients encode the movement's mechanical
// non-linearity and must not be rounded.
const (
	CurveA = -0.00036
	CurveB = 0.52171
	CurveC = 35.98441

	// DutyScale converts the bench duty range to the drive timer's counter range
	DutyScale = 6.0

	// GaugeFullScale is the dial reading at 100 percent
	GaugeFullScale = 300.0

	// DefaultGaugeReading is applied at startup before any command arrives
	DefaultGaugeReading = 150.0
)

// DomainPolicy selects how readings outside [0, GaugeFullScale] are treated
// before the curve is evaluated.
type DomainPolicy uint8

const (
	// DomainUnclamped evaluates the curve on the raw reading. Out-of-range
	// readings may yield duties outside the useful range; the caller clamps.
	DomainUnclamped DomainPolicy = iota

	// DomainClampBeforeCurve clamps the reading to [0, GaugeFullScale] first
	DomainClampBeforeCurve
)

// Curve is a quadratic gauge calibration
type Curve struct {
	A, B, C float64
	Scale   float64
	Domain  DomainPolicy
}

// DefaultCurve returns the calibration fitted for the reference gauge
func DefaultCurve() Curve {
	return Curve{
		A:      CurveA,
		B:      CurveB,
		C:      CurveC,
		Scale:  DutyScale,
		Domain: DomainUnclamped,
	}
}

// DutyCycle returns the unclamped duty value for a gauge reading.
// It is pure; negative or oversized results are left to the caller.
func (c Curve) DutyCycle(reading float64) float64 {
	r := reading
	if c.Domain == DomainClampBeforeCurve {
		r = math.Max(0, math.Min(GaugeFullScale, r))
	}
	return (c.A*r*r + c.B*r + c.C) * c.Scale
}

// DutyCycle evaluates the default calibration curve
func DutyCycle(reading float64) float64 {
	return DefaultCurve().DutyCycle(reading)
}

// ReadingFromPercentage converts a percentage of full scale to a gauge reading.
// The result is not clamped.
func ReadingFromPercentage(pct float64) float64 {
	return pct * GaugeFullScale / 100
}

// ClampDuty truncates a duty value toward zero and limits it to [0, max].
// NaN maps to 0.
func ClampDuty(duty float64, max uint32) PWMValue {
	if math.IsNaN(duty) || duty <= 0 {
		return 0
	}
	if duty >= float64(max) {
		return PWMValue(max)
	}
	return PWMValue(duty)
}

// CalibrationPoint is one bench measurement: the dial reading observed
// for a given bench duty value.
type CalibrationPoint struct {
	Reading float64
	Duty    float64
}

// CalibrationPoints returns the measurements the default curve was fitted to
func CalibrationPoints() []CalibrationPoint {
	return []CalibrationPoint{
		{Reading: 0, Duty: 36},
		{Reading: 108, Duty: 88},
		{Reading: 171, Duty: 115},
		{Reading: 242, Duty: 141},
		{Reading: 299, Duty: 160},
	}
}

// ErrNotEnoughPoints is returned when a fit is underdetermined
var ErrNotEnoughPoints = errors.New("calibration: need at least 3 distinct points")

// FitQuadratic least-squares fits y = a*x^2 + b*x + c through the points.
// The returned curve uses DutyScale and DomainUnclamped.
func FitQuadratic(points []CalibrationPoint) (Curve, error) {
	if len(points) < 3 {
		return Curve{}, ErrNotEnoughPoints
	}

	// Normal equations: sums of x^0..x^4 and x^k*y
	var s [5]float64
	var t [3]float64
	for _, p := range points {
		xk := 1.0
		for k := 0; k < 5; k++ {
			s[k] += xk
			if k < 3 {
				t[k] += xk * p.Duty
			}
			xk *= p.Reading
		}
	}

	// Rows ordered for unknowns (c, b, a)
	m := [3][4]float64{
		{s[0], s[1], s[2], t[0]},
		{s[1], s[2], s[3], t[1]},
		{s[2], s[3], s[4], t[2]},
	}

	// Gauss-Jordan with partial pivoting
	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return Curve{}, ErrNotEnoughPoints
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := 0; row < 3; row++ {
			if row == col {
				continue
			}
			f := m[row][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[row][k] -= f * m[col][k]
			}
		}
	}

	return Curve{
		A:      m[2][3] / m[2][2],
		B:      m[1][3] / m[1][1],
		C:      m[0][3] / m[0][0],
		Scale:  DutyScale,
		Domain: DomainUnclamped,
	}, nil
}
