package prayer

import (
	"math"
	"time"

	"github.com/hablullah/go-juliandays"
)

// Solar position after the U.S. Naval Observatory low-precision formulas.
// Accurate to about a minute of time between 1950 and 2050.

// riseSetAngle is the solar altitude at apparent sunrise and sunset,
// accounting for refraction and the solar semi-diameter.
const riseSetAngle = 0.833

func dsin(d float64) float64 { return math.Sin(d * math.Pi / 180) }
func dcos(d float64) float64 { return math.Cos(d * math.Pi / 180) }
func dtan(d float64) float64 { return math.Tan(d * math.Pi / 180) }

func darcsin(x float64) float64 { return math.Asin(x) * 180 / math.Pi }
func darccos(x float64) float64 { return math.Acos(x) * 180 / math.Pi }
func darctan2(y, x float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }
func darccot(x float64) float64 { return math.Atan(1/x) * 180 / math.Pi }

// fix reduces a into [0, b).
func fix(a, b float64) float64 {
	a = a - b*math.Floor(a/b)
	if a < 0 {
		return a + b
	}
	return a
}

func fixHour(h float64) float64 { return fix(h, 24) }

// julianDate returns the Julian date of 00:00 UT on the given Gregorian
// date, or NaN for dates the Julian day count does not cover.
func julianDate(year int, month time.Month, day int) float64 {
	jd, err := juliandays.FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return math.NaN()
	}
	return jd
}

// sunPosition returns the solar declination (degrees) and the equation of
// time (hours) at Julian date jd.
func sunPosition(jd float64) (decl, eqt float64) {
	d := jd - 2451545.0
	g := fix(357.529+0.98560028*d, 360)
	q := fix(280.459+0.98564736*d, 360)
	l := fix(q+1.915*dsin(g)+0.020*dsin(2*g), 360)
	e := 23.439 - 0.00000036*d

	ra := darctan2(dcos(e)*dsin(l), dcos(l)) / 15
	eqt = q/15 - fixHour(ra)
	decl = darcsin(dsin(e) * dsin(l))
	return decl, eqt
}

// solarDay evaluates sun-dependent instants for one date at one latitude.
// jd is the Julian date of local midnight at the observer's longitude and
// every time is expressed in local mean solar hours.
type solarDay struct {
	jd  float64
	lat float64
}

// midDay returns the time of solar transit near day portion t.
func (s solarDay) midDay(t float64) float64 {
	_, eqt := sunPosition(s.jd + t)
	return fixHour(12 - eqt)
}

// sunAngleTime returns when the sun reaches altitude -angle before (ccw) or
// after transit. It returns NaN when the sun never reaches that altitude.
func (s solarDay) sunAngleTime(angle, t float64, ccw bool) float64 {
	decl, _ := sunPosition(s.jd + t)
	noon := s.midDay(t)
	v := (-dsin(angle) - dsin(decl)*dsin(s.lat)) / (dcos(decl) * dcos(s.lat))
	if v < -1 || v > 1 || math.IsNaN(v) {
		return math.NaN()
	}
	h := darccos(v) / 15
	if ccw {
		return noon - h
	}
	return noon + h
}

// noonAltitude returns the solar altitude at transit.
func (s solarDay) noonAltitude() float64 {
	decl, _ := sunPosition(s.jd + 0.5)
	return 90 - math.Abs(s.lat-decl)
}

// asrTime returns the time when an object's shadow equals factor times its
// length plus the noon shadow. It is NaN when the sun stays below the
// horizon at transit and there is no noon shadow to measure.
func (s solarDay) asrTime(factor, t float64) float64 {
	decl, _ := sunPosition(s.jd + t)
	zenith := math.Abs(s.lat - decl)
	if zenith >= 90 {
		return math.NaN()
	}
	angle := -darccot(factor + dtan(zenith))
	return s.sunAngleTime(angle, t, false)
}
