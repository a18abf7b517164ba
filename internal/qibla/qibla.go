// Package qibla computes the direction and distance to the Kaaba and checks a
// compass heading against it.
package qibla

import (
	"context"
	"math"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// Kaaba is the fixed coordinate every bearing points to.
var Kaaba = prayer.Coordinate{Latitude: 21.4225, Longitude: 39.8262}

// AlignmentThreshold is the largest heading error, exclusive, that still
// counts as facing the Qibla.
const AlignmentThreshold = 5.0

// earthRadiusKm is the IUGG mean earth radius.
const earthRadiusKm = 6371.0088

func rad(d float64) float64 { return d * math.Pi / 180 }

// normalize maps any angle in degrees into [0, 360).
func normalize(deg float64) float64 {
	n := math.Mod(math.Mod(deg, 360)+360, 360)
	if n == 360 {
		return 0
	}
	return n
}

// Bearing returns the initial great-circle bearing from c to the Kaaba in
// degrees clockwise from true north, in [0, 360).
//
// At the Kaaba itself the direction is undefined (atan2 of 0, 0); Bearing
// returns 0 there.
func Bearing(c prayer.Coordinate) float64 {
	if c == Kaaba {
		return 0
	}
	dLng := rad(Kaaba.Longitude - c.Longitude)
	lat := rad(c.Latitude)

	y := math.Sin(dLng)
	x := math.Cos(lat)*math.Tan(rad(Kaaba.Latitude)) - math.Sin(lat)*math.Cos(dLng)
	return normalize(math.Atan2(y, x) * 180 / math.Pi)
}

// Distance returns the great-circle distance from c to the Kaaba in km.
func Distance(c prayer.Coordinate) float64 {
	lat1, lat2 := rad(c.Latitude), rad(Kaaba.Latitude)
	dLat := lat2 - lat1
	dLng := rad(Kaaba.Longitude - c.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// AngularDistance returns the shortest difference between two headings, in
// [0, 180].
func AngularDistance(a, b float64) float64 {
	diff := math.Abs(normalize(a) - normalize(b))
	return math.Min(diff, 360-diff)
}

// IsAligned reports whether heading is within the alignment threshold of
// bearing. Exactly AlignmentThreshold degrees is not aligned.
func IsAligned(heading, bearing float64) bool {
	return AngularDistance(heading, bearing) < AlignmentThreshold
}

// Alignment is one classified compass sample.
type Alignment struct {
	Heading float64 `json:"heading"`
	Bearing float64 `json:"bearing"`
	// Delta is the signed turn, in (-180, 180], that brings Heading onto
	// Bearing. Positive means clockwise.
	Delta   float64 `json:"delta"`
	Aligned bool    `json:"aligned"`
}

// Check classifies a single heading against bearing.
func Check(heading, bearing float64) Alignment {
	delta := normalize(bearing - heading)
	if delta > 180 {
		delta -= 360
	}
	return Alignment{
		Heading: normalize(heading),
		Bearing: bearing,
		Delta:   delta,
		Aligned: IsAligned(heading, bearing),
	}
}

// Track classifies every heading received on headings and sends the result
// on the returned channel. Samples are independent; there is no smoothing.
// The output closes when headings closes or ctx is done.
func Track(ctx context.Context, headings <-chan float64, bearing float64) <-chan Alignment {
	out := make(chan Alignment)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case h, ok := <-headings:
				if !ok {
					return
				}
				select {
				case out <- Check(h, bearing):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
