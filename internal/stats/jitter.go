package stats

import "math/rand"

// JitterCoordinates randomizes a map position for privacy before public
// display. Each axis receives an independent uniform offset in
// [-radiusDeg/2, +radiusDeg/2] degrees, so the returned point lies in a
// square of side radiusDeg centered on the original. A radius of 0.1
// degrees is roughly 5 km.
func JitterCoordinates(lat, lng, radiusDeg float64, rnd *rand.Rand) (float64, float64) {
	if radiusDeg <= 0 {
		return lat, lng
	}
	jLat := lat + (rnd.Float64()-0.5)*radiusDeg
	jLng := lng + (rnd.Float64()-0.5)*radiusDeg
	return jLat, jLng
}
