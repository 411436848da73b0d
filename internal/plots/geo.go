package plots

import "math"

// GroundSpeed returns the Cartesian ground speed in m/s from East (vx) and
// North (vy) velocity components.
func GroundSpeed(vx, vy float64) float64 {
	return math.Hypot(vx, vy)
}

// Heading returns the true heading in degrees [0, 360) from Cartesian
// velocity components: the clockwise angle from North, the aviation
// convention for I062/185.
func Heading(vx, vy float64) float64 {
	deg := math.Atan2(vx, vy) * 180.0 / math.Pi
	return math.Mod(deg+360.0, 360.0)
}
