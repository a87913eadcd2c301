// Package gravity implements the selectable gravitation models.
package gravity

import (
	"fmt"

	"github.com/san-kum/flightdyn/internal/fdm"
	"github.com/san-kum/flightdyn/internal/frames"
)

// WGS84 defining and derived constants, SI units.
const (
	GM             = 3.986004418e14 // gravitational parameter, m^3/s^2
	SemiMajorAxis  = 6378137.0      // equatorial radius, m
	J2             = 1.08262982e-3  // second zonal harmonic
	RotationRate   = 7.292115e-5    // planet angular rate, rad/s
	StandardGravAt = 9.80665        // standard gravity magnitude, m/s^2
)

// Model selects how the gravitation vector is computed.
type Model int

const (
	// Standard is a constant-magnitude acceleration along the local vertical.
	Standard Model = iota
	// WGS84 is the ellipsoidal model with the J2 zonal harmonic correction.
	WGS84
)

func (m Model) String() string {
	switch m {
	case Standard:
		return "standard"
	case WGS84:
		return "wgs84"
	}
	return fmt.Sprintf("gravity.Model(%d)", int(m))
}

// ParseModel maps a configuration string onto a Model.
func ParseModel(s string) (Model, error) {
	switch s {
	case "standard":
		return Standard, nil
	case "wgs84", "":
		return WGS84, nil
	}
	return WGS84, fmt.Errorf("gravity: unknown model %q", s)
}

// Accel returns the gravitation acceleration in the body frame for the
// current snapshot, dispatching on the selected model. Switching the model
// between steps takes effect on the next evaluation.
func Accel(m Model, in *fdm.Snapshot) frames.Vec3 {
	switch m {
	case Standard:
		return in.Tl2b.MulVec(frames.Vec3{0, 0, in.LocalGravity})
	default:
		return in.Tec2b.MulVec(in.GravityJ2)
	}
}

// J2Vector returns the gravitation acceleration at an ECEF position,
// expressed in the ECEF frame, including the J2 oblateness correction.
func J2Vector(pos frames.Vec3) frames.Vec3 {
	r := pos.Norm()
	sinLat := pos[2] / r
	adivr := SemiMajorAxis / r
	pre := 1.5 * J2 * adivr * adivr
	gmr2 := GM / (r * r)
	xy := 1.0 - 5.0*sinLat*sinLat
	z := 3.0 - 5.0*sinLat*sinLat
	return frames.Vec3{
		-gmr2 * (pos[0] / r) * (1.0 + pre*xy),
		-gmr2 * (pos[1] / r) * (1.0 + pre*xy),
		-gmr2 * (pos[2] / r) * (1.0 + pre*z),
	}
}

// LocalMagnitude returns the gravitation magnitude used by the Standard
// model at a distance r from the planet center.
func LocalMagnitude(r float64) float64 {
	if r <= 0 {
		return StandardGravAt
	}
	return GM / (r * r)
}
