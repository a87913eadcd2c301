package frames

import "math"

// Quat is a unit quaternion representing body attitude relative to the
// inertial frame, scalar component first.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat returns the no-rotation attitude.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n == 0 {
		return IdentityQuat()
	}
	return Quat{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

func (q Quat) Dot(o Quat) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

func (q Quat) Add(o Quat) Quat {
	return Quat{q.W + o.W, q.X + o.X, q.Y + o.Y, q.Z + o.Z}
}

func (q Quat) Scale(s float64) Quat {
	return Quat{s * q.W, s * q.X, s * q.Y, s * q.Z}
}

// Mat returns the inertial-to-body rotation matrix for the attitude q.
func (q Quat) Mat() Mat3 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return Mat3{
		{w*w + x*x - y*y - z*z, 2 * (x*y + w*z), 2 * (x*z - w*y)},
		{2 * (x*y - w*z), w*w - x*x + y*y - z*z, 2 * (y*z + w*x)},
		{2 * (x*z + w*y), 2 * (y*z - w*x), w*w - x*x - y*y + z*z},
	}
}

// QDot returns the attitude kinematic derivative for body angular rate w,
// one half the quaternion product q*(0,w). The result is orthogonal to q,
// which preserves unit norm to first order under integration.
func (q Quat) QDot(w Vec3) Quat {
	p, qq, r := w[0], w[1], w[2]
	return Quat{
		W: -0.5 * (q.X*p + q.Y*qq + q.Z*r),
		X: 0.5 * (q.W*p - q.Z*qq + q.Y*r),
		Y: 0.5 * (q.Z*p + q.W*qq - q.X*r),
		Z: -0.5 * (q.Y*p - q.X*qq - q.W*r),
	}
}

// FromEuler builds the attitude quaternion from the 3-2-1 Euler sequence
// (yaw psi, pitch theta, roll phi) of the body relative to the reference
// frame of the rotation.
func FromEuler(phi, theta, psi float64) Quat {
	cphi, sphi := math.Cos(phi/2), math.Sin(phi/2)
	cth, sth := math.Cos(theta/2), math.Sin(theta/2)
	cpsi, spsi := math.Cos(psi/2), math.Sin(psi/2)
	return Quat{
		W: cphi*cth*cpsi + sphi*sth*spsi,
		X: sphi*cth*cpsi - cphi*sth*spsi,
		Y: cphi*sth*cpsi + sphi*cth*spsi,
		Z: cphi*cth*spsi - sphi*sth*cpsi,
	}.Normalize()
}

// FromMat extracts the attitude quaternion from an inertial-to-body rotation
// matrix using Shepperd's method, picking the numerically largest pivot.
func FromMat(m Mat3) Quat {
	tr := m[0][0] + m[1][1] + m[2][2]
	var q Quat
	switch {
	case tr > m[0][0] && tr > m[1][1] && tr > m[2][2]:
		s := math.Sqrt(1+tr) * 2
		q = Quat{
			W: s / 4,
			X: (m[1][2] - m[2][1]) / s,
			Y: (m[2][0] - m[0][2]) / s,
			Z: (m[0][1] - m[1][0]) / s,
		}
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math.Sqrt(1+m[0][0]-m[1][1]-m[2][2]) * 2
		q = Quat{
			W: (m[1][2] - m[2][1]) / s,
			X: s / 4,
			Y: (m[0][1] + m[1][0]) / s,
			Z: (m[2][0] + m[0][2]) / s,
		}
	case m[1][1] > m[2][2]:
		s := math.Sqrt(1+m[1][1]-m[0][0]-m[2][2]) * 2
		q = Quat{
			W: (m[2][0] - m[0][2]) / s,
			X: (m[0][1] + m[1][0]) / s,
			Y: s / 4,
			Z: (m[1][2] + m[2][1]) / s,
		}
	default:
		s := math.Sqrt(1+m[2][2]-m[0][0]-m[1][1]) * 2
		q = Quat{
			W: (m[0][1] - m[1][0]) / s,
			X: (m[2][0] + m[0][2]) / s,
			Y: (m[1][2] + m[2][1]) / s,
			Z: s / 4,
		}
	}
	return q.Normalize()
}
