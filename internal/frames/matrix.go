package frames

import "math"

// Mat3 is a row-major 3x3 matrix. Rotation operators are exact orthonormal
// matrices, so the inverse of a frame transform is its transpose.
type Mat3 [3][3]float64

// Identity3 returns the identity matrix.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func (m Mat3) MulMat(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return r
}

func (m Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// R3 returns the rotation about the +z axis by theta. With theta the planet
// rotation angle it maps inertial coordinates to planet-fixed coordinates.
func R3(theta float64) Mat3 {
	s, c := math.Sin(theta), math.Cos(theta)
	return Mat3{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}

// LocalLevel returns the ECEF to local-level (north-east-down) rotation for
// the given geocentric latitude and longitude.
func LocalLevel(lat, lon float64) Mat3 {
	sphi, cphi := math.Sin(lat), math.Cos(lat)
	slam, clam := math.Sin(lon), math.Cos(lon)
	return Mat3{
		{-sphi * clam, -sphi * slam, cphi},
		{-slam, clam, 0},
		{-cphi * clam, -cphi * slam, -sphi},
	}
}
