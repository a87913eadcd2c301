package frames

import (
	"math"
	"testing"
)

func TestCross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}

	z := x.Cross(y)
	if z != (Vec3{0, 0, 1}) {
		t.Errorf("x cross y should be z, got %v", z)
	}

	if v := y.Cross(x); v != (Vec3{0, 0, -1}) {
		t.Errorf("y cross x should be -z, got %v", v)
	}
}

func TestCrossOrthogonality(t *testing.T) {
	a := Vec3{1.2, -3.4, 0.7}
	b := Vec3{-0.3, 2.1, 5.5}
	c := a.Cross(b)

	if math.Abs(c.Dot(a)) > 1e-12 || math.Abs(c.Dot(b)) > 1e-12 {
		t.Errorf("cross product not orthogonal to operands: %v", c)
	}
}

func TestMat3Transpose(t *testing.T) {
	m := R3(0.3)
	mt := m.Transpose()

	// Orthonormal: M * M^T = I.
	p := m.MulMat(mt)
	id := Identity3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(p[i][j]-id[i][j]) > 1e-12 {
				t.Fatalf("M*M^T not identity at (%d,%d): %f", i, j, p[i][j])
			}
		}
	}
}

func TestR3RotatesXIntoY(t *testing.T) {
	// With the frame rotated +90 degrees about z, the inertial +y axis lies
	// along the frame +x axis.
	m := R3(math.Pi / 2)
	v := m.MulVec(Vec3{0, 1, 0})
	if math.Abs(v[0]-1) > 1e-12 || math.Abs(v[1]) > 1e-12 {
		t.Errorf("unexpected rotation result %v", v)
	}
}

func TestLocalLevelOrthonormal(t *testing.T) {
	m := LocalLevel(0.7, -1.9)
	p := m.MulMat(m.Transpose())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(p[i][j]-want) > 1e-12 {
				t.Fatalf("local level matrix not orthonormal at (%d,%d)", i, j)
			}
		}
	}
}

func TestLocalLevelDownAtEquator(t *testing.T) {
	// At lat=0, lon=0 the local down axis points along -x ECEF.
	m := LocalLevel(0, 0)
	down := m.MulVec(Vec3{-1, 0, 0})
	if math.Abs(down[2]-1) > 1e-12 {
		t.Errorf("down component should be 1, got %v", down)
	}
}

func TestQuatMatOrthonormal(t *testing.T) {
	q := FromEuler(0.3, -0.2, 1.1)
	m := q.Mat()
	p := m.MulMat(m.Transpose())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(p[i][j]-want) > 1e-10 {
				t.Fatalf("DCM not orthonormal at (%d,%d)", i, j)
			}
		}
	}
}

func TestQuatRoundTripThroughMat(t *testing.T) {
	cases := []Quat{
		IdentityQuat(),
		FromEuler(0.5, 0.2, -0.9),
		FromEuler(-2.7, 1.2, 3.0),
		FromEuler(3.1, -1.5, 0.01),
	}
	for _, q := range cases {
		r := FromMat(q.Mat())
		// q and -q encode the same attitude.
		if r.Dot(q) < 0 {
			r = r.Scale(-1)
		}
		if math.Abs(r.W-q.W) > 1e-9 || math.Abs(r.X-q.X) > 1e-9 ||
			math.Abs(r.Y-q.Y) > 1e-9 || math.Abs(r.Z-q.Z) > 1e-9 {
			t.Errorf("round trip mismatch: %v != %v", r, q)
		}
	}
}

func TestQDotOrthogonal(t *testing.T) {
	qs := []Quat{
		IdentityQuat(),
		FromEuler(0.4, -1.0, 2.2),
		FromEuler(-0.1, 0.9, -2.8),
	}
	rates := []Vec3{
		{0.1, 0, 0},
		{0, -2.5, 0.3},
		{10, 20, -30},
	}
	for _, q := range qs {
		for _, w := range rates {
			qdot := q.QDot(w)
			if d := math.Abs(q.Dot(qdot)); d > 1e-12 {
				t.Errorf("qdot not orthogonal to q: dot=%e", d)
			}
		}
	}
}

func TestNormalizeZeroQuat(t *testing.T) {
	q := Quat{}.Normalize()
	if q != IdentityQuat() {
		t.Errorf("zero quaternion should normalize to identity, got %v", q)
	}
}
