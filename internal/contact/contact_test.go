package contact

import (
	"math"
	"testing"

	"github.com/san-kum/flightdyn/internal/fdm"
	"github.com/san-kum/flightdyn/internal/frames"
)

type stubSource struct {
	in  *fdm.Snapshot
	alt float64
}

func (s *stubSource) Snapshot() *fdm.Snapshot { return s.in }
func (s *stubSource) Altitude() float64       { return s.alt }

func levelSnapshot() *fdm.Snapshot {
	return &fdm.Snapshot{
		Tl2b:  frames.Identity3(),
		Tec2b: frames.Identity3(),
	}
}

func tricycle() []*Gear {
	return []*Gear{
		{Name: "nose", Pos: frames.Vec3{1.2, 0, 1.1}, Friction: 0.8},
		{Name: "left", Pos: frames.Vec3{-0.4, -1.1, 1.2}, Friction: 0.8},
		{Name: "right", Pos: frames.Vec3{0.4, 1.1, 1.2}, Friction: 0.8},
	}
}

func TestNoContactInAir(t *testing.T) {
	src := &stubSource{in: levelSnapshot(), alt: 10}
	s := NewGearSet(src, tricycle())

	s.Run(false)

	if len(s.Constraints()) != 0 {
		t.Errorf("no constraints expected in the air, got %d", len(s.Constraints()))
	}
	if s.ContactCount() != 0 {
		t.Errorf("expected 0 contacts, got %d", s.ContactCount())
	}
}

func TestMainsContactBeforeNose(t *testing.T) {
	// Mains hang 1.2 m below the reference, the nose gear 1.1 m.
	src := &stubSource{in: levelSnapshot(), alt: 1.15}
	s := NewGearSet(src, tricycle())

	s.Run(false)

	if s.ContactCount() != 2 {
		t.Fatalf("expected only the mains in contact, got %d", s.ContactCount())
	}
	if len(s.Constraints()) != 6 {
		t.Errorf("expected 3 constraints per contacting gear, got %d", len(s.Constraints()))
	}
}

func TestNormalConstraintShape(t *testing.T) {
	src := &stubSource{in: levelSnapshot(), alt: 0}
	gears := tricycle()
	s := NewGearSet(src, gears)

	s.Run(false)

	cs := s.Constraints()
	if len(cs) != 9 {
		t.Fatalf("expected 9 constraints, got %d", len(cs))
	}

	normal := cs[0]
	if normal.ForceJacobian != (frames.Vec3{0, 0, -1}) {
		t.Errorf("level-attitude normal should be body -z, got %v", normal.ForceJacobian)
	}
	if normal.Min != 0 || !math.IsInf(normal.Max, 1) {
		t.Errorf("normal bounds should be [0,+inf), got [%f,%f]", normal.Min, normal.Max)
	}

	// Moment arm r x n for the nose gear.
	wantMoment := gears[0].Pos.Cross(frames.Vec3{0, 0, -1})
	if normal.MomentJacobian != wantMoment {
		t.Errorf("moment jacobian mismatch: %v != %v", normal.MomentJacobian, wantMoment)
	}
}

func TestFrictionBoundsFollowWarmStart(t *testing.T) {
	src := &stubSource{in: levelSnapshot(), alt: 0}
	gears := tricycle()
	s := NewGearSet(src, gears)

	s.Run(false)
	cs := s.Constraints()
	rolling := cs[1]
	if rolling.Min != 0 || rolling.Max != 0 {
		t.Errorf("first-contact friction bounds should be zero, got [%f,%f]", rolling.Min, rolling.Max)
	}

	// A resolved normal reaction opens the friction cone on the next update.
	cs[0].Multiplier = 5000
	s.Run(false)
	rolling = s.Constraints()[1]
	if rolling.Min != -4000 || rolling.Max != 4000 {
		t.Errorf("expected friction bounds +-4000, got [%f,%f]", rolling.Min, rolling.Max)
	}
}

func TestConstraintIdentityStableAcrossSteps(t *testing.T) {
	src := &stubSource{in: levelSnapshot(), alt: 0}
	s := NewGearSet(src, tricycle())

	s.Run(false)
	first := s.Constraints()[0]
	first.Multiplier = 1234

	s.Run(false)
	second := s.Constraints()[0]

	if first != second {
		t.Fatal("constraint records must keep their identity across steps")
	}
	if second.Multiplier != 1234 {
		t.Errorf("warm-start multiplier lost: %f", second.Multiplier)
	}
}

func TestRecomputeForcesFromMultipliers(t *testing.T) {
	src := &stubSource{in: levelSnapshot(), alt: 0}
	s := NewGearSet(src, tricycle())

	s.Run(false)
	for _, c := range s.Constraints() {
		c.Multiplier = 0
	}
	// Load only the nose-gear normal.
	s.Constraints()[0].Multiplier = 1000
	s.RecomputeForcesFromMultipliers()

	if s.Force() != (frames.Vec3{0, 0, -1000}) {
		t.Errorf("expected force (0,0,-1000), got %v", s.Force())
	}
	want := frames.Vec3{1.2, 0, 1.1}.Cross(frames.Vec3{0, 0, -1}).Scale(1000)
	if s.Moment() != want {
		t.Errorf("expected moment %v, got %v", want, s.Moment())
	}
}

func TestHoldingSkipsUpdate(t *testing.T) {
	src := &stubSource{in: levelSnapshot(), alt: 0}
	s := NewGearSet(src, tricycle())

	if s.Run(false) {
		t.Error("active run should not report a skipped step")
	}
	n := len(s.Constraints())

	src.alt = 100
	if !s.Run(true) {
		t.Error("holding run should report a skipped step")
	}

	if len(s.Constraints()) != n {
		t.Error("holding run must not rebuild the constraint set")
	}
}

func TestTerrainMotionDefaultsToStatic(t *testing.T) {
	s := NewGearSet(&stubSource{in: levelSnapshot()}, nil)

	if s.TerrainVelocity() != (frames.Vec3{}) || s.TerrainAngularVelocity() != (frames.Vec3{}) {
		t.Error("static terrain should report zero velocities")
	}

	s.SetTerrainMotion(frames.Vec3{1, 0, 0}, frames.Vec3{})
	if s.TerrainVelocity() != (frames.Vec3{1, 0, 0}) {
		t.Error("terrain velocity override lost")
	}
}
