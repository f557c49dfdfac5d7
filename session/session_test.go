package session

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/kneelab/femurtrack/landmark"
	"github.com/kneelab/femurtrack/logging"
	"github.com/kneelab/femurtrack/posesource"
	"github.com/kneelab/femurtrack/spatialmath"
)

const (
	femurID  = 1
	stylusID = 2
)

var quarterTurnZ = [4]float64{0, 0, math.Sqrt2 / 2, math.Sqrt2 / 2}

func newTestSession(t *testing.T) (*Session, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC))
	return New(Config{FemurID: femurID, StylusID: stylusID}, clk, logging.NewTestLogger(t)), clk
}

func femurAt(x, y, z float64, rot [4]float64) posesource.Sample {
	return posesource.Sample{RigidBodyID: femurID, Position: [3]float64{x, y, z}, Rotation: rot}
}

func stylusAt(x, y, z float64) posesource.Sample {
	return posesource.Sample{RigidBodyID: stylusID, Position: [3]float64{x, y, z}, Rotation: [4]float64{0, 0, 0, 1}}
}

func TestIngestAndSnapshot(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.Snapshot()
	test.That(t, err, test.ShouldBeError, ErrNoData)

	s.Ingest(posesource.Sample{RigidBodyID: 7, Position: [3]float64{1, 1, 1}})
	_, err = s.Snapshot()
	test.That(t, err, test.ShouldBeError, ErrNoData)

	s.Ingest(femurAt(0.5, 0.25, -0.125, [4]float64{}))
	snap, err := s.Snapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, snap.Stylus, test.ShouldBeNil)
	test.That(t, snap.Femur.Point, test.ShouldResemble, r3.Vector{X: 500, Y: 250, Z: -125})
	test.That(t, snap.Femur.Orientation.Real, test.ShouldEqual, 0)

	s.Ingest(stylusAt(0.5, 0, 0))
	snap, err = s.Snapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, snap.Stylus.Point, test.ShouldResemble, r3.Vector{X: 500})

	// the snapshot is a copy
	snap.Femur.Point = r3.Vector{}
	again, err := s.Snapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.Femur.Point, test.ShouldResemble, r3.Vector{X: 500, Y: 250, Z: -125})
}

func TestStale(t *testing.T) {
	s, clk := newTestSession(t)
	test.That(t, s.Stale(0), test.ShouldBeFalse)
	test.That(t, s.Stale(time.Second), test.ShouldBeTrue)
	test.That(t, s.LastSample().IsZero(), test.ShouldBeTrue)

	s.Ingest(femurAt(0, 0, 0, [4]float64{0, 0, 0, 1}))
	test.That(t, s.LastSample(), test.ShouldEqual, clk.Now())
	test.That(t, s.Stale(time.Second), test.ShouldBeFalse)

	clk.Add(500 * time.Millisecond)
	test.That(t, s.Stale(time.Second), test.ShouldBeFalse)
	clk.Add(time.Second)
	test.That(t, s.Stale(time.Second), test.ShouldBeTrue)
	test.That(t, s.Stale(0), test.ShouldBeFalse)
}

func TestCaptureReference(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.CaptureReference()
	test.That(t, errors.Is(err, ErrNoFemurData), test.ShouldBeTrue)

	s.Ingest(femurAt(0, 0, 0, [4]float64{0, 0, 0, 1}))
	_, err = s.CaptureReference()
	test.That(t, errors.Is(err, ErrNoStylusData), test.ShouldBeTrue)
	_, ok := s.Reference()
	test.That(t, ok, test.ShouldBeFalse)

	s.Ingest(stylusAt(0.1, 0, 0))
	ref, err := s.CaptureReference()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(ref.Offset(), r3.Vector{X: 100}, 1e-9), test.ShouldBeTrue)

	stored, ok := s.Reference()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, stored, test.ShouldResemble, ref)
}

func TestUpdatedStylus(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.UpdatedStylus()
	test.That(t, err, test.ShouldBeError, ErrNoReference)

	s.Ingest(femurAt(0, 0, 0, [4]float64{0, 0, 0, 1}))
	s.Ingest(stylusAt(0.1, 0, 0))
	_, err = s.CaptureReference()
	test.That(t, err, test.ShouldBeNil)

	// femur slides 50mm along x and turns a quarter about z; the stylus stays put
	s.Ingest(femurAt(0.05, 0, 0, quarterTurnZ))
	update, err := s.UpdatedStylus()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(update.Calculated, r3.Vector{X: 50, Y: 100}, 1e-9), test.ShouldBeTrue)
	test.That(t, update.Actual, test.ShouldNotBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(*update.Actual, r3.Vector{X: 100}, 1e-9), test.ShouldBeTrue)
	test.That(t, update.Deviation, test.ShouldNotBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(update.Deviation.Delta, r3.Vector{X: 50, Y: -100}, 1e-9), test.ShouldBeTrue)
	test.That(t, update.Deviation.Magnitude, test.ShouldAlmostEqual, math.Sqrt(12500), 1e-9)
}

func TestUpdatedStylusWithoutStylus(t *testing.T) {
	s, _ := newTestSession(t)
	s.Ingest(femurAt(0, 0, 0, [4]float64{0, 0, 0, 1}))
	s.Ingest(stylusAt(0, 0.02, 0))
	_, err := s.CaptureReference()
	test.That(t, err, test.ShouldBeNil)

	// a session that only sees the femur after the reference has no actual position
	ref, _ := s.Reference()
	s2 := New(Config{FemurID: femurID, StylusID: stylusID}, clock.NewMock(), logging.NewTestLogger(t))
	test.That(t, s2.ID(), test.ShouldNotEqual, s.ID())
	s2.reference = &ref
	s2.Ingest(femurAt(0, 0, 0.01, [4]float64{0, 0, 0, 1}))
	update, err := s2.UpdatedStylus()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(update.Calculated, r3.Vector{Y: 20, Z: 10}, 1e-9), test.ShouldBeTrue)
	test.That(t, update.Actual, test.ShouldBeNil)
	test.That(t, update.Deviation, test.ShouldBeNil)
}

func TestStoreAndPoints(t *testing.T) {
	s, clk := newTestSession(t)
	_, err := s.Store()
	test.That(t, errors.Is(err, ErrNoFemurData), test.ShouldBeTrue)
	s.Ingest(femurAt(0, 0, 0, [4]float64{0, 0, 0, 1}))
	_, err = s.Store()
	test.That(t, errors.Is(err, ErrNoStylusData), test.ShouldBeTrue)
	s.Ingest(stylusAt(0.25, 0, 0))

	first, err := s.Store()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first.Index, test.ShouldEqual, 1)
	test.That(t, first.Time, test.ShouldEqual, clk.Now())

	clk.Add(time.Second)
	second, err := s.Store()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.Index, test.ShouldEqual, 2)

	points := s.Points()
	test.That(t, points, test.ShouldHaveLength, 2)
	test.That(t, points[1].Time.Sub(points[0].Time), test.ShouldEqual, time.Second)
	test.That(t, points[1].Stylus.Point, test.ShouldResemble, r3.Vector{X: 250})

	points[0].Index = 99
	test.That(t, s.Points()[0].Index, test.ShouldEqual, 1)
}

func TestMappedPoint(t *testing.T) {
	catalog := landmark.NewCatalog(
		landmark.Entry{Label: "L1", Reference: spatialmath.NewZeroPose(), Target: r3.Vector{X: 10, Y: 20}},
		landmark.Entry{Label: "M1", Reference: spatialmath.NewZeroPose(), Target: r3.Vector{X: 10, Y: -20}},
		landmark.Entry{Label: "L2", Reference: spatialmath.NewZeroPose(), Target: r3.Vector{X: 20, Y: 20}},
	)

	s, _ := newTestSession(t)
	_, err := s.MappedPoint(catalog, "L1")
	test.That(t, errors.Is(err, ErrNoFemurData), test.ShouldBeTrue)
	_, err = s.MappedPairs(catalog)
	test.That(t, errors.Is(err, ErrNoFemurData), test.ShouldBeTrue)

	s.Ingest(femurAt(0.1, 0, 0, [4]float64{0, 0, 0, 1}))
	mapped, err := s.MappedPoint(catalog, "L1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mapped.Entry.Label, test.ShouldEqual, "L1")
	test.That(t, spatialmath.R3VectorAlmostEqual(mapped.Calculated, r3.Vector{X: 110, Y: 20}, 1e-9), test.ShouldBeTrue)
	test.That(t, mapped.Transform.At(0, 3), test.ShouldAlmostEqual, 110, 1e-9)
	test.That(t, mapped.Transform.At(1, 3), test.ShouldAlmostEqual, 20, 1e-9)
	test.That(t, mapped.Transform.At(3, 3), test.ShouldEqual, 1)
	test.That(t, mapped.Transform.At(0, 0), test.ShouldAlmostEqual, 1, 1e-9)

	_, err = s.MappedPoint(catalog, "L9")
	test.That(t, errors.Is(err, landmark.ErrLandmarkNotFound), test.ShouldBeTrue)
	_, err = s.MappedPoint(nil, "L1")
	test.That(t, errors.Is(err, landmark.ErrLandmarkNotFound), test.ShouldBeTrue)

	pairs, err := s.MappedPairs(catalog)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldHaveLength, 1)
	test.That(t, pairs[0].Index, test.ShouldEqual, 1)
	test.That(t, spatialmath.R3VectorAlmostEqual(pairs[0].Medial, r3.Vector{X: 110, Y: -20}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.R3VectorAlmostEqual(pairs[0].Midpoint(), r3.Vector{X: 110}, 1e-9), test.ShouldBeTrue)
}

func TestRun(t *testing.T) {
	s, _ := newTestSession(t)
	source := posesource.SourceFunc(func(ctx context.Context, fn func(posesource.Sample)) error {
		fn(femurAt(0.5, 0, 0, [4]float64{0, 0, 0, 1}))
		fn(stylusAt(0.25, 0, 0))
		return nil
	})
	workers, result := s.Run(context.Background(), source)
	test.That(t, <-result, test.ShouldBeNil)
	workers.Stop()

	snap, err := s.Snapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, snap.Femur.Point, test.ShouldResemble, r3.Vector{X: 500})
	test.That(t, snap.Stylus.Point, test.ShouldResemble, r3.Vector{X: 250})
}

func TestRunSourcePanics(t *testing.T) {
	s, _ := newTestSession(t)
	source := posesource.SourceFunc(func(ctx context.Context, fn func(posesource.Sample)) error {
		fn(femurAt(0.125, 0, 0, [4]float64{0, 0, 0, 1}))
		panic("frame callback failed")
	})

	workers, result := s.Run(context.Background(), source)
	err := <-result
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frame callback failed")
	workers.Stop()

	// samples ingested before the panic are kept
	snap, err := s.Snapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, snap.Femur.Point, test.ShouldResemble, r3.Vector{X: 125})
}

func TestRunStops(t *testing.T) {
	s, _ := newTestSession(t)
	blocking := posesource.SourceFunc(func(ctx context.Context, fn func(posesource.Sample)) error {
		<-ctx.Done()
		return ctx.Err()
	})

	workers, result := s.Run(context.Background(), blocking)
	workers.Stop()
	test.That(t, <-result, test.ShouldBeError, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	workers, result = s.Run(ctx, blocking)
	cancel()
	test.That(t, <-result, test.ShouldBeError, context.Canceled)
	workers.Stop()
}
