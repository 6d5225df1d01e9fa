package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// ============================================================================
// Round Tables
// ============================================================================

func TestSeatOffsets_Round_FirstSeatAtTop(t *testing.T) {
	t.Parallel()

	seats := SeatOffsets(ShapeRound, 5, 5, 4)
	require.Len(t, seats, 4)

	r := 2.5 + ChairOffsetFt
	assert.InDelta(t, 0, seats[0].X, eps)
	assert.InDelta(t, -r, seats[0].Y, eps)
	assert.InDelta(t, r, seats[1].X, eps)
	assert.InDelta(t, 0, seats[1].Y, eps)
	assert.InDelta(t, 0, seats[2].X, eps)
	assert.InDelta(t, r, seats[2].Y, eps)
	assert.InDelta(t, -r, seats[3].X, eps)
}

func TestSeatOffsets_Round_AllOnRadius(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 7, 10, 24} {
		seats := SeatOffsets(ShapeRound, 6, 6, n)
		require.Len(t, seats, n)
		for i, p := range seats {
			assert.InDelta(t, 3+ChairOffsetFt, math.Hypot(p.X, p.Y), 1e-9, "n=%d seat=%d", n, i)
		}
	}
}

// ============================================================================
// Rectangular Tables
// ============================================================================

func TestSeatOffsets_Rectangle_SplitsLongSides(t *testing.T) {
	t.Parallel()

	seats := SeatOffsets(ShapeRectangle, 2.5, 8, 5)
	require.Len(t, seats, 5)

	var top, bottom int
	for _, p := range seats {
		if p.Y < 0 {
			top++
		} else {
			bottom++
		}
	}
	assert.Equal(t, 3, top)
	assert.Equal(t, 2, bottom)

	// Top side spaced at (k+1)*8/4 from the left end
	assert.InDelta(t, -2, seats[0].X, eps)
	assert.InDelta(t, 0, seats[1].X, eps)
	assert.InDelta(t, 2, seats[2].X, eps)
	assert.InDelta(t, -(1.25 + ChairOffsetFt), seats[0].Y, eps)

	// Bottom side spaced at (k+1)*8/3
	assert.InDelta(t, -4+8.0/3, seats[3].X, eps)
	assert.InDelta(t, 1.25+ChairOffsetFt, seats[3].Y, eps)
}

func TestSeatOffsets_Rectangle_SwapsWhenWidthIsLonger(t *testing.T) {
	t.Parallel()

	a := SeatOffsets(ShapeRectangle, 8, 2.5, 4)
	b := SeatOffsets(ShapeRectangle, 2.5, 8, 4)
	assert.Equal(t, b, a)
}

// ============================================================================
// Square Tables
// ============================================================================

func TestSeatOffsets_Square_OneSeatPerSide(t *testing.T) {
	t.Parallel()

	seats := SeatOffsets(ShapeSquare, 4, 4, 4)
	require.Len(t, seats, 4)

	edge := 2 + ChairOffsetFt
	assert.InDelta(t, -edge, seats[0].Y, eps) // top
	assert.InDelta(t, edge, seats[1].X, eps)  // right
	assert.InDelta(t, edge, seats[2].Y, eps)  // bottom
	assert.InDelta(t, -edge, seats[3].X, eps) // left
}

func TestSeatOffsets_Square_ExtraSeatsGoToEarlierSides(t *testing.T) {
	t.Parallel()

	seats := SeatOffsets(ShapeSquare, 4, 4, 6)
	require.Len(t, seats, 6)

	edge := 2 + ChairOffsetFt
	var top, right int
	for _, p := range seats {
		if math.Abs(p.Y+edge) < eps {
			top++
		}
		if math.Abs(p.X-edge) < eps {
			right++
		}
	}
	assert.Equal(t, 2, top)
	assert.Equal(t, 2, right)
}

func TestSeatOffsets_ZeroSeats(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SeatOffsets(ShapeRound, 5, 5, 0))
}

// ============================================================================
// Rotation and Placement
// ============================================================================

func TestRotate_QuarterTurnClockwise(t *testing.T) {
	t.Parallel()

	p := Rotate(Point{X: 1, Y: 0}, 90)
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 1, p.Y, eps)
}

func TestSeatPositions_AppliesScaleAndCentre(t *testing.T) {
	t.Parallel()

	tbl := Table{Shape: ShapeRound, WidthFt: 5, LengthFt: 5, Seats: 4, X: 200, Y: 100}
	seats := SeatPositions(tbl, Scale(10))
	require.Len(t, seats, 4)

	assert.InDelta(t, 200, seats[0].X, eps)
	assert.InDelta(t, 100-40, seats[0].Y, eps)
	assert.InDelta(t, 240, seats[1].X, eps)
}

func TestSeatPositions_RotatedRectangle(t *testing.T) {
	t.Parallel()

	tbl := Table{Shape: ShapeRectangle, WidthFt: 2, LengthFt: 6, Seats: 2, X: 0, Y: 0, RotationDeg: 90}
	seats := SeatPositions(tbl, Scale(1))
	require.Len(t, seats, 2)

	// Top seat (0, -2.5) swings to the right side after a clockwise quarter turn
	assert.InDelta(t, 1+ChairOffsetFt, seats[0].X, eps)
	assert.InDelta(t, 0, seats[0].Y, eps)
}

func TestClampToRoom(t *testing.T) {
	t.Parallel()

	scale := Scale(10)
	tbl := Table{Shape: ShapeRound, WidthFt: 6, LengthFt: 6, X: -50, Y: 1000}

	p := ClampToRoom(tbl, scale, 400, 300)
	assert.InDelta(t, 30, p.X, eps)
	assert.InDelta(t, 270, p.Y, eps)

	inside := Table{Shape: ShapeRound, WidthFt: 6, LengthFt: 6, X: 200, Y: 150}
	p = ClampToRoom(inside, scale, 400, 300)
	assert.Equal(t, Point{X: 200, Y: 150}, p)
}

func TestClampToRoom_TableLargerThanRoom(t *testing.T) {
	t.Parallel()

	tbl := Table{Shape: ShapeRectangle, WidthFt: 3, LengthFt: 50, X: 0, Y: 0}
	p := ClampToRoom(tbl, Scale(10), 200, 200)
	assert.InDelta(t, 100, p.X, eps)
	assert.InDelta(t, 15, p.Y, eps)
}

func TestHalfExtents_RotatedRectangle(t *testing.T) {
	t.Parallel()

	hx, hy := HalfExtents(ShapeRectangle, 2, 6, 90)
	assert.InDelta(t, 1, hx, 1e-9)
	assert.InDelta(t, 3, hy, 1e-9)
}

func TestNormalizeDegrees(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 270, NormalizeDegrees(-90), eps)
	assert.InDelta(t, 10, NormalizeDegrees(370), eps)
	assert.InDelta(t, 0, NormalizeDegrees(360), eps)
}

// ============================================================================
// Scale
// ============================================================================

func TestNewScale_DefaultsWhenMissing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Scale(DefaultPixelsPerFoot), NewScale(nil))
	zero := 0.0
	assert.Equal(t, Scale(DefaultPixelsPerFoot), NewScale(&zero))
	v := 24.0
	assert.Equal(t, Scale(24), NewScale(&v))
}

func TestScale_RoundTrip(t *testing.T) {
	t.Parallel()

	s := Scale(12.5)
	assert.InDelta(t, 250, s.FeetToPixels(20), eps)
	assert.InDelta(t, 20, s.PixelsToFeet(250), eps)
}

func TestScaleFromMeasurement(t *testing.T) {
	t.Parallel()

	s, ok := ScaleFromMeasurement(600, 40)
	require.True(t, ok)
	assert.InDelta(t, 15, float64(s), eps)

	_, ok = ScaleFromMeasurement(0, 40)
	assert.False(t, ok)
}
