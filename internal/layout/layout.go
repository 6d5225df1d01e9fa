// Package layout computes seat positions and room scale for seating charts.
//
// Coordinates are screen-style: x grows to the right and y grows downward.
// Table geometry is computed in feet around the table centre, then rotated
// and converted to room pixels using the room's scale.
package layout

import "math"

// Shape is a table footprint
type Shape string

const (
	ShapeRound     Shape = "round"
	ShapeRectangle Shape = "rectangle"
	ShapeSquare    Shape = "square"
)

const (
	// DefaultPixelsPerFoot applies to rooms without a measured floor plan.
	DefaultPixelsPerFoot = 10.0

	// ChairOffsetFt is the distance from the table edge to a chair centre.
	ChairOffsetFt = 1.5
)

// Point is a 2D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Table is a placed table. WidthFt is the diameter of round tables and the
// short side of rectangles; LengthFt is the long side. X and Y are the
// centre in room pixels.
type Table struct {
	Shape       Shape
	WidthFt     float64
	LengthFt    float64
	Seats       int
	X           float64
	Y           float64
	RotationDeg float64
}

// SeatOffsets returns chair centres in feet relative to the table centre,
// before rotation. Seat i of the result is seat number i+1.
func SeatOffsets(shape Shape, widthFt, lengthFt float64, seats int) []Point {
	if seats <= 0 {
		return nil
	}

	switch shape {
	case ShapeRectangle:
		return rectangleSeats(widthFt, lengthFt, seats)
	case ShapeSquare:
		return squareSeats(widthFt, seats)
	default:
		return roundSeats(widthFt/2, seats)
	}
}

// roundSeats places seat i at angle 2*pi*i/n - pi/2, so seat 1 sits at the top.
func roundSeats(radiusFt float64, n int) []Point {
	r := radiusFt + ChairOffsetFt
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		out[i] = Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
	}
	return out
}

// rectangleSeats puts ceil(n/2) chairs along the top long side and the rest
// along the bottom, each side evenly spaced at (k+1)*L/(m+1).
func rectangleSeats(widthFt, lengthFt float64, n int) []Point {
	if lengthFt < widthFt {
		widthFt, lengthFt = lengthFt, widthFt
	}
	top := (n + 1) / 2
	bottom := n / 2
	yTop := -(widthFt/2 + ChairOffsetFt)
	yBottom := widthFt/2 + ChairOffsetFt

	out := make([]Point, 0, n)
	out = append(out, spacedAlong(lengthFt, top, yTop)...)
	out = append(out, spacedAlong(lengthFt, bottom, yBottom)...)
	return out
}

// squareSeats spreads chairs over top, right, bottom and left in that order;
// leftover seats go to the earlier sides.
func squareSeats(sideFt float64, n int) []Point {
	var counts [4]int
	for i := 0; i < n; i++ {
		counts[i%4]++
	}
	edge := sideFt/2 + ChairOffsetFt

	out := make([]Point, 0, n)
	out = append(out, spacedAlong(sideFt, counts[0], -edge)...)
	for _, p := range spacedAlong(sideFt, counts[1], edge) {
		out = append(out, Point{X: edge, Y: p.X})
	}
	// Bottom and left run right-to-left and bottom-to-top so numbering goes clockwise.
	bottom := spacedAlong(sideFt, counts[2], edge)
	for i := len(bottom) - 1; i >= 0; i-- {
		out = append(out, bottom[i])
	}
	left := spacedAlong(sideFt, counts[3], -edge)
	for i := len(left) - 1; i >= 0; i-- {
		out = append(out, Point{X: -edge, Y: left[i].X})
	}
	return out
}

// spacedAlong places m points on a horizontal segment of the given length
// centred on x=0.
func spacedAlong(length float64, m int, y float64) []Point {
	out := make([]Point, m)
	for k := 0; k < m; k++ {
		out[k] = Point{X: -length/2 + float64(k+1)*length/float64(m+1), Y: y}
	}
	return out
}

// Rotate turns p clockwise (in screen coordinates) by deg around the origin.
func Rotate(p Point, deg float64) Point {
	if deg == 0 {
		return p
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// SeatPositions returns absolute chair centres in room pixels.
func SeatPositions(t Table, scale Scale) []Point {
	offsets := SeatOffsets(t.Shape, t.WidthFt, t.LengthFt, t.Seats)
	out := make([]Point, len(offsets))
	for i, off := range offsets {
		r := Rotate(off, t.RotationDeg)
		out[i] = Point{
			X: t.X + scale.FeetToPixels(r.X),
			Y: t.Y + scale.FeetToPixels(r.Y),
		}
	}
	return out
}

// HalfExtents returns half the width and height, in feet, of the axis
// aligned box around the rotated table top.
func HalfExtents(shape Shape, widthFt, lengthFt, rotationDeg float64) (float64, float64) {
	switch shape {
	case ShapeRound:
		return widthFt / 2, widthFt / 2
	case ShapeSquare:
		lengthFt = widthFt
	}
	if lengthFt < widthFt {
		widthFt, lengthFt = lengthFt, widthFt
	}
	sin, cos := math.Sincos(rotationDeg * math.Pi / 180)
	hx := math.Abs(lengthFt/2*cos) + math.Abs(widthFt/2*sin)
	hy := math.Abs(lengthFt/2*sin) + math.Abs(widthFt/2*cos)
	return hx, hy
}

// ClampToRoom moves a table centre so its top stays inside a room of the
// given pixel size. A table larger than the room is centred on that axis.
func ClampToRoom(t Table, scale Scale, roomWidthPx, roomLengthPx float64) Point {
	hxFt, hyFt := HalfExtents(t.Shape, t.WidthFt, t.LengthFt, t.RotationDeg)
	hx := scale.FeetToPixels(hxFt)
	hy := scale.FeetToPixels(hyFt)
	return Point{
		X: clampAxis(t.X, hx, roomWidthPx),
		Y: clampAxis(t.Y, hy, roomLengthPx),
	}
}

func clampAxis(v, half, size float64) float64 {
	if 2*half >= size {
		return size / 2
	}
	return math.Min(math.Max(v, half), size-half)
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
