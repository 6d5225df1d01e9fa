package layout

// Scale converts between feet and room pixels.
type Scale float64

// NewScale returns the room's scale, or DefaultPixelsPerFoot when the room
// has none or an invalid one.
func NewScale(pixelsPerFoot *float64) Scale {
	if pixelsPerFoot == nil || *pixelsPerFoot <= 0 {
		return Scale(DefaultPixelsPerFoot)
	}
	return Scale(*pixelsPerFoot)
}

// FeetToPixels returns ft * pixels_per_foot.
func (s Scale) FeetToPixels(ft float64) float64 {
	return ft * float64(s)
}

// PixelsToFeet returns px / pixels_per_foot.
func (s Scale) PixelsToFeet(px float64) float64 {
	return px / float64(s)
}

// ScaleFromMeasurement derives pixels per foot from a known distance.
func ScaleFromMeasurement(pixels, feet float64) (Scale, bool) {
	if pixels <= 0 || feet <= 0 {
		return 0, false
	}
	return Scale(pixels / feet), true
}
