package view

// DefaultInsetMargin is the gap between the inset and the top-right corner.
const DefaultInsetMargin = 16

// Inset is a secondary viewport in the top-right corner of the surface.
type Inset struct {
	Width  int
	Height int
	Margin int
}

// Rect is a pixel rectangle with a bottom-left origin.
type Rect struct {
	X, Y, Width, Height int
}

// Rect places the inset on a width×height surface. ok is false when the
// inset has no area and should not be drawn.
func (in Inset) Rect(width, height int) (r Rect, ok bool) {
	r = Rect{
		X:      width - in.Width - in.Margin,
		Y:      height - in.Height - in.Margin,
		Width:  in.Width,
		Height: in.Height,
	}
	return r, in.Width > 0 && in.Height > 0
}
