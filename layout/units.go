package layout

// PtPerPx converts logical pixels to points. Logical pixels are laid out as
// canvas millimetres, one to one, so font sizes given in pixels must be
// converted before a font face is created.
const PtPerPx = 72.0 / 25.4

// PxToPt converts a logical pixel length to points.
func PxToPt(px float64) float64 { return px * PtPerPx }
