package renderer

import (
	"math"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
)

// Camera represents a viewport onto a board.
type Camera struct {
	// Center position in world coordinates (mm)
	CenterX float64
	CenterY float64

	// Zoom level (pixels per mm)
	// Higher values = more zoomed in
	Zoom float64

	// Screen dimensions (pixels)
	ScreenWidth  int
	ScreenHeight int

	// View controls
	FlipView bool    // true = mirrored view (looking from the back)
	Rotation float64 // rotation in degrees (0, 90, 180, 270)

	// Rotation center (world coordinates in mm)
	// View will rotate/flip around this point
	RotationCenterX float64
	RotationCenterY float64
}

// NewCamera creates a camera with default settings. KiCad board
// coordinates already have Y pointing down, like the screen.
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         10.0, // 10 pixels per mm is a reasonable default
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// WorldToScreen converts world coordinates (mm) to screen coordinates (pixels)
func (c *Camera) WorldToScreen(pos sexp.Position) (float64, float64) {
	pos = c.applyViewTransform(pos)

	x := (pos.X-c.CenterX)*c.Zoom + float64(c.ScreenWidth)/2.0
	y := (pos.Y-c.CenterY)*c.Zoom + float64(c.ScreenHeight)/2.0

	return x, y
}

// ScreenToWorld converts screen coordinates (pixels) to world coordinates (mm)
func (c *Camera) ScreenToWorld(screenX, screenY float64) sexp.Position {
	x := (screenX-float64(c.ScreenWidth)/2.0)/c.Zoom + c.CenterX
	y := (screenY-float64(c.ScreenHeight)/2.0)/c.Zoom + c.CenterY

	return c.applyInverseViewTransform(sexp.Position{X: x, Y: y})
}

// Pan moves the camera by screen pixel offsets
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.CenterX -= deltaX / c.Zoom
	c.CenterY -= deltaY / c.Zoom
}

// ZoomAt zooms in/out at a specific screen position
// factor > 1 zooms in, factor < 1 zooms out
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	worldPos := c.ScreenToWorld(screenX, screenY)

	c.Zoom = math.Min(math.Max(c.Zoom*factor, 0.1), 1000.0)

	// Keep the point under the cursor stationary
	newWorldPos := c.ScreenToWorld(screenX, screenY)
	c.CenterX += worldPos.X - newWorldPos.X
	c.CenterY += worldPos.Y - newWorldPos.Y
}

// Fit adjusts camera to fit the entire content in view
func (c *Camera) Fit(bbox sexp.BoundingBox) {
	width := bbox.Width()
	height := bbox.Height()
	if bbox.IsEmpty() || width <= 0 || height <= 0 {
		return
	}

	center := bbox.Center()
	c.CenterX, c.CenterY = center.X, center.Y
	c.RotationCenterX, c.RotationCenterY = center.X, center.Y

	// 90% of the screen leaves a small border
	zoomX := float64(c.ScreenWidth) * 0.9 / width
	zoomY := float64(c.ScreenHeight) * 0.9 / height
	c.Zoom = math.Min(zoomX, zoomY)
}

// UpdateScreenSize updates camera when window is resized
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}

// Flip toggles the view flip state (mirrored/normal)
func (c *Camera) Flip() {
	c.FlipView = !c.FlipView
}

// Rotate rotates the view by the given degrees
func (c *Camera) Rotate(degrees float64) {
	c.Rotation = math.Mod(c.Rotation+degrees, 360)
	if c.Rotation < 0 {
		c.Rotation += 360
	}
}

// applyViewTransform applies flip and rotation to a world position
func (c *Camera) applyViewTransform(pos sexp.Position) sexp.Position {
	x, y := pos.X-c.RotationCenterX, pos.Y-c.RotationCenterY

	if c.Rotation != 0 {
		rad := c.Rotation * math.Pi / 180.0
		cos, sin := math.Cos(rad), math.Sin(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	// Mirror X axis
	if c.FlipView {
		x = -x
	}

	return sexp.Position{X: x + c.RotationCenterX, Y: y + c.RotationCenterY}
}

// applyInverseViewTransform applies inverse flip and rotation
func (c *Camera) applyInverseViewTransform(pos sexp.Position) sexp.Position {
	x, y := pos.X-c.RotationCenterX, pos.Y-c.RotationCenterY

	// Undo the flip before the rotation
	if c.FlipView {
		x = -x
	}

	if c.Rotation != 0 {
		rad := -c.Rotation * math.Pi / 180.0
		cos, sin := math.Cos(rad), math.Sin(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	return sexp.Position{X: x + c.RotationCenterX, Y: y + c.RotationCenterY}
}

// GetVisibleBounds returns the bounding box of the visible area in world coordinates
func (c *Camera) GetVisibleBounds() sexp.BoundingBox {
	bb := sexp.NewBoundingBox()
	w, h := float64(c.ScreenWidth), float64(c.ScreenHeight)
	// rotation may change which screen corner maps to which world corner
	for _, corner := range [][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		bb.Expand(c.ScreenToWorld(corner[0], corner[1]))
	}
	return bb
}

// screenAngle converts a KiCad rotation (counter-clockwise on screen) to
// the clockwise radians Gio's affine rotation expects, honouring the view.
func (c *Camera) screenAngle(deg float64) float32 {
	a := -deg + c.Rotation
	if c.FlipView {
		a = -a
	}
	return float32(a * math.Pi / 180)
}
