package x11

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/Z1ni/disp/internal/display"
)

type rect struct {
	x, y, w, h int
}

// screenExtent returns the screen size needed to hold every rectangle.
func screenExtent(rects []rect) (width, height int) {
	for _, r := range rects {
		width = max(width, r.x+r.w)
		height = max(height, r.y+r.h)
	}
	return width, height
}

// scaleMillimeters keeps the screen's physical DPI when its pixel size changes.
func scaleMillimeters(px, curPx, curMM int) uint32 {
	if curPx <= 0 || curMM <= 0 {
		// 96 DPI
		return uint32(math.Round(float64(px) * 25.4 / 96))
	}
	return uint32(math.Round(float64(px) * float64(curMM) / float64(curPx)))
}

func statusName(status byte) string {
	switch status {
	case randr.SetConfigSuccess:
		return "success"
	case randr.SetConfigInvalidConfigTime:
		return "invalid config time"
	case randr.SetConfigInvalidTime:
		return "invalid time"
	case randr.SetConfigFailed:
		return "failed"
	}
	return fmt.Sprintf("status %d", status)
}

// SetMode reconfigures the CRTC driving the named output. Only the fields
// marked in change are taken from it; the rest keep their current values.
// The screen is grown before the change when the new layout needs more room
// and shrunk afterwards when it needs less.
func (c *Connection) SetMode(devicePath string, change display.ModeChange) error {
	if change.Empty() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resources, err := c.resources()
	if err != nil {
		return err
	}
	target, outputs, err := c.findOutput(resources, devicePath)
	if err != nil {
		return err
	}

	x, y := int(target.info.X), int(target.info.Y)
	if change.Has(display.FieldPosition) {
		x, y = change.X, change.Y
	}
	if x < 0 || y < 0 || x > math.MaxInt16 || y > math.MaxInt16 {
		return fmt.Errorf("position %d,%d is outside the X screen", x, y)
	}

	rotation := target.info.Rotation
	w, h := int(target.info.Width), int(target.info.Height)
	if change.Has(display.FieldOrientation) {
		rotation, err = targetRotation(target.info.Rotation, target.info.Rotations, change.Orientation)
		if err != nil {
			return err
		}
	}
	if change.Has(display.FieldWidth) {
		w = change.Width
	}
	if change.Has(display.FieldHeight) {
		h = change.Height
	}

	rects := make([]rect, 0, len(outputs))
	for _, o := range outputs {
		if o.crtc == target.crtc {
			rects = append(rects, rect{x: x, y: y, w: w, h: h})
			continue
		}
		rects = append(rects, rect{x: int(o.info.X), y: int(o.info.Y), w: int(o.info.Width), h: int(o.info.Height)})
	}
	needW, needH := screenExtent(rects)

	curW, curH, err := c.screenSize()
	if err != nil {
		return err
	}
	if needW > curW || needH > curH {
		if err := c.resizeScreen(max(needW, curW), max(needH, curH)); err != nil {
			return err
		}
	}

	reply, err := randr.SetCrtcConfig(c.XUtil.Conn(), target.crtc, xproto.TimeCurrentTime, resources.ConfigTimestamp,
		int16(x), int16(y), target.info.Mode, rotation, target.info.Outputs).Reply()
	if err != nil {
		return fmt.Errorf("failed to configure crtc for %s: %w", devicePath, err)
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("failed to configure crtc for %s: %s", devicePath, statusName(reply.Status))
	}

	shrinkScreen(c.resizeScreen, needW, needH, curW, curH)
	return nil
}

// shrinkScreen fits the screen to the new layout. A refused shrink leaves a
// larger, still valid screen, so failure is only logged.
func shrinkScreen(resize func(w, h int) error, needW, needH, curW, curH int) {
	if needW >= curW && needH >= curH {
		return
	}
	if err := resize(needW, needH); err != nil {
		slog.Debug("failed to shrink screen", "error", err, "width", needW, "height", needH)
	}
}

func (c *Connection) screenSize() (int, int, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return int(geom.Width), int(geom.Height), nil
}

func (c *Connection) resizeScreen(width, height int) error {
	limits, err := randr.GetScreenSizeRange(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen size range: %w", err)
	}
	if width > int(limits.MaxWidth) || height > int(limits.MaxHeight) {
		return fmt.Errorf("layout needs a %dx%d screen, maximum is %dx%d", width, height, limits.MaxWidth, limits.MaxHeight)
	}
	width = max(width, int(limits.MinWidth))
	height = max(height, int(limits.MinHeight))

	// The setup-time screen info is only used for its DPI.
	screen := c.XUtil.Screen()
	mmW := scaleMillimeters(width, int(screen.WidthInPixels), int(screen.WidthInMillimeters))
	mmH := scaleMillimeters(height, int(screen.HeightInPixels), int(screen.HeightInMillimeters))
	if err := randr.SetScreenSizeChecked(c.XUtil.Conn(), c.Root, uint16(width), uint16(height), mmW, mmH).Check(); err != nil {
		return fmt.Errorf("failed to resize screen to %dx%d: %w", width, height, err)
	}
	return nil
}
