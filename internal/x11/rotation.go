package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/Z1ni/disp/internal/preset"
)

const (
	rotationMask   = randr.RotationRotate0 | randr.RotationRotate90 | randr.RotationRotate180 | randr.RotationRotate270
	reflectionMask = randr.RotationReflectX | randr.RotationReflectY
)

// orientationFromRotation maps a CRTC rotation to an orientation. Reflection
// bits are ignored.
func orientationFromRotation(rotation uint16) preset.Orientation {
	switch rotation & rotationMask {
	case randr.RotationRotate90:
		return preset.Portrait
	case randr.RotationRotate180:
		return preset.LandscapeFlipped
	case randr.RotationRotate270:
		return preset.PortraitFlipped
	default:
		return preset.Landscape
	}
}

func rotationFromOrientation(o preset.Orientation) (uint16, error) {
	switch o {
	case preset.Landscape:
		return randr.RotationRotate0, nil
	case preset.Portrait:
		return randr.RotationRotate90, nil
	case preset.LandscapeFlipped:
		return randr.RotationRotate180, nil
	case preset.PortraitFlipped:
		return randr.RotationRotate270, nil
	}
	return 0, fmt.Errorf("orientation %d out of range", int(o))
}

// targetRotation keeps the reflection of current and checks that the CRTC
// supports the new rotation.
func targetRotation(current, supported uint16, o preset.Orientation) (uint16, error) {
	rot, err := rotationFromOrientation(o)
	if err != nil {
		return 0, err
	}
	if supported != 0 && supported&rot == 0 {
		return 0, fmt.Errorf("crtc does not support %s orientation", o)
	}
	return rot | (current & reflectionMask), nil
}
