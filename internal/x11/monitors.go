package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/Z1ni/disp/internal/display"
)

// output is an active RandR output and the CRTC driving it.
type output struct {
	id   randr.Output
	name string
	crtc randr.Crtc
	info *randr.GetCrtcInfoReply
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() (display.Topology, error) {
	resources, err := c.resources()
	if err != nil {
		return nil, err
	}
	outputs, err := c.activeOutputs(resources)
	if err != nil {
		return nil, err
	}

	monitors := make([]display.Monitor, 0, len(outputs))
	for _, o := range outputs {
		monitors = append(monitors, display.Monitor{
			DevicePath:   o.name,
			Output:       o.name,
			FriendlyName: c.monitorName(o.id),
			Orientation:  orientationFromRotation(o.info.Rotation),
			X:            int(o.info.X),
			Y:            int(o.info.Y),
			Width:        int(o.info.Width),
			Height:       int(o.info.Height),
		})
	}
	return display.Normalize(monitors), nil
}

func (c *Connection) resources() (*randr.GetScreenResourcesReply, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	return resources, nil
}

// activeOutputs lists connected outputs that currently drive a CRTC.
func (c *Connection) activeOutputs(resources *randr.GetScreenResourcesReply) ([]output, error) {
	var outputs []output
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(c.XUtil.Conn(), id, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get output info: %w", err)
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}

		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get crtc info for %s: %w", info.Name, err)
		}
		// Skip disabled CRTCs
		if crtcInfo.Mode == 0 || crtcInfo.Width == 0 || crtcInfo.Height == 0 {
			continue
		}

		outputs = append(outputs, output{
			id:   id,
			name: string(info.Name),
			crtc: info.Crtc,
			info: crtcInfo,
		})
	}
	return outputs, nil
}

func (c *Connection) findOutput(resources *randr.GetScreenResourcesReply, name string) (output, []output, error) {
	outputs, err := c.activeOutputs(resources)
	if err != nil {
		return output{}, nil, err
	}
	for _, o := range outputs {
		if o.name == name {
			return o, outputs, nil
		}
	}
	return output{}, nil, fmt.Errorf("no active output named %q", name)
}

// monitorName reads the monitor name from the output's EDID property. Outputs
// without EDID yield "".
func (c *Connection) monitorName(id randr.Output) string {
	atom, err := xprop.Atm(c.XUtil, "EDID")
	if err != nil {
		return ""
	}
	reply, err := randr.GetOutputProperty(c.XUtil.Conn(), id, atom, xproto.AtomAny, 0, edidBlockSize/4, false, false).Reply()
	if err != nil || reply == nil {
		return ""
	}
	return edidMonitorName(reply.Data)
}
