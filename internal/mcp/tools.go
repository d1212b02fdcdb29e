package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Z1ni/disp/internal/ipc"
	"github.com/Z1ni/disp/internal/preset"
)

func (s *Server) handleListPresets(_ context.Context, _ *mcpsdk.CallToolRequest, args ListPresetsInput) (*mcpsdk.CallToolResult, ListPresetsOutput, error) {
	data, err := s.daemon.ListPresets()
	if err != nil {
		return nil, ListPresetsOutput{}, err
	}

	out := ListPresetsOutput{Presets: make([]PresetSummary, 0, len(data.Presets))}
	for _, p := range data.Presets {
		if args.ApplicableOnly && !p.Applicable {
			continue
		}
		summary := PresetSummary{
			Name:       p.Name,
			Applicable: p.Applicable,
			Displays:   make([]DisplaySetting, 0, len(p.Displays)),
		}
		for _, d := range p.Displays {
			summary.Displays = append(summary.Displays, DisplaySetting{
				Display:     d.Display,
				Orientation: preset.Orientation(d.Orientation).String(),
				X:           d.X,
				Y:           d.Y,
				Width:       d.Width,
				Height:      d.Height,
			})
		}
		out.Presets = append(out.Presets, summary)
	}
	return nil, out, nil
}

func (s *Server) handleApplyPreset(_ context.Context, _ *mcpsdk.CallToolRequest, args PresetNameInput) (*mcpsdk.CallToolResult, ApplyPresetOutput, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, ApplyPresetOutput{}, fmt.Errorf("name is required")
	}

	data, err := s.daemon.ApplyPreset(name)
	if errors.Is(err, ipc.ErrWarning) {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: err.Error()},
			},
		}, ApplyPresetOutput{Preset: name, Message: err.Error()}, nil
	}
	if err != nil {
		return nil, ApplyPresetOutput{}, err
	}
	s.logger.Info("preset applied over MCP", "preset", data.Preset, "succeeded", data.Succeeded, "total", data.Total)
	return nil, ApplyPresetOutput{
		Preset:    data.Preset,
		Total:     data.Total,
		Succeeded: data.Succeeded,
		Failed:    data.Failed,
		Message:   data.Message,
	}, nil
}

func (s *Server) handleSavePreset(_ context.Context, _ *mcpsdk.CallToolRequest, args PresetNameInput) (*mcpsdk.CallToolResult, SavePresetOutput, error) {
	if err := preset.ValidateName(args.Name); err != nil {
		return nil, SavePresetOutput{}, err
	}
	data, err := s.daemon.SavePreset(args.Name)
	if err != nil {
		return nil, SavePresetOutput{}, err
	}
	return nil, SavePresetOutput{Name: data.Name, Replaced: data.Replaced, Displays: data.Displays}, nil
}

func (s *Server) handleSetOrientation(_ context.Context, _ *mcpsdk.CallToolRequest, args SetOrientationInput) (*mcpsdk.CallToolResult, SetOrientationOutput, error) {
	if args.Display == "" {
		return nil, SetOrientationOutput{}, fmt.Errorf("display is required")
	}
	if _, err := preset.ParseOrientation(args.Orientation); err != nil {
		return nil, SetOrientationOutput{}, err
	}
	data, err := s.daemon.SetOrientation(args.Display, args.Orientation)
	if err != nil {
		return nil, SetOrientationOutput{}, err
	}
	return nil, SetOrientationOutput{Display: data.Display, Orientation: data.Orientation, Changed: data.Changed}, nil
}

func (s *Server) handleAbout(_ context.Context, _ *mcpsdk.CallToolRequest, _ AboutInput) (*mcpsdk.CallToolResult, AboutOutput, error) {
	data, err := s.daemon.About()
	if err != nil {
		return nil, AboutOutput{}, err
	}
	out := AboutOutput{
		VirtualWidth:  data.VirtualWidth,
		VirtualHeight: data.VirtualHeight,
		Monitors:      make([]MonitorSummary, 0, len(data.Monitors)),
	}
	for _, m := range data.Monitors {
		out.Monitors = append(out.Monitors, MonitorSummary{
			Number:      m.Number,
			Name:        m.Name,
			Display:     m.Display,
			Orientation: m.Orientation,
			X:           m.X,
			Y:           m.Y,
			Width:       m.Width,
			Height:      m.Height,
		})
	}
	return nil, out, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	st, err := s.daemon.Status()
	if err != nil {
		return nil, ReloadOutput{}, err
	}
	return nil, ReloadOutput{Presets: st.Presets, Applicable: st.Applicable}, nil
}
