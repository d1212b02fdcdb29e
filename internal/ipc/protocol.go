package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandStatus         CommandType = "STATUS"
	CommandListPresets    CommandType = "LIST_PRESETS"
	CommandApplyPreset    CommandType = "APPLY_PRESET"
	CommandSavePreset     CommandType = "SAVE_PRESET"
	CommandSetOrientation CommandType = "SET_ORIENTATION"
	CommandAbout          CommandType = "ABOUT"
	CommandReload         CommandType = "RELOAD"
)

// Response statuses
const (
	StatusOK      = "OK"
	StatusError   = "ERROR"
	StatusWarning = "WARNING"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status  string          `json:"status"` // "OK", "WARNING" or "ERROR"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	InstanceID    string `json:"instance_id"`
	ConfigPath    string `json:"config_path"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Displays      int    `json:"displays"`
	Presets       int    `json:"presets"`
	Applicable    int    `json:"applicable"`
	Busy          bool   `json:"busy"`
	LastError     string `json:"last_error,omitempty"`
}

// DisplayInfo is one display of a preset
type DisplayInfo struct {
	Display     string `json:"display"`
	Orientation int    `json:"orientation"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// PresetInfo describes one preset in LIST_PRESETS
type PresetInfo struct {
	Name       string        `json:"name"`
	Applicable bool          `json:"applicable"`
	Displays   []DisplayInfo `json:"displays"`
}

// PresetsData represents the data returned by LIST_PRESETS
type PresetsData struct {
	Presets []PresetInfo `json:"presets"`
}

// NamePayload is the payload of APPLY_PRESET and SAVE_PRESET
type NamePayload struct {
	Name string `json:"name"`
}

// ApplyData represents the data returned by APPLY_PRESET
type ApplyData struct {
	Preset    string   `json:"preset"`
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed,omitempty"`
	Message   string   `json:"message"`
}

// SaveData represents the data returned by SAVE_PRESET
type SaveData struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Replaced bool   `json:"replaced"`
	Displays int    `json:"displays"`
}

// SetOrientationPayload is the payload of SET_ORIENTATION. Orientation
// accepts 0-3 or a label such as "portrait".
type SetOrientationPayload struct {
	Display     string `json:"display"`
	Orientation string `json:"orientation"`
}

// OrientationData represents the data returned by SET_ORIENTATION
type OrientationData struct {
	Display     string `json:"display"`
	Orientation string `json:"orientation"`
	Changed     bool   `json:"changed"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Output      string `json:"output"`
	Display     string `json:"display"`
	Orientation string `json:"orientation"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// AboutData represents the data returned by ABOUT
type AboutData struct {
	VirtualWidth  int           `json:"virtual_width"`
	VirtualHeight int           `json:"virtual_height"`
	Monitors      []MonitorInfo `json:"monitors"`
	Text          string        `json:"text"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// NewWarningResponse creates a response for a request that was refused
// without failing, such as an apply while another is running
func NewWarningResponse(msg string) *Response {
	return &Response{
		Status:  StatusWarning,
		Warning: msg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
