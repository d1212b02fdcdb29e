package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Z1ni/disp/internal/runtimepath"
)

// ErrWarning marks a request the daemon refused without failing, for
// example an apply while another apply is still running.
var ErrWarning = errors.New("daemon warning")

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// sendRequest surfaces the failure as a connection error.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for the socket at socketPath
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		// Applying a preset may wait on several mode sets.
		timeout: 30 * time.Second,
	}
}

// sendRequest sends a request and waits for a response. ERROR and WARNING
// responses are returned together with an error.
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	switch resp.Status {
	case StatusError:
		return &resp, fmt.Errorf("daemon error: %s", resp.Error)
	case StatusWarning:
		return &resp, fmt.Errorf("%w: %s", ErrWarning, resp.Warning)
	}
	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if resp != nil && out != nil && len(resp.Data) > 0 {
		if uerr := json.Unmarshal(resp.Data, out); uerr != nil && err == nil {
			return resp, fmt.Errorf("failed to parse %s data: %w", cmd, uerr)
		}
	}
	return resp, err
}

// Status retrieves daemon status
func (c *Client) Status() (*StatusData, error) {
	var data StatusData
	if _, err := c.call(CommandStatus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListPresets retrieves the presets in document order
func (c *Client) ListPresets() (*PresetsData, error) {
	var data PresetsData
	if _, err := c.call(CommandListPresets, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ApplyPreset asks the daemon to apply the named preset. When some displays
// failed to change, the returned data is filled in along with the error.
func (c *Client) ApplyPreset(name string) (*ApplyData, error) {
	var data ApplyData
	_, err := c.call(CommandApplyPreset, NamePayload{Name: name}, &data)
	return &data, err
}

// SavePreset saves the current layout under name
func (c *Client) SavePreset(name string) (*SaveData, error) {
	var data SaveData
	if _, err := c.call(CommandSavePreset, NamePayload{Name: name}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetOrientation rotates one display. orientation is 0-3 or a label.
func (c *Client) SetOrientation(display, orientation string) (*OrientationData, error) {
	var data OrientationData
	payload := SetOrientationPayload{Display: display, Orientation: orientation}
	if _, err := c.call(CommandSetOrientation, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// About retrieves information about the connected displays
func (c *Client) About() (*AboutData, error) {
	var data AboutData
	if _, err := c.call(CommandAbout, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.call(CommandReload, nil, nil)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
