package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/Z1ni/disp/internal/app"
	"github.com/Z1ni/disp/internal/apply"
	"github.com/Z1ni/disp/internal/disperr"
	"github.com/Z1ni/disp/internal/preset"
	"github.com/Z1ni/disp/internal/runtimepath"
)

// maxRequestBytes bounds one request line.
const maxRequestBytes = 64 * 1024

// Handler executes IPC commands. *app.App implements it.
type Handler interface {
	Status() app.Status
	Presets() []app.PresetInfo
	ApplyPreset(name string) (apply.Outcome, error)
	SaveCurrentAsPreset(name string) (app.SaveResult, error)
	SetOrientation(devicePath string, o preset.Orientation) (bool, error)
	About() (app.AboutReport, error)
	Reload() error
}

var _ Handler = (*app.App)(nil)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the session socket path
func NewServer(handler Handler, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerWithPath(socketPath, handler, logger), nil
}

// NewServerWithPath creates a new IPC server on socketPath
func NewServerWithPath(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
	}
}

// SocketPath returns the path the server listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections. The caller must hold the
// instance lock, so an existing socket file is stale and is replaced.
func (s *Server) Start() error {
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while handling IPC request", "panic", r)
		}
	}()

	reader := bufio.NewReader(io.LimitReader(conn, maxRequestBytes))

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.logger.Debug("IPC request", "command", string(req.Command))
	s.sendResponse(conn, s.handleCommand(req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandStatus:
		return s.handleStatus()
	case CommandListPresets:
		return s.handleListPresets()
	case CommandApplyPreset:
		return s.handleApplyPreset(req.Payload)
	case CommandSavePreset:
		return s.handleSavePreset(req.Payload)
	case CommandSetOrientation:
		return s.handleSetOrientation(req.Payload)
	case CommandAbout:
		return s.handleAbout()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleStatus() *Response {
	st := s.handler.Status()
	return okResponse(StatusData{
		InstanceID:    st.InstanceID,
		ConfigPath:    st.ConfigPath,
		UptimeSeconds: int64(st.Uptime.Seconds()),
		Displays:      st.Displays,
		Presets:       st.Presets,
		Applicable:    st.Applicable,
		Busy:          st.Busy,
		LastError:     st.LastError,
	})
}

func (s *Server) handleListPresets() *Response {
	infos := s.handler.Presets()
	data := PresetsData{Presets: make([]PresetInfo, 0, len(infos))}
	for _, p := range infos {
		info := PresetInfo{Name: p.Name, Applicable: p.Applicable, Displays: make([]DisplayInfo, 0, len(p.Displays))}
		for _, d := range p.Displays {
			info.Displays = append(info.Displays, DisplayInfo{
				Display:     d.DevicePath,
				Orientation: int(d.Orientation),
				X:           d.Position.X,
				Y:           d.Position.Y,
				Width:       d.Resolution.Width,
				Height:      d.Resolution.Height,
			})
		}
		data.Presets = append(data.Presets, info)
	}
	return okResponse(data)
}

// decodeName reads a NamePayload and bounds the name length before it
// reaches the store.
func decodeName(payload json.RawMessage) (string, *Response) {
	var req NamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return "", NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	if req.Name == "" {
		return "", NewErrorResponse("name is required")
	}
	if utf8.RuneCountInString(req.Name) > preset.MaxNameLength {
		return "", NewErrorResponse(fmt.Sprintf("name is longer than %d characters", preset.MaxNameLength))
	}
	return req.Name, nil
}

func (s *Server) handleApplyPreset(payload json.RawMessage) *Response {
	name, bad := decodeName(payload)
	if bad != nil {
		return bad
	}
	s.logger.Info("IPC: apply preset", "preset", name)

	out, err := s.handler.ApplyPreset(name)
	if errors.Is(err, disperr.ErrInProgress) {
		return NewWarningResponse(err.Error())
	}
	data := ApplyData{
		Preset:    out.Preset,
		Total:     out.Total,
		Succeeded: out.Succeeded,
		Message:   out.String(),
	}
	for _, f := range out.Failures {
		data.Failed = append(data.Failed, f.DevicePath)
	}
	if err != nil {
		resp := NewErrorResponse(err.Error())
		if out.Total > 0 {
			resp.Data, _ = json.Marshal(data)
		}
		return resp
	}
	return okResponse(data)
}

func (s *Server) handleSavePreset(payload json.RawMessage) *Response {
	name, bad := decodeName(payload)
	if bad != nil {
		return bad
	}
	s.logger.Info("IPC: save preset", "preset", name)

	res, err := s.handler.SaveCurrentAsPreset(name)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(SaveData{Name: res.Name, Index: res.Index, Replaced: res.Replaced, Displays: res.Displays})
}

func (s *Server) handleSetOrientation(payload json.RawMessage) *Response {
	var req SetOrientationPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	if req.Display == "" {
		return NewErrorResponse("display is required")
	}
	o, err := preset.ParseOrientation(req.Orientation)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	changed, err := s.handler.SetOrientation(req.Display, o)
	if errors.Is(err, disperr.ErrInProgress) {
		return NewWarningResponse(err.Error())
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(OrientationData{Display: req.Display, Orientation: o.String(), Changed: changed})
}

func (s *Server) handleAbout() *Response {
	rep, err := s.handler.About()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}
	data := AboutData{
		VirtualWidth:  rep.Virtual.Width,
		VirtualHeight: rep.Virtual.Height,
		Monitors:      make([]MonitorInfo, 0, len(rep.Monitors)),
		Text:          rep.String(),
	}
	for _, m := range rep.Monitors {
		data.Monitors = append(data.Monitors, MonitorInfo{
			Number:      m.Number,
			Name:        m.FriendlyName,
			Output:      m.Output,
			Display:     m.DevicePath,
			Orientation: m.Orientation.String(),
			X:           m.X,
			Y:           m.Y,
			Width:       m.Width,
			Height:      m.Height,
		})
	}
	return okResponse(data)
}

func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: reload")
	if err := s.handler.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload presets: %v", err))
	}
	return okResponse(nil)
}

func okResponse(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) sendResponse(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// Stop gracefully shuts down the IPC server and waits for open requests
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
