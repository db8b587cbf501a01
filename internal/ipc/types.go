package ipc

import "github.com/matjam/shmpaper/internal/wayland"

type CommandType string

const (
	CommandStop CommandType = "stop"
)

type Command struct {
	Type CommandType `json:"type"`
	Args []string    `json:"args"`
}

// ManagerInterface is what the control socket needs from the running
// session.
type ManagerInterface interface {
	Status() SessionStatus
	EnqueueCommand(Command) error
}

// SessionStatus is the part of /status owned by the session loop.
type SessionStatus struct {
	State      string               `json:"state"`
	Shell      string               `json:"shell"`
	Configures int                  `json:"configures"`
	Pings      int                  `json:"pings"`
	Running    bool                 `json:"running"`
	Width      uint32               `json:"width"`
	Height     uint32               `json:"height"`
	Globals    []wayland.Global     `json:"globals"`
	Outputs    []wayland.OutputInfo `json:"outputs"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
	Socket  string `json:"socket"`
	Config  string `json:"config"`
	SessionStatus
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
