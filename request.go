package clipnote

import (
	"encoding/json"
	"strings"
)

// Action names a message exchanged between surfaces and the coordinator.
type Action string

// Supported actions.
const (
	ActionProcessContent    Action = "processContent"
	ActionExtractContent    Action = "extractContent"
	ActionPing              Action = "ping"
	ActionSwitchToPopup     Action = "switchToPopup"
	ActionSwitchToSidePanel Action = "switchToSidePanel"
)

// Request is one of the request variants below. Use DecodeRequest to
// obtain a validated Request from its JSON form.
type Request interface {
	Action() Action
	Validate() error
}

// ProcessContentRequest asks the coordinator to rewrite and publish a page.
// An empty TaskID makes the coordinator create the task itself.
type ProcessContentRequest struct {
	TabID  int    `json:"tabId"`
	TaskID string `json:"taskId,omitempty"`
	Page   *Page  `json:"page"`
}

func (r *ProcessContentRequest) Action() Action { return ActionProcessContent }

func (r *ProcessContentRequest) Validate() error {
	if r.Page == nil {
		return Errorf(EINVALID, "processContent: page required")
	}
	if r.Page.URL == "" {
		return Errorf(EINVALID, "processContent: page URL required")
	}
	return nil
}

// ExtractContentRequest asks for the readable content of a URL.
type ExtractContentRequest struct {
	TabID int    `json:"tabId"`
	URL   string `json:"url"`
}

func (r *ExtractContentRequest) Action() Action { return ActionExtractContent }

func (r *ExtractContentRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return Errorf(EINVALID, "extractContent: url required")
	}
	return nil
}

// PingRequest checks that the coordinator is alive.
type PingRequest struct{}

func (r *PingRequest) Action() Action { return ActionPing }

func (r *PingRequest) Validate() error { return nil }

// SwitchSurfaceRequest records which surface the user prefers.
type SwitchSurfaceRequest struct {
	Surface string `json:"surface"`
}

func (r *SwitchSurfaceRequest) Action() Action {
	if r.Surface == SurfaceSidePanel {
		return ActionSwitchToSidePanel
	}
	return ActionSwitchToPopup
}

func (r *SwitchSurfaceRequest) Validate() error {
	if r.Surface != SurfacePopup && r.Surface != SurfaceSidePanel {
		return Errorf(EINVALID, "unknown surface %q", r.Surface)
	}
	return nil
}

// DecodeRequest parses a JSON message of the form {"action": ..., ...}
// into its request variant and validates it.
func DecodeRequest(data []byte) (Request, error) {
	var env struct {
		Action Action `json:"action"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, Errorf(EINVALID, "malformed request: %v", err)
	}

	var req Request
	switch env.Action {
	case ActionProcessContent:
		req = &ProcessContentRequest{}
	case ActionExtractContent:
		req = &ExtractContentRequest{}
	case ActionPing:
		req = &PingRequest{}
	case ActionSwitchToPopup:
		req = &SwitchSurfaceRequest{Surface: SurfacePopup}
	case ActionSwitchToSidePanel:
		req = &SwitchSurfaceRequest{Surface: SurfaceSidePanel}
	case "":
		return nil, Errorf(EINVALID, "request action required")
	default:
		return nil, Errorf(EINVALID, "unknown action %q", env.Action)
	}

	if _, ok := req.(*SwitchSurfaceRequest); !ok {
		if err := json.Unmarshal(data, req); err != nil {
			return nil, Errorf(EINVALID, "malformed %s request: %v", env.Action, err)
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Response is the reply to a Request.
type Response struct {
	OK      bool   `json:"ok"`
	TaskID  string `json:"taskId,omitempty"`
	Page    *Page  `json:"page,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
