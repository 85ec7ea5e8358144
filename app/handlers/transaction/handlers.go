package transaction

import (
	"time"

	"github.com/tikarammardi/ledis/app/resp"
)

// The transaction commands only mean something inside a client session,
// where the command processor intercepts them. These handlers answer when
// they reach the dispatcher directly, as they do from the HTTP front end.

// MultiHandler handles MULTI commands
type MultiHandler struct{}

// NewMultiHandler creates a new MULTI handler
func NewMultiHandler() *MultiHandler {
	return &MultiHandler{}
}

// Handle processes the MULTI command
func (h *MultiHandler) Handle(_ []string, _ time.Time) resp.RespValue {
	return resp.Error("ERR MULTI is not supported outside a client session")
}

// ExecHandler handles EXEC commands
type ExecHandler struct{}

// NewExecHandler creates a new EXEC handler
func NewExecHandler() *ExecHandler {
	return &ExecHandler{}
}

// Handle processes the EXEC command
func (h *ExecHandler) Handle(_ []string, _ time.Time) resp.RespValue {
	return resp.Error("ERR EXEC without MULTI")
}

// DiscardHandler handles DISCARD commands
type DiscardHandler struct{}

// NewDiscardHandler creates a new DISCARD handler
func NewDiscardHandler() *DiscardHandler {
	return &DiscardHandler{}
}

// Handle processes the DISCARD command
func (h *DiscardHandler) Handle(_ []string, _ time.Time) resp.RespValue {
	return resp.Error("ERR DISCARD without MULTI")
}
