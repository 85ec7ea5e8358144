package server

import (
	"context"
	"time"

	"github.com/tikarammardi/ledis/app/resp"
)

// saveTimeout bounds a foreground SAVE.
const saveTimeout = 30 * time.Second

// Saver persists the keyspace on demand.
type Saver interface {
	Save(ctx context.Context) error
	LastSave() time.Time
}

// SaveHandler handles SAVE commands
type SaveHandler struct {
	saver Saver
}

// NewSaveHandler creates a new SAVE handler. A nil saver means snapshots
// are disabled.
func NewSaveHandler(saver Saver) *SaveHandler {
	return &SaveHandler{saver: saver}
}

// Handle processes the SAVE command
func (h *SaveHandler) Handle(_ []string, _ time.Time) resp.RespValue {
	if h.saver == nil {
		return resp.Error("ERR snapshots are disabled")
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := h.saver.Save(ctx); err != nil {
		return resp.Errorf("ERR save failed: %v", err)
	}
	return resp.OK
}

// LastSaveHandler handles LASTSAVE commands
type LastSaveHandler struct {
	saver Saver
}

// NewLastSaveHandler creates a new LASTSAVE handler
func NewLastSaveHandler(saver Saver) *LastSaveHandler {
	return &LastSaveHandler{saver: saver}
}

// Handle processes the LASTSAVE command. It replies 0 until the first
// successful save.
func (h *LastSaveHandler) Handle(_ []string, _ time.Time) resp.RespValue {
	if h.saver == nil {
		return resp.Integer(0)
	}
	at := h.saver.LastSave()
	if at.IsZero() {
		return resp.Integer(0)
	}
	return resp.Integer(at.Unix())
}
