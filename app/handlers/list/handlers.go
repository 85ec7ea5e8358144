package list

import (
	"strings"
	"time"

	"github.com/tikarammardi/ledis/app/handlers"
	"github.com/tikarammardi/ledis/app/resp"
)

// ListStore is the part of the store the list commands use.
type ListStore interface {
	LPush(key string, now time.Time, values ...string) (int64, error)
	RPush(key string, now time.Time, values ...string) (int64, error)
	LPop(key string, count int, now time.Time) ([]string, bool, error)
	RPop(key string, count int, now time.Time) ([]string, bool, error)
	LLen(key string, now time.Time) (int64, error)
	LRange(key string, start, stop int64, now time.Time) ([]string, error)
}

// PushHandler handles LPUSH and RPUSH commands
type PushHandler struct {
	push func(key string, now time.Time, values ...string) (int64, error)
}

// NewLPushHandler creates a new LPUSH handler
func NewLPushHandler(store ListStore) *PushHandler {
	return &PushHandler{push: store.LPush}
}

// NewRPushHandler creates a new RPUSH handler
func NewRPushHandler(store ListStore) *PushHandler {
	return &PushHandler{push: store.RPush}
}

// Handle processes the LPUSH or RPUSH command
func (h *PushHandler) Handle(argv []string, now time.Time) resp.RespValue {
	length, err := h.push(argv[1], now, argv[2:]...)
	if err != nil {
		return resp.FromError(err)
	}
	return resp.Integer(length)
}

// PopHandler handles LPOP and RPOP commands. Without a count the reply is
// a single element; with one it is an array.
type PopHandler struct {
	pop func(key string, count int, now time.Time) ([]string, bool, error)
}

// NewLPopHandler creates a new LPOP handler
func NewLPopHandler(store ListStore) *PopHandler {
	return &PopHandler{pop: store.LPop}
}

// NewRPopHandler creates a new RPOP handler
func NewRPopHandler(store ListStore) *PopHandler {
	return &PopHandler{pop: store.RPop}
}

// Handle processes the LPOP or RPOP command
func (h *PopHandler) Handle(argv []string, now time.Time) resp.RespValue {
	if len(argv) > 3 {
		return resp.Errorf("ERR wrong number of arguments for '%s' command", strings.ToLower(argv[0]))
	}
	count := 1
	if len(argv) == 3 {
		var err error
		if count, err = handlers.Count(argv[2]); err != nil {
			return resp.FromError(err)
		}
	}

	values, ok, err := h.pop(argv[1], count, now)
	if err != nil {
		return resp.FromError(err)
	}
	if !ok {
		return resp.Null()
	}
	if len(argv) == 2 {
		return resp.Bulk(values[0])
	}
	return resp.BulkArray(values)
}

// LLenHandler handles LLEN commands
type LLenHandler struct {
	store ListStore
}

// NewLLenHandler creates a new LLEN handler
func NewLLenHandler(store ListStore) *LLenHandler {
	return &LLenHandler{store: store}
}

// Handle processes the LLEN command
func (h *LLenHandler) Handle(argv []string, now time.Time) resp.RespValue {
	length, err := h.store.LLen(argv[1], now)
	if err != nil {
		return resp.FromError(err)
	}
	return resp.Integer(length)
}

// LRangeHandler handles LRANGE commands
type LRangeHandler struct {
	store ListStore
}

// NewLRangeHandler creates a new LRANGE handler
func NewLRangeHandler(store ListStore) *LRangeHandler {
	return &LRangeHandler{store: store}
}

// Handle processes the LRANGE command
func (h *LRangeHandler) Handle(argv []string, now time.Time) resp.RespValue {
	start, err := handlers.Int64(argv[2])
	if err != nil {
		return resp.FromError(err)
	}
	stop, err := handlers.Int64(argv[3])
	if err != nil {
		return resp.FromError(err)
	}

	values, err := h.store.LRange(argv[1], start, stop, now)
	if err != nil {
		return resp.FromError(err)
	}
	return resp.BulkArray(values)
}
