package keyvalue

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/tikarammardi/ledis/app/handlers"
	"github.com/tikarammardi/ledis/app/resp"
	"github.com/tikarammardi/ledis/app/store"
)

// KeyValueStore is the part of the store the key commands use.
type KeyValueStore interface {
	Get(key string, now time.Time) (string, bool, error)
	Set(key, value string, opts store.SetOptions, now time.Time) (store.SetResult, error)
	IncrBy(key string, delta int64, now time.Time) (int64, error)
	Del(keys []string, now time.Time) int64
	Exists(keys []string, now time.Time) int64
	Type(key string, now time.Time) string
	Keys(pattern string, now time.Time) ([]string, error)
	Flush()
}

// TTLStore is the part of the store the expiry commands use.
type TTLStore interface {
	TTLSeconds(key string, now time.Time) int64
	TTLMillis(key string, now time.Time) int64
	SetTTL(key string, d time.Duration, now time.Time) (store.Deadline, error)
	ExpireAt(key string, deadline store.Deadline, now time.Time) (bool, error)
	Persist(key string, now time.Time) bool
}

// SetHandler handles SET commands
type SetHandler struct {
	store KeyValueStore
}

// NewSetHandler creates a new SET handler
func NewSetHandler(store KeyValueStore) *SetHandler {
	return &SetHandler{store: store}
}

// Handle processes the SET command. Options are validated in full before
// the key is looked at, so a rejected SET never modifies anything.
func (h *SetHandler) Handle(argv []string, now time.Time) resp.RespValue {
	opts, err := store.ParseSetOptions(argv[3:], now)
	if err != nil {
		return resp.FromError(err)
	}

	res, err := h.store.Set(argv[1], argv[2], opts, now)
	if err != nil {
		return resp.FromError(err)
	}
	if opts.Flags.Has(store.FlagGet) {
		return handlers.OptionalBulk(res.Previous, res.HadPrevious)
	}
	if !res.Written {
		return resp.Null()
	}
	return resp.OK
}

// GetHandler handles GET commands
type GetHandler struct {
	store KeyValueStore
}

// NewGetHandler creates a new GET handler
func NewGetHandler(store KeyValueStore) *GetHandler {
	return &GetHandler{store: store}
}

// Handle processes the GET command
func (h *GetHandler) Handle(argv []string, now time.Time) resp.RespValue {
	value, ok, err := h.store.Get(argv[1], now)
	if err != nil {
		return resp.FromError(err)
	}
	return handlers.OptionalBulk(value, ok)
}

// IncrHandler handles INCR commands
type IncrHandler struct {
	store KeyValueStore
}

// NewIncrHandler creates a new INCR handler
func NewIncrHandler(store KeyValueStore) *IncrHandler {
	return &IncrHandler{store: store}
}

// Handle processes the INCR command
func (h *IncrHandler) Handle(argv []string, now time.Time) resp.RespValue {
	n, err := h.store.IncrBy(argv[1], 1, now)
	if err != nil {
		return resp.FromError(err)
	}
	return resp.Integer(n)
}

// DelHandler handles DEL commands
type DelHandler struct {
	store KeyValueStore
}

// NewDelHandler creates a new DEL handler
func NewDelHandler(store KeyValueStore) *DelHandler {
	return &DelHandler{store: store}
}

// Handle processes the DEL command
func (h *DelHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return resp.Integer(h.store.Del(argv[1:], now))
}

// ExistsHandler handles EXISTS commands
type ExistsHandler struct {
	store KeyValueStore
}

// NewExistsHandler creates a new EXISTS handler
func NewExistsHandler(store KeyValueStore) *ExistsHandler {
	return &ExistsHandler{store: store}
}

// Handle processes the EXISTS command
func (h *ExistsHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return resp.Integer(h.store.Exists(argv[1:], now))
}

// TypeHandler handles TYPE commands
type TypeHandler struct {
	store KeyValueStore
}

// NewTypeHandler creates a new TYPE handler
func NewTypeHandler(store KeyValueStore) *TypeHandler {
	return &TypeHandler{store: store}
}

// Handle processes the TYPE command
func (h *TypeHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return resp.Simple(h.store.Type(argv[1], now))
}

// KeysHandler handles KEYS commands
type KeysHandler struct {
	store KeyValueStore
}

// NewKeysHandler creates a new KEYS handler
func NewKeysHandler(store KeyValueStore) *KeysHandler {
	return &KeysHandler{store: store}
}

// Handle processes the KEYS command
func (h *KeysHandler) Handle(argv []string, now time.Time) resp.RespValue {
	keys, err := h.store.Keys(argv[1], now)
	if err != nil {
		return resp.FromError(err)
	}
	return resp.BulkArray(keys)
}

// FlushDBHandler handles FLUSHDB commands. The ASYNC and SYNC modifiers are
// accepted and behave the same.
type FlushDBHandler struct {
	store KeyValueStore
}

// NewFlushDBHandler creates a new FLUSHDB handler
func NewFlushDBHandler(store KeyValueStore) *FlushDBHandler {
	return &FlushDBHandler{store: store}
}

// Handle processes the FLUSHDB command
func (h *FlushDBHandler) Handle(argv []string, _ time.Time) resp.RespValue {
	if len(argv) > 2 {
		return resp.FromError(store.ErrSyntax)
	}
	if len(argv) == 2 && !strings.EqualFold(argv[1], "ASYNC") && !strings.EqualFold(argv[1], "SYNC") {
		return resp.FromError(store.ErrSyntax)
	}
	h.store.Flush()
	return resp.OK
}

// TTLHandler handles TTL and PTTL commands
type TTLHandler struct {
	store  TTLStore
	millis bool
}

// NewTTLHandler creates a new TTL handler
func NewTTLHandler(store TTLStore) *TTLHandler {
	return &TTLHandler{store: store}
}

// NewPTTLHandler creates a new PTTL handler
func NewPTTLHandler(store TTLStore) *TTLHandler {
	return &TTLHandler{store: store, millis: true}
}

// Handle processes the TTL or PTTL command
func (h *TTLHandler) Handle(argv []string, now time.Time) resp.RespValue {
	if h.millis {
		return resp.Integer(h.store.TTLMillis(argv[1], now))
	}
	return resp.Integer(h.store.TTLSeconds(argv[1], now))
}

// ExpireHandler handles EXPIRE commands. A negative ttl is rejected rather
// than deleting the key.
type ExpireHandler struct {
	store TTLStore
}

// NewExpireHandler creates a new EXPIRE handler
func NewExpireHandler(store TTLStore) *ExpireHandler {
	return &ExpireHandler{store: store}
}

// Handle processes the EXPIRE command
func (h *ExpireHandler) Handle(argv []string, now time.Time) resp.RespValue {
	seconds, err := handlers.Int64(argv[2])
	if err != nil {
		return resp.FromError(err)
	}
	if seconds > math.MaxInt64/int64(time.Second) {
		return resp.FromError(store.ErrNegativeTTL)
	}

	_, err = h.store.SetTTL(argv[1], time.Duration(seconds)*time.Second, now)
	return expireReply(err)
}

// PExpireAtHandler handles PEXPIREAT commands
type PExpireAtHandler struct {
	store TTLStore
}

// NewPExpireAtHandler creates a new PEXPIREAT handler
func NewPExpireAtHandler(store TTLStore) *PExpireAtHandler {
	return &PExpireAtHandler{store: store}
}

// Handle processes the PEXPIREAT command
func (h *PExpireAtHandler) Handle(argv []string, now time.Time) resp.RespValue {
	ms, err := handlers.Int64(argv[2])
	if err != nil {
		return resp.FromError(err)
	}
	_, err = h.store.ExpireAt(argv[1], store.ExpiresAtUnixMillis(ms), now)
	return expireReply(err)
}

// PersistHandler handles PERSIST commands
type PersistHandler struct {
	store TTLStore
}

// NewPersistHandler creates a new PERSIST handler
func NewPersistHandler(store TTLStore) *PersistHandler {
	return &PersistHandler{store: store}
}

// Handle processes the PERSIST command
func (h *PersistHandler) Handle(argv []string, now time.Time) resp.RespValue {
	if h.store.Persist(argv[1], now) {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

func expireReply(err error) resp.RespValue {
	switch {
	case err == nil:
		return resp.Integer(1)
	case errors.Is(err, store.ErrNoSuchKey):
		return resp.Integer(0)
	default:
		return resp.FromError(err)
	}
}
