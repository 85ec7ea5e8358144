package set

import (
	"time"

	"github.com/tikarammardi/ledis/app/resp"
)

// SetStore is the part of the store the set commands use.
type SetStore interface {
	SAdd(key string, now time.Time, members ...string) (int64, error)
	SRem(key string, now time.Time, members ...string) (int64, error)
	SCard(key string, now time.Time) (int64, error)
	SIsMember(key, member string, now time.Time) (bool, error)
	SMembers(key string, now time.Time) ([]string, error)
	SInter(keys []string, now time.Time) ([]string, error)
}

// SAddHandler handles SADD commands
type SAddHandler struct {
	store SetStore
}

// NewSAddHandler creates a new SADD handler
func NewSAddHandler(store SetStore) *SAddHandler {
	return &SAddHandler{store: store}
}

// Handle processes the SADD command
func (h *SAddHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return integerReply(h.store.SAdd(argv[1], now, argv[2:]...))
}

// SRemHandler handles SREM commands
type SRemHandler struct {
	store SetStore
}

// NewSRemHandler creates a new SREM handler
func NewSRemHandler(store SetStore) *SRemHandler {
	return &SRemHandler{store: store}
}

// Handle processes the SREM command
func (h *SRemHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return integerReply(h.store.SRem(argv[1], now, argv[2:]...))
}

// SCardHandler handles SCARD commands
type SCardHandler struct {
	store SetStore
}

// NewSCardHandler creates a new SCARD handler
func NewSCardHandler(store SetStore) *SCardHandler {
	return &SCardHandler{store: store}
}

// Handle processes the SCARD command
func (h *SCardHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return integerReply(h.store.SCard(argv[1], now))
}

// SIsMemberHandler handles SISMEMBER commands
type SIsMemberHandler struct {
	store SetStore
}

// NewSIsMemberHandler creates a new SISMEMBER handler
func NewSIsMemberHandler(store SetStore) *SIsMemberHandler {
	return &SIsMemberHandler{store: store}
}

// Handle processes the SISMEMBER command
func (h *SIsMemberHandler) Handle(argv []string, now time.Time) resp.RespValue {
	in, err := h.store.SIsMember(argv[1], argv[2], now)
	if err != nil {
		return resp.FromError(err)
	}
	if in {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

// SMembersHandler handles SMEMBERS commands
type SMembersHandler struct {
	store SetStore
}

// NewSMembersHandler creates a new SMEMBERS handler
func NewSMembersHandler(store SetStore) *SMembersHandler {
	return &SMembersHandler{store: store}
}

// Handle processes the SMEMBERS command
func (h *SMembersHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return arrayReply(h.store.SMembers(argv[1], now))
}

// SInterHandler handles SINTER commands
type SInterHandler struct {
	store SetStore
}

// NewSInterHandler creates a new SINTER handler
func NewSInterHandler(store SetStore) *SInterHandler {
	return &SInterHandler{store: store}
}

// Handle processes the SINTER command
func (h *SInterHandler) Handle(argv []string, now time.Time) resp.RespValue {
	return arrayReply(h.store.SInter(argv[1:], now))
}

func integerReply(n int64, err error) resp.RespValue {
	if err != nil {
		return resp.FromError(err)
	}
	return resp.Integer(n)
}

func arrayReply(members []string, err error) resp.RespValue {
	if err != nil {
		return resp.FromError(err)
	}
	return resp.BulkArray(members)
}
