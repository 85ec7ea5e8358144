package processor

import (
	"github.com/tikarammardi/ledis/app/handlers/basic"
	"github.com/tikarammardi/ledis/app/handlers/keyvalue"
	"github.com/tikarammardi/ledis/app/handlers/list"
	"github.com/tikarammardi/ledis/app/handlers/server"
	"github.com/tikarammardi/ledis/app/handlers/set"
	"github.com/tikarammardi/ledis/app/handlers/transaction"
	"github.com/tikarammardi/ledis/app/store"
)

// HandlerFactory creates command handlers with proper dependency injection
type HandlerFactory struct {
	store  *store.Store
	config basic.ServerConfig
	saver  server.Saver
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(st *store.Store) *HandlerFactory {
	return &HandlerFactory{store: st}
}

// SetConfig sets the configuration for handlers that need it
func (hf *HandlerFactory) SetConfig(cfg basic.ServerConfig) {
	hf.config = cfg
}

// SetSaver wires SAVE and LASTSAVE to a snapshotter.
func (hf *HandlerFactory) SetSaver(saver server.Saver) {
	hf.saver = saver
}

// CreateAllCommands returns the full command table.
func (hf *HandlerFactory) CreateAllCommands() []Command {
	st := hf.store

	commands := []Command{
		// Basic commands
		{Name: "PING", Handler: basic.NewPingHandler(), Arity: -1},
		{Name: "ECHO", Handler: basic.NewEchoHandler(), Arity: 2},
		{Name: "DBSIZE", Handler: basic.NewDBSizeHandler(st), Arity: 1, Flags: FlagReadOnly},

		// Key-value commands
		{Name: "GET", Handler: keyvalue.NewGetHandler(st), Arity: 2, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "SET", Handler: keyvalue.NewSetHandler(st), Arity: -3, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "INCR", Handler: keyvalue.NewIncrHandler(st), Arity: 2, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "DEL", Handler: keyvalue.NewDelHandler(st), Arity: -2, Flags: FlagWrite, FirstKey: 1, LastKey: -1, KeyStep: 1},
		{Name: "EXISTS", Handler: keyvalue.NewExistsHandler(st), Arity: -2, Flags: FlagReadOnly, FirstKey: 1, LastKey: -1, KeyStep: 1},
		{Name: "TYPE", Handler: keyvalue.NewTypeHandler(st), Arity: 2, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "KEYS", Handler: keyvalue.NewKeysHandler(st), Arity: 2, Flags: FlagReadOnly},
		{Name: "FLUSHDB", Handler: keyvalue.NewFlushDBHandler(st), Arity: -1, Flags: FlagWrite},

		// Expiry commands
		{Name: "TTL", Handler: keyvalue.NewTTLHandler(st), Arity: 2, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "PTTL", Handler: keyvalue.NewPTTLHandler(st), Arity: 2, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "EXPIRE", Handler: keyvalue.NewExpireHandler(st), Arity: 3, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "PEXPIREAT", Handler: keyvalue.NewPExpireAtHandler(st), Arity: 3, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "PERSIST", Handler: keyvalue.NewPersistHandler(st), Arity: 2, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},

		// List commands
		{Name: "LPUSH", Handler: list.NewLPushHandler(st), Arity: -3, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "RPUSH", Handler: list.NewRPushHandler(st), Arity: -3, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "LPOP", Handler: list.NewLPopHandler(st), Arity: -2, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "RPOP", Handler: list.NewRPopHandler(st), Arity: -2, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "LLEN", Handler: list.NewLLenHandler(st), Arity: 2, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "LRANGE", Handler: list.NewLRangeHandler(st), Arity: 4, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},

		// Set commands
		{Name: "SADD", Handler: set.NewSAddHandler(st), Arity: -3, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "SREM", Handler: set.NewSRemHandler(st), Arity: -3, Flags: FlagWrite, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "SCARD", Handler: set.NewSCardHandler(st), Arity: 2, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "SISMEMBER", Handler: set.NewSIsMemberHandler(st), Arity: 3, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "SMEMBERS", Handler: set.NewSMembersHandler(st), Arity: 2, Flags: FlagReadOnly, FirstKey: 1, LastKey: 1, KeyStep: 1},
		{Name: "SINTER", Handler: set.NewSInterHandler(st), Arity: -2, Flags: FlagReadOnly, FirstKey: 1, LastKey: -1, KeyStep: 1},

		// Transaction commands (these are handled specially in the processor)
		{Name: "MULTI", Handler: transaction.NewMultiHandler(), Arity: 1, Flags: FlagNoQueue},
		{Name: "EXEC", Handler: transaction.NewExecHandler(), Arity: 1, Flags: FlagNoQueue},
		{Name: "DISCARD", Handler: transaction.NewDiscardHandler(), Arity: 1, Flags: FlagNoQueue},

		// Persistence commands
		{Name: "SAVE", Handler: server.NewSaveHandler(hf.saver), Arity: 1, Flags: FlagNoQueue},
		{Name: "LASTSAVE", Handler: server.NewLastSaveHandler(hf.saver), Arity: 1},
	}

	if hf.config != nil {
		commands = append(commands, Command{Name: "INFO", Handler: basic.NewInfoHandler(hf.config, st), Arity: -1})
	}
	return commands
}
