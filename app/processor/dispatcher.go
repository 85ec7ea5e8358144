package processor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tikarammardi/ledis/app/resp"
)

// CommandHandler runs one command. argv[0] is the command name as the client
// sent it; now is the instant the command observes for every ttl check.
type CommandHandler interface {
	Handle(argv []string, now time.Time) resp.RespValue
}

// HandlerFunc adapts a function to CommandHandler.
type HandlerFunc func(argv []string, now time.Time) resp.RespValue

func (f HandlerFunc) Handle(argv []string, now time.Time) resp.RespValue {
	return f(argv, now)
}

// CommandFlag describes a command for the dispatcher and its recorder.
type CommandFlag uint8

const (
	// FlagWrite marks commands that mutate the keyspace.
	FlagWrite CommandFlag = 1 << iota
	FlagReadOnly
	// FlagNoQueue marks commands a transaction must not queue.
	FlagNoQueue
)

// Command is one entry of the dispatch table.
//
// Arity counts the command name: a positive arity is an exact argument
// count, a negative one a minimum of -Arity. FirstKey, LastKey and KeyStep
// locate key arguments in argv; LastKey -1 means the last argument and
// FirstKey 0 means the command takes no keys.
type Command struct {
	Name     string
	Handler  CommandHandler
	Arity    int
	Flags    CommandFlag
	FirstKey int
	LastKey  int
	KeyStep  int
}

func (c Command) Has(flag CommandFlag) bool {
	return c.Flags&flag != 0
}

// CheckArity reports whether argc arguments, name included, fit the arity.
func (c Command) CheckArity(argc int) bool {
	if c.Arity >= 0 {
		return argc == c.Arity
	}
	return argc >= -c.Arity
}

// Keys returns the key arguments of argv.
func (c Command) Keys(argv []string) []string {
	if c.FirstKey <= 0 || c.FirstKey >= len(argv) {
		return nil
	}
	last := c.LastKey
	if last < 0 {
		last += len(argv)
	}
	if last >= len(argv) {
		last = len(argv) - 1
	}
	step := max(c.KeyStep, 1)

	var keys []string
	for i := c.FirstKey; i <= last; i += step {
		keys = append(keys, argv[i])
	}
	return keys
}

// Recorder observes write commands that completed without an error reply,
// together with the instant they ran at.
type Recorder interface {
	Record(now time.Time, argv []string)
}

// Clock supplies the one instant each command runs at.
type Clock interface {
	Now() time.Time
}

// Dispatcher maps command names to handlers and validates arity before
// running them. Lazy expiry and access stamping belong to the store
// operations the handlers call; the dispatcher only fixes the instant.
//
// Write commands run exclusively and are recorded before the next command
// starts, so a recorder sees writes in the order they were applied.
type Dispatcher struct {
	commands []Command
	index    map[string]int
	clock    Clock
	logger   *slog.Logger

	applyMu sync.RWMutex

	mu       sync.RWMutex
	recorder Recorder
}

// NewDispatcher returns a dispatcher over commands.
func NewDispatcher(clock Clock, logger *slog.Logger, commands ...Command) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		index:  make(map[string]int, len(commands)),
		clock:  clock,
		logger: logger,
	}
	for _, cmd := range commands {
		d.Register(cmd)
	}
	return d
}

// Register adds cmd, replacing any command with the same name. The table is
// not guarded; register everything before the first Execute.
func (d *Dispatcher) Register(cmd Command) {
	name := strings.ToUpper(cmd.Name)
	cmd.Name = name
	if i, ok := d.index[name]; ok {
		d.commands[i] = cmd
		return
	}
	d.index[name] = len(d.commands)
	d.commands = append(d.commands, cmd)
}

// SetRecorder installs r as the observer of successful write commands.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recorder = r
}

// Lookup finds a command by name, ignoring case.
func (d *Dispatcher) Lookup(name string) (Command, bool) {
	i, ok := d.index[strings.ToUpper(name)]
	if !ok {
		return Command{}, false
	}
	return d.commands[i], true
}

// Commands returns the table in registration order.
func (d *Dispatcher) Commands() []Command {
	out := make([]Command, len(d.commands))
	copy(out, d.commands)
	return out
}

// Validate resolves name and checks the arity of args. The returned reply is
// only meaningful when ok is false.
func (d *Dispatcher) Validate(name string, args []string) (Command, resp.RespValue, bool) {
	cmd, found := d.Lookup(name)
	if !found {
		return Command{}, resp.Errorf("ERR unknown command '%s'", name), false
	}
	if !cmd.CheckArity(len(args) + 1) {
		return cmd, wrongArity(name), false
	}
	return cmd, resp.RespValue{}, true
}

// Execute runs the named command with args, which exclude the name, at the
// instant the clock reads once the command may start.
func (d *Dispatcher) Execute(name string, args []string) resp.RespValue {
	return d.execute(name, args, d.clock.Now)
}

// ExecuteAt runs the named command as if the clock read now. Snapshot replay
// uses it to repeat each write at the instant it first ran.
func (d *Dispatcher) ExecuteAt(now time.Time, name string, args []string) resp.RespValue {
	return d.execute(name, args, func() time.Time { return now })
}

func (d *Dispatcher) execute(name string, args []string, clock func() time.Time) resp.RespValue {
	cmd, reply, ok := d.Validate(name, args)
	if !ok {
		return reply
	}

	argv := make([]string, 0, len(args)+1)
	argv = append(argv, name)
	argv = append(argv, args...)

	write := cmd.Has(FlagWrite)
	if write {
		d.applyMu.Lock()
		defer d.applyMu.Unlock()
	} else {
		d.applyMu.RLock()
		defer d.applyMu.RUnlock()
	}

	now := clock()
	reply = cmd.Handler.Handle(argv, now)
	if d.logger.Enabled(context.Background(), slog.LevelDebug) {
		d.logger.Debug("command executed", "command", cmd.Name, "keys", cmd.Keys(argv), "reply", reply.Type.String())
	}

	if write && !reply.IsError() {
		d.mu.RLock()
		r := d.recorder
		d.mu.RUnlock()
		if r != nil {
			r.Record(now, argv)
		}
	}
	return reply
}

func wrongArity(name string) resp.RespValue {
	return resp.Errorf("ERR wrong number of arguments for '%s' command", strings.ToLower(name))
}
