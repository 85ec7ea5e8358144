package processor

import (
	"strings"

	"github.com/tikarammardi/ledis/app/resp"
)

// CommandProcessor turns decoded client frames into dispatcher calls and
// owns per-session MULTI/EXEC state.
type CommandProcessor struct {
	dispatcher         *Dispatcher
	transactionManager *TransactionManager
}

// NewCommandProcessor creates a new command processor
func NewCommandProcessor(dispatcher *Dispatcher) *CommandProcessor {
	return &CommandProcessor{
		dispatcher:         dispatcher,
		transactionManager: NewTransactionManager(),
	}
}

// Dispatcher returns the dispatcher commands run through.
func (cp *CommandProcessor) Dispatcher() *Dispatcher {
	return cp.dispatcher
}

// Process runs one client frame for session and returns the reply.
func (cp *CommandProcessor) Process(session string, frame resp.RespValue) resp.RespValue {
	argv, err := frame.Strings()
	if err != nil || len(argv) == 0 {
		return resp.Error("ERR unknown command")
	}
	name, args := argv[0], argv[1:]

	switch strings.ToUpper(name) {
	case "MULTI":
		return cp.multi(session, name, args)
	case "EXEC":
		return cp.executeTransaction(session, name, args)
	case "DISCARD":
		return cp.discardTransaction(session, name, args)
	}

	if !cp.transactionManager.IsInTransaction(session) {
		return cp.dispatcher.Execute(name, args)
	}

	cmd, reply, ok := cp.dispatcher.Validate(name, args)
	if !ok {
		cp.transactionManager.MarkDirty(session)
		return reply
	}
	if cmd.Has(FlagNoQueue) {
		cp.transactionManager.MarkDirty(session)
		return resp.Errorf("ERR Command not allowed inside a transaction")
	}
	cp.transactionManager.QueueCommand(session, QueuedCommand{Name: name, Args: args})
	return resp.Simple("QUEUED")
}

func (cp *CommandProcessor) multi(session, name string, args []string) resp.RespValue {
	if len(args) != 0 {
		return wrongArity(name)
	}
	if !cp.transactionManager.StartTransaction(session) {
		return resp.Error("ERR MULTI calls can not be nested")
	}
	return resp.OK
}

// executeTransaction runs the queued commands in order. Commands are not
// isolated from other sessions; each one still runs atomically on its own.
func (cp *CommandProcessor) executeTransaction(session, name string, args []string) resp.RespValue {
	if len(args) != 0 {
		return wrongArity(name)
	}
	commands, dirty, ok := cp.transactionManager.ExecuteTransaction(session)
	if !ok {
		return resp.Error("ERR EXEC without MULTI")
	}
	if dirty {
		return resp.Error("EXECABORT Transaction discarded because of previous errors.")
	}

	results := make([]resp.RespValue, 0, len(commands))
	for _, queued := range commands {
		results = append(results, cp.dispatcher.Execute(queued.Name, queued.Args))
	}
	return resp.Array(results...)
}

func (cp *CommandProcessor) discardTransaction(session, name string, args []string) resp.RespValue {
	if len(args) != 0 {
		return wrongArity(name)
	}
	if !cp.transactionManager.DiscardTransaction(session) {
		return resp.Error("ERR DISCARD without MULTI")
	}
	return resp.OK
}

// CleanupSession drops any open transaction of a closed session.
func (cp *CommandProcessor) CleanupSession(session string) {
	cp.transactionManager.CleanupSession(session)
}
