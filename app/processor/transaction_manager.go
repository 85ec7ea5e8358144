package processor

import "sync"

// QueuedCommand represents a command queued during a transaction
type QueuedCommand struct {
	Name string
	Args []string
}

// TransactionState tracks the transaction state for a session
type TransactionState struct {
	InTransaction  bool
	QueuedCommands []QueuedCommand
	// Dirty is set when a command was rejected while queueing; EXEC then
	// aborts the whole transaction.
	Dirty bool
	mu    sync.Mutex
}

// TransactionManager manages transaction state for sessions
type TransactionManager struct {
	states map[string]*TransactionState
	mu     sync.RWMutex
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager() *TransactionManager {
	return &TransactionManager{
		states: make(map[string]*TransactionState),
	}
}

func (tm *TransactionManager) state(session string) (*TransactionState, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	state, ok := tm.states[session]
	return state, ok
}

// StartTransaction begins a transaction for the given session. It reports
// false if one is already open.
func (tm *TransactionManager) StartTransaction(session string) bool {
	tm.mu.Lock()
	state, ok := tm.states[session]
	if !ok {
		state = &TransactionState{}
		tm.states[session] = state
	}
	tm.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.InTransaction {
		return false
	}
	state.InTransaction = true
	state.Dirty = false
	state.QueuedCommands = nil
	return true
}

// IsInTransaction checks if a session is in a transaction
func (tm *TransactionManager) IsInTransaction(session string) bool {
	state, ok := tm.state(session)
	if !ok {
		return false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.InTransaction
}

// QueueCommand adds a command to the transaction queue
func (tm *TransactionManager) QueueCommand(session string, cmd QueuedCommand) {
	state, ok := tm.state(session)
	if !ok {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.InTransaction {
		state.QueuedCommands = append(state.QueuedCommands, cmd)
	}
}

// MarkDirty flags the open transaction so EXEC will abort it.
func (tm *TransactionManager) MarkDirty(session string) {
	state, ok := tm.state(session)
	if !ok {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.InTransaction {
		state.Dirty = true
	}
}

// ExecuteTransaction closes the transaction and returns its queue. ok is
// false without an open transaction; dirty reports a rejected command.
func (tm *TransactionManager) ExecuteTransaction(session string) (commands []QueuedCommand, dirty, ok bool) {
	state, found := tm.state(session)
	if !found {
		return nil, false, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.InTransaction {
		return nil, false, false
	}

	commands, dirty = state.QueuedCommands, state.Dirty
	state.InTransaction = false
	state.Dirty = false
	state.QueuedCommands = nil
	return commands, dirty, true
}

// DiscardTransaction discards the current transaction
func (tm *TransactionManager) DiscardTransaction(session string) bool {
	_, _, ok := tm.ExecuteTransaction(session)
	return ok
}

// CleanupSession removes transaction state for a session
func (tm *TransactionManager) CleanupSession(session string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.states, session)
}
