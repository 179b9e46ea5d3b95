package client

// connState is the connection manager's finite-state machine.
//
//	Disconnected -> Connecting -> Connected -> Disconnected -> ...
//
// There is no terminal state; the manager retries for the life of the
// process.
type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// event is the single inbound event type processed by the client loop.
// Transport callbacks, timers, and external commands all funnel through it,
// so all session state is mutated from one goroutine.
type event interface{ isEvent() }

type evConnect struct{}

type evDialed struct{ t transport }

type evDialFailed struct{ err error }

// evClosed and evFrame carry the transport they originated from so events
// from a replaced connection's read pump can be discarded.
type evClosed struct {
	t   transport
	err error
}

type evFrame struct {
	t    transport
	data []byte
}

type evSend struct {
	prompt string
	retry  bool
}

type evClear struct{}

func (evConnect) isEvent()    {}
func (evDialed) isEvent()     {}
func (evDialFailed) isEvent() {}
func (evClosed) isEvent()     {}
func (evFrame) isEvent()      {}
func (evSend) isEvent()       {}
func (evClear) isEvent()      {}
