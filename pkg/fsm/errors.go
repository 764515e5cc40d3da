package fsm

// TransitionNotAllowed is an error type caused by attempting to transition
// to a state that is not reachable from the current one
type TransitionNotAllowed struct {
	Msg string
}

func (e TransitionNotAllowed) Error() string {
	return e.Msg
}
