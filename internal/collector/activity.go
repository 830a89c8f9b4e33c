package collector

import "context"

// CallSource reports an incoming call or other notification through two
// helpers: one printing what is happening and one printing who it is about.
type CallSource struct {
	what string
	who  string
}

// NewCallSource creates a CallSource from the two helper command lines.
func NewCallSource(what, who string) *CallSource {
	return &CallSource{what: what, who: who}
}

// Collect returns the active call. The "who" helper is only run when "what"
// printed something, and its failure leaves Who empty.
func (s *CallSource) Collect(ctx context.Context) (*Call, error) {
	what, err := RunHelper(ctx, s.what)
	if err != nil {
		return nil, err
	}
	call := &Call{What: what}
	if who, err := RunHelper(ctx, s.who); err == nil {
		call.Who = who
	}
	return call, nil
}
