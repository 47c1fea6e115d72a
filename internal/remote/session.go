// internal/remote/session.go
package remote

// Session is the naming and confirmation state of the device session.
// Only Client methods mutate it.
type Session struct {
	Slate string
	Take  int

	// Presence is true once the handshake completed.
	Presence bool

	// StopConfirmed is false between a stop request and the device's
	// confirmation. True while no stop is outstanding.
	StopConfirmed bool
}

func newSession(slate string) Session {
	return Session{Slate: slate, StopConfirmed: true}
}

func (s *Session) rename(slate string) {
	if s.Slate != slate {
		s.Take = 0
	}
	s.Slate = slate
}

func (s *Session) stop() {
	s.Take++
	s.StopConfirmed = false
}

func (s *Session) confirmStop() {
	s.StopConfirmed = true
}
