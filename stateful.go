// Copyright 2023 The shapefile (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package shapefile

type stateful struct {
	state state
	err   error
}

type state int

const (
	uninitialized state = iota
	inRecords
	eof
	failed
)

func (s *stateful) sanityCheckState() {
	if s.state < uninitialized || s.state > failed {
		fmtPanic("logic error: invalid state %d", s.state)
	}
}

// toState moves from expected to to. It reports false, leaving the
// state unchanged, if the stream is in any other state.
func (s *stateful) toState(expected, to state) bool {
	if s.state == expected {
		s.state = to
		return true
	}

	s.sanityCheckState()

	return false
}

// toErr latches err and moves to the failed state. The error is sticky
// until reset.
func (s *stateful) toErr(err error) error {
	if s.err != nil {
		textPanic("logic error: already in error state")
	}

	s.err = err
	s.state = failed
	return err
}

func (s *stateful) reset(to state) {
	s.sanityCheckState()
	s.state = to
	s.err = nil
}
