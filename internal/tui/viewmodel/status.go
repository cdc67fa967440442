package viewmodel

import "github.com/Veraticus/finboard/internal/api"

// Status is the loading and message state of one screen. Each screen keeps
// its own, so a failure on one never leaks into another.
type Status struct {
	Err     string
	Notice  string
	Loading bool
	seq     uint64
}

// Begin starts a request and returns its sequence number.
func (s *Status) Begin() uint64 {
	s.seq++
	s.Loading = true
	s.Err = ""
	s.Notice = ""
	return s.seq
}

// Latest is the sequence number of the most recent request.
func (s *Status) Latest() uint64 {
	return s.seq
}

// Settle records the outcome of request seq. Responses are applied in
// arrival order, so an older response that arrives last still wins; stale
// reports that case so callers can log it. On failure Err holds the backend
// detail, or fallback when the body carried none.
func (s *Status) Settle(seq uint64, err error, fallback string) (stale bool) {
	stale = seq < s.seq
	s.Loading = stale
	if err != nil {
		s.Err = api.Message(err, fallback)
		return stale
	}
	s.Err = ""
	return stale
}

// Fail records a client-side error without a request.
func (s *Status) Fail(msg string) {
	s.Loading = false
	s.Notice = ""
	s.Err = msg
}

// Succeed records a success notice.
func (s *Status) Succeed(notice string) {
	s.Loading = false
	s.Err = ""
	s.Notice = notice
}
