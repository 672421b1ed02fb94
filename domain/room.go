package domain

import "time"

type RoomID string

// RoundStatus is the lifecycle of the current question.
type RoundStatus int

const (
	// AwaitingQuestion means no question has been activated yet.
	AwaitingQuestion RoundStatus = iota
	// QuestionActive means players are racing to answer.
	QuestionActive
	// Resolving means the round is settled and the next question is
	// already scheduled; late submissions are ignored.
	Resolving
)

// Verdict is the outcome of one answer submission.
type Verdict int

const (
	// VerdictIgnored covers every stale case: unknown player, player who
	// already answered, or a round that is no longer active.
	VerdictIgnored Verdict = iota
	// VerdictWinner is the first correct answer of the round.
	VerdictWinner
	// VerdictWrong is an incorrect answer while the round stays open.
	VerdictWrong
	// VerdictWrongLast is an incorrect answer that completes the ledger:
	// every roster member has now answered.
	VerdictWrongLast
)

// Session owns the authoritative state of one room: roster, current
// question, answer ledger and round status.
//
// Session is NOT safe for concurrent use. All mutation goes through the
// room's worker, which drains a mailbox one command at a time; that
// serialization is what closes the double-score and double-advance races.
type Session struct {
	ID       RoomID
	roster   map[string]*Player
	question *Question
	answered map[string]struct{}
	status   RoundStatus
}

func NewSession(id RoomID) *Session {
	return &Session{
		ID:       id,
		roster:   make(map[string]*Player),
		answered: make(map[string]struct{}),
		status:   AwaitingQuestion,
	}
}

// Join ensures a Player exists for connID. Rejoining with the same
// connection id is idempotent and keeps the current score.
// Returns true when a new roster entry was created.
func (s *Session) Join(connID, username string) bool {
	if _, ok := s.roster[connID]; ok {
		return false
	}
	s.roster[connID] = &Player{ConnID: connID, Username: username}
	return true
}

// NeedsQuestion reports whether the session has no usable current question.
func (s *Session) NeedsQuestion() bool {
	return s.question == nil
}

// ActivateQuestion replaces the current question and opens a new round:
// ledger cleared, has-answered flags reset, status back to QuestionActive.
func (s *Session) ActivateQuestion(q Question) {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	s.question = &q
	s.answered = make(map[string]struct{})
	for _, p := range s.roster {
		p.HasAnswered = false
	}
	s.status = QuestionActive
}

// Question returns the current question, or nil before the first round.
func (s *Session) Question() *Question {
	return s.question
}

func (s *Session) Status() RoundStatus {
	return s.status
}

// SubmitAnswer arbitrates one submission.
//
// The ledger is marked before anything else so that a second submission
// from the same connection is ignored no matter what. First correct answer
// wins the point and moves the round to Resolving; the caller is expected
// to schedule exactly one round advance when the returned verdict is
// VerdictWinner or VerdictWrongLast.
func (s *Session) SubmitAnswer(connID, answer string) Verdict {
	if s.status != QuestionActive || s.question == nil {
		return VerdictIgnored
	}
	player, ok := s.roster[connID]
	if !ok || player.HasAnswered {
		return VerdictIgnored
	}

	player.HasAnswered = true
	s.answered[connID] = struct{}{}

	if answer == s.question.Correct.Name {
		player.Score++
		s.status = Resolving
		return VerdictWinner
	}

	if s.allAnswered() {
		s.status = Resolving
		return VerdictWrongLast
	}
	return VerdictWrong
}

// TimeUp settles the round on an external countdown expiry. Returns true
// when the round was still active; false means someone already resolved it
// and the caller must not reveal anything nor schedule a second advance.
func (s *Session) TimeUp() bool {
	if s.status != QuestionActive || s.question == nil {
		return false
	}
	s.status = Resolving
	return true
}

// RemovePlayer drops the connection from the roster. It does not
// re-evaluate the "all answered" condition: a round waiting on the
// departed player stays open until time-up.
func (s *Session) RemovePlayer(connID string) bool {
	if _, ok := s.roster[connID]; !ok {
		return false
	}
	delete(s.roster, connID)
	delete(s.answered, connID)
	return true
}

// Roster returns a broadcast-safe snapshot keyed by connection id.
func (s *Session) Roster() map[string]PlayerView {
	views := make(map[string]PlayerView, len(s.roster))
	for id, p := range s.roster {
		views[id] = PlayerView{Username: p.Username, Score: p.Score}
	}
	return views
}

// PlayerName resolves the display name of a connection, or "".
func (s *Session) PlayerName(connID string) string {
	if p, ok := s.roster[connID]; ok {
		return p.Username
	}
	return ""
}

// PlayerScore resolves the current score of a connection.
func (s *Session) PlayerScore(connID string) int {
	if p, ok := s.roster[connID]; ok {
		return p.Score
	}
	return 0
}

func (s *Session) allAnswered() bool {
	if len(s.roster) == 0 {
		return false
	}
	for _, p := range s.roster {
		if !p.HasAnswered {
			return false
		}
	}
	return true
}
