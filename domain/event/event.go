package event

import (
	"quiz-arena/domain"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is an outcome produced by a room worker. Events with a
// non-empty room id are fanned out to that room's subscribers; persistence
// sinks receive every event.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// Targeted restricts delivery to a single connection instead of the room.
type Targeted interface {
	TargetID() string
}

// Excluding delivers to the whole room except one connection.
type Excluding interface {
	ExcludeID() string
}

// NewQuestion carries the activated question. Target is set on the join
// path, where only the joining connection receives the current question.
type NewQuestion struct {
	Room     domain.RoomID
	Question domain.Question
	Target   string
}

func (e NewQuestion) RoomID() domain.RoomID { return e.Room }
func (e NewQuestion) TargetID() string      { return e.Target }

// AnswerResult notifies the outcome of one submission. A winning round
// emits two of these: a personalized one for the winner and a generic one
// for the rest of the room.
type AnswerResult struct {
	Room      domain.RoomID
	Winner    string
	Correct   string
	IsCorrect bool
	Text      string
	Target    string
	Exclude   string
}

func (e AnswerResult) RoomID() domain.RoomID { return e.Room }
func (e AnswerResult) TargetID() string      { return e.Target }
func (e AnswerResult) ExcludeID() string     { return e.Exclude }

// ShowCorrectAnswer reveals the answer to the whole room, either on
// time-up or when everyone answered wrong.
type ShowCorrectAnswer struct {
	Room    domain.RoomID
	Correct string
	Text    string
}

func (e ShowCorrectAnswer) RoomID() domain.RoomID { return e.Room }

// RosterUpdate is the full player list of a room, keyed by connection id.
type RosterUpdate struct {
	Room    domain.RoomID
	Players map[string]domain.PlayerView
}

func (e RosterUpdate) RoomID() domain.RoomID { return e.Room }

// ErrorNotice reports a precondition failure to a single connection,
// e.g. joining while the catalog is still loading.
type ErrorNotice struct {
	Room   domain.RoomID
	Target string
	Text   string
}

func (e ErrorNotice) RoomID() domain.RoomID { return e.Room }
func (e ErrorNotice) TargetID() string      { return e.Target }

// Persistence-only events below. The websocket sink ignores them; the disk
// sink turns them into repository writes, off the gameplay path.

type GameStarted struct {
	Room domain.RoomID
	At   time.Time
}

func (e GameStarted) RoomID() domain.RoomID { return e.Room }

type PlayerJoined struct {
	Room     domain.RoomID
	ConnID   string
	Username string
	At       time.Time
}

func (e PlayerJoined) RoomID() domain.RoomID { return e.Room }

// PlayerLeft has no room: the cleanup removes the connection from every
// game it was part of.
type PlayerLeft struct {
	ConnID string
}

func (e PlayerLeft) RoomID() domain.RoomID { return "" }

type QuestionStarted struct {
	Room     domain.RoomID
	Question domain.Question
}

func (e QuestionStarted) RoomID() domain.RoomID { return e.Room }

type AnswerRecorded struct {
	ID       uuid.UUID
	Room     domain.RoomID
	ConnID   string
	Username string
	Question string
	Answer   string
	Correct  bool
	WonRound bool
	At       time.Time
}

func (e AnswerRecorded) RoomID() domain.RoomID { return e.Room }

type ScoreUpdated struct {
	Room     domain.RoomID
	ConnID   string
	Username string
	Score    int
}

func (e ScoreUpdated) RoomID() domain.RoomID { return e.Room }
