package ws

import (
	"encoding/json"

	"quiz-arena/domain"
	"quiz-arena/domain/event"
)

// Envelope is one inbound client message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound payloads. Field names follow the original wire protocol.

type joinPayload struct {
	RoomID   string `json:"roomId" validate:"required,min=1,max=64"`
	Username string `json:"username" validate:"required,min=1,max=32"`
}

type submitAnswerPayload struct {
	RoomID string `json:"roomId" validate:"required,min=1,max=64"`
	Answer string `json:"answer" validate:"required"`
}

type timeUpPayload struct {
	RoomID string `json:"roomId" validate:"required,min=1,max=64"`
}

// Frame is one outbound message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type countryPayload struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
}

type questionPayload struct {
	Correct countryPayload `json:"correct"`
	Choices []string       `json:"choices"`
}

type answerResultPayload struct {
	Winner    string `json:"winner,omitempty"`
	Correct   string `json:"correct"`
	IsCorrect bool   `json:"isCorrect"`
	Text      string `json:"text"`
}

type revealPayload struct {
	Correct string `json:"correct"`
	Text    string `json:"text"`
}

// toFrame maps a domain event to its wire frame. Persistence-only events
// return false: they never reach clients.
func toFrame(e event.DomainEvent) (Frame, bool) {
	switch evt := e.(type) {
	case event.NewQuestion:
		return Frame{Event: "new-question", Data: questionPayload{
			Correct: countryPayload{Name: evt.Question.Correct.Name, Flag: evt.Question.Correct.Flag},
			Choices: evt.Question.Choices,
		}}, true
	case event.AnswerResult:
		return Frame{Event: "answer-result", Data: answerResultPayload{
			Winner:    evt.Winner,
			Correct:   evt.Correct,
			IsCorrect: evt.IsCorrect,
			Text:      evt.Text,
		}}, true
	case event.ShowCorrectAnswer:
		return Frame{Event: "show-correct-answer", Data: revealPayload{
			Correct: evt.Correct,
			Text:    evt.Text,
		}}, true
	case event.RosterUpdate:
		return Frame{Event: "player-list", Data: evt.Players}, true
	case event.ErrorNotice:
		return Frame{Event: "error", Data: evt.Text}, true
	default:
		return Frame{}, false
	}
}

func roomID(raw string) domain.RoomID { return domain.RoomID(raw) }
