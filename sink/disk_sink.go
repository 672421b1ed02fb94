// Package sink contains event consumers hanging off the fanout pipeline.
package sink

import (
	"context"
	"log/slog"
	"time"

	"quiz-arena/domain/event"
	"quiz-arena/repositories"

	"github.com/google/uuid"
)

// DiskSink mirrors gameplay events into the game repository. It sits
// behind the fanout, off the player-visible path: a failed write is logged
// and the in-memory game state stays authoritative.
type DiskSink struct {
	repository repositories.IGameRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IGameRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.GameStarted:
		return d.repository.StoreGame(repositories.GameRecord{
			ID:        uuid.New(),
			Room:      string(evt.Room),
			CreatedAt: evt.At,
		})
	case event.PlayerJoined:
		if err := d.repository.StorePlayer(repositories.PlayerRecord{
			ConnID:    evt.ConnID,
			Username:  evt.Username,
			CreatedAt: evt.At,
		}); err != nil {
			return err
		}
		return d.repository.StoreScore(repositories.ScoreRecord{
			Room:     string(evt.Room),
			ConnID:   evt.ConnID,
			Username: evt.Username,
			Score:    0,
		})
	case event.PlayerLeft:
		return d.repository.RemovePlayerFromAllGames(evt.ConnID)
	case event.QuestionStarted:
		return d.repository.StoreQuestion(repositories.QuestionRecord{
			Room:    string(evt.Room),
			Correct: evt.Question.Correct.Name,
			Flag:    evt.Question.Correct.Flag,
			Choices: evt.Question.Choices,
			At:      questionTime(evt.Question.CreatedAt),
		})
	case event.AnswerRecorded:
		return d.repository.StoreAnswer(repositories.AnswerRecord{
			ID:       evt.ID,
			Room:     string(evt.Room),
			ConnID:   evt.ConnID,
			Username: evt.Username,
			Question: evt.Question,
			Answer:   evt.Answer,
			Correct:  evt.Correct,
			WonRound: evt.WonRound,
			At:       evt.At,
		})
	case event.ScoreUpdated:
		return d.repository.StoreScore(repositories.ScoreRecord{
			Room:     string(evt.Room),
			ConnID:   evt.ConnID,
			Username: evt.Username,
			Score:    evt.Score,
		})
	default:
		// Client-facing events are not persisted here.
		return nil
	}
}

func questionTime(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at
}
