package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quiz-arena/contract"
	"quiz-arena/domain"
	"quiz-arena/domain/event"
	"quiz-arena/errors"

	"github.com/google/uuid"
)

var _ contract.Worker = (*RoomWorker)(nil)

// NoticeCatalogLoading is sent to a connection whose join is refused
// because the question supplier is not ready yet.
const NoticeCatalogLoading = "Game data is still loading. Please try again in a moment."

// RoomWorker owns one Session and drains its mailbox one command at a
// time. This single loop is the serialization boundary: a handler runs to
// completion, including its question draw and event emission, before the
// next command for the room is even read. The round-advance timer feeds
// back into the same mailbox, so its firing cannot race a submission.
type RoomWorker struct {
	session      *domain.Session
	mailbox      chan domain.Command
	events       chan<- event.DomainEvent
	supplier     contract.Supplier
	advanceDelay time.Duration
	log          *slog.Logger
}

func NewRoomWorker(
	session *domain.Session,
	mailbox chan domain.Command,
	events chan<- event.DomainEvent,
	supplier contract.Supplier,
	advanceDelay time.Duration,
	log *slog.Logger) *RoomWorker {
	return &RoomWorker{
		session:      session,
		mailbox:      mailbox,
		events:       events,
		supplier:     supplier,
		advanceDelay: advanceDelay,
		log:          log.With("room", string(session.ID)),
	}
}

// Mailbox exposes the command channel for dispatching.
func (w *RoomWorker) Mailbox() chan<- domain.Command {
	return w.mailbox
}

func (w *RoomWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker")
			return nil
		case cmd, ok := <-w.mailbox:
			if !ok {
				return nil
			}
			w.handle(ctx, cmd)
		}
	}
}

func (w *RoomWorker) handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.JoinRoomCommand:
		w.handleJoin(ctx, c)
	case domain.SubmitAnswerCommand:
		w.handleSubmit(ctx, c)
	case domain.TimeUpCommand:
		w.handleTimeUp(ctx)
	case domain.AdvanceRoundCommand:
		w.handleAdvance(ctx)
	case domain.LeaveRoomCommand:
		if w.session.RemovePlayer(c.ConnID) {
			w.log.Debug("Player removed from roster", "conn_id", c.ConnID)
		}
	default:
		w.log.Debug(fmt.Sprintf("Unhandled command : %T", cmd))
	}
}

func (w *RoomWorker) handleJoin(ctx context.Context, cmd domain.JoinRoomCommand) {
	if !w.supplier.Ready() {
		w.log.Debug("Join refused", "conn_id", cmd.ConnID, "error", errors.ErrNotReady)
		w.emit(ctx, event.ErrorNotice{
			Room:   w.session.ID,
			Target: cmd.ConnID,
			Text:   NoticeCatalogLoading,
		})
		return
	}

	if w.session.Join(cmd.ConnID, cmd.Username) {
		w.emit(ctx, event.PlayerJoined{
			Room:     w.session.ID,
			ConnID:   cmd.ConnID,
			Username: cmd.Username,
			At:       time.Now().UTC(),
		})
	}

	// Late joiners get the question already in flight, never a fresh one.
	if w.session.NeedsQuestion() {
		question, err := w.supplier.Draw()
		if err != nil {
			w.log.Error("Question draw failed on join", "error", err)
			w.emit(ctx, event.ErrorNotice{
				Room:   w.session.ID,
				Target: cmd.ConnID,
				Text:   "Failed to join room. Please try again.",
			})
			return
		}
		w.session.ActivateQuestion(question)
		w.emit(ctx, event.QuestionStarted{Room: w.session.ID, Question: question})
	}

	w.emit(ctx, event.NewQuestion{
		Room:     w.session.ID,
		Question: *w.session.Question(),
		Target:   cmd.ConnID,
	})
	w.emit(ctx, event.RosterUpdate{Room: w.session.ID, Players: w.session.Roster()})
}

func (w *RoomWorker) handleSubmit(ctx context.Context, cmd domain.SubmitAnswerCommand) {
	username := w.session.PlayerName(cmd.ConnID)
	verdict := w.session.SubmitAnswer(cmd.ConnID, cmd.Answer)
	if verdict == domain.VerdictIgnored {
		w.log.Debug("Submission dropped", "conn_id", cmd.ConnID, "error", errors.ErrStaleSubmission)
		return
	}

	question := w.session.Question()
	correct := question.Correct.Name

	w.emit(ctx, event.AnswerRecorded{
		ID:       uuid.New(),
		Room:     w.session.ID,
		ConnID:   cmd.ConnID,
		Username: username,
		Question: correct,
		Answer:   cmd.Answer,
		Correct:  verdict == domain.VerdictWinner,
		WonRound: verdict == domain.VerdictWinner,
		At:       time.Now().UTC(),
	})

	switch verdict {
	case domain.VerdictWinner:
		w.emit(ctx, event.ScoreUpdated{
			Room:     w.session.ID,
			ConnID:   cmd.ConnID,
			Username: username,
			Score:    w.session.PlayerScore(cmd.ConnID),
		})
		w.emit(ctx, event.RosterUpdate{Room: w.session.ID, Players: w.session.Roster()})
		w.emit(ctx, event.AnswerResult{
			Room:      w.session.ID,
			Winner:    username,
			Correct:   correct,
			IsCorrect: true,
			Text:      fmt.Sprintf("🎉 You got it right! The answer was %s", correct),
			Target:    cmd.ConnID,
		})
		w.emit(ctx, event.AnswerResult{
			Room:      w.session.ID,
			Winner:    username,
			Correct:   correct,
			IsCorrect: false,
			Text:      fmt.Sprintf("⏹️ %s got it right! The answer was %s", username, correct),
			Exclude:   cmd.ConnID,
		})
		w.scheduleAdvance()

	case domain.VerdictWrong, domain.VerdictWrongLast:
		w.emit(ctx, event.AnswerResult{
			Room:      w.session.ID,
			Correct:   correct,
			IsCorrect: false,
			Text:      fmt.Sprintf("❌ Wrong answer! The correct answer was %s", correct),
			Target:    cmd.ConnID,
		})
		if verdict == domain.VerdictWrongLast {
			w.emit(ctx, event.ShowCorrectAnswer{
				Room:    w.session.ID,
				Correct: correct,
				Text:    fmt.Sprintf("The correct answer was %s", correct),
			})
			w.scheduleAdvance()
		}
	}
}

func (w *RoomWorker) handleTimeUp(ctx context.Context) {
	if !w.session.TimeUp() {
		// Already resolved: no reveal, no second timer.
		return
	}
	correct := w.session.Question().Correct.Name
	w.emit(ctx, event.ShowCorrectAnswer{
		Room:    w.session.ID,
		Correct: correct,
		Text:    fmt.Sprintf("Time's up! The correct answer was %s", correct),
	})
	w.scheduleAdvance()
}

func (w *RoomWorker) handleAdvance(ctx context.Context) {
	question, err := w.supplier.Draw()
	if err != nil {
		w.log.Error("Question draw failed on round advance", "error", err)
		return
	}
	w.session.ActivateQuestion(question)
	w.emit(ctx, event.QuestionStarted{Room: w.session.ID, Question: question})
	w.emit(ctx, event.NewQuestion{Room: w.session.ID, Question: question})
}

// scheduleAdvance arms the round-advance timer. Callers only invoke it
// right after a transition to Resolving, so at most one timer exists per
// round; the firing is a plain command on the mailbox. The send blocks
// until the worker drains a slot: only the advance can move the session
// out of Resolving, so dropping it would wedge the room, and the callback
// runs on its own goroutine where waiting is harmless.
func (w *RoomWorker) scheduleAdvance() {
	room := w.session.ID
	time.AfterFunc(w.advanceDelay, func() {
		w.mailbox <- domain.AdvanceRoundCommand{Room: room}
	})
}

func (w *RoomWorker) emit(ctx context.Context, e event.DomainEvent) {
	select {
	case <-ctx.Done():
	case w.events <- e:
	}
}
