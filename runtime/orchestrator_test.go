package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"quiz-arena/domain"
	"quiz-arena/domain/event"
	"quiz-arena/runtime/workers"

	"github.com/stretchr/testify/require"
)

type stubSupplier struct {
	mu       sync.Mutex
	notReady bool
	draws    int
}

func (s *stubSupplier) setReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notReady = !ready
}

func (s *stubSupplier) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.notReady
}

func (s *stubSupplier) Draw() (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	correct := fmt.Sprintf("Country-%d", s.draws)
	return domain.Question{
		Correct: domain.Country{Name: correct, Flag: "https://flags.example/" + correct + ".png"},
		Choices: []string{correct, "Decoy-A", "Decoy-B", "Decoy-C"},
	}, nil
}

// memorySink records delivered events; the fanout worker calls Consume from
// its own goroutine, so access is guarded.
type memorySink struct {
	mu   sync.Mutex
	seen []event.DomainEvent
}

func (s *memorySink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, e)
	return nil
}

func (s *memorySink) events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.seen...)
}

func (s *memorySink) questions() []event.NewQuestion {
	var out []event.NewQuestion
	for _, e := range s.events() {
		if q, ok := e.(event.NewQuestion); ok {
			out = append(out, q)
		}
	}
	return out
}

func newOrchestratorFixture(t *testing.T, advanceDelay time.Duration) (*Orchestrator, *memorySink) {
	t.Helper()
	log := slog.Default()
	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	orchestrator := NewOrchestrator(log, supervisor, NewRegistry(), &stubSupplier{}, 64, time.Second, advanceDelay)

	disk := &memorySink{}
	orchestrator.Add(disk)
	require.NoError(t, orchestrator.Start(context.Background()))
	t.Cleanup(orchestrator.Stop)
	return orchestrator, disk
}

func TestOrchestrator_Join_Creates_Room_Once(t *testing.T) {
	req := require.New(t)
	orchestrator, _ := newOrchestratorFixture(t, time.Hour)

	// Given two players joining the same room id
	orchestrator.JoinRoom("conn-alice", "ABCDEF", "Alice", &memorySink{})
	orchestrator.JoinRoom("conn-bob", "ABCDEF", "Bob", &memorySink{})

	// Then a single session exists
	req.Equal(1, orchestrator.Rooms())
}

func TestOrchestrator_Players_Share_The_Same_Question(t *testing.T) {
	req := require.New(t)
	orchestrator, _ := newOrchestratorFixture(t, time.Hour)

	alice := &memorySink{}
	bob := &memorySink{}
	orchestrator.JoinRoom("conn-alice", "ABCDEF", "Alice", alice)
	orchestrator.JoinRoom("conn-bob", "ABCDEF", "Bob", bob)

	req.Eventually(func() bool {
		return len(alice.questions()) == 1 && len(bob.questions()) == 1
	}, time.Second, 5*time.Millisecond)

	// Both receive the question already in flight, not a fresh draw
	req.Equal(alice.questions()[0].Question.Correct, bob.questions()[0].Question.Correct)

	// And the roster broadcast lists both players at score zero
	req.Eventually(func() bool {
		for _, e := range bob.events() {
			if roster, ok := e.(event.RosterUpdate); ok && len(roster.Players) == 2 {
				return roster.Players["conn-alice"].Score == 0 && roster.Players["conn-bob"].Score == 0
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_First_Correct_Answer_Wins_The_Round(t *testing.T) {
	req := require.New(t)
	orchestrator, disk := newOrchestratorFixture(t, 50*time.Millisecond)

	alice := &memorySink{}
	bob := &memorySink{}
	orchestrator.JoinRoom("conn-alice", "ABCDEF", "Alice", alice)
	orchestrator.JoinRoom("conn-bob", "ABCDEF", "Bob", bob)

	req.Eventually(func() bool { return len(alice.questions()) == 1 }, time.Second, 5*time.Millisecond)
	correct := alice.questions()[0].Question.Correct.Name

	// When Alice answers correctly and Bob repeats the answer right after
	orchestrator.Dispatch(domain.SubmitAnswerCommand{Room: "ABCDEF", ConnID: "conn-alice", Answer: correct})
	orchestrator.Dispatch(domain.SubmitAnswerCommand{Room: "ABCDEF", ConnID: "conn-bob", Answer: correct})

	// Then only Alice is credited
	req.Eventually(func() bool {
		for _, e := range disk.events() {
			if score, ok := e.(event.ScoreUpdated); ok {
				return score.ConnID == "conn-alice" && score.Score == 1
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// And after the fixed delay exactly one next question is broadcast
	req.Eventually(func() bool { return len(bob.questions()) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	req.Len(bob.questions(), 2)

	var scores int
	for _, e := range disk.events() {
		if _, ok := e.(event.ScoreUpdated); ok {
			scores++
		}
	}
	req.Equal(1, scores)
}

func TestOrchestrator_Join_While_Loading_Leaves_No_Subscription(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	supplier := &stubSupplier{}
	supplier.setReady(false)
	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	orchestrator := NewOrchestrator(log, supervisor, NewRegistry(), supplier, 64, time.Second, time.Hour)
	req.NoError(orchestrator.Start(context.Background()))
	t.Cleanup(orchestrator.Stop)

	// Given a join attempt before the question catalog finished loading
	early := &memorySink{}
	orchestrator.JoinRoom("conn-early", "ABCDEF", "Eve", early)

	// Then the connection is told to retry and no room exists
	req.Eventually(func() bool {
		for _, e := range early.events() {
			if notice, ok := e.(event.ErrorNotice); ok {
				return notice.Text == workers.NoticeCatalogLoading
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	req.Equal(0, orchestrator.Rooms())

	// When the catalog becomes ready and another player joins the same room
	supplier.setReady(true)
	alice := &memorySink{}
	orchestrator.JoinRoom("conn-alice", "ABCDEF", "Alice", alice)
	req.Eventually(func() bool { return len(alice.questions()) == 1 }, time.Second, 5*time.Millisecond)

	// Then the refused connection never sees room traffic: its sink holds
	// only the refusal notice, and the roster lists Alice alone
	req.Eventually(func() bool {
		for _, e := range alice.events() {
			if roster, ok := e.(event.RosterUpdate); ok {
				return len(roster.Players) == 1
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	req.Len(early.events(), 1)
}

func TestOrchestrator_Dispatch_Unknown_Room_Is_Dropped(t *testing.T) {
	req := require.New(t)
	orchestrator, _ := newOrchestratorFixture(t, time.Hour)

	// Commands other than join never create rooms
	orchestrator.Dispatch(domain.SubmitAnswerCommand{Room: "NOPE", ConnID: "conn-x", Answer: "France"})
	orchestrator.Dispatch(domain.TimeUpCommand{Room: "NOPE", ConnID: "conn-x"})

	req.Equal(0, orchestrator.Rooms())
}

func TestOrchestrator_Disconnect_Cleans_Up_Everywhere(t *testing.T) {
	req := require.New(t)
	orchestrator, disk := newOrchestratorFixture(t, time.Hour)

	alice := &memorySink{}
	bob := &memorySink{}
	orchestrator.JoinRoom("conn-alice", "ABCDEF", "Alice", alice)
	orchestrator.JoinRoom("conn-bob", "ABCDEF", "Bob", bob)
	req.Eventually(func() bool { return len(bob.questions()) == 1 }, time.Second, 5*time.Millisecond)

	orchestrator.Disconnect("conn-bob")

	// The persistence sink observes the departure
	req.Eventually(func() bool {
		for _, e := range disk.events() {
			if left, ok := e.(event.PlayerLeft); ok {
				return left.ConnID == "conn-bob"
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// And Bob no longer receives broadcasts
	before := len(bob.events())
	orchestrator.JoinRoom("conn-clara", "ABCDEF", "Clara", &memorySink{})
	req.Eventually(func() bool {
		for _, e := range alice.events() {
			if roster, ok := e.(event.RosterUpdate); ok && len(roster.Players) == 2 {
				_, hasClara := roster.Players["conn-clara"]
				return hasClara
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	req.Equal(before, len(bob.events()))
}
