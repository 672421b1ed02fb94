package services

import (
	"context"
	"testing"

	"quiz-arena/contract"
	"quiz-arena/domain"
	"quiz-arena/domain/event"
	"quiz-arena/moderation"
	"quiz-arena/repositories"

	"github.com/stretchr/testify/require"
)

type fakeOrchestrator struct {
	joins        []domain.JoinRoomCommand
	dispatched   []domain.Command
	disconnected []string
}

func (o *fakeOrchestrator) Dispatch(cmd domain.Command) { o.dispatched = append(o.dispatched, cmd) }

func (o *fakeOrchestrator) JoinRoom(connID string, roomID domain.RoomID, username string, _ contract.EventSink) {
	o.joins = append(o.joins, domain.JoinRoomCommand{Room: roomID, ConnID: connID, Username: username})
}

func (o *fakeOrchestrator) Disconnect(connID string) {
	o.disconnected = append(o.disconnected, connID)
}

func (o *fakeOrchestrator) Start(context.Context) error { return nil }
func (o *fakeOrchestrator) Stop()                       {}

type nullSink struct{}

func (nullSink) Consume(context.Context, event.DomainEvent) error { return nil }

func newService(t *testing.T) (*GameService, *fakeOrchestrator) {
	t.Helper()
	moderator, err := moderation.Default('*')
	require.NoError(t, err)

	orchestrator := &fakeOrchestrator{}
	return NewGameService(orchestrator, repositories.IGameRepository(nil), moderator), orchestrator
}

func TestGameService_JoinRoom_Censors_Display_Name(t *testing.T) {
	req := require.New(t)
	service, orchestrator := newService(t)

	// Given a display name hiding a blocked word behind leetspeak
	service.JoinRoom("conn-1", "ABCDEF", "1d10t", nullSink{})

	req.Len(orchestrator.joins, 1)
	req.Equal("*****", orchestrator.joins[0].Username)
	req.Equal(domain.RoomID("ABCDEF"), orchestrator.joins[0].Room)
}

func TestGameService_JoinRoom_Keeps_Clean_Name(t *testing.T) {
	req := require.New(t)
	service, orchestrator := newService(t)

	service.JoinRoom("conn-1", "ABCDEF", "Alice", nullSink{})

	req.Equal("Alice", orchestrator.joins[0].Username)
}

func TestGameService_Gameplay_Intents_Reach_The_Room(t *testing.T) {
	req := require.New(t)
	service, orchestrator := newService(t)

	service.SubmitAnswer("conn-1", "ABCDEF", "France")
	service.TimeUp("conn-1", "ABCDEF")
	service.Disconnect("conn-1")

	req.Len(orchestrator.dispatched, 2)
	req.Equal(domain.SubmitAnswerCommand{Room: "ABCDEF", ConnID: "conn-1", Answer: "France"}, orchestrator.dispatched[0])
	req.Equal(domain.TimeUpCommand{Room: "ABCDEF", ConnID: "conn-1"}, orchestrator.dispatched[1])
	req.Equal([]string{"conn-1"}, orchestrator.disconnected)
}
