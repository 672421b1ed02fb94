package services

import (
	"quiz-arena/contract"
	"quiz-arena/domain"
	"quiz-arena/moderation"
	"quiz-arena/repositories"
)

// IGameService is the surface consumed by transports: gameplay intents on
// one side, analytics read models on the other.
type IGameService interface {
	JoinRoom(connID string, roomID domain.RoomID, username string, sink contract.EventSink)
	SubmitAnswer(connID string, roomID domain.RoomID, answer string)
	TimeUp(connID string, roomID domain.RoomID)
	Disconnect(connID string)

	Leaderboard(topN int) ([]repositories.LeaderboardEntry, error)
	PlayerStats(username string) (repositories.PlayerStats, bool, error)
	PlayerGames(username string) ([]repositories.GameHistory, error)
	PlayerQuestions(username string) ([]repositories.AnswerRecord, error)
}

type GameService struct {
	orchestrator contract.IOrchestrator
	repository   repositories.IGameRepository
	moderator    moderation.Moderator
}

func NewGameService(orchestrator contract.IOrchestrator,
	repository repositories.IGameRepository,
	moderator moderation.Moderator) *GameService {
	return &GameService{
		orchestrator: orchestrator,
		repository:   repository,
		moderator:    moderator,
	}
}

// JoinRoom censors the display name, subscribes the connection and
// enqueues the join on the room's mailbox.
func (s *GameService) JoinRoom(connID string, roomID domain.RoomID, username string, sink contract.EventSink) {
	s.orchestrator.JoinRoom(connID, roomID, s.moderator.Censor(username), sink)
}

func (s *GameService) SubmitAnswer(connID string, roomID domain.RoomID, answer string) {
	s.orchestrator.Dispatch(domain.SubmitAnswerCommand{Room: roomID, ConnID: connID, Answer: answer})
}

func (s *GameService) TimeUp(connID string, roomID domain.RoomID) {
	s.orchestrator.Dispatch(domain.TimeUpCommand{Room: roomID, ConnID: connID})
}

func (s *GameService) Disconnect(connID string) {
	s.orchestrator.Disconnect(connID)
}

func (s *GameService) Leaderboard(topN int) ([]repositories.LeaderboardEntry, error) {
	return s.repository.Leaderboard(topN)
}

func (s *GameService) PlayerStats(username string) (repositories.PlayerStats, bool, error) {
	return s.repository.PlayerStats(username)
}

func (s *GameService) PlayerGames(username string) ([]repositories.GameHistory, error) {
	return s.repository.PlayerGames(username)
}

func (s *GameService) PlayerQuestions(username string) ([]repositories.AnswerRecord, error) {
	return s.repository.PlayerQuestions(username)
}
