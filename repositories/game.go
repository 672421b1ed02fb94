//go:generate go run go.uber.org/mock/mockgen -source=game.go -destination=../mocks/mock_game_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// IGameRepository is the persistence gateway. It is a durability and
// analytics mirror: gameplay decisions never depend on a read from here.
type IGameRepository interface {
	StoreGame(game GameRecord) error
	StorePlayer(player PlayerRecord) error
	StoreScore(score ScoreRecord) error
	StoreQuestion(question QuestionRecord) error
	StoreAnswer(answer AnswerRecord) error
	RemovePlayerFromAllGames(connID string) error
	Leaderboard(topN int) ([]LeaderboardEntry, error)
	PlayerStats(username string) (PlayerStats, bool, error)
	PlayerGames(username string) ([]GameHistory, error)
	PlayerQuestions(username string) ([]AnswerRecord, error)
}

type GameRecord struct {
	ID        uuid.UUID `json:"id"`
	Room      string    `json:"room"`
	CreatedAt time.Time `json:"created_at"`
}

type PlayerRecord struct {
	ConnID    string    `json:"conn_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreRecord is one player's participation in one game. Mirroring the
// original game_players rows, it is deleted on disconnect: removal, not a
// persisted mutation, ends participation.
type ScoreRecord struct {
	Room     string `json:"room"`
	ConnID   string `json:"conn_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type QuestionRecord struct {
	Room    string    `json:"room"`
	Correct string    `json:"correct"`
	Flag    string    `json:"flag"`
	Choices []string  `json:"choices"`
	At      time.Time `json:"at"`
}

type AnswerRecord struct {
	ID       uuid.UUID `json:"id"`
	Room     string    `json:"room"`
	ConnID   string    `json:"conn_id"`
	Username string    `json:"username"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Correct  bool      `json:"correct"`
	WonRound bool      `json:"won_round"`
	At       time.Time `json:"at"`
}

type LeaderboardEntry struct {
	Username   string `json:"username"`
	TotalScore int    `json:"total_score"`
}

type PlayerStats struct {
	Username       string  `json:"username"`
	TotalGames     int     `json:"total_games"`
	TotalScore     int     `json:"total_score"`
	TotalAnswers   int     `json:"total_answers"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy_percentage"`
}

type GameHistory struct {
	Room           string `json:"room"`
	Score          int    `json:"score"`
	TotalAnswers   int    `json:"total_answers"`
	CorrectAnswers int    `json:"correct_answers"`
}

// GameRepository persists game state in BadgerDB under prefix-scannable
// keys:
//
//	game:{room}
//	player:{conn_id}
//	score:{room}:{conn_id}
//	question:{room}:{timestamp_padded}
//	answer:{room}:{timestamp_padded}:{uuid}
//
// Timestamps use 19-digit zero padding so lexicographical order is
// chronological order; the answer UUID keeps two answers landing in the
// same nanosecond on distinct keys.
type GameRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewGameRepository(db *badger.DB, log *slog.Logger) GameRepository {
	return GameRepository{db: db, log: log}
}

func (r GameRepository) StoreGame(game GameRecord) error {
	return r.put(fmt.Sprintf("game:%s", game.Room), game)
}

func (r GameRepository) StorePlayer(player PlayerRecord) error {
	return r.put(fmt.Sprintf("player:%s", player.ConnID), player)
}

func (r GameRepository) StoreScore(score ScoreRecord) error {
	return r.put(fmt.Sprintf("score:%s:%s", score.Room, score.ConnID), score)
}

func (r GameRepository) StoreQuestion(question QuestionRecord) error {
	key := fmt.Sprintf("question:%s:%019d", question.Room, question.At.UnixNano())
	return r.put(key, question)
}

func (r GameRepository) StoreAnswer(answer AnswerRecord) error {
	key := fmt.Sprintf("answer:%s:%019d:%s", answer.Room, answer.At.UnixNano(), answer.ID)
	return r.put(key, answer)
}

// RemovePlayerFromAllGames deletes every score row held by the connection,
// the disconnect cleanup of the original schema. Recorded answers are kept.
func (r GameRepository) RemovePlayerFromAllGames(connID string) error {
	suffix := ":" + connID
	return r.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte("score:")
		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if strings.HasSuffix(string(key), suffix) {
				stale = append(stale, key)
			}
		}
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Leaderboard sums surviving score rows per username and returns the topN.
func (r GameRepository) Leaderboard(topN int) ([]LeaderboardEntry, error) {
	var scores []ScoreRecord
	if err := scanPrefix(r.db, "score:", &scores); err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	for _, score := range scores {
		totals[score.Username] += score.Score
	}

	entries := make([]LeaderboardEntry, 0, len(totals))
	for username, total := range totals {
		entries = append(entries, LeaderboardEntry{Username: username, TotalScore: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Username < entries[j].Username
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries, nil
}

// PlayerStats aggregates score rows (games, points) and answer rows
// (volume, accuracy) for one username. The boolean reports whether any
// trace of the player exists.
func (r GameRepository) PlayerStats(username string) (PlayerStats, bool, error) {
	stats := PlayerStats{Username: username}

	var scores []ScoreRecord
	if err := scanPrefix(r.db, "score:", &scores); err != nil {
		return stats, false, err
	}
	for _, score := range scores {
		if score.Username != username {
			continue
		}
		stats.TotalGames++
		stats.TotalScore += score.Score
	}

	answers, err := r.PlayerQuestions(username)
	if err != nil {
		return stats, false, err
	}
	stats.TotalAnswers = len(answers)
	for _, answer := range answers {
		if answer.Correct {
			stats.CorrectAnswers++
		}
	}
	if stats.TotalAnswers > 0 {
		stats.Accuracy = float64(stats.CorrectAnswers) / float64(stats.TotalAnswers) * 100
	}

	found := stats.TotalGames > 0 || stats.TotalAnswers > 0
	return stats, found, nil
}

// PlayerGames builds the per-room history of one username.
func (r GameRepository) PlayerGames(username string) ([]GameHistory, error) {
	var scores []ScoreRecord
	if err := scanPrefix(r.db, "score:", &scores); err != nil {
		return nil, err
	}
	answers, err := r.PlayerQuestions(username)
	if err != nil {
		return nil, err
	}

	byRoom := make(map[string]*GameHistory)
	for _, score := range scores {
		if score.Username != username {
			continue
		}
		byRoom[score.Room] = &GameHistory{Room: score.Room, Score: score.Score}
	}
	for _, answer := range answers {
		history, ok := byRoom[answer.Room]
		if !ok {
			continue
		}
		history.TotalAnswers++
		if answer.Correct {
			history.CorrectAnswers++
		}
	}

	games := make([]GameHistory, 0, len(byRoom))
	for _, history := range byRoom {
		games = append(games, *history)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Room < games[j].Room })
	return games, nil
}

// PlayerQuestions returns every recorded answer of one username, newest
// first.
func (r GameRepository) PlayerQuestions(username string) ([]AnswerRecord, error) {
	var all []AnswerRecord
	if err := scanPrefix(r.db, "answer:", &all); err != nil {
		return nil, err
	}

	var answers []AnswerRecord
	for _, answer := range all {
		if answer.Username == username {
			answers = append(answers, answer)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].At.After(answers[j].At) })
	return answers, nil
}

func (r GameRepository) put(key string, value any) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// scanPrefix collects every value under a key prefix into out, which must
// be a pointer to a slice of the record type.
func scanPrefix[T any](db *badger.DB, prefix string, out *[]T) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var record T
				if err := json.Unmarshal(value, &record); err != nil {
					return err
				}
				*out = append(*out, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
