// Package observability aggregates runtime telemetry for the HTTP API.
package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"quiz-arena/contract"
	"quiz-arena/domain/event"

	"github.com/shirou/gopsutil/process"
)

var (
	_ contract.Worker    = (*Monitor)(nil)
	_ contract.EventSink = (*Monitor)(nil)
)

// RecentAnswerInfo is one row of the live answer feed.
type RecentAnswerInfo struct {
	Room      string `json:"room"`
	Username  string `json:"username"`
	Correct   bool   `json:"correct"`
	Timestamp string `json:"timestamp"`
}

// MonitoringStats is the snapshot served to operators.
type MonitoringStats struct {
	GamesStarted     uint64             `json:"games_started"`
	PlayersJoined    uint64             `json:"players_joined"`
	PlayersLeft      uint64             `json:"players_left"`
	QuestionsServed  uint64             `json:"questions_served"`
	AnswersRecorded  uint64             `json:"answers_recorded"`
	RoundsWon        uint64             `json:"rounds_won"`
	EventsPerSecond  float64            `json:"events_per_second"`
	CPUPercent       float64            `json:"cpu_percent"`
	RAMPercent       float32            `json:"ram_percent"`
	AllocMemMb       uint64             `json:"alloc_mem_mb"`
	NumGC            uint32             `json:"num_gc"`
	NumGoroutine     int                `json:"num_goroutine"`
	RecentAnswers    []RecentAnswerInfo `json:"recent_answers"`
}

// Monitor observes the event stream as a permanent sink and refreshes a
// snapshot once per second. Counters are atomic; the snapshot and the
// recent-answer feed sit behind the mutex.
type Monitor struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats

	gamesStarted    atomic.Uint64
	playersJoined   atomic.Uint64
	playersLeft     atomic.Uint64
	questionsServed atomic.Uint64
	answersRecorded atomic.Uint64
	roundsWon       atomic.Uint64
	windowEvents    atomic.Uint64

	lastCheck     time.Time
	recentAnswers []RecentAnswerInfo
	proc          *process.Process
}

func NewMonitor(log *slog.Logger) *Monitor {
	// Own-process handle; sampling failures only cost the cpu/ram fields.
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug("Error while retrieving own process", "err", err)
	}
	return &Monitor{
		log:       log,
		lastCheck: time.Now(),
		proc:      proc,
		latestStats: MonitoringStats{
			RecentAnswers: make([]RecentAnswerInfo, 0),
		},
	}
}

// Consume counts the event; it never rejects one.
func (m *Monitor) Consume(_ context.Context, e event.DomainEvent) error {
	m.windowEvents.Add(1)

	switch evt := e.(type) {
	case event.GameStarted:
		m.gamesStarted.Add(1)
	case event.PlayerJoined:
		m.playersJoined.Add(1)
	case event.PlayerLeft:
		m.playersLeft.Add(1)
	case event.QuestionStarted:
		m.questionsServed.Add(1)
	case event.AnswerRecorded:
		m.answersRecorded.Add(1)
		if evt.WonRound {
			m.roundsWon.Add(1)
		}
		m.addRecentAnswer(evt)
	}
	return nil
}

func (m *Monitor) addRecentAnswer(evt event.AnswerRecorded) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := RecentAnswerInfo{
		Room:      string(evt.Room),
		Username:  evt.Username,
		Correct:   evt.Correct,
		Timestamp: evt.At.Format("15:04:05"),
	}
	m.recentAnswers = append([]RecentAnswerInfo{row}, m.recentAnswers...)
	if len(m.recentAnswers) > 20 {
		m.recentAnswers = m.recentAnswers[:20]
	}
}

// Run refreshes the snapshot once per second until the context ends.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Stopping monitor")
			return nil
		case <-ticker.C:
			m.updateStats()
		}
	}
}

func (m *Monitor) updateStats() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	duration := now.Sub(m.lastCheck).Seconds()
	if duration > 0 {
		window := m.windowEvents.Swap(0)
		m.latestStats.EventsPerSecond = float64(window) / duration
	}
	m.lastCheck = now

	m.latestStats.GamesStarted = m.gamesStarted.Load()
	m.latestStats.PlayersJoined = m.playersJoined.Load()
	m.latestStats.PlayersLeft = m.playersLeft.Load()
	m.latestStats.QuestionsServed = m.questionsServed.Load()
	m.latestStats.AnswersRecorded = m.answersRecorded.Load()
	m.latestStats.RoundsWon = m.roundsWon.Load()
	m.latestStats.RecentAnswers = append([]RecentAnswerInfo(nil), m.recentAnswers...)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.latestStats.AllocMemMb = mem.Alloc / 1024 / 1024
	m.latestStats.NumGC = mem.NumGC
	m.latestStats.NumGoroutine = runtime.NumGoroutine()

	if m.proc == nil {
		return
	}
	if cpu, err := m.proc.CPUPercent(); err != nil {
		m.log.Debug("Error while finding process cpu usage", "err", err)
	} else {
		m.latestStats.CPUPercent = cpu
	}
	if ram, err := m.proc.MemoryPercent(); err != nil {
		m.log.Debug("Error while finding process ram usage", "err", err)
	} else {
		m.latestStats.RAMPercent = ram
	}
}

// GetLatest returns the last published snapshot.
func (m *Monitor) GetLatest() MonitoringStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latestStats
}
