// Command viewer prints the current leaderboard from a (possibly live)
// game database, read-only.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"quiz-arena/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/quiz"`
	TopN           int    `env:"LEADERBOARD_TOP,default=10"`
	LogLevel       string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// BypassLockGuard allows opening while the server holds the lock.
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repository := repositories.NewGameRepository(db, logs.GetLoggerFromString(config.LogLevel))
	entries, err := repository.Leaderboard(config.TopN)
	if err != nil {
		log.Fatalf("Failed to fetch leaderboard: %v", err)
	}

	color.Cyan.Printf("Top %d players\n", config.TopN)
	if len(entries) == 0 {
		color.Yellow.Println("No scores recorded yet")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Player", "Total score"})
	for i, entry := range entries {
		table.Append([]string{strconv.Itoa(i + 1), entry.Username, fmt.Sprintf("%d", entry.TotalScore)})
	}
	table.Render()
}
