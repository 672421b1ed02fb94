package main

import (
	"fmt"
	"time"
)

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	RoundAdvanceDelay    time.Duration `env:"ROUND_ADVANCE_DELAY,default=3s"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/quiz"`
	CountriesURL         string        `env:"COUNTRIES_URL,default=https://restcountries.com/v3.1/all?fields=name,flags"`
	CountriesTimeout     time.Duration `env:"COUNTRIES_TIMEOUT,default=30s"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=3001"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
