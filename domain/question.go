// Package domain contains core concepts of the trivia game.
// No runtime, network, or storage logic should be added here.
package domain

import "time"

// Country is one quizzable entry of the catalog.
type Country struct {
	Name string
	Flag string // image URL
}

// Question is one immutable round subject: a correct country and four
// shuffled choices. The correct name appears in Choices exactly once.
type Question struct {
	Correct   Country
	Choices   []string
	CreatedAt time.Time
}
