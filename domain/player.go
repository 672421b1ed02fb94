package domain

// Player is one live connection inside a room. The connection id is
// ephemeral: a player leaving and coming back is a new Player.
type Player struct {
	ConnID      string
	Username    string
	Score       int
	HasAnswered bool
}

// PlayerView is the broadcast-safe projection of a Player.
type PlayerView struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}
