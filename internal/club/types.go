package club

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SeasonStats is a player's season-to-date aggregate, flushed from
// PlayerMatchState when a match closes.
type SeasonStats struct {
	Player      string `json:"player"`
	Appearances int    `json:"appearances"`
	Minutes     int    `json:"minutes"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
	YellowCards int    `json:"yellow_cards"`
	RedCards    int    `json:"red_cards"`
}
