package club

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/fcnordhavn/matchday/internal/match"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// CreateMatch inserts the match row and a benched starter state for
// every player in the lineup.
func (s *store) CreateMatch(m *match.Match, starters []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO matches (id, opponent, match_date, status, home_score, away_score, clock, opposition_yellow, opposition_red)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Opponent, m.Date, m.Status, m.HomeScore, m.AwayScore, m.Clock, m.OppositionYellow, m.OppositionRed)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert match: %w", err)
	}

	for _, player := range starters {
		_, err = tx.Exec(`
			INSERT INTO player_states (match_id, player, role, phase)
			VALUES (?, ?, ?, ?)
		`, m.ID, player, match.RoleStarter, match.PhaseBench)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert starter %s: %w", player, err)
		}
	}

	return tx.Commit()
}

// GetMatch retrieves a single match by ID.
func (s *store) GetMatch(matchID string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, opponent, match_date, status, home_score, away_score, clock, opposition_yellow, opposition_red
		FROM matches WHERE id = ?
	`, matchID)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrMatchNotFound)
	}
	return m, err
}

// GetAllMatches retrieves every match, most recent first.
func (s *store) GetAllMatches() ([]*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, opponent, match_date, status, home_score, away_score, clock, opposition_yellow, opposition_red
		FROM matches ORDER BY match_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetPlayerStates retrieves all player states for a match.
func (s *store) GetPlayerStates(matchID string) ([]*match.PlayerMatchState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT match_id, player, role, phase, intervals_json, cards_json, goals, assists
		FROM player_states WHERE match_id = ?
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*match.PlayerMatchState
	for rows.Next() {
		var st match.PlayerMatchState
		var intervalsJSON, cardsJSON string
		if err := rows.Scan(&st.MatchID, &st.Player, &st.Role, &st.Phase, &intervalsJSON, &cardsJSON, &st.Goals, &st.Assists); err != nil {
			log.Error("Failed to scan player state row", "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(intervalsJSON), &st.Intervals); err != nil {
			log.Error("Failed to unmarshal intervals_json", "error", err, "player", st.Player)
		}
		if err := json.Unmarshal([]byte(cardsJSON), &st.Cards); err != nil {
			log.Error("Failed to unmarshal cards_json", "error", err, "player", st.Player)
		}
		states = append(states, &st)
	}
	return states, rows.Err()
}

// SaveMatchState persists the match and all player states in one
// transaction. The commit callback, when given, runs inside that same
// transaction before it is committed.
func (s *store) SaveMatchState(m *match.Match, states []*match.PlayerMatchState, commit func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE matches
		SET status = ?, home_score = ?, away_score = ?, clock = ?, opposition_yellow = ?, opposition_red = ?
		WHERE id = ?
	`, m.Status, m.HomeScore, m.AwayScore, m.Clock, m.OppositionYellow, m.OppositionRed, m.ID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update match: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO player_states (match_id, player, role, phase, intervals_json, cards_json, goals, assists)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, player) DO UPDATE SET
			role = excluded.role,
			phase = excluded.phase,
			intervals_json = excluded.intervals_json,
			cards_json = excluded.cards_json,
			goals = excluded.goals,
			assists = excluded.assists;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, st := range states {
		intervalsJSON, err := json.Marshal(st.Intervals)
		if err != nil {
			tx.Rollback()
			return err
		}
		cardsJSON, err := json.Marshal(st.Cards)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(st.MatchID, st.Player, st.Role, st.Phase, string(intervalsJSON), string(cardsJSON), st.Goals, st.Assists); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert state for %s: %w", st.Player, err)
		}
	}

	if commit != nil {
		if err := commit(tx); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// FlushSeasonStats folds the closed match's player states into the
// season aggregates. Appearances count any player with recorded pitch
// time.
func (s *store) FlushSeasonStats(m *match.Match, states []*match.PlayerMatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO season_stats (player, appearances, minutes, goals, assists, yellow_cards, red_cards)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player) DO UPDATE SET
			appearances = appearances + excluded.appearances,
			minutes = minutes + excluded.minutes,
			goals = goals + excluded.goals,
			assists = assists + excluded.assists,
			yellow_cards = yellow_cards + excluded.yellow_cards,
			red_cards = red_cards + excluded.red_cards;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, st := range states {
		minutes := st.Minutes(m.Clock)
		appearances := 0
		if len(st.Intervals) > 0 {
			appearances = 1
		}
		reds := 0
		for _, c := range st.Cards {
			if c.Severity == match.CardRed {
				reds++
			}
		}
		if _, err := stmt.Exec(st.Player, appearances, minutes, st.Goals, st.Assists, st.YellowCount(), reds); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to flush season stats for %s: %w", st.Player, err)
		}
	}

	return tx.Commit()
}

// GetSeasonStats retrieves season aggregates for all players, ordered
// by minutes played.
func (s *store) GetSeasonStats() ([]SeasonStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT player, appearances, minutes, goals, assists, yellow_cards, red_cards
		FROM season_stats ORDER BY minutes DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SeasonStats
	for rows.Next() {
		var st SeasonStats
		if err := rows.Scan(&st.Player, &st.Appearances, &st.Minutes, &st.Goals, &st.Assists, &st.YellowCards, &st.RedCards); err != nil {
			log.Error("Failed to scan season stats row", "error", err)
			continue
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// GetSeasonStatsByPlayer retrieves one player's season aggregate.
func (s *store) GetSeasonStatsByPlayer(player string) (*SeasonStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st SeasonStats
	err := s.db.QueryRow(`
		SELECT player, appearances, minutes, goals, assists, yellow_cards, red_cards
		FROM season_stats WHERE player = ?
	`, player).Scan(&st.Player, &st.Appearances, &st.Minutes, &st.Goals, &st.Assists, &st.YellowCards, &st.RedCards)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Clear wipes all tables. Intended for test and admin endpoints only.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"event_outcomes", "player_states", "season_stats", "matches"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
		}
	}
}

// ClearMatch removes one match and its dependent rows.
func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM event_outcomes WHERE match_id = ?", matchID); err != nil {
		log.Error("Failed to clear event outcomes", "matchID", matchID, "error", err)
	}
	if _, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID); err != nil {
		log.Error("Failed to clear match", "matchID", matchID, "error", err)
	}
}

// scanMatch is a helper to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*match.Match, error) {
	var m match.Match
	err := scanner.Scan(
		&m.ID, &m.Opponent, &m.Date, &m.Status, &m.HomeScore, &m.AwayScore,
		&m.Clock, &m.OppositionYellow, &m.OppositionRed,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
