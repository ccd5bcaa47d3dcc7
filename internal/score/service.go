package score

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/stickclash/stickclash-backend/db"
)

// ResultChannel is the Redis channel match results are published on for
// lobby notifications.
const ResultChannel = "match_results"

var ErrPlayerNotFound = errors.New("player not found")

type Service struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewService(conn *sql.DB, rdb *redis.Client) *Service {
	return &Service{
		db:  conn,
		rdb: rdb,
	}
}

// RecordMatch appends a match record and bumps both players' tallies.
// The record is immutable once written.
func (s *Service) RecordMatch(winnerName, loserName string, winnerHealth int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO players (name, wins, losses) VALUES ($1, 1, 0)
		ON CONFLICT (name) DO UPDATE SET wins = players.wins + 1
	`, winnerName)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO players (name, wins, losses) VALUES ($1, 0, 1)
		ON CONFLICT (name) DO UPDATE SET losses = players.losses + 1
	`, loserName)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO matches (winner_name, loser_name, winner_health)
		VALUES ($1, $2, $3)
	`, winnerName, loserName, winnerHealth)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.publishResult(winnerName, loserName, winnerHealth)
	return nil
}

// publishResult fans the result out to lobby connections via Redis.
// Best effort; a failed publish does not undo the recorded match.
func (s *Service) publishResult(winnerName, loserName string, winnerHealth int) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":         "match_result",
		"winnerName":   winnerName,
		"loserName":    loserName,
		"winnerHealth": winnerHealth,
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(context.Background(), ResultChannel, payload).Err(); err != nil {
		log.Warnf("Failed to publish match result: %v", err)
	}
}

func (s *Service) Leaderboard(limit int) ([]db.PlayerStats, error) {
	rows, err := s.db.Query(`
		SELECT name, wins, losses,
			CASE WHEN (wins + losses) > 0
				THEN ROUND(wins * 100.0 / (wins + losses), 1)
				ELSE 0
			END AS win_rate
		FROM players
		ORDER BY wins DESC, losses ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []db.PlayerStats
	for rows.Next() {
		var e db.PlayerStats
		if err := rows.Scan(&e.Name, &e.Wins, &e.Losses, &e.WinRate); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Service) RecentMatches(limit int) ([]db.MatchRecord, error) {
	rows, err := s.db.Query(`
		SELECT winner_name, loser_name, winner_health, played_at
		FROM matches
		ORDER BY played_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []db.MatchRecord
	for rows.Next() {
		var m db.MatchRecord
		if err := rows.Scan(&m.WinnerName, &m.LoserName, &m.WinnerHealth, &m.PlayedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Service) PlayerStats(name string) (db.PlayerStats, []db.MatchRecord, error) {
	var stats db.PlayerStats
	err := s.db.QueryRow(`
		SELECT name, wins, losses,
			CASE WHEN (wins + losses) > 0
				THEN ROUND(wins * 100.0 / (wins + losses), 1)
				ELSE 0
			END AS win_rate
		FROM players WHERE name = $1
	`, name).Scan(&stats.Name, &stats.Wins, &stats.Losses, &stats.WinRate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.PlayerStats{}, nil, ErrPlayerNotFound
		}
		return db.PlayerStats{}, nil, err
	}

	rows, err := s.db.Query(`
		SELECT winner_name, loser_name, winner_health, played_at
		FROM matches
		WHERE winner_name = $1 OR loser_name = $1
		ORDER BY played_at DESC
		LIMIT 5
	`, name)
	if err != nil {
		return db.PlayerStats{}, nil, err
	}
	defer rows.Close()

	var recent []db.MatchRecord
	for rows.Next() {
		var m db.MatchRecord
		if err := rows.Scan(&m.WinnerName, &m.LoserName, &m.WinnerHealth, &m.PlayedAt); err != nil {
			return db.PlayerStats{}, nil, err
		}
		recent = append(recent, m)
	}
	return stats, recent, rows.Err()
}
