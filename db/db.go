package db

import (
	"database/sql"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game_rooms (
	id UUID PRIMARY KEY,
	code TEXT UNIQUE NOT NULL,
	host_user_id UUID NOT NULL REFERENCES users(id),
	status TEXT NOT NULL DEFAULT 'waiting',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS room_players (
	room_id UUID NOT NULL REFERENCES game_rooms(id) ON DELETE CASCADE,
	user_id UUID NOT NULL REFERENCES users(id),
	seat INT NOT NULL CHECK (seat IN (1, 2)),
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (room_id, user_id),
	UNIQUE (room_id, seat)
);

CREATE TABLE IF NOT EXISTS players (
	id SERIAL PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	wins INT NOT NULL DEFAULT 0,
	losses INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS matches (
	id SERIAL PRIMARY KEY,
	winner_name TEXT NOT NULL,
	loser_name TEXT NOT NULL,
	winner_health INT NOT NULL DEFAULT 0,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func Connect(url string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Init creates the tables on startup if they do not exist yet.
func Init(conn *sql.DB) error {
	_, err := conn.Exec(schema)
	return err
}
