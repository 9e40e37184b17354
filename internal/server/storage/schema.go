package storage

import "time"

// GameRecord represents a row in the games table: one completed game.
type GameRecord struct {
	RoomID     string    `db:"room_id"`
	Name       string    `db:"name"`
	InitialFEN string    `db:"initial_fen"`
	FinalFEN   string    `db:"final_fen"`
	Result     string    `db:"result"`
	Plies      int       `db:"plies"`
	EndTimeUTC time.Time `db:"end_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID      int64  `db:"move_id"`
	RoomID      string `db:"room_id"`
	MoveNumber  int    `db:"move_number"`
	MoveUCI     string `db:"move_uci"`
	PlayerColor string `db:"player_color"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	room_id TEXT PRIMARY KEY,
	name TEXT,
	initial_fen TEXT NOT NULL,
	final_fen TEXT NOT NULL,
	result TEXT NOT NULL,
	plies INTEGER NOT NULL,
	end_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_games_end_time ON games(end_time_utc);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	player_color TEXT NOT NULL,
	FOREIGN KEY (room_id) REFERENCES games(room_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_moves_room_id ON moves(room_id);
`
