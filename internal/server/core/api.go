package core

// Request types

type CreateRoomRequest struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=64"`
	FEN  string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

// Response types

// RoomResponse is the full snapshot broadcast on every state change.
// Clients render only what is in here: board, side to move, status.
type RoomResponse struct {
	RoomID    string   `json:"roomId"`
	Name      string   `json:"name,omitempty"`
	FEN       string   `json:"fen"`
	Turn      string   `json:"turn"`   // "w" or "b"
	Status    string   `json:"status"` // "active", "check", "checkmate", ...
	Moves     []string `json:"moves"`
	White     bool     `json:"whiteSeated"`
	Black     bool     `json:"blackSeated"`
	Observers int      `json:"observers"`
	LastMove  string   `json:"lastMove,omitempty"`
}

type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type ArchivedGameResponse struct {
	RoomID   string   `json:"roomId"`
	Name     string   `json:"name,omitempty"`
	Result   string   `json:"result"`
	FinalFEN string   `json:"finalFen"`
	Moves    []string `json:"moves"`
	Plies    int      `json:"plies"`
}

// WebSocket frames

// ClientMessage is what a connected client may send. Only seated
// players' move proposals are acted on.
type ClientMessage struct {
	Type string `json:"type"` // "move"
	Move string `json:"move,omitempty"`
}

// ServerMessage is the single frame type the server emits. Type is
// "joined" (role assignment on connect), "state" (snapshot broadcast
// after every committed ply or membership change) or "error"
// (rejection, sent only to the proposer).
type ServerMessage struct {
	Type  string         `json:"type"`
	Role  string         `json:"role,omitempty"` // "white", "black", "observer"
	State *RoomResponse  `json:"state,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}
