package core

// Error codes
const (
	ErrRoomNotFound      = "ROOM_NOT_FOUND"
	ErrIllegalMove       = "ILLEGAL_MOVE"
	ErrNotYourTurn       = "NOT_YOUR_TURN"
	ErrGameOver          = "GAME_OVER"
	ErrMalformedInput    = "MALFORMED_INPUT"
	ErrNotAPlayer        = "NOT_A_PLAYER"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
