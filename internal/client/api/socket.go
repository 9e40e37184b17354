package api

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"chessd/internal/server/core"
)

const dialTimeout = 10 * time.Second

// FrameHandler receives every frame the server pushes on a room
// socket. It runs on the socket's read goroutine.
type FrameHandler func(core.ServerMessage)

// RoomSocket is a live connection to one room. Seats are assigned by
// arrival order and released on close; there is no resume, so a
// dropped socket means rejoining as whoever the room assigns next.
type RoomSocket struct {
	conn *websocket.Conn

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// DialRoom connects to a room's websocket endpoint and starts a read
// loop that feeds frames to onFrame until the socket closes.
func DialRoom(ctx context.Context, url string, onFrame FrameHandler) (*RoomSocket, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return nil, err
	}

	rs := &RoomSocket{
		conn:   conn,
		stopCh: make(chan struct{}),
	}
	rs.wg.Add(1)
	go rs.listen(onFrame)
	return rs, nil
}

func (rs *RoomSocket) listen(onFrame FrameHandler) {
	defer rs.wg.Done()
	for {
		var msg core.ServerMessage
		if err := wsjson.Read(context.Background(), rs.conn, &msg); err != nil {
			select {
			case <-rs.stopCh:
			default:
				close(rs.stopCh)
			}
			return
		}
		onFrame(msg)
	}
}

// SendMove proposes a move in UCI notation. The verdict arrives as a
// pushed frame, not as a return value.
func (rs *RoomSocket) SendMove(ctx context.Context, uci string) error {
	return wsjson.Write(ctx, rs.conn, core.ClientMessage{Type: "move", Move: uci})
}

// Closed reports whether the read loop has ended.
func (rs *RoomSocket) Closed() bool {
	select {
	case <-rs.stopCh:
		return true
	default:
		return false
	}
}

func (rs *RoomSocket) Close() {
	rs.stopOnce.Do(func() {
		rs.conn.Close(websocket.StatusNormalClosure, "leaving")
	})
	rs.wg.Wait()
}
