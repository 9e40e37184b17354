package ws

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chessd/internal/engine"
	"chessd/internal/server/core"
	"chessd/internal/server/game"
	"chessd/internal/server/service"
)

// Handler upgrades connections and runs their read loops.
type Handler struct {
	svc *service.Service
	hub *Hub
	log *zap.Logger
}

func NewHandler(svc *service.Service, hub *Hub, log *zap.Logger) *Handler {
	return &Handler{svc: svc, hub: hub, log: log}
}

// UpgradeRequired gates the websocket route: the request must be an
// upgrade and the room must exist before we commit to the protocol
// switch.
func (h *Handler) UpgradeRequired(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(core.ErrorResponse{
			Error: "websocket upgrade required",
			Code:  core.ErrInvalidRequest,
		})
	}
	if _, err := h.svc.GetRoom(c.Params("roomId")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "room not found",
			Code:  core.ErrRoomNotFound,
		})
	}
	return c.Next()
}

// Serve returns the upgraded connection handler.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(h.handle)
}

func (h *Handler) handle(conn *websocket.Conn) {
	roomID := conn.Params("roomId")
	room, err := h.svc.GetRoom(roomID)
	if err != nil {
		// Room vanished between upgrade check and here.
		conn.WriteJSON(core.ServerMessage{Type: "error", Error: &core.ErrorResponse{
			Error: "room not found", Code: core.ErrRoomNotFound,
		}})
		conn.Close()
		return
	}

	cl := &client{id: uuid.New().String(), conn: conn}
	role := room.Join(cl.id)
	h.hub.add(roomID, cl)
	h.log.Info("connection joined",
		zap.String("room", roomID), zap.String("conn", cl.id), zap.Stringer("role", role))

	defer func() {
		h.hub.remove(roomID, cl)
		room.Leave(cl.id)
		conn.Close()
		h.log.Info("connection left", zap.String("room", roomID), zap.String("conn", cl.id))
		snap := room.Snapshot()
		h.hub.Broadcast(roomID, core.ServerMessage{Type: "state", State: &snap})
	}()

	snap := room.Snapshot()
	cl.send(core.ServerMessage{Type: "joined", Role: role.String(), State: &snap})
	h.hub.Broadcast(roomID, core.ServerMessage{Type: "state", State: &snap})

	for {
		var msg core.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "move":
			snap, err := room.SubmitMove(cl.id, msg.Move)
			if err != nil {
				cl.send(core.ServerMessage{Type: "error", Error: rejection(err)})
				continue
			}
			h.hub.Broadcast(roomID, core.ServerMessage{Type: "state", State: &snap})
			if room.Terminal() {
				h.svc.ArchiveRoom(room)
			}
		default:
			cl.send(core.ServerMessage{Type: "error", Error: &core.ErrorResponse{
				Error: "unknown message type",
				Code:  core.ErrInvalidRequest,
			}})
		}
	}
}

// rejection maps an engine or room error to the wire taxonomy.
func rejection(err error) *core.ErrorResponse {
	code := core.ErrInternalError
	switch {
	case errors.Is(err, engine.ErrMalformedInput):
		code = core.ErrMalformedInput
	case errors.Is(err, engine.ErrIllegalMove):
		code = core.ErrIllegalMove
	case errors.Is(err, engine.ErrNotYourTurn):
		code = core.ErrNotYourTurn
	case errors.Is(err, engine.ErrGameOver):
		code = core.ErrGameOver
	case errors.Is(err, game.ErrNotAPlayer):
		code = core.ErrNotAPlayer
	}
	return &core.ErrorResponse{Error: err.Error(), Code: code}
}
