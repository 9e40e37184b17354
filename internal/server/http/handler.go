package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"chessd/internal/server/core"
	"chessd/internal/server/game"
	"chessd/internal/server/service"
	"chessd/internal/server/ws"
)

const rateLimitRate = 10 // req/sec

// Handler routes REST requests to the service layer.
type Handler struct {
	svc *service.Service
	log *zap.Logger
}

func NewHandler(svc *service.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewFiberApp wires the middleware stack, the REST surface and the
// websocket transport into one app.
func NewFiberApp(svc *service.Service, wsh *ws.Handler, log *zap.Logger, devMode bool) *fiber.App {
	h := NewHandler(svc, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	// The websocket route sits before the rate limiter: one long-lived
	// connection per client instead of request polling.
	api.Get("/rooms/:roomId/ws", wsh.UpgradeRequired, wsh.Serve())

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/rooms", h.CreateRoom)
	api.Get("/rooms", h.ListRooms)
	api.Get("/rooms/:roomId", h.GetRoom)
	api.Delete("/rooms/:roomId", h.DeleteRoom)
	api.Get("/rooms/:roomId/board", h.GetBoard)
	api.Get("/archive", h.ListArchive)
	api.Get("/archive/:roomId/moves", h.GetArchivedMoves)

	return app
}

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrRoomNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint with archive status
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"archive": h.svc.GetStorageHealth(),
	})
}

// CreateRoom opens a new room, optionally from a custom position.
func (h *Handler) CreateRoom(c *fiber.Ctx) error {
	validatedBody := c.Locals("validatedBody")
	if validatedBody == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	req := *(validatedBody.(*core.CreateRoomRequest))

	r, err := h.svc.CreateRoom(req.Name, req.FEN)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r.Snapshot())
}

func (h *Handler) ListRooms(c *fiber.Ctx) error {
	rooms := h.svc.ListRooms()
	resp := core.RoomListResponse{Rooms: make([]core.RoomResponse, 0, len(rooms))}
	for _, r := range rooms {
		resp.Rooms = append(resp.Rooms, r.Snapshot())
	}
	return c.JSON(resp)
}

func (h *Handler) GetRoom(c *fiber.Ctx) error {
	r, ok := h.roomFromParams(c)
	if !ok {
		return nil
	}
	return c.JSON(r.Snapshot())
}

func (h *Handler) DeleteRoom(c *fiber.Ctx) error {
	r, ok := h.roomFromParams(c)
	if !ok {
		return nil
	}
	if err := h.svc.DeleteRoom(r.ID); err != nil {
		return h.serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBoard returns an ASCII rendering for quick inspection.
func (h *Handler) GetBoard(c *fiber.Ctx) error {
	r, ok := h.roomFromParams(c)
	if !ok {
		return nil
	}
	state := r.State()
	return c.JSON(core.BoardResponse{
		FEN:   state.FEN(),
		Board: state.Board.ASCII(),
	})
}

// ListArchive returns recently finished games.
func (h *Handler) ListArchive(c *fiber.Ctx) error {
	store := h.svc.Archive()
	if store == nil {
		return c.JSON([]core.ArchivedGameResponse{})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	records, err := store.ListGames(c.Context(), limit)
	if err != nil {
		h.log.Error("archive list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "archive unavailable",
			Code:  core.ErrInternalError,
		})
	}
	out := make([]core.ArchivedGameResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, core.ArchivedGameResponse{
			RoomID:   rec.RoomID,
			Name:     rec.Name,
			Result:   rec.Result,
			FinalFEN: rec.FinalFEN,
			Plies:    rec.Plies,
		})
	}
	return c.JSON(out)
}

// GetArchivedMoves returns the move list of a finished game.
func (h *Handler) GetArchivedMoves(c *fiber.Ctx) error {
	store := h.svc.Archive()
	if store == nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "archive disabled",
			Code:  core.ErrRoomNotFound,
		})
	}
	roomID := c.Params("roomId")
	if !isValidUUID(roomID) {
		return badRoomID(c)
	}
	moves, err := store.GetMoves(c.Context(), roomID)
	if err != nil {
		h.log.Error("archive read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "archive unavailable",
			Code:  core.ErrInternalError,
		})
	}
	return c.JSON(fiber.Map{"roomId": roomID, "moves": moves})
}

// roomFromParams resolves the :roomId parameter. On failure the error
// response has already been written and the returned flag is false.
func (h *Handler) roomFromParams(c *fiber.Ctx) (*game.Room, bool) {
	roomID := c.Params("roomId")
	if !isValidUUID(roomID) {
		badRoomID(c)
		return nil, false
	}
	r, err := h.svc.GetRoom(roomID)
	if err != nil {
		c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "room not found",
			Code:  core.ErrRoomNotFound,
		})
		return nil, false
	}
	return r, true
}

func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	code := core.ErrInvalidRequest
	switch {
	case errors.Is(err, service.ErrRoomLimit):
		status, code = fiber.StatusServiceUnavailable, core.ErrResourceLimit
	case errors.Is(err, service.ErrRoomNotFound):
		status, code = fiber.StatusNotFound, core.ErrRoomNotFound
	}
	return c.Status(status).JSON(core.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func badRoomID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid room ID format",
		Code:    core.ErrInvalidRequest,
		Details: "room ID must be a valid UUID",
	})
}
