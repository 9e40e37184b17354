package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"chessd/internal/server/core"
	"chessd/internal/server/service"
	"chessd/internal/server/ws"
)

func newTestApp(maxRooms int) *fiber.App {
	log := zap.NewNop()
	svc := service.New(nil, maxRooms, log)
	hub := ws.NewHub(log)
	wsh := ws.NewHandler(svc, hub, log)
	return NewFiberApp(svc, wsh, log, false)
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

func TestCreateAndGetRoomEndpoints(t *testing.T) {
	app := newTestApp(0)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/rooms", `{"name":"friendly"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var room core.RoomResponse
	if err := json.Unmarshal(body, &room); err != nil {
		t.Fatalf("decode room: %v", err)
	}
	if room.Name != "friendly" || room.Turn != "w" || room.Status != "active" {
		t.Errorf("created room = %+v", room)
	}

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/rooms/"+room.RoomID, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("get status = %d, body %s", resp.StatusCode, body)
	}
}

func TestRoomLimitMapsToResourceLimit(t *testing.T) {
	app := newTestApp(1)

	if resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/rooms", `{}`); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first create status = %d, body %s", resp.StatusCode, body)
	}

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/rooms", `{}`)
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("over-limit status = %d, body %s", resp.StatusCode, body)
	}
	var apiErr core.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Code != core.ErrResourceLimit {
		t.Errorf("error code = %q, want %q", apiErr.Code, core.ErrResourceLimit)
	}
}

func TestUnknownRoomMapsToNotFound(t *testing.T) {
	app := newTestApp(0)

	resp, body := doJSON(t, app, fiber.MethodGet,
		"/api/v1/rooms/00000000-0000-0000-0000-000000000000", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var apiErr core.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Code != core.ErrRoomNotFound {
		t.Errorf("error code = %q, want %q", apiErr.Code, core.ErrRoomNotFound)
	}
}

func TestBadRoomIDRejected(t *testing.T) {
	app := newTestApp(0)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/rooms/not-a-uuid", "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var apiErr core.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Code != core.ErrInvalidRequest {
		t.Errorf("error code = %q, want %q", apiErr.Code, core.ErrInvalidRequest)
	}
}

func TestCreateRoomRejectsCapturableKingPosition(t *testing.T) {
	app := newTestApp(0)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/rooms",
		`{"fen":"4k3/4Q3/8/8/8/8/8/4K3 w - - 0 1"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
}
