// Package api talks to the chess room server: REST calls for room
// management and a websocket for live play.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chessd/internal/client/display"
	"chessd/internal/server/core"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

func (c *Client) doRequest(method, path string, body interface{}, result interface{}) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.Verbose {
		fmt.Printf("%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if c.Verbose {
		statusColor := display.Green
		if resp.StatusCode >= 400 {
			statusColor = display.Red
		}
		fmt.Printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
	}

	if resp.StatusCode >= 400 {
		var apiErr core.ErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			if apiErr.Details != "" {
				return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Details)
			}
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		return json.Unmarshal(respBody, result)
	}
	return nil
}

func (c *Client) CreateRoom(name, fen string) (*core.RoomResponse, error) {
	var room core.RoomResponse
	req := core.CreateRoomRequest{Name: name, FEN: fen}
	if err := c.doRequest(http.MethodPost, "/api/v1/rooms", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) ListRooms() (*core.RoomListResponse, error) {
	var list core.RoomListResponse
	if err := c.doRequest(http.MethodGet, "/api/v1/rooms", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) GetRoom(roomID string) (*core.RoomResponse, error) {
	var room core.RoomResponse
	if err := c.doRequest(http.MethodGet, "/api/v1/rooms/"+roomID, nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) DeleteRoom(roomID string) error {
	return c.doRequest(http.MethodDelete, "/api/v1/rooms/"+roomID, nil, nil)
}

func (c *Client) GetBoard(roomID string) (*core.BoardResponse, error) {
	var board core.BoardResponse
	if err := c.doRequest(http.MethodGet, "/api/v1/rooms/"+roomID+"/board", nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) ListArchive() ([]core.ArchivedGameResponse, error) {
	var games []core.ArchivedGameResponse
	if err := c.doRequest(http.MethodGet, "/api/v1/archive", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) GetArchivedMoves(roomID string) ([]string, error) {
	var resp struct {
		Moves []string `json:"moves"`
	}
	if err := c.doRequest(http.MethodGet, "/api/v1/archive/"+roomID+"/moves", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Moves, nil
}

// WebSocketURL derives the ws:// endpoint for a room from the REST
// base URL.
func (c *Client) WebSocketURL(roomID string) string {
	url := c.BaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/api/v1/rooms/" + roomID + "/ws"
}
