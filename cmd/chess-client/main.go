// Package main implements an interactive terminal client for the chess
// room server. Room management goes over REST; play happens on the
// room websocket, with the server pushing a fresh snapshot after every
// committed ply.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"chessd/internal/client/api"
	"chessd/internal/client/display"
	"chessd/internal/server/core"
)

type session struct {
	client *api.Client

	mu     sync.Mutex
	socket *api.RoomSocket
	roomID string
	role   string
	state  *core.RoomResponse
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Server base URL")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	if *noColor {
		display.DisableColors()
	}

	s := &session{client: api.New(*serverURL)}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     ".chess_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sServer: %s%s\n", display.Cyan, *serverURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	for {
		rl.SetPrompt(s.buildPrompt())

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		if strings.HasSuffix(line, " -v") {
			s.client.SetVerbose(true)
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.client.SetVerbose(false)
		}

		s.execute(line)
	}

	s.leave()
}

func (s *session) execute(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "h":
		printHelp()
	case "new", "n":
		s.cmdNew(args)
	case "list", "ls":
		s.cmdList()
	case "join", "j":
		s.cmdJoin(args)
	case "move", "m":
		s.cmdMove(args)
	case "board", "b":
		s.cmdBoard()
	case "state", "st":
		s.cmdState()
	case "leave", "l":
		s.leave()
	case "delete", "del":
		s.cmdDelete(args)
	case "archive", "a":
		s.cmdArchive()
	case "replay", "r":
		s.cmdReplay(args)
	default:
		// Bare UCI shorthand while seated: "e2e4" instead of "move e2e4".
		if len(cmd) >= 4 && len(cmd) <= 5 && s.connected() {
			s.cmdMove([]string{cmd})
			return
		}
		fmt.Printf("%sUnknown command: %s%s\n", display.Red, cmd, display.Reset)
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  new [name]        create a room (add 'fen <FEN>' for a custom position)")
	fmt.Println("  list              list open rooms")
	fmt.Println("  join <roomId>     connect to a room; seats go to the first two arrivals")
	fmt.Println("  move <uci>        propose a move, e.g. e2e4 or e7e8q (or just type the move)")
	fmt.Println("  board             show the current board")
	fmt.Println("  state             show the raw room snapshot")
	fmt.Println("  leave             disconnect from the current room")
	fmt.Println("  delete <roomId>   delete a room")
	fmt.Println("  archive           list finished games")
	fmt.Println("  replay <roomId>   show the move list of a finished game")
	fmt.Println("  exit              quit")
	fmt.Println("\nAppend -v to any command for verbose API output")
}

func (s *session) cmdNew(args []string) {
	var name, fen string
	for i := 0; i < len(args); i++ {
		if args[i] == "fen" {
			fen = strings.Join(args[i+1:], " ")
			break
		}
		if name == "" {
			name = args[i]
		}
	}

	room, err := s.client.CreateRoom(name, fen)
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		return
	}
	fmt.Printf("%sRoom created:%s %s\n", display.Green, display.Reset, room.RoomID)
	s.cmdJoin([]string{room.RoomID})
}

func (s *session) cmdList() {
	list, err := s.client.ListRooms()
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		return
	}
	if len(list.Rooms) == 0 {
		fmt.Println("No open rooms")
		return
	}
	for _, r := range list.Rooms {
		seats := 0
		if r.White {
			seats++
		}
		if r.Black {
			seats++
		}
		name := r.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("  %s  %-16s seats:%d/2 observers:%d  %s to move  [%s]\n",
			r.RoomID, name, seats, r.Observers,
			display.ColorForTurn(r.Turn), display.ColorForStatus(r.Status))
	}
}

func (s *session) cmdJoin(args []string) {
	if len(args) != 1 {
		fmt.Printf("%susage: join <roomId>%s\n", display.Red, display.Reset)
		return
	}
	s.leave()

	url := s.client.WebSocketURL(args[0])
	socket, err := api.DialRoom(context.Background(), url, s.onFrame)
	if err != nil {
		fmt.Printf("%sconnect failed: %s%s\n", display.Red, err.Error(), display.Reset)
		return
	}

	s.mu.Lock()
	s.socket = socket
	s.roomID = args[0]
	s.mu.Unlock()
}

func (s *session) cmdMove(args []string) {
	if len(args) != 1 {
		fmt.Printf("%susage: move <uci>%s\n", display.Red, display.Reset)
		return
	}
	s.mu.Lock()
	socket := s.socket
	s.mu.Unlock()
	if socket == nil || socket.Closed() {
		fmt.Printf("%snot connected to a room%s\n", display.Red, display.Reset)
		return
	}
	if err := socket.SendMove(context.Background(), args[0]); err != nil {
		fmt.Printf("%ssend failed: %s%s\n", display.Red, err.Error(), display.Reset)
	}
}

func (s *session) cmdBoard() {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == nil {
		fmt.Printf("%snot connected to a room%s\n", display.Red, display.Reset)
		return
	}
	renderState(state)
}

func (s *session) cmdState() {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == nil {
		fmt.Printf("%snot connected to a room%s\n", display.Red, display.Reset)
		return
	}
	display.PrettyPrintJSON(state)
}

func (s *session) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Printf("%susage: delete <roomId>%s\n", display.Red, display.Reset)
		return
	}
	if err := s.client.DeleteRoom(args[0]); err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		return
	}
	fmt.Printf("%sRoom deleted%s\n", display.Green, display.Reset)
}

func (s *session) cmdArchive() {
	games, err := s.client.ListArchive()
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		return
	}
	if len(games) == 0 {
		fmt.Println("No finished games")
		return
	}
	for _, g := range games {
		fmt.Printf("  %s  %-16s %s (%d plies)\n", g.RoomID, g.Name, g.Result, g.Plies)
	}
}

func (s *session) cmdReplay(args []string) {
	if len(args) != 1 {
		fmt.Printf("%susage: replay <roomId>%s\n", display.Red, display.Reset)
		return
	}
	moves, err := s.client.GetArchivedMoves(args[0])
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		return
	}
	fmt.Println(strings.Join(moves, " "))
}

// onFrame runs on the socket read goroutine for every server push.
func (s *session) onFrame(msg core.ServerMessage) {
	switch msg.Type {
	case "joined":
		s.mu.Lock()
		s.role = msg.Role
		s.state = msg.State
		s.mu.Unlock()
		fmt.Printf("\n%sJoined as %s%s\n", display.Green, msg.Role, display.Reset)
		if msg.State != nil {
			renderState(msg.State)
		}
	case "state":
		s.mu.Lock()
		s.state = msg.State
		s.mu.Unlock()
		if msg.State != nil {
			fmt.Println()
			renderState(msg.State)
		}
	case "error":
		if msg.Error != nil {
			fmt.Printf("\n%s[%s] %s%s\n", display.Red, msg.Error.Code, msg.Error.Error, display.Reset)
		}
	}
}

func renderState(state *core.RoomResponse) {
	grid, err := display.BoardFromFEN(state.FEN)
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		return
	}
	display.RenderBoard(grid)
	line := fmt.Sprintf("%s to move  [%s]", display.ColorForTurn(state.Turn), display.ColorForStatus(state.Status))
	if state.LastMove != "" {
		line += "  last: " + state.LastMove
	}
	fmt.Println(line)
}

func (s *session) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.socket != nil && !s.socket.Closed()
}

func (s *session) leave() {
	s.mu.Lock()
	socket := s.socket
	s.socket = nil
	s.roomID = ""
	s.role = ""
	s.state = nil
	s.mu.Unlock()
	if socket != nil {
		socket.Close()
	}
}

func (s *session) buildPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	promptStr := "chess"
	parts := []string{}
	if s.roomID != "" && len(s.roomID) >= 8 {
		parts = append(parts, display.White+s.roomID[:8]+display.Reset)
	}
	switch s.role {
	case "white":
		parts = append(parts, display.Blue+"White"+display.Reset)
	case "black":
		parts = append(parts, display.Red+"Black"+display.Reset)
	case "observer":
		parts = append(parts, display.Magenta+"obs"+display.Reset)
	}
	if len(parts) > 0 {
		promptStr += display.Yellow + " [" + display.Reset + strings.Join(parts, " ") + display.Yellow + "]" + display.Reset
	}
	if s.state != nil && !isTerminal(s.state.Status) {
		promptStr += " - " + display.ColorForTurn(s.state.Turn)
	}
	return display.Prompt(promptStr)
}

func isTerminal(status string) bool {
	switch status {
	case "checkmate", "stalemate", "draw_repetition", "draw_50_move", "draw_insufficient":
		return true
	}
	return false
}
