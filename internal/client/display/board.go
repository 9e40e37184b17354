package display

import (
	"fmt"
	"strings"
)

// BoardFromFEN expands the placement field of a FEN string into the
// ASCII grid RenderBoard understands: rank 8 on top, file letters on
// the border rows.
func BoardFromFEN(fen string) (string, error) {
	placement := strings.Fields(fen)
	if len(placement) == 0 {
		return "", fmt.Errorf("empty FEN")
	}
	ranks := strings.Split(placement[0], "/")
	if len(ranks) != 8 {
		return "", fmt.Errorf("malformed FEN placement %q", placement[0])
	}

	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for i, rankStr := range ranks {
		rank := 8 - i
		sb.WriteString(fmt.Sprintf("%d ", rank))
		files := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				n := int(ch - '0')
				files += n
				for ; n > 0; n-- {
					sb.WriteString(". ")
				}
				continue
			}
			if !strings.ContainsRune("pnbrqkPNBRQK", rune(ch)) {
				return "", fmt.Errorf("malformed FEN piece %q", ch)
			}
			sb.WriteByte(ch)
			sb.WriteByte(' ')
			files++
		}
		if files != 8 {
			return "", fmt.Errorf("malformed FEN rank %q", rankStr)
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank))
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String(), nil
}

// RenderBoard renders an ASCII board with colored pieces
func RenderBoard(asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		isBorder := i == 0 || i == len(lines)-1

		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isBorder:
				// File letters
				fmt.Printf("%s%c%s", Cyan, char, Reset)
			case char >= 'A' && char <= 'Z':
				// White pieces
				fmt.Printf("%s%c%s", Blue, char, Reset)
			case char >= 'a' && char <= 'z' && !isBorder:
				// Black pieces
				fmt.Printf("%s%c%s", Red, char, Reset)
			case char >= '1' && char <= '8':
				// Rank numbers
				fmt.Printf("%s%c%s", Cyan, char, Reset)
			default:
				fmt.Printf("%c", char)
			}
		}
		fmt.Println()
	}
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// ColorForStatus highlights terminal and check states.
func ColorForStatus(status string) string {
	switch status {
	case "active":
		return Green + status + Reset
	case "check":
		return Yellow + status + Reset
	default:
		return Magenta + status + Reset
	}
}
