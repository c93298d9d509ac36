// Package engine implements the chess rules core: transcript replay, move
// legality, outcome derivation, and lossless serialization. It performs no I/O.
package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/chesspost/chesspost/internal/errors"
)

// Headers are the descriptive tags carried by a serialized transcript.
type Headers struct {
	Event string
	Site  string
	Date  string // PGN date format, e.g. "2024.03.17"
	Round string
	White string
	Black string
}

// Position is a board state reconstructed by replaying a move transcript from
// the initial position (or a recorded FEN start). All operations that change
// the position return a new value; the receiver is never mutated.
type Position struct {
	game     *chess.Game
	startFEN string // empty for the standard initial position
	movesUCI []string
	movesSAN []string
	headers  Headers
}

// Winner identifies the winning side of a terminal outcome.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerWhite
	WinnerBlack
)

// Kind classifies a terminal outcome.
type Kind int

const (
	KindCheckmate Kind = iota + 1
	KindStalemate
	KindDraw
)

// Outcome describes a finished position. Winner is WinnerNone for all draw
// kinds and for stalemate.
type Outcome struct {
	Kind   Kind
	Winner Winner
	Method string
}

var tagRe = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)

// StartingPosition returns the standard initial position.
func StartingPosition(h Headers) *Position {
	return &Position{game: chess.NewGame(), headers: h}
}

// FromFEN returns a position starting from an arbitrary board state. The FEN
// is recorded in the transcript so the round-trip guarantee holds.
func FromFEN(fen string, h Headers) (*Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse FEN %q: %w", fen, err)
	}
	return &Position{game: chess.NewGame(opt), startFEN: fen, headers: h}, nil
}

// Load replays a serialized transcript from its starting position. An empty
// transcript yields the initial position. Any move that fails to replay means
// the stored history is corrupted or was written by a different engine; this
// is reported as a MALFORMED_HISTORY error, never repaired.
func Load(transcript string) (*Position, error) {
	var (
		h          Headers
		startFEN   string
		moveTokens []string
	)

	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			m := tagRe.FindStringSubmatch(line)
			if len(m) != 3 {
				continue
			}
			val := m[2]
			if val == "?" {
				val = ""
			}
			switch m[1] {
			case "Event":
				h.Event = val
			case "Site":
				h.Site = val
			case "Date":
				h.Date = val
			case "Round":
				h.Round = val
			case "White":
				h.White = val
			case "Black":
				h.Black = val
			case "FEN":
				startFEN = m[2]
			}
			continue
		}
		moveTokens = append(moveTokens, strings.Fields(line)...)
	}

	p := StartingPosition(h)
	if startFEN != "" {
		var err error
		p, err = FromFEN(startFEN, h)
		if err != nil {
			return nil, errors.NewMalformedHistoryError("unreadable FEN tag", err)
		}
	}

	for _, tok := range moveTokens {
		if isMoveNumber(tok) || isResultToken(tok) {
			continue
		}
		if err := p.push(tok); err != nil {
			return nil, errors.NewMalformedHistoryError(
				fmt.Sprintf("move %d (%q) did not replay", len(p.movesUCI)+1, tok), err)
		}
	}
	return p, nil
}

// Apply parses moveText as a coordinate (UCI) move and applies it if legal.
// The input position is left untouched; on rejection it is returned as-is.
func (p *Position) Apply(moveText string) (bool, *Position) {
	uci := strings.ToLower(strings.TrimSpace(moveText))
	if uci == "" {
		return false, p
	}
	np, err := p.clone()
	if err != nil {
		return false, p
	}
	if err := np.push(uci); err != nil {
		return false, p
	}
	return true, np
}

// Outcome evaluates terminal conditions. It returns nil while the game is
// ongoing. Threefold repetition is evaluated eagerly: the draw is reported as
// soon as the position has occurred three times, with no claim step.
func (p *Position) Outcome() *Outcome {
	g := p.game
	if g.Outcome() != chess.NoOutcome {
		switch g.Method() {
		case chess.Checkmate:
			w := WinnerBlack
			if g.Outcome() == chess.WhiteWon {
				w = WinnerWhite
			}
			return &Outcome{Kind: KindCheckmate, Winner: w, Method: "checkmate"}
		case chess.Stalemate:
			return &Outcome{Kind: KindStalemate, Method: "stalemate"}
		default:
			return &Outcome{Kind: KindDraw, Method: methodLabel(g.Method())}
		}
	}
	for _, m := range g.EligibleDraws() {
		if m == chess.ThreefoldRepetition {
			return &Outcome{Kind: KindDraw, Method: "threefold_repetition"}
		}
	}
	return nil
}

// Serialize renders the position as a header block plus numbered coordinate
// movetext. Load(Serialize(p)) reconstructs an equivalent position: same side
// to move, same legal-move set, same repetition count.
func (p *Position) Serialize() string {
	var b strings.Builder
	h := p.headers
	writeTag(&b, "Event", orUnknown(h.Event))
	writeTag(&b, "Site", orUnknown(h.Site))
	writeTag(&b, "Date", orUnknown(h.Date))
	writeTag(&b, "Round", orUnknown(h.Round))
	writeTag(&b, "White", orUnknown(h.White))
	writeTag(&b, "Black", orUnknown(h.Black))
	if p.startFEN != "" {
		writeTag(&b, "SetUp", "1")
		writeTag(&b, "FEN", p.startFEN)
	}
	result := p.resultToken()
	writeTag(&b, "Result", result)
	b.WriteString("\n")

	for i := 0; i < len(p.movesUCI); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, p.movesUCI[i]))
		if i+1 < len(p.movesUCI) {
			b.WriteString(" ")
			b.WriteString(p.movesUCI[i+1])
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	b.WriteString("\n")
	return b.String()
}

// FillHeaders sets any header field that is still empty from h.
func (p *Position) FillHeaders(h Headers) {
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&p.headers.Event, h.Event)
	fill(&p.headers.Site, h.Site)
	fill(&p.headers.Date, h.Date)
	fill(&p.headers.Round, h.Round)
	fill(&p.headers.White, h.White)
	fill(&p.headers.Black, h.Black)
}

// Headers returns the transcript headers.
func (p *Position) Headers() Headers {
	return p.headers
}

// WhiteToMove reports whether white has the move.
func (p *Position) WhiteToMove() bool {
	return p.game.Position().Turn() == chess.White
}

// FEN returns the current board state in FEN form, for board rendering.
func (p *Position) FEN() string {
	return p.game.FEN()
}

// MoveCount returns the number of half-moves played.
func (p *Position) MoveCount() int {
	return len(p.movesUCI)
}

// MovesUCI returns the replayed move list in coordinate notation.
func (p *Position) MovesUCI() []string {
	out := make([]string, len(p.movesUCI))
	copy(out, p.movesUCI)
	return out
}

// MovesSAN returns the replayed move list in standard algebraic notation,
// derived during replay for display purposes only.
func (p *Position) MovesSAN() []string {
	out := make([]string, len(p.movesSAN))
	copy(out, p.movesSAN)
	return out
}

// push applies one coordinate move in place. Only clone/Load/Apply call it.
func (p *Position) push(uci string) error {
	pos := p.game.Position()
	mv, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return err
	}
	san := chess.AlgebraicNotation{}.Encode(pos, mv)
	if err := p.game.Move(mv, nil); err != nil {
		return err
	}
	p.movesUCI = append(p.movesUCI, uci)
	p.movesSAN = append(p.movesSAN, san)
	return nil
}

// clone rebuilds the position by replaying the recorded moves. Replay cost is
// bounded by practical game lengths, which keeps Apply free of aliasing.
func (p *Position) clone() (*Position, error) {
	np := StartingPosition(p.headers)
	if p.startFEN != "" {
		var err error
		np, err = FromFEN(p.startFEN, p.headers)
		if err != nil {
			return nil, err
		}
	}
	for _, uci := range p.movesUCI {
		if err := np.push(uci); err != nil {
			return nil, err
		}
	}
	return np, nil
}

func (p *Position) resultToken() string {
	oc := p.Outcome()
	if oc == nil {
		return "*"
	}
	switch oc.Winner {
	case WinnerWhite:
		return "1-0"
	case WinnerBlack:
		return "0-1"
	}
	return "1/2-1/2"
}

func methodLabel(m chess.Method) string {
	switch m {
	case chess.InsufficientMaterial:
		return "insufficient_material"
	case chess.ThreefoldRepetition:
		return "threefold_repetition"
	case chess.FivefoldRepetition:
		return "fivefold_repetition"
	case chess.FiftyMoveRule:
		return "fifty_move_rule"
	case chess.SeventyFiveMoveRule:
		return "seventy_five_move_rule"
	}
	return "draw"
}

func writeTag(b *strings.Builder, key, value string) {
	b.WriteString(fmt.Sprintf("[%s %q]\n", key, sanitizeTag(value)))
}

func sanitizeTag(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.TrimSpace(s)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func isMoveNumber(tok string) bool {
	if !strings.HasSuffix(tok, ".") {
		return false
	}
	for _, r := range strings.TrimSuffix(tok, ".") {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isResultToken(tok string) bool {
	switch tok {
	case "*", "1-0", "0-1", "1/2-1/2":
		return true
	}
	return false
}
