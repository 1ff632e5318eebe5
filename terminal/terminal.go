// Package terminal renders a game session as ANSI text and drives it
// from a frame ticker plus keyboard events, all on one goroutine.
package terminal

import (
	_ "embed"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/template"
	"time"

	"blockfall/tetris"

	"github.com/eiannone/keyboard"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos = "\033[H" // Reset cursor position to 0,0

	fps = 60
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Shape]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

type templateData struct {
	Game    *tetris.Game
	NoGhost bool
	Paused  bool
}

type Terminal struct {
	writer       io.Writer
	game         *tetris.Game
	template     *template.Template
	logger       *slog.Logger
	keysEventsCh <-chan keyboard.KeyEvent
	lobby        bool
	td           *templateData
}

type Options struct {
	Writer  io.Writer
	Logger  *slog.Logger
	NoGhost bool
	Seed    *uint64
}

func New(o *Options) *Terminal {
	tp, err := loadTemplate()
	if err != nil {
		log.Fatalf("unable to load template: %v\n", err)
	}
	kc, err := keyboard.GetKeys(20)
	if err != nil {
		log.Fatalf("unable to open keyboard: %v\n", err)
	}
	g := tetris.New()
	if o.Seed != nil {
		g = tetris.NewSeeded(*o.Seed)
	}
	var w io.Writer = os.Stdout
	if o.Writer != nil {
		w = o.Writer
	}
	return &Terminal{
		writer:       w,
		game:         g,
		template:     tp,
		keysEventsCh: kc,
		logger:       o.Logger,
		td: &templateData{
			Game:    g,
			NoGhost: o.NoGhost,
		},
	}
}

// Start runs the frame loop until the player quits. Every tick advances
// the game by one frame and repaints; key events dispatch directly into
// the game between ticks. Pausing simply stops feeding time.
func (t *Terminal) Start() {
	t.renderGame()
	t.renderLobby()
	ticker := time.NewTicker(time.Second / fps)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if t.lobby || t.td.Paused || t.game.Over() {
				continue
			}
			t.game.Advance(1.0 / fps)
			t.renderGame()
			if t.game.Over() {
				t.logger.Info("game over",
					slog.String("session", t.game.SessionID()),
					slog.Int("score", t.game.Score()),
					slog.Int("lines", t.game.Lines()))
				t.renderLobby()
				fmt.Fprint(t.writer, "\033[11;9H|              Game Over :)            |")
				fmt.Fprintf(t.writer, "\033[12;9H|%s|", center(fmt.Sprintf("score %d", t.game.Score()), 38))
			}
		case event, ok := <-t.keysEventsCh:
			if !ok {
				t.logger.Error("keyboard events channel closed unexpectedly")
				return
			}
			if event.Err != nil {
				t.logger.Error("keyboard events error", slog.String("error", event.Err.Error()))
				return
			}
			if event.Key == keyboard.KeyCtrlC {
				return
			}
			if t.lobby {
				if t.handleLobbyKey(event) {
					return
				}
				continue
			}
			t.handleGameKey(event)
		}
	}
}

// handleLobbyKey reports whether the player quit.
func (t *Terminal) handleLobbyKey(event keyboard.KeyEvent) bool {
	switch event.Rune {
	case 'p':
		t.game.NewGame()
		t.logger.Info("new game", slog.String("session", t.game.SessionID()))
	case 'q':
		return true
	default:
		return false
	}
	t.lobby = false
	// clear the screen after the lobby
	fmt.Fprint(t.writer, "\033[2J\033[H")
	return false
}

func (t *Terminal) handleGameKey(event keyboard.KeyEvent) {
	if t.game.Over() {
		return
	}
	if event.Rune == 'p' || event.Key == keyboard.KeyEsc {
		t.td.Paused = !t.td.Paused
		t.renderGame()
		return
	}
	if t.td.Paused {
		return
	}
	switch {
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		t.game.Move(tetris.MoveLeft)
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		t.game.Move(tetris.MoveRight)
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		t.game.SoftDrop()
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e':
		t.game.Rotate(tetris.Clockwise)
	case event.Rune == 'q':
		t.game.Rotate(tetris.CounterClockwise)
	case event.Key == keyboard.KeySpace:
		t.game.HardDrop()
	case event.Rune == 'c':
		t.game.Hold()
	default:
		return
	}
	t.renderGame()
}

func (t *Terminal) renderLobby() {
	t.lobby = true
	fmt.Fprint(t.writer, "\033[10;9H+--------------------------------------+")
	fmt.Fprint(t.writer, "\033[11;9H|        Welcome to Blockfall          |")
	fmt.Fprint(t.writer, "\033[12;9H|                                      |")
	fmt.Fprint(t.writer, "\033[13;9H|          (p)lay   (q)uit             |")
	fmt.Fprint(t.writer, "\033[14;9H+--------------------------------------+")
}

func (t *Terminal) renderGame() {
	fmt.Fprint(t.writer, resetPos)
	if err := t.template.Execute(t.writer, t.td); err != nil {
		t.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"rows": rows,
	}

	// we use the console raw so new lines don't automatically transform
	// into carriage return. to fix that we add a carriage return to
	// every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Blockfall", "\033[1mBlockfall\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func cell(s tetris.Shape) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[s])
}

// stack renders the visible playfield rows top first. The template's
// range function can only count upwards, so row 19 lands at index 0.
func stack(td *templateData) [tetris.VisibleHeight][tetris.Width]string {
	rendered := [tetris.VisibleHeight][tetris.Width]string{}
	snapshot := td.Game.Snapshot()
	for y := range tetris.VisibleHeight {
		for x := range tetris.Width {
			out := "  "
			switch s := snapshot[y][x]; s.State {
			case tetris.SlotOccupied, tetris.SlotLocked:
				out = cell(s.Shape)
			case tetris.SlotGhost:
				if !td.NoGhost {
					out = "[]"
				}
			}
			rendered[tetris.VisibleHeight-1-y][x] = out
		}
	}
	return rendered
}

// preview renders a piece into two 4-cell rows for the next/hold boxes.
func preview(t *tetris.Tetromino) [2]string {
	blank := strings.Repeat("  ", 4)
	rendered := [2]string{blank, blank}
	if t == nil {
		return rendered
	}
	rows := [2][4]string{}
	for i := range rows {
		rows[i] = [4]string{"  ", "  ", "  ", "  "}
	}
	for _, b := range t.Blocks {
		rows[2-b.Y][b.X] = cell(t.Shape)
	}
	for i, row := range rows {
		rendered[i] = strings.Join(row[:], "")
	}
	return rendered
}

// panel builds the info column displayed beside the playfield.
func panel(td *templateData) []string {
	g := td.Game
	next := preview(g.Next())
	held := preview(g.Held())
	lines := []string{
		"next:",
		next[0],
		next[1],
		"",
		"hold:",
		held[0],
		held[1],
		"",
		fmt.Sprintf("score: %d", g.Score()),
		fmt.Sprintf("level: %d", g.Level()),
		fmt.Sprintf("lines: %d", g.Lines()),
		"",
		// fixed width so unpausing repaints over the marker
		"      ",
	}
	if td.Paused {
		lines[len(lines)-1] = "paused"
	}
	return lines
}

// rows assembles the framed playfield line by line with the info panel
// attached to its top rows. Returning whole lines keeps the template
// itself trivial.
func rows(td *templateData) []string {
	border := "   +" + strings.Repeat("-", tetris.Width*2) + "+"
	lines := []string{border}
	side := panel(td)
	for i, row := range stack(td) {
		line := "   |" + strings.Join(row[:], "") + "|"
		if i < len(side) && side[i] != "" {
			line += "   " + side[i]
		}
		lines = append(lines, line)
	}
	return append(lines, border)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-left-len(s))
}
