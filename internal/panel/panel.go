// Package panel renders a small console view over the mirrored log file.
//
// The panel tails the log, shows the most recent lines, and offers two
// keys: 'r' to trigger a plugin reload and 'q' (or Escape) to close.
package panel

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// refreshInterval is how often the panel re-reads the log file.
const refreshInterval = 500 * time.Millisecond

// Config configures a console panel.
type Config struct {
	// LogPath is the file the panel tails.
	LogPath string

	// Title is drawn in the top bar. Defaults to "firstlog console".
	Title string

	// OnReload is invoked when the user presses 'r'. May be nil.
	OnReload func()
}

// Panel is a tcell-backed console viewer.
type Panel struct {
	screen tcell.Screen
	cfg    Config

	mu   sync.Mutex
	done bool
}

// New creates a panel on a real terminal screen.
func New(cfg Config) (*Panel, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newWithScreen(screen, cfg), nil
}

func newWithScreen(screen tcell.Screen, cfg Config) *Panel {
	if cfg.Title == "" {
		cfg.Title = "firstlog console"
	}
	return &Panel{screen: screen, cfg: cfg}
}

// Run initializes the screen and blocks until the user quits.
func (p *Panel) Run() error {
	if err := p.screen.Init(); err != nil {
		return err
	}
	defer p.screen.Fini()

	stop := make(chan struct{})
	defer close(stop)
	go p.refreshLoop(stop)

	p.draw()
	for {
		ev := p.screen.PollEvent()
		if quit := p.handleEvent(ev); quit {
			return nil
		}
	}
}

// Close asks a running panel to exit.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.mu.Unlock()

	// best-effort; the queue may be full
	_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (p *Panel) closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// handleEvent processes one screen event and reports whether to quit.
func (p *Panel) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Rune() == 'q':
			return true
		case ev.Rune() == 'r':
			if p.cfg.OnReload != nil {
				p.cfg.OnReload()
			}
			p.draw()
		}
	case *tcell.EventResize:
		p.screen.Sync()
		p.draw()
	case *tcell.EventInterrupt:
		if p.closed() {
			return true
		}
		p.draw()
	}
	return false
}

func (p *Panel) refreshLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}
}

func (p *Panel) draw() {
	p.screen.Clear()
	width, height := p.screen.Size()
	if width <= 0 || height <= 0 {
		p.screen.Show()
		return
	}

	titleStyle := tcell.StyleDefault.Reverse(true)
	drawText(p.screen, 0, 0, width, p.cfg.Title+"  [r] reload  [q] quit", titleStyle)

	// Everything below the title bar is log tail.
	rows := height - 1
	lines := tailLines(p.cfg.LogPath, rows)
	style := tcell.StyleDefault
	for i, line := range lines {
		drawText(p.screen, 0, 1+i, width, line, style)
	}

	p.screen.Show()
}

// drawText writes a single clipped row of text.
func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			break
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
	// pad the remainder so reverse-video bars span the row
	if _, bg, attrs := style.Decompose(); bg != tcell.ColorDefault || attrs&tcell.AttrReverse != 0 {
		for ; col < x+maxWidth; col++ {
			s.SetContent(col, y, ' ', nil, style)
		}
	}
}
