package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/carousel"
	"github.com/teranos/carousel/deck"
	"github.com/teranos/carousel/internal/watch"
	"github.com/teranos/carousel/showcase"
)

var (
	playSection string
	playPlain   bool
	playWatch   bool
)

var playCmd = &cobra.Command{
	Use:   "play DECK",
	Short: "Show a deck's carousels",
	Long: `Opens the showcase page: every section of the deck as its own carousel.
Tab moves between sections, arrows or h/l navigate, 1-9 jump, q quits.

With --plain no UI is drawn; every carousel change is printed as a line until
the process is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playSection, "section", "s", "", "Play only this section")
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "Print changes instead of drawing the page")
	playCmd.Flags().BoolVarP(&playWatch, "watch", "w", false, "Reload when the deck or its images change")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := loadDeck(args[0], playSection)
	if err != nil {
		return err
	}
	if playPlain {
		return playHeadless(ctx, args[0], d, cmd.OutOrStdout())
	}
	return playTUI(ctx, args[0], d)
}

// loadDeck loads path and narrows it to section when one is named.
func loadDeck(path, section string) (*deck.Deck, error) {
	d, err := deck.Load(path)
	if err != nil {
		return nil, err
	}
	if section == "" {
		return d, nil
	}
	s, err := d.Find(section)
	if err != nil {
		return nil, err
	}
	d.Sections = []deck.Section{s}
	return d, nil
}

// imageDirs lists the directories holding a deck's images.
func imageDirs(d *deck.Deck) []string {
	seen := map[string]bool{}
	for _, s := range d.Sections {
		for _, slide := range s.Slides {
			if slide.Image != "" {
				seen[filepath.Dir(slide.Image)] = true
			}
		}
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// startWatch calls onChange after every edit burst until the returned
// watcher is stopped.
func startWatch(ctx context.Context, path string, d *deck.Deck, onChange func()) (*watch.Watcher, error) {
	w, err := watch.New(path, imageDirs(d), func(changed string) {
		logger.Info("deck changed", zap.String("path", changed))
		onChange()
	}, logger)
	if err != nil {
		return nil, err
	}
	w.Start(ctx)
	return w, nil
}

// watchImages extends w to image folders a reloaded deck introduced.
func watchImages(w *watch.Watcher, d *deck.Deck) {
	if err := w.Add(imageDirs(d)...); err != nil {
		logger.Warn("failed to watch image folders", zap.Error(err))
	}
}

// lockedWriter serialises change lines coming from several timers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

// built is one section's carousel configuration, ready to mount.
type built struct {
	name string
	cfg  carousel.Config
}

// buildAll builds every section of d. Nothing is mounted, so a failure
// leaves whatever is currently playing untouched.
func buildAll(ctx context.Context, d *deck.Deck) ([]built, error) {
	configs, err := deck.BuildAll(ctx, d)
	if err != nil {
		return nil, err
	}
	sections := make([]built, len(configs))
	for i, cfg := range configs {
		sections[i] = built{name: d.Sections[i].Name, cfg: cfg}
	}
	return sections, nil
}

// mountAll mounts one headless carousel per built section.
func mountAll(sections []built, out *lockedWriter) ([]*carousel.Carousel, error) {
	var mounted []*carousel.Carousel
	for _, b := range sections {
		name, items := b.name, b.cfg.Items
		c, err := carousel.Mount(b.cfg,
			carousel.WithLogger(logger.With(zap.String("section", name))),
			carousel.WithObserver(func(ch carousel.Change) {
				out.printf("%s\t%d/%d\t%s\t%s\n", name, ch.Index+1, len(items), ch.Direction, items[ch.Index].Caption())
			}))
		if err != nil {
			unmountAll(mounted)
			return nil, fmt.Errorf("section %q: %w", name, err)
		}
		out.printf("%s\t%d/%d\tmounted\t%s\n", name, 1, len(items), items[0].Caption())
		mounted = append(mounted, c)
	}
	return mounted, nil
}

func unmountAll(mounted []*carousel.Carousel) {
	for _, c := range mounted {
		c.Unmount()
	}
}

// reloadHeadless replaces current with carousels for the deck at path. A
// deck that fails to load or build leaves current playing untouched; a set
// that fails to mount is replaced by currentCfg mounted afresh.
func reloadHeadless(ctx context.Context, path string, current []*carousel.Carousel, currentCfg []built, out *lockedWriter) ([]*carousel.Carousel, []built, *deck.Deck, error) {
	next, err := loadDeck(path, playSection)
	if err != nil {
		return current, currentCfg, nil, err
	}
	sections, err := buildAll(ctx, next)
	if err != nil {
		return current, currentCfg, nil, err
	}

	unmountAll(current)
	mounted, err := mountAll(sections, out)
	if err != nil {
		restored, rerr := mountAll(currentCfg, out)
		if rerr != nil {
			return nil, nil, nil, fmt.Errorf("restore after failed reload: %w", rerr)
		}
		return restored, currentCfg, nil, err
	}
	return mounted, sections, next, nil
}

func playHeadless(ctx context.Context, path string, d *deck.Deck, w io.Writer) error {
	out := &lockedWriter{w: w}
	sections, err := buildAll(ctx, d)
	if err != nil {
		return err
	}
	mounted, err := mountAll(sections, out)
	if err != nil {
		return err
	}
	defer func() { unmountAll(mounted) }()

	reload := make(chan struct{}, 1)
	var watcher *watch.Watcher
	if playWatch {
		watcher, err = startWatch(ctx, path, d, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer watcher.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping", zap.Int("carousels", len(mounted)))
			return nil
		case <-reload:
			var next *deck.Deck
			mounted, sections, next, err = reloadHeadless(ctx, path, mounted, sections, out)
			if mounted == nil && err != nil {
				return err
			}
			if err != nil {
				logger.Warn("reload failed, keeping current deck", zap.Error(err))
				continue
			}
			watchImages(watcher, next)
		}
	}
}

// deckChangedMsg asks the player to rebuild its page.
type deckChangedMsg struct{}

// player owns the showcase page and swaps it on reload.
type player struct {
	page    showcase.Page
	path    string
	section string
	ctx     context.Context
	width   int
	height  int

	// onReload sees every deck that replaced the page.
	onReload func(*deck.Deck)
}

func (p player) Init() tea.Cmd { return p.page.Init() }

func (p player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deckChangedMsg:
		d, err := loadDeck(p.path, p.section)
		if err != nil {
			logger.Warn("reload failed, keeping current deck", zap.Error(err))
			return p, nil
		}
		page, err := showcase.FromDeck(p.ctx, d, logger, carousel.WithModelLogger(logger))
		if err != nil {
			logger.Warn("reload failed, keeping current deck", zap.Error(err))
			return p, nil
		}
		if p.width > 0 {
			next, _ := page.Update(tea.WindowSizeMsg{Width: p.width, Height: p.height})
			page = next.(showcase.Page)
		}
		// The old page's pending ticks carry ids the new page does not know.
		_ = p.page.Stop()
		p.page = page
		if p.onReload != nil {
			p.onReload(d)
		}
		return p, p.page.Init()

	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
	}

	next, cmd := p.page.Update(msg)
	p.page = next.(showcase.Page)
	return p, cmd
}

func (p player) View() string { return p.page.View() }

func playTUI(ctx context.Context, path string, d *deck.Deck) error {
	page, err := showcase.FromDeck(ctx, d, logger, carousel.WithModelLogger(logger))
	if err != nil {
		return err
	}

	var watcher *watch.Watcher
	pl := player{page: page, path: path, section: playSection, ctx: ctx}
	pl.onReload = func(next *deck.Deck) {
		if watcher != nil {
			watchImages(watcher, next)
		}
	}
	program := tea.NewProgram(pl,
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	if playWatch {
		watcher, err = startWatch(ctx, path, d, func() { program.Send(deckChangedMsg{}) })
		if err != nil {
			return err
		}
		defer watcher.Stop()
	}

	logger.Info("playing", zap.String("deck", path), zap.Int("sections", len(d.Sections)))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("player: %w", err)
	}
	return nil
}
