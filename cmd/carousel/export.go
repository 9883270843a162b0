package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/carousel"
	"github.com/teranos/carousel/deck"
	"github.com/teranos/carousel/film"
)

var (
	exportOut       string
	exportSection   string
	exportBaseline  string
	exportHTML      bool
	exportWidth     int
	exportHeight    int
	exportSteps     int
	exportTolerance float64
)

var exportCmd = &cobra.Command{
	Use:   "export DECK",
	Short: "Render every slide and transition of a deck to PNG frames",
	Long: `Walks each section through one full cycle and writes a PNG for every
slide plus one mid-transition frame between slides, to OUT/<section>/.

With --baseline the frames are compared against an earlier export and the
command fails when any frame drifts past --tolerance; diff images are written
next to the frames. With --html an index.html contact sheet is written to OUT.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output directory (required)")
	exportCmd.Flags().StringVarP(&exportSection, "section", "s", "", "Export only this section")
	exportCmd.Flags().StringVar(&exportBaseline, "baseline", "", "Compare against frames from an earlier export")
	exportCmd.Flags().BoolVar(&exportHTML, "html", false, "Write an HTML contact sheet")
	exportCmd.Flags().IntVar(&exportWidth, "width", 60, "Frame width in columns")
	exportCmd.Flags().IntVar(&exportHeight, "height", 22, "Frame height in rows")
	exportCmd.Flags().IntVar(&exportSteps, "steps", carousel.DefaultTransitionSteps, "Transition frames between slides")
	exportCmd.Flags().Float64Var(&exportTolerance, "tolerance", film.DefaultTolerance, "Allowed share of differing pixels")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := loadDeck(args[0], exportSection)
	if err != nil {
		return err
	}

	sheet := &film.Sheet{Title: d.Title}
	var drifted []string
	for _, s := range d.Sections {
		frames, err := renderSection(cmd.Context(), s, filepath.Join(exportOut, s.Name))
		if err != nil {
			return err
		}
		for _, f := range frames {
			sheet.Add(f)
			if exportBaseline == "" {
				continue
			}
			rel, err := filepath.Rel(exportOut, f.Path)
			if err != nil {
				return err
			}
			diffPath := filepath.Join(filepath.Dir(f.Path), "diff_"+filepath.Base(f.Path))
			ratio, err := film.CompareFiles(filepath.Join(exportBaseline, rel), f.Path, diffPath, exportTolerance)
			if err != nil {
				logger.Warn("frame drifted", zap.String("frame", rel), zap.Float64("ratio", ratio), zap.Error(err))
				drifted = append(drifted, rel)
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %d frames to %s\n", sheet.FrameCount(), exportOut)
	if exportHTML {
		path, err := sheet.Write(exportOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "contact sheet: %s\n", path)
	}
	if len(drifted) > 0 {
		return fmt.Errorf("%d frames drifted from baseline: %s", len(drifted), strings.Join(drifted, ", "))
	}
	return nil
}

// renderSection steps a model through one cycle without a running program.
func renderSection(ctx context.Context, s deck.Section, dir string) ([]film.Frame, error) {
	cfg, err := deck.Build(ctx, s)
	if err != nil {
		return nil, err
	}
	m, err := carousel.NewModel(cfg,
		carousel.WithSize(exportWidth, exportHeight),
		carousel.WithTransition(exportSteps, 0),
		carousel.WithModelLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", s.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	config := film.DefaultConfig()
	config.Width, config.Height = exportWidth, exportHeight
	stage := film.NewStage(config)

	var frames []film.Frame
	capture := func(label string) error {
		view := m.View()
		stage.Load(view)
		path := filepath.Join(dir, fmt.Sprintf("frame_%03d_%s.png", len(frames), label))
		if err := stage.Capture(path); err != nil {
			return err
		}
		frame := film.Frame{Section: s.Name, Label: label, Index: m.Index(), Path: path}
		if exportHTML {
			frame.Terminal = film.TerminalHTML(view)
		}
		frames = append(frames, frame)
		return nil
	}

	for i := 0; i < m.Len(); i++ {
		if err := capture(fmt.Sprintf("slide%d", m.Index()+1)); err != nil {
			return nil, err
		}
		if m.Len() == 1 {
			break
		}

		from := m.Index()
		m, _ = m.Next()
		for k := 0; k < exportSteps/2; k++ {
			m = m.StepTransition()
		}
		if m.Animating() {
			if err := capture(fmt.Sprintf("slide%d-to-%d", from+1, m.Index()+1)); err != nil {
				return nil, err
			}
		}
		for m.Animating() {
			m = m.StepTransition()
		}
	}

	logger.Debug("section exported", zap.String("section", s.Name), zap.Int("frames", len(frames)))
	return frames, nil
}
