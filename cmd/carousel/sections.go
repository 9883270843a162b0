package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/carousel"
	"github.com/teranos/carousel/deck"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections DECK",
	Short: "List the sections of a deck",
	Args:  cobra.ExactArgs(1),
	RunE:  listSections,
}

var validateCmd = &cobra.Command{
	Use:   "validate DECK",
	Short: "Load a deck and decode every slide",
	Long: `Parses the deck, checks section names, slides and aspects, then decodes
every image so broken files are found before a presentation.`,
	Args: cobra.ExactArgs(1),
	RunE: validateDeck,
}

func listSections(cmd *cobra.Command, args []string) error {
	d, err := deck.Load(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tSLIDES\tINTERVAL\tASPECT")
	for _, s := range d.Sections {
		interval := s.Interval()
		if interval == 0 {
			interval = carousel.DefaultInterval
		}
		aspect, _ := carousel.ParseAspect(s.Aspect)
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%s\n", s.Name, s.Heading(), len(s.Slides), interval, aspect)
	}
	return w.Flush()
}

func validateDeck(cmd *cobra.Command, args []string) error {
	d, err := deck.Load(args[0])
	if err != nil {
		return err
	}

	configs, err := deck.BuildAll(cmd.Context(), d)
	if err != nil {
		return err
	}

	items := 0
	for _, cfg := range configs {
		items += len(cfg.Items)
	}
	logger.Debug("deck validated", zap.String("deck", args[0]), zap.Int("sections", len(configs)), zap.Int("items", items))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d sections, %d slides OK\n", args[0], len(configs), items)
	return nil
}
