package deck

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/carousel"
)

// maxDecoders bounds concurrent image decoding per section.
const maxDecoders = 4

// Build decodes a section's slides into a carousel configuration. Image
// slides are decoded concurrently; item order follows slide order.
func Build(ctx context.Context, s Section) (carousel.Config, error) {
	aspect, err := carousel.ParseAspect(s.Aspect)
	if err != nil {
		return carousel.Config{}, fmt.Errorf("section %q: %w", s.Name, err)
	}

	items := make([]carousel.Item, len(s.Slides))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxDecoders)

	for i, slide := range s.Slides {
		if slide.Image == "" {
			items[i] = carousel.NewTextItem(slide.Caption, slide.Text)
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			item, err := carousel.LoadImageItem(slide.Caption, slide.Image)
			if err != nil {
				return fmt.Errorf("section %q slide %d: %w", s.Name, i+1, err)
			}
			items[i] = item
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return carousel.Config{}, err
	}

	cfg := carousel.Config{
		Items:    items,
		Interval: s.Interval(),
		Aspect:   aspect,
	}
	if err := cfg.Validate(); err != nil {
		return carousel.Config{}, fmt.Errorf("section %q: %w", s.Name, err)
	}
	return cfg, nil
}

// BuildAll builds every section in deck order.
func BuildAll(ctx context.Context, d *Deck) ([]carousel.Config, error) {
	configs := make([]carousel.Config, 0, len(d.Sections))
	for _, s := range d.Sections {
		cfg, err := Build(ctx, s)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
