// Package extraction turns a rendered calendar page into a MeetingRecord.
//
// Extraction runs a ranked list of strategies over a Document. The first strategy that
// yields a record wins. Markup drift is expected, so every strategy degrades to "not
// found" instead of failing the caller.
package extraction

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/m-mizutani/goerr/v2"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/pkg/logging"
)

// Strategy is one way of locating a meeting on a page
type Strategy interface {
	Name() string
	Extract(doc Document) (domain.MeetingRecord, bool)
}

// Result is a successful extraction
type Result struct {
	Meeting  domain.MeetingRecord
	Strategy string
}

// Scraper runs strategies in rank order
type Scraper struct {
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures a Scraper
type Option func(*scraperConfig)

type scraperConfig struct {
	excluded   []string
	strategies []Strategy
	logger     *slog.Logger
}

// WithExcludedNames adds capitalised word pairs never taken as attendees, matched case-insensitively
func WithExcludedNames(names ...string) Option {
	return func(c *scraperConfig) { c.excluded = append(c.excluded, names...) }
}

// WithStrategies replaces the default popup and selected-event strategies
func WithStrategies(strategies ...Strategy) Option {
	return func(c *scraperConfig) { c.strategies = strategies }
}

// WithLogger sets the logger used for per-strategy diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *scraperConfig) { c.logger = logger }
}

// NewScraper creates a scraper with the popup strategy ranked before the selected-event strategy
func NewScraper(opts ...Option) *Scraper {
	cfg := &scraperConfig{excluded: slices.Clone(DefaultExcludedNames)}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.strategies == nil {
		fx := &fieldExtractor{excluded: cfg.excluded}
		cfg.strategies = []Strategy{
			&PopupStrategy{fields: fx},
			&SelectedEventStrategy{fields: fx},
		}
	}
	if cfg.logger == nil {
		cfg.logger = logging.Default()
	}

	return &Scraper{strategies: cfg.strategies, logger: cfg.logger}
}

// Extract returns the first record any strategy produces, or domain.ErrMeetingNotFound
func (s *Scraper) Extract(doc Document) (*Result, error) {
	for _, strategy := range s.strategies {
		rec, ok := s.run(strategy, doc)
		if !ok {
			continue
		}
		s.logger.Debug("meeting extracted", "strategy", strategy.Name(), "title", rec.Title)
		return &Result{Meeting: rec, Strategy: strategy.Name()}, nil
	}
	return nil, goerr.Wrap(domain.ErrMeetingNotFound, "no strategy matched", goerr.V("url", doc.URL()))
}

func (s *Scraper) run(strategy Strategy, doc Document) (rec domain.MeetingRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("extraction strategy failed", "strategy", strategy.Name(), "panic", fmt.Sprint(r))
			rec, ok = domain.MeetingRecord{}, false
		}
	}()
	return strategy.Extract(doc)
}

// PopupStrategy reads an open event details popup
type PopupStrategy struct {
	fields *fieldExtractor
}

func (p *PopupStrategy) Name() string { return "popup" }

func (p *PopupStrategy) Extract(doc Document) (domain.MeetingRecord, bool) {
	popup, selector, ok := FindEventPopup(doc)
	if !ok {
		return domain.MeetingRecord{}, false
	}
	logging.Default().Debug("event popup found", "selector", selector)
	return p.fields.fromPopup(popup), true
}

// SelectedEventStrategy reads the highlighted event in the grid. It only recovers a title.
type SelectedEventStrategy struct {
	fields *fieldExtractor
}

func (p *SelectedEventStrategy) Name() string { return "selected" }

func (p *SelectedEventStrategy) Extract(doc Document) (domain.MeetingRecord, bool) {
	event, _, ok := FindSelectedEvent(doc)
	if !ok {
		return domain.MeetingRecord{}, false
	}
	return p.fields.fromSelected(event), true
}
