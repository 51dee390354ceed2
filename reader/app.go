package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-feedcheck/metrics"
)

// ErrFeedIndexOutOfRange is returned by LoadFeed for an index outside the feed list.
var ErrFeedIndexOutOfRange = errors.New("feed index out of range")

// Config holds configuration for creating a new App
type Config struct {
	Log    log.Logger
	Feeds  Feeds
	Source Source // Defaults to a FixtureSource without latency
}

// App is the feed-reader widget: a page, its menu and the feed loader.
type App struct {
	log    log.Logger
	feeds  Feeds
	source Source
	page   *Page
	menu   *Menu

	wg      sync.WaitGroup
	mu      sync.Mutex
	lastErr error
}

// New creates the widget in its initial state. No feed is loaded until LoadFeed is called.
func New(cfg Config) *App {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Source == nil {
		cfg.Source = &FixtureSource{}
	}
	page := NewPage()
	return &App{
		log:    cfg.Log,
		feeds:  append(Feeds(nil), cfg.Feeds...),
		source: cfg.Source,
		page:   page,
		menu:   &Menu{page: page, log: cfg.Log},
	}
}

// Feeds returns the feed list.
func (a *App) Feeds() Feeds {
	return append(Feeds(nil), a.feeds...)
}

// Page returns the document the widget renders into.
func (a *App) Page() *Page {
	return a.page
}

// Menu returns the menu icon.
func (a *App) Menu() *Menu {
	return a.menu
}

// LoadFeed fetches the feed at index in the background, renders its entries into the feed
// container and sets the header title. done, if not nil, is called exactly once when the load
// finishes, including when the fetch fails; the failure is then available from LastError and the
// page keeps its previous content.
//
// An out-of-range index is rejected synchronously: the page is untouched and done is not called.
func (a *App) LoadFeed(ctx context.Context, index int, done func()) error {
	if index < 0 || index >= len(a.feeds) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrFeedIndexOutOfRange, index, len(a.feeds))
	}
	feed := a.feeds[index]
	a.log.Debug("Loading feed", "index", index, "name", feed.Name, "url", feed.URL)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if done != nil {
			defer done()
		}

		entries, err := a.source.Entries(ctx, feed)
		a.setLastError(err)
		if err != nil {
			a.log.Warn("Failed to load feed", "name", feed.Name, "err", err)
			metrics.RecordErrorDetails("load_feed", err)
			return
		}
		a.page.render(feed.Name, entries)
		a.log.Debug("Loaded feed", "name", feed.Name, "entries", len(entries))
	}()
	return nil
}

// SelectFeed handles a click on a feed link in the menu: the feed is loaded and the menu hidden.
func (a *App) SelectFeed(ctx context.Context, index int, done func()) error {
	if err := a.LoadFeed(ctx, index, done); err != nil {
		return err
	}
	a.page.AddClass(MenuHiddenClass)
	return nil
}

// LastError returns the error of the most recently completed load, nil if it succeeded.
func (a *App) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *App) setLastError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = err
}

// Wait blocks until all in-flight loads have finished.
func (a *App) Wait() {
	a.wg.Wait()
}
