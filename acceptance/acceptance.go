// Package acceptance contains the built-in acceptance suites for the feed-reader widget.
package acceptance

import (
	"context"
	"fmt"
	"slices"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-feedcheck/harness"
	"github.com/ethereum-optimism/infra/op-feedcheck/reader"
)

const (
	SuiteFeeds         = "RSS Feeds"
	SuiteMenu          = "The menu"
	SuiteInitial       = "Initial Entries"
	SuiteFeedSelection = "News Feed Selection"
)

// AppFactory creates a fresh widget for a single case.
type AppFactory func() (*reader.App, error)

// fixture is the per-case state shared by a case's setup and assertions.
type fixture struct {
	app    *reader.App
	err    error
	before string
	after  string
}

type suite struct {
	name  string
	cases []func(newFixture func() *fixture) harness.Case
}

var suites = []suite{
	{
		name: SuiteFeeds,
		cases: []func(func() *fixture) harness.Case{
			func(nf func() *fixture) harness.Case {
				return harness.Fixtured(SuiteFeeds, "are defined", nf, nil, func(t harness.T, fx *fixture) {
					require.NoError(t, fx.err, "creating app")
					feeds := fx.app.Feeds()
					assert.NotNil(t, feeds, "feed list is not defined")
					assert.NotEmpty(t, feeds, "feed list is empty")
				})
			},
			func(nf func() *fixture) harness.Case {
				return harness.Fixtured(SuiteFeeds, "have a url", nf, nil, func(t harness.T, fx *fixture) {
					require.NoError(t, fx.err, "creating app")
					for i, f := range fx.app.Feeds() {
						assert.NotEmpty(t, f.URL, "feed %d has no url", i)
					}
				})
			},
			func(nf func() *fixture) harness.Case {
				return harness.Fixtured(SuiteFeeds, "have a name", nf, nil, func(t harness.T, fx *fixture) {
					require.NoError(t, fx.err, "creating app")
					for i, f := range fx.app.Feeds() {
						assert.NotEmpty(t, f.Name, "feed %d has no name", i)
					}
				})
			},
		},
	},
	{
		name: SuiteMenu,
		cases: []func(func() *fixture) harness.Case{
			func(nf func() *fixture) harness.Case {
				return harness.Fixtured(SuiteMenu, "is hidden by default", nf, nil, func(t harness.T, fx *fixture) {
					require.NoError(t, fx.err, "creating app")
					assert.True(t, fx.app.Page().HasClass(reader.MenuHiddenClass), "menu is visible on start")
				})
			},
			func(nf func() *fixture) harness.Case {
				return harness.Fixtured(SuiteMenu, "toggles visibility on menu icon click", nf, nil, func(t harness.T, fx *fixture) {
					require.NoError(t, fx.err, "creating app")
					fx.app.Menu().Click()
					assert.False(t, fx.app.Page().HasClass(reader.MenuHiddenClass), "menu still hidden after first click")
					fx.app.Menu().Click()
					assert.True(t, fx.app.Page().HasClass(reader.MenuHiddenClass), "menu still visible after second click")
				})
			},
		},
	},
	{
		name: SuiteInitial,
		cases: []func(func() *fixture) harness.Case{
			func(nf func() *fixture) harness.Case {
				return harness.Fixtured(SuiteInitial, "has at least one entry", nf,
					func(ctx context.Context, fx *fixture, done *harness.Signal) error {
						if fx.err != nil {
							return fx.err
						}
						return fx.app.LoadFeed(ctx, 0, done.Fire)
					},
					func(t harness.T, fx *fixture) {
						assert.GreaterOrEqual(t, fx.app.Page().EntryCount(), 1, "feed container has no entries")
					})
			},
		},
	},
	{
		name: SuiteFeedSelection,
		cases: []func(func() *fixture) harness.Case{
			func(nf func() *fixture) harness.Case {
				return harness.Fixtured(SuiteFeedSelection, "should change content when feed changes", nf,
					func(ctx context.Context, fx *fixture, done *harness.Signal) error {
						if fx.err != nil {
							return fx.err
						}
						return fx.app.LoadFeed(ctx, 0, func() {
							fx.before = fx.app.Page().Content()
							err := fx.app.SelectFeed(ctx, 1, func() {
								fx.after = fx.app.Page().Content()
								done.Fire()
							})
							if err != nil {
								done.Fail(err)
							}
						})
					},
					func(t harness.T, fx *fixture) {
						assert.NotEqual(t, fx.before, fx.after, "content did not change when feed changed")
					})
			},
		},
	},
}

// Suites returns the names of the built-in suites in registration order.
func Suites() []string {
	names := make([]string, len(suites))
	for i, s := range suites {
		names[i] = s.name
	}
	return names
}

// Register adds the built-in suites to s. If only is not empty, just the named suites are
// registered. Every case gets its own app from newApp.
func Register(s *harness.Scheduler, newApp AppFactory, only ...string) error {
	for _, name := range only {
		if !slices.Contains(Suites(), name) {
			return fmt.Errorf("unknown suite %q", name)
		}
	}

	newFixture := func() *fixture {
		app, err := newApp()
		return &fixture{app: app, err: err}
	}
	for _, st := range suites {
		if len(only) > 0 && !slices.Contains(only, st.name) {
			continue
		}
		for _, build := range st.cases {
			if _, err := s.Register(build(newFixture)); err != nil {
				return fmt.Errorf("registering suite %q: %w", st.name, err)
			}
		}
	}
	return nil
}
