package reader

import (
	"errors"
	"fmt"
)

var (
	ErrNoFeeds     = errors.New("feed list is empty")
	ErrMissingURL  = errors.New("feed url is empty")
	ErrMissingName = errors.New("feed name is empty")
)

// Validate checks the shape of the feed list. It never fetches anything.
func (f Feeds) Validate() error {
	if len(f) == 0 {
		return ErrNoFeeds
	}
	var errs []error
	for i, feed := range f {
		if feed.URL == "" {
			errs = append(errs, fmt.Errorf("feed %d: %w", i, ErrMissingURL))
		}
		if feed.Name == "" {
			errs = append(errs, fmt.Errorf("feed %d: %w", i, ErrMissingName))
		}
	}
	return errors.Join(errs...)
}
