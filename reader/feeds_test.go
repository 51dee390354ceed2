package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFeeds(t *testing.T) {
	feeds := DefaultFeeds()
	require.NoError(t, feeds.Validate())
	assert.Equal(t, []string{"Udacity Blog", "CSS Tricks", "HTML5 Rocks", "Linear Digressions"}, feeds.Names())
	assert.Equal(t, "http://blog.udacity.com/feed", feeds[0].URL)
	for _, f := range feeds {
		assert.NotEmpty(t, f.Entries, f.Name)
	}
}

func TestLoadFeeds(t *testing.T) {
	feeds, err := LoadFeeds("testdata/feeds.yaml")
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, "First", feeds[0].Name)
	assert.Len(t, feeds[1].Entries, 2)

	_, err = LoadFeeds("testdata/missing.yaml")
	assert.ErrorContains(t, err, "reading feed file")

	_, err = LoadFeeds("testdata/invalid.yaml")
	assert.ErrorContains(t, err, "parsing feed file")
}

func TestLoadFeeds_TOML(t *testing.T) {
	feeds, err := LoadFeeds("testdata/feeds.toml")
	require.NoError(t, err)
	require.NoError(t, feeds.Validate())
	assert.Equal(t, []string{"First", "Second"}, feeds.Names())
	require.Len(t, feeds[1].Entries, 1)
	assert.Equal(t, "http://example.com/second/2", feeds[1].Entries[0].Link)

	_, err = ParseFeedsTOML([]byte("[[feeds]\nname = "))
	assert.Error(t, err)
}

func TestFeeds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		feeds   Feeds
		wantErr []error
	}{
		{
			name:    "empty list",
			feeds:   Feeds{},
			wantErr: []error{ErrNoFeeds},
		},
		{
			name:    "nil list",
			wantErr: []error{ErrNoFeeds},
		},
		{
			name:  "valid",
			feeds: Feeds{{Name: "a", URL: "http://a"}},
		},
		{
			name:    "missing url",
			feeds:   Feeds{{Name: "a", URL: "http://a"}, {Name: "b"}},
			wantErr: []error{ErrMissingURL},
		},
		{
			name:    "missing both",
			feeds:   Feeds{{}},
			wantErr: []error{ErrMissingURL, ErrMissingName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.feeds.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestPage_ToggleClass(t *testing.T) {
	p := NewPage()
	assert.True(t, p.MenuHidden())
	assert.False(t, p.ToggleClass(MenuHiddenClass))
	assert.False(t, p.HasClass(MenuHiddenClass))
	assert.True(t, p.ToggleClass(MenuHiddenClass))
	p.AddClass(MenuHiddenClass)
	assert.True(t, p.MenuHidden())
	assert.Empty(t, p.Content())
}
