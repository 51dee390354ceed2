package reader

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// MenuHiddenClass is the body class that hides the slide-out menu.
const MenuHiddenClass = "menu-hidden"

// Page is the document the widget renders into. It is safe for concurrent use since feed loads
// complete on their own goroutines.
type Page struct {
	mu      sync.RWMutex
	classes map[string]struct{}
	title   string
	entries []Entry
}

// NewPage returns the page as it looks on first render: menu hidden, empty container.
func NewPage() *Page {
	return &Page{
		classes: map[string]struct{}{MenuHiddenClass: {}},
	}
}

// HasClass reports whether the body carries class.
func (p *Page) HasClass(class string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.classes[class]
	return ok
}

// AddClass adds class to the body.
func (p *Page) AddClass(class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classes[class] = struct{}{}
}

// ToggleClass flips class on the body and reports whether it is now present.
func (p *Page) ToggleClass(class string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.classes[class]; ok {
		delete(p.classes, class)
		return false
	}
	p.classes[class] = struct{}{}
	return true
}

// MenuHidden reports whether the menu is hidden.
func (p *Page) MenuHidden() bool {
	return p.HasClass(MenuHiddenClass)
}

// Title returns the header title, i.e. the name of the last loaded feed.
func (p *Page) Title() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.title
}

// EntryCount returns the number of entries in the feed container.
func (p *Page) EntryCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Content returns the rendered markup of the feed container.
func (p *Page) Content() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var sb strings.Builder
	for _, e := range p.entries {
		fmt.Fprintf(&sb, `<a class="entry-link" href="%s"><article class="entry"><h2>%s</h2><p>%s</p></article></a>`,
			html.EscapeString(e.Link), html.EscapeString(e.Title), html.EscapeString(e.Snippet))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// render replaces the header title and the container content.
func (p *Page) render(title string, entries []Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
	p.entries = append([]Entry(nil), entries...)
}

// Menu is the hamburger icon that slides the feed list in and out.
type Menu struct {
	page *Page
	log  log.Logger
}

// Click flips the menu visibility once.
func (m *Menu) Click() {
	visible := !m.page.ToggleClass(MenuHiddenClass)
	m.log.Debug("Menu icon clicked", "visible", visible)
}
