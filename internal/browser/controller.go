package browser

import (
	"context"
	"sync"
	"time"

	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/pages"
)

// Defaults matching the stock configuration.
const (
	DefaultDelay      = 300 * time.Millisecond
	DefaultBreakpoint = 768
)

// Content renders the markup the controller swaps into the page.
type Content interface {
	// Fragment returns the article markup for page. Unknown pages yield the
	// home article and found=false.
	Fragment(page string) (markup string, found bool)
	// Breadcrumb returns the breadcrumb markup for a label.
	Breadcrumb(label string) string
	// Placeholder returns the loading indicator markup.
	Placeholder() string
}

// Observer is notified of navigations, typically to record metrics.
type Observer interface {
	Navigated(page string, found bool)
}

// Options tune a Controller.
type Options struct {
	// Delay is how long the placeholder shows before content is swapped in.
	// Zero or negative swaps immediately.
	Delay time.Duration
	// Breakpoint is the widest viewport still treated as mobile.
	Breakpoint int
	// DefaultPage is the page shown before any navigation.
	DefaultPage pages.Key
	Logger      logging.Logger
	Observer    Observer
}

// Controller is the page state machine for one browser tab. All methods are
// safe for concurrent use; patches reach the Sink in the order the state
// changed.
type Controller struct {
	content    Content
	sink       Sink
	delay      time.Duration
	breakpoint int
	logger     logging.Logger
	observer   Observer

	mutex   sync.Mutex
	state   State
	pending *time.Timer
	// generation increments on every load so a stale timer can tell it lost.
	generation uint64
	closed     bool
}

// New creates a controller that starts on opts.DefaultPage with its content
// already rendered.
func New(content Content, sink Sink, opts Options) *Controller {
	if opts.Breakpoint <= 0 {
		opts.Breakpoint = DefaultBreakpoint
	}
	if !opts.DefaultPage.Valid() {
		opts.DefaultPage = pages.DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	c := &Controller{
		content:    content,
		sink:       sink,
		delay:      opts.Delay,
		breakpoint: opts.Breakpoint,
		logger:     opts.Logger.WithComponent("browser"),
		observer:   opts.Observer,
	}

	c.adopt(opts.DefaultPage.String())
	return c
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Navigate moves the tab to page. Navigating to the current page does
// nothing. Otherwise the active link, breadcrumb and content are updated
// and, on a mobile viewport, the slide-in menu is closed.
func (c *Controller) Navigate(ctx context.Context, page string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}

	_, known := pages.Parse(page)
	if page == c.state.Current {
		return
	}

	patches := []Patch{removeClass(TargetNavLinks, ClassActive)}
	c.state.ActiveLink = ""
	if known {
		patches = append(patches, addClass(NavLinkTarget(page), ClassActive))
		c.state.ActiveLink = page
	}

	label := pages.LabelFor(page)
	c.state.Breadcrumb = label
	patches = append(patches, setHTML(TargetBreadcrumb, c.content.Breadcrumb(label)))

	c.state.Current = page
	patches = append(patches, c.load(page)...)

	if c.mobile() && c.state.SidebarOpen {
		c.state.SidebarOpen = false
		patches = append(patches, removeClass(TargetSidebar, ClassOpen))
	}

	c.sink.Apply(patches)

	if c.observer != nil {
		c.observer.Navigated(page, known)
	}
	c.logger.Debug(ctx, "navigated", "page", page, "known", known)
}

// LoadPage shows the placeholder and schedules the content for page to
// replace it after the configured delay. A later load supersedes any swap
// still pending, so only the newest page is ever written.
func (c *Controller) LoadPage(ctx context.Context, page string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}
	c.sink.Apply(c.load(page))
	c.logger.Debug(ctx, "page load scheduled", "page", page, "delay", c.delay)
}

// load must be called with the mutex held.
func (c *Controller) load(page string) []Patch {
	c.generation++
	generation := c.generation

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}

	placeholder := c.content.Placeholder()
	c.state.Loading = true
	c.state.Content = placeholder
	patches := []Patch{setHTML(TargetContent, placeholder)}

	if c.delay <= 0 {
		return append(patches, c.swap(page))
	}

	c.pending = time.AfterFunc(c.delay, func() {
		c.mutex.Lock()
		defer c.mutex.Unlock()

		if c.closed || generation != c.generation {
			return
		}
		c.pending = nil
		c.sink.Apply([]Patch{c.swap(page)})
	})
	return patches
}

// swap must be called with the mutex held.
func (c *Controller) swap(page string) Patch {
	markup, _ := c.content.Fragment(page)
	c.state.Loading = false
	c.state.Content = markup
	return setHTML(TargetContent, markup)
}

// ToggleSidebar slides the sidebar in or out on a mobile viewport and
// flips the collapsed state of the sidebar and main area otherwise.
func (c *Controller) ToggleSidebar(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}
	if c.mobile() {
		c.state.SidebarOpen = !c.state.SidebarOpen
		c.sink.Apply([]Patch{toggle(TargetSidebar, ClassOpen, c.state.SidebarOpen)})
		return
	}
	c.state.SidebarCollapsed = !c.state.SidebarCollapsed
	c.state.MainCollapsed = !c.state.MainCollapsed
	c.sink.Apply([]Patch{
		toggle(TargetSidebar, ClassCollapsed, c.state.SidebarCollapsed),
		toggle(TargetMain, ClassSidebarCollapsed, c.state.MainCollapsed),
	})
}

// ToggleMobileMenu flips the slide-in state of the sidebar.
func (c *Controller) ToggleMobileMenu(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}
	c.state.SidebarOpen = !c.state.SidebarOpen
	c.sink.Apply([]Patch{toggle(TargetSidebar, ClassOpen, c.state.SidebarOpen)})
}

// DismissOverlay closes the slide-in menu on a mobile viewport. It handles
// clicks outside the sidebar.
func (c *Controller) DismissOverlay(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed || !c.mobile() || !c.state.SidebarOpen {
		return
	}
	c.state.SidebarOpen = false
	c.sink.Apply([]Patch{removeClass(TargetSidebar, ClassOpen)})
}

// Init records the first viewport width and adopts page as the current page
// without emitting content, since the shell was rendered with it already.
// An empty page keeps the current one. A mobile sized viewport collapses the
// sidebar.
func (c *Controller) Init(ctx context.Context, width int, page string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}
	if page != "" {
		c.adopt(page)
	}
	c.state.Viewport = width
	if !c.mobile() {
		return
	}
	c.apply(c.collapse())
}

// adopt must be called with the mutex held.
func (c *Controller) adopt(page string) {
	c.generation++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}

	c.state.ActiveLink = ""
	if _, known := pages.Parse(page); known {
		c.state.ActiveLink = page
	}
	markup, _ := c.content.Fragment(page)
	c.state.Current = page
	c.state.Breadcrumb = pages.LabelFor(page)
	c.state.Content = markup
	c.state.Loading = false
}

// Resize records a new viewport width. At or below the breakpoint the
// sidebar is collapsed; above it the sidebar is expanded and closed.
func (c *Controller) Resize(ctx context.Context, width int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}
	c.state.Viewport = width
	if c.mobile() {
		c.apply(c.collapse())
		return
	}

	var patches []Patch
	if c.state.SidebarCollapsed || c.state.SidebarOpen {
		c.state.SidebarCollapsed = false
		c.state.SidebarOpen = false
		patches = append(patches, removeClass(TargetSidebar, ClassCollapsed, ClassOpen))
	}
	if c.state.MainCollapsed {
		c.state.MainCollapsed = false
		patches = append(patches, removeClass(TargetMain, ClassSidebarCollapsed))
	}
	c.apply(patches)
}

// Refresh re-renders the current page, for example after its source
// changed on disk. A pending swap already reads fresh content, so it is
// left alone.
func (c *Controller) Refresh(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed || c.pending != nil {
		return
	}
	c.sink.Apply([]Patch{c.swap(c.state.Current)})
}

// Close cancels any pending swap. Further calls are ignored.
func (c *Controller) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.closed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// collapse must be called with the mutex held.
func (c *Controller) collapse() []Patch {
	var patches []Patch
	if !c.state.SidebarCollapsed {
		c.state.SidebarCollapsed = true
		patches = append(patches, addClass(TargetSidebar, ClassCollapsed))
	}
	if !c.state.MainCollapsed {
		c.state.MainCollapsed = true
		patches = append(patches, addClass(TargetMain, ClassSidebarCollapsed))
	}
	return patches
}

func (c *Controller) apply(patches []Patch) {
	if len(patches) > 0 {
		c.sink.Apply(patches)
	}
}

// mobile reports whether the last known viewport is at or below the
// breakpoint. An unknown viewport counts as desktop.
func (c *Controller) mobile() bool {
	return c.state.Viewport > 0 && c.state.Viewport <= c.breakpoint
}

func toggle(target, class string, on bool) Patch {
	if on {
		return addClass(target, class)
	}
	return removeClass(target, class)
}
