//go:build property

package browser_test

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/ciclowiki/internal/browser"
	"github.com/conneroisu/ciclowiki/internal/pages"
)

// TestControllerProperties checks invariants that must hold for any event
// sequence.
func TestControllerProperties(t *testing.T) {
	frags := newFragments(t)

	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(12345)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("resize classes follow the breakpoint in both directions", prop.ForAll(
		func(widths []int) bool {
			c := browser.New(frags, browser.SinkFunc(func([]browser.Patch) {}), browser.Options{})
			defer c.Close()
			for _, w := range widths {
				c.Resize(context.Background(), w)
				s := c.State()
				mobile := w <= browser.DefaultBreakpoint
				if s.SidebarCollapsed != mobile || s.MainCollapsed != mobile {
					return false
				}
				if !mobile && s.SidebarOpen {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 2560)),
	))

	properties.Property("content always matches the current page once loaded", prop.ForAll(
		func(picks []string) bool {
			c := browser.New(frags, browser.SinkFunc(func([]browser.Patch) {}), browser.Options{})
			defer c.Close()
			for _, p := range picks {
				c.Navigate(context.Background(), p)
			}
			s := c.State()
			want, found := frags.Fragment(s.Current)
			_, known := pages.Parse(s.Current)
			return s.Content == want && found == known && s.Breadcrumb == pages.LabelFor(s.Current)
		},
		gen.SliceOf(gen.OneConstOf("home", "cascada", "rad", "espiral", "v-model", "foo", "bar", "docente", "CASCADA", "#rad")),
	))

	properties.Property("navigating twice emits nothing the second time", prop.ForAll(
		func(page string) bool {
			count := 0
			c := browser.New(frags, browser.SinkFunc(func(p []browser.Patch) { count += len(p) }), browser.Options{})
			defer c.Close()
			c.Navigate(context.Background(), page)
			before := count
			c.Navigate(context.Background(), page)
			return count == before
		},
		gen.OneConstOf("home", "cascada", "prototipos", "evolutivo", "foo"),
	))

	properties.TestingRun(t)
}
