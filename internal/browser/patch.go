// Package browser implements the page controller: the per-tab state machine
// that turns navigation, resize and toggle events into DOM patches.
//
// The controller never touches a DOM itself. It keeps an explicit State and
// emits Patch values to a Sink; the browser runtime applies them against the
// element contract below.
package browser

import "fmt"

// DOM contract. The shell layout renders these ids and classes.
const (
	TargetContent    = "#contentBody"
	TargetBreadcrumb = "#breadcrumb"
	TargetSidebar    = "#sidebar"
	TargetMain       = ".main-content"
	TargetNavLinks   = ".nav-link"
)

// Class names toggled by the controller.
const (
	ClassActive           = "active"
	ClassCollapsed        = "collapsed"
	ClassOpen             = "open"
	ClassSidebarCollapsed = "sidebar-collapsed"
)

// Op is the kind of DOM mutation carried by a Patch.
type Op string

const (
	// OpHTML replaces the inner HTML of every element matching Target.
	OpHTML Op = "html"
	// OpClass adds and removes classes on every element matching Target.
	OpClass Op = "class"
)

// Patch is one DOM mutation.
type Patch struct {
	Op     Op       `json:"op"`
	Target string   `json:"target"`
	HTML   string   `json:"html,omitempty"`
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// Sink receives patches in the order they must be applied. Apply is called
// while the controller holds its lock, so implementations must not block or
// call back into the controller.
type Sink interface {
	Apply(patches []Patch)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(patches []Patch)

// Apply calls f(patches).
func (f SinkFunc) Apply(patches []Patch) { f(patches) }

// NavLinkTarget selects the sidebar link for a page slug.
func NavLinkTarget(page string) string {
	return fmt.Sprintf(`%s[data-page="%s"]`, TargetNavLinks, page)
}

func setHTML(target, html string) Patch {
	return Patch{Op: OpHTML, Target: target, HTML: html}
}

func addClass(target string, classes ...string) Patch {
	return Patch{Op: OpClass, Target: target, Add: classes}
}

func removeClass(target string, classes ...string) Patch {
	return Patch{Op: OpClass, Target: target, Remove: classes}
}
