package browser

// State is a snapshot of everything the controller believes the tab shows.
type State struct {
	// Current is the page most recently navigated to. Known keys are stored
	// as their canonical slug, unknown keys verbatim.
	Current string `json:"current"`
	// ActiveLink is the slug of the highlighted sidebar link, empty when the
	// current page has no link.
	ActiveLink string `json:"active_link"`
	Breadcrumb string `json:"breadcrumb"`
	// Content is the markup currently in the content region.
	Content string `json:"-"`
	// Loading is true between the placeholder and the content swap.
	Loading bool `json:"loading"`
	// Viewport is the last reported window width, 0 before the first report.
	Viewport int `json:"viewport"`

	SidebarCollapsed bool `json:"sidebar_collapsed"`
	SidebarOpen      bool `json:"sidebar_open"`
	MainCollapsed    bool `json:"main_collapsed"`
}
