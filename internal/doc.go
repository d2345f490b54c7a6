// Package internal contains the implementation packages for ciclowiki.
//
// These packages follow Go's internal package convention and are only
// importable from this module.
//
// # Package Organization
//
//   - browser: headless page controller, one per open tab, emitting DOM patches
//   - pages: page keys, labels, and the markdown-backed content library
//   - render: templ components for the shell and articles, plus static assets
//   - session: websocket hub binding each connection to its own controller
//   - server: chi router, HTTP handlers, and lifecycle of the hub and watcher
//   - watcher: debounced file system monitoring of the content directory
//   - config: Viper-backed configuration with validation
//   - errors: structured error type shared by every package
//   - logging: leveled structured logger over log/slog
//   - monitoring: Prometheus metrics and health checks
//   - validation: URL and output path checks
//   - version: build metadata injected with ldflags
//
// # Inter-Package Communication
//
//   - Browser events arrive over the session websocket and drive a controller
//   - Controllers read fragments from the pages library and send patches back
//   - Watcher changes reload the library, which emits events to the server
//   - Server reacts to library events by refreshing every session
//
// Nothing is shared between sessions except the read-mostly library, so each
// tab keeps its own navigation state and loses it on disconnect.
package internal
