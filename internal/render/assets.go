package render

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var static embed.FS

// Assets returns the stylesheets and runtime script served under /static/.
func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// AssetNames lists the files in Assets.
func AssetNames() []string {
	return []string{"content.css", "wiki.css", "wiki.js"}
}
