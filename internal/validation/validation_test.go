package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		expectErr bool
	}{
		{"localhost", "http://localhost:8080", false},
		{"https", "https://wiki.example.com/page/rad", false},
		{"loopback", "http://127.0.0.1:3000", false},
		{"query", "http://localhost:8080/?page=rad", false},
		{"javascript scheme", "javascript:alert(1)", true},
		{"file scheme", "file:///etc/passwd", true},
		{"data scheme", "data:text/html,hi", true},
		{"no host", "http://", true},
		{"semicolon", "http://localhost:8080/;rm -rf", true},
		{"pipe", "http://localhost:8080|cat", true},
		{"subshell", "http://localhost:8080/$(id)", true},
		{"backtick", "http://localhost:8080/`id`", true},
		{"space", "http://localhost:8080/a b", true},
		{"newline", "http://localhost:8080/\nid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		expectErr bool
	}{
		{"relative", "dist", false},
		{"nested", "build/site", false},
		{"absolute tmp", "/tmp/ciclowiki", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"traversal", "../outside", true},
		{"inner traversal", "dist/../../outside", true},
		{"root", "/", true},
		{"cwd", ".", true},
		{"etc", "/etc", true},
		{"under usr", "/usr/share/wiki", true},
		{"shell", "dist;rm", true},
		{"dotted name", "site..old", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.path)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
