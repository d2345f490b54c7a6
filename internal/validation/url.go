// Package validation checks values that leave the process: URLs handed to
// the platform's browser launcher and directories the exporter writes into.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// shellChars may change the meaning of an argument passed to xdg-open,
// open or rundll32.
var shellChars = []string{";", "&", "|", "`", "$", "(", ")", "<", ">", "\"", "'", "\\", "\n", "\r", " "}

// ValidateURL checks a URL before it is passed to the system browser.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q (only http/https allowed)", parsed.Scheme)
	}

	for _, char := range shellChars {
		if strings.Contains(rawURL, char) {
			return fmt.Errorf("URL contains forbidden character %q", char)
		}
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
