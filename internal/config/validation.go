package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/pages"
)

var (
	dangerousChars     = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	dangerousPathChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
)

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateBrowserConfig(&config.Browser); err != nil {
		return fmt.Errorf("browser config: %w", err)
	}

	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// Port 0 lets the OS pick, which tests rely on.
	if config.Port < 0 || config.Port > 65535 {
		return errors.NewValidationError(errors.ErrCodeInvalidPort,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port))
	}

	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return errors.NewValidationError(errors.ErrCodeInvalidHost,
				"host contains dangerous character: "+char)
		}
	}

	switch config.Environment {
	case "development", "production":
	default:
		return errors.NewValidationError(errors.ErrCodeConfigLoad,
			fmt.Sprintf("environment must be development or production, got %q", config.Environment))
	}

	return nil
}

func validateBrowserConfig(config *BrowserConfig) error {
	if config.LoadDelay < 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidDelay,
			fmt.Sprintf("load_delay must not be negative, got %s", config.LoadDelay))
	}

	if config.Breakpoint <= 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidBreakpt,
			fmt.Sprintf("breakpoint must be positive, got %d", config.Breakpoint))
	}

	if _, ok := pages.Parse(config.DefaultPage); !ok {
		return errors.NewValidationError(errors.ErrCodeInvalidPage,
			fmt.Sprintf("default_page %q is not a known page", config.DefaultPage))
	}

	return nil
}

func validateContentConfig(config *ContentConfig) error {
	if config.Dir == "" {
		return nil
	}
	return validatePath(config.Dir)
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return errors.NewValidationError(errors.ErrCodeConfigLoad, err.Error())
	}
	switch config.Format {
	case "", "text", "json":
	default:
		return errors.NewValidationError(errors.ErrCodeConfigLoad,
			fmt.Sprintf("log format must be text or json, got %q", config.Format))
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return errors.NewValidationError(errors.ErrCodeInvalidPath,
			"path contains traversal: "+path)
	}

	for _, char := range dangerousPathChars {
		if strings.Contains(cleanPath, char) {
			return errors.NewValidationError(errors.ErrCodeInvalidPath,
				"path contains dangerous character: "+char)
		}
	}

	return nil
}
