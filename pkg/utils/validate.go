package utils

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Validation failures carry the i18n message id as their text.
var (
	ErrTargetURLRequired  = errors.New("error.target_url_required")
	ErrTargetURLInvalid   = errors.New("error.target_url_invalid")
	ErrTargetURLMaxLength = errors.New("error.target_url_max_length")
	ErrShortCodeInvalid   = errors.New("error.shortcode_invalid")
)

const maxTargetURLLength = 2048

var shortCodePattern = regexp.MustCompile(`^[0-9a-zA-Z]{8}$`)

// ValidateShortCode reports whether shortCode has the shape of a generated code.
func ValidateShortCode(shortCode string) error {
	if !shortCodePattern.MatchString(shortCode) {
		return ErrShortCodeInvalid
	}
	return nil
}

// ValidateTargetURL accepts absolute http and https URLs with a host.
func ValidateTargetURL(targetURL string) error {
	if strings.TrimSpace(targetURL) == "" {
		return ErrTargetURLRequired
	}

	if len(targetURL) > maxTargetURLLength {
		return ErrTargetURLMaxLength
	}

	if ContainsWhitespace(targetURL) {
		return ErrTargetURLInvalid
	}

	u, err := url.ParseRequestURI(targetURL)
	if err != nil {
		return ErrTargetURLInvalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrTargetURLInvalid
	}
	if u.Hostname() == "" {
		return ErrTargetURLInvalid
	}
	return nil
}

func ContainsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
