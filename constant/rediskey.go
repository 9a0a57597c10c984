package constant

import (
	"fmt"
)

const (
	BasePrefix = "shortlink:"
	Separator  = ":"
)

// Redis key templates
const (
	ShortCode = BasePrefix + "link" + Separator + "%s" // shortlink:link:<code>
)

// GetShortCodeKey returns the cache key of a short code
func GetShortCodeKey(shortcode string) string {
	return fmt.Sprintf(ShortCode, shortcode)
}
