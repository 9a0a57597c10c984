package dto

import (
	"strings"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/model"
)

// CreateLinkRequest is the body of POST /links. The URL itself is checked by the service.
type CreateLinkRequest struct {
	TargetURL string `json:"target_url"`
}

// LinkInfo describes a link to its creator.
type LinkInfo struct {
	ID        uint      `json:"id"`
	TargetURL string    `json:"target_url"`
	ShortURL  string    `json:"short_url"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkStats is the owner-only view of a link.
type LinkStats struct {
	TargetURL string `json:"target_url"`
	ShortCode string `json:"short_code"`
	Clicks    int64  `json:"clicks"`
}

// ShortURL joins the public base URL and the redirect route for code.
func ShortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/links/" + code
}

func NewLinkInfo(link *model.ShortLink, baseURL string) LinkInfo {
	return LinkInfo{
		ID:        link.ID,
		TargetURL: link.TargetURL,
		ShortURL:  ShortURL(baseURL, link.ShortCode),
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
	}
}

func NewLinkStats(link *model.ShortLink) LinkStats {
	return LinkStats{
		TargetURL: link.TargetURL,
		ShortCode: link.ShortCode,
		Clicks:    link.Clicks,
	}
}
