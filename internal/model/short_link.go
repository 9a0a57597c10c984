package model

// ShortCodeLength is the fixed length of every generated short code.
const ShortCodeLength = 8

type ShortLink struct {
	BaseModel
	ShortCode string `gorm:"uniqueIndex;size:8;not null" json:"shortCode"`
	TargetURL string `gorm:"size:2048;not null" json:"targetUrl"`
	Clicks    int64  `gorm:"not null;default:0" json:"clicks"`
	OwnerID   *uint  `gorm:"index" json:"-"`
	Owner     *User  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (ShortLink) TableName() string {
	return "links"
}

// NewShortLink builds an unsaved link for the given owner.
func NewShortLink(code, targetURL string, owner Principal) *ShortLink {
	link := &ShortLink{
		ShortCode: code,
		TargetURL: targetURL,
	}
	if id, ok := owner.UserID(); ok {
		link.OwnerID = &id
	}
	return link
}

// OwnedBy returns the link owner as a Principal; links without an owner are Anonymous.
func (l *ShortLink) OwnedBy() Principal {
	if l.OwnerID == nil {
		return Anonymous()
	}
	return UserPrincipal(*l.OwnerID)
}
