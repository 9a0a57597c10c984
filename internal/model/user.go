package model

type User struct {
	BaseModel
	Username     string `gorm:"size:80;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) Principal() Principal {
	return UserPrincipal(u.ID)
}
