package models

// User represents a registered account.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	FirstName    string `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName     string `gorm:"type:varchar(100);not null" json:"lastName"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // Never expose the password hash
}

// UserPublicInfo holds the public profile fields of a user.
// Used wherever a user is shown to someone else (search results,
// friends lists, pending request listings).
type UserPublicInfo struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// PublicInfo projects the user onto its public profile fields.
func (u *User) PublicInfo() *UserPublicInfo {
	return &UserPublicInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
