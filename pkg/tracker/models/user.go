package models

import "golang.org/x/crypto/bcrypt"

// User is a registered peer account.
//
// The password column stores a bcrypt verifier, never the plaintext. IP and
// port record the peer's last announced transfer endpoint; they are
// reconciled on every login and resume so host lookups hand out current
// addresses.
type User struct {
	Name         string `gorm:"primaryKey;size:25;column:user_name"`
	PasswordHash string `gorm:"not null;column:user_password"`
	IP           string `gorm:"size:45;column:user_ip"`
	Port         int    `gorm:"column:user_port"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// SetPassword replaces the stored verifier with a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored verifier.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
