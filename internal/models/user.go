package models

import "time"

// User is an account record together with its loadable relations.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Password     string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	AuthStrategy string    `json:"authStrategy,omitempty"`
	ProfileID    *int64    `json:"-"`
	Profile      *Profile  `json:"profile"`
	Posts        []Post    `json:"posts"`
}

// Profile holds personal details owned by exactly one user.
type Profile struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
}

// Post is authored content, exposed here only as a relation of User.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser builds an unsaved user. ID and CreatedAt are assigned by storage.
func NewUser(username, password string, roles []string, authStrategy string) *User {
	return &User{
		Username:     username,
		Password:     password,
		Roles:        UniqueRoles(roles),
		AuthStrategy: authStrategy,
	}
}

// NewProfile builds an unsaved profile.
func NewProfile(firstname, lastname string, age int) *Profile {
	return &Profile{Firstname: firstname, Lastname: lastname, Age: age}
}

// HasProfile reports whether a profile is attached, loaded or not.
func (u *User) HasProfile() bool {
	return u.Profile != nil || u.ProfileID != nil
}

// AttachProfile links a persisted profile to the user.
func (u *User) AttachProfile(p *Profile) {
	id := p.ID
	u.Profile = p
	u.ProfileID = &id
}
