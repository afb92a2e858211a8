package dto

import "github.com/hongminglow/all-in-users/internal/users"

type CreateUserRequest struct {
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	Roles        []string `json:"roles"`
	AuthStrategy string   `json:"authStrategy"`
}

// ToInput converts the request body into service input.
func (r CreateUserRequest) ToInput() users.CreateUserInput {
	return users.CreateUserInput{
		Username:     r.Username,
		Password:     r.Password,
		Roles:        r.Roles,
		AuthStrategy: r.AuthStrategy,
	}
}

// UpdateUserRequest is partial: absent fields stay nil.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (r UpdateUserRequest) ToInput() users.UpdateUserInput {
	return users.UpdateUserInput{Username: r.Username, Password: r.Password}
}

type CreateProfileRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
}

func (r CreateProfileRequest) ToInput() users.CreateProfileInput {
	return users.CreateProfileInput{Firstname: r.Firstname, Lastname: r.Lastname, Age: r.Age}
}
