package handlers

import (
	"net/mail"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	fields := map[string]string{}
	if r.Email == "" {
		fields["email"] = "email is required"
	}
	if r.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

type CreateUserRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Age         int    `json:"age"`
	Role        string `json:"role,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	fields := map[string]string{}
	if r.FirstName == "" {
		fields["firstName"] = "first name is required"
	}
	if r.LastName == "" {
		fields["lastName"] = "last name is required"
	}
	if r.PhoneNumber == "" {
		fields["phoneNumber"] = "phone number is required"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		fields["email"] = "email must be a valid address"
	}
	if len(r.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if r.Age <= 5 {
		fields["age"] = "age must be greater than 5"
	}
	if r.Role != "" && !models.Role(r.Role).Valid() {
		fields["role"] = "role must be one of admin, provider, driver, commuter"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

type UpdateUserRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	Age         *int    `json:"age,omitempty"`
	Role        *string `json:"role,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	fields := map[string]string{}
	if r.FirstName != nil && *r.FirstName == "" {
		fields["firstName"] = "first name cannot be empty"
	}
	if r.LastName != nil && *r.LastName == "" {
		fields["lastName"] = "last name cannot be empty"
	}
	if r.PhoneNumber != nil && *r.PhoneNumber == "" {
		fields["phoneNumber"] = "phone number cannot be empty"
	}
	if r.Email != nil {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			fields["email"] = "email must be a valid address"
		}
	}
	if r.Password != nil && len(*r.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if r.Age != nil && *r.Age <= 5 {
		fields["age"] = "age must be greater than 5"
	}
	if r.Role != nil && !models.Role(*r.Role).Valid() {
		fields["role"] = "role must be one of admin, provider, driver, commuter"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
