package domain

import (
	"regexp"
	"strings"
	"time"
)

// Account types form a closed set; authorization checks go through
// these constants rather than free-form role strings.
const (
	AccountDriver  = "driver"
	AccountShipper = "shipper"
	AccountAdmin   = "admin"
)

var validAccountTypes = map[string]bool{
	AccountDriver:  true,
	AccountShipper: true,
	AccountAdmin:   true,
}

func IsValidAccountType(t string) bool {
	return validAccountTypes[t]
}

// User statuses
const (
	UserPending = "pending"
	UserActive  = "active"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AccountType  string    `json:"account_type"`
	Status       string    `json:"status"`
	CompanyName  string    `json:"company_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	AccountType string `json:"account_type"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    *UserInfo `json:"user"`
}

// UserInfo is the public projection of a User, without credential fields.
type UserInfo struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
	Status      string `json:"status"`
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		AccountType: u.AccountType,
		Status:      u.Status,
		CompanyName: u.CompanyName,
		Phone:       u.Phone,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.AccountType = strings.ToLower(strings.TrimSpace(r.AccountType))
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return NewValidationError("email", "is required")
	}
	if !emailRegex.MatchString(r.Email) {
		return NewValidationError("email", "invalid format")
	}
	if r.Password == "" {
		return NewValidationError("password", "is required")
	}
	if len(r.Password) < 8 {
		return NewValidationError("password", "must be at least 8 characters")
	}
	if r.AccountType != AccountDriver && r.AccountType != AccountShipper {
		return NewValidationError("account_type", "must be driver or shipper")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return NewValidationError("email", "is required")
	}
	if r.Password == "" {
		return NewValidationError("password", "is required")
	}
	return nil
}
