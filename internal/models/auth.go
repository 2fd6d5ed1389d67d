package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the JWT claims carried by a session token. Role and
// department are all the access policy needs per call.
type SessionClaims struct {
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// UserInfo is the public view of a user returned after login.
type UserInfo struct {
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       Role   `json:"role"`
	EmployeeID string `json:"employeeId"`
}

// LoginResponse carries the issued session token and user details.
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"`
	User      UserInfo `json:"user"`
}
