package model

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var (
	ErrMissingRegistrationNumber = errors.New("student requires a registration number")
	ErrMissingHostelID           = errors.New("admin requires a hostel id")
	ErrMissingEmail              = errors.New("user requires an email")
	ErrMissingPasswordHash       = errors.New("user requires a password hash")
)

// User is either a student or an admin. Exactly one of Student and Admin is set,
// matching Role; use NewStudent or NewAdmin to build one.
type User struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty"`
	Role           string          `json:"role" bson:"role"`
	FirstName      string          `json:"firstName" bson:"first_name"`
	LastName       string          `json:"lastName" bson:"last_name"`
	Email          string          `json:"email" bson:"email"`
	PhoneNumber    string          `json:"phoneNumber" bson:"phone_number"`
	ProfilePicture string          `json:"profilePicture,omitempty" bson:"profile_picture,omitempty"`
	PasswordHash   string          `json:"-" bson:"password_hash"`
	Student        *StudentProfile `json:"student,omitempty" bson:"student,omitempty"`
	Admin          *AdminProfile   `json:"admin,omitempty" bson:"admin,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updated_at"`
}

type StudentProfile struct {
	RegistrationNumber string `json:"registrationNumber" bson:"registration_number"`
}

type AdminProfile struct {
	HostelID string `json:"hostelId" bson:"hostel_id"`
}

// Identity carries the fields shared by both user variants.
type Identity struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

func NewStudent(identity Identity, registrationNumber, passwordHash string) (*User, error) {
	registrationNumber = strings.TrimSpace(registrationNumber)
	if registrationNumber == "" {
		return nil, ErrMissingRegistrationNumber
	}
	u, err := newUser(RoleStudent, identity, passwordHash)
	if err != nil {
		return nil, err
	}
	u.Student = &StudentProfile{RegistrationNumber: registrationNumber}
	return u, nil
}

func NewAdmin(identity Identity, hostelID, passwordHash string) (*User, error) {
	hostelID = strings.TrimSpace(hostelID)
	if hostelID == "" {
		return nil, ErrMissingHostelID
	}
	u, err := newUser(RoleAdmin, identity, passwordHash)
	if err != nil {
		return nil, err
	}
	u.Admin = &AdminProfile{HostelID: hostelID}
	return u, nil
}

func newUser(role string, identity Identity, passwordHash string) (*User, error) {
	email := NormalizeEmail(identity.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if passwordHash == "" {
		return nil, ErrMissingPasswordHash
	}
	now := time.Now().UTC()
	return &User{
		Role:         role,
		FirstName:    strings.TrimSpace(identity.FirstName),
		LastName:     strings.TrimSpace(identity.LastName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(identity.PhoneNumber),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin && u.Admin != nil
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent && u.Student != nil
}

// HostelID returns the managed hostel for admins and "" for students.
func (u *User) HostelID() string {
	if u.Admin == nil {
		return ""
	}
	return u.Admin.HostelID
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type SignupRequest struct {
	FirstName          string `json:"firstName" validate:"required,min=1,max=50"`
	LastName           string `json:"lastName" validate:"required,min=1,max=50"`
	Email              string `json:"email" validate:"required,email,max=254"`
	PhoneNumber        string `json:"phoneNumber" validate:"required,min=7,max=20"`
	Password           string `json:"password" validate:"required,min=6,max=72"`
	Role               string `json:"role" validate:"required,oneof=student admin"`
	RegistrationNumber string `json:"registrationNumber" validate:"required_if=Role student,max=50"`
	HostelID           string `json:"hostelId" validate:"required_if=Role admin,omitempty,mongodb"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	FirstName      *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName       *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	PhoneNumber    *string `json:"phoneNumber,omitempty" validate:"omitempty,min=7,max=20"`
	ProfilePicture *string `json:"profilePicture,omitempty" validate:"omitempty,url,max=2048"`
	Password       *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
}

func (u *ProfileUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil &&
		u.ProfilePicture == nil && u.Password == nil
}

// AdminUserUpdate is what an administrator may change on another account.
type AdminUserUpdate struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName    *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,min=7,max=20"`
}

func (u *AdminUserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil
}
