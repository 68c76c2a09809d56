package models

import (
	"time"
)

// Member defines the member model based on the 'members' table
type Member struct {
	ID            int64        `json:"id" db:"id"`                        // Internal identifier
	MemberID      string       `json:"memberId" db:"member_id"`           // Unique login id
	Password      string       `json:"-" db:"member_pw"`                  // Hashed password (excluded from JSON)
	Name          string       `json:"name" db:"member_name"`             // Display name
	Birth         time.Time    `json:"birth" db:"member_birth"`           // Birth date
	Phone         string       `json:"phone" db:"member_phone"`           // Phone number
	Telecom       Telecom      `json:"telecom" db:"member_telecom"`       // Mobile carrier
	Role          Role         `json:"role" db:"member_role"`             // Authority
	Email         string       `json:"email" db:"member_email"`           // Email address
	Gender        Gender       `json:"gender" db:"member_gender"`         // Gender
	School        string       `json:"school" db:"member_school"`         // School name
	Grade         string       `json:"grade" db:"member_grade"`           // School grade
	Address       string       `json:"address" db:"member_address"`       // Street address
	DetailAddress string       `json:"detailAddress" db:"member_detailadd"` // Remaining address
	Image         string       `json:"image" db:"member_image"`           // Stored avatar name or default sentinel
	Note          string       `json:"note" db:"member_note"`             // Admin note
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
	TargetUnis    []*TargetUni `json:"targetUnis,omitempty"` // Relation, no db tag
}

// Profile holds the member fields a member may overwrite on the update form
type Profile struct {
	Name          string
	Birth         time.Time
	Phone         string
	Telecom       Telecom
	Email         string
	Gender        Gender
	School        string
	Grade         string
	Address       string
	DetailAddress string
}

// Profile returns the member's editable fields
func (m Member) Profile() Profile {
	return Profile{
		Name:          m.Name,
		Birth:         m.Birth,
		Phone:         m.Phone,
		Telecom:       m.Telecom,
		Email:         m.Email,
		Gender:        m.Gender,
		School:        m.School,
		Grade:         m.Grade,
		Address:       m.Address,
		DetailAddress: m.DetailAddress,
	}
}

// WithProfile returns a copy with every profile field replaced
func (m Member) WithProfile(p Profile) Member {
	m.Name = p.Name
	m.Birth = p.Birth
	m.Phone = p.Phone
	m.Telecom = p.Telecom
	m.Email = p.Email
	m.Gender = p.Gender
	m.School = p.School
	m.Grade = p.Grade
	m.Address = p.Address
	m.DetailAddress = p.DetailAddress
	return m
}

// WithPassword returns a copy carrying a new password hash
func (m Member) WithPassword(hash string) Member {
	m.Password = hash
	return m
}

// WithImage returns a copy pointing at another avatar
func (m Member) WithImage(image string) Member {
	m.Image = image
	return m
}

// WithNote returns a copy with the admin note replaced
func (m Member) WithNote(note string) Member {
	m.Note = note
	return m
}

// IsAdmin reports whether the member has the admin role
func (m Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
