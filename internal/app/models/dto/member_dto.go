package dto

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/filestorage"
)

// ProfileForm carries the editable profile fields as submitted
type ProfileForm struct {
	Name          string `form:"name" binding:"required,max=50"`
	Birth         string `form:"birth" binding:"required"` // yyyy-MM-dd
	Phone         string `form:"phone" binding:"required,max=20"`
	Telecom       string `form:"telecom" binding:"required"`
	Email         string `form:"email" binding:"omitempty,email"`
	Gender        string `form:"gender" binding:"required"`
	School        string `form:"school"`
	Grade         string `form:"grade"`
	Address       string `form:"address"`
	DetailAddress string `form:"detailAddress"`
}

// ToProfile parses the enum and date fields into a models.Profile
func (f ProfileForm) ToProfile() (models.Profile, error) {
	birth, err := models.ParseBirthDate("birth", f.Birth)
	if err != nil {
		return models.Profile{}, err
	}
	telecom, err := models.ParseTelecom("telecom", strings.TrimSpace(f.Telecom))
	if err != nil {
		return models.Profile{}, err
	}
	gender, err := models.ParseGender("gender", strings.TrimSpace(f.Gender))
	if err != nil {
		return models.Profile{}, err
	}

	return models.Profile{
		Name:          strings.TrimSpace(f.Name),
		Birth:         birth,
		Phone:         strings.TrimSpace(f.Phone),
		Telecom:       telecom,
		Email:         strings.TrimSpace(f.Email),
		Gender:        gender,
		School:        f.School,
		Grade:         f.Grade,
		Address:       f.Address,
		DetailAddress: f.DetailAddress,
	}, nil
}

// JoinRequest represents the multipart registration form
type JoinRequest struct {
	Username        string `form:"username" binding:"required,max=30"`
	Password        string `form:"password" binding:"required,min=4"`
	ConfirmPassword string `form:"confirmPassword" binding:"required"`
	ProfileForm
	Image *multipart.FileHeader `form:"image"`

	// Filled by the handler from the raw form
	Avatar     *filestorage.Upload    `form:"-"`
	TargetUnis []models.TargetUniSlot `form:"-"`
}

// UpdateMemberRequest represents the multipart profile edit form.
// An empty NewPassword keeps the current password.
type UpdateMemberRequest struct {
	NewPassword     string `form:"newPassword"`
	ConfirmPassword string `form:"confirmPassword"`
	ProfileForm
	NewImage *multipart.FileHeader `form:"newImage"`

	Avatar     *filestorage.Upload    `form:"-"`
	TargetUnis []models.TargetUniSlot `form:"-"`
}

// UpdateNoteRequest represents an admin note overwrite
type UpdateNoteRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

// TargetUniSlotsFromForm reads targetUnis[i].collegeName / targetUnis[i].rank pairs.
// Slots beyond the third are ignored and a missing rank is reported as 0.
func TargetUniSlotsFromForm(form map[string][]string) ([]models.TargetUniSlot, error) {
	first := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	slots := make([]models.TargetUniSlot, 0, models.TargetUniSlots)
	for i := 0; i < models.TargetUniSlots; i++ {
		slot := models.TargetUniSlot{
			Name: strings.TrimSpace(first(fmt.Sprintf("targetUnis[%d].collegeName", i))),
		}
		rankField := fmt.Sprintf("targetUnis[%d].rank", i)
		if raw := strings.TrimSpace(first(rankField)); raw != "" {
			rank, err := strconv.Atoi(raw)
			if err != nil {
				return nil, apperrors.NewFieldError(rankField, apperrors.ErrInvalidFieldValue,
					fmt.Sprintf("%q is not a number", raw))
			}
			slot.Rank = rank
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// TargetUniResponse is one ranked preference
type TargetUniResponse struct {
	ID          int64  `json:"id,omitempty"`
	CollegeName string `json:"collegeName"`
	Rank        int    `json:"rank"`
}

// MemberFormResponse is the profile edit form content of the current member
type MemberFormResponse struct {
	MemberID      string              `json:"memberId"`
	Name          string              `json:"name"`
	Birth         string              `json:"birth"`
	Phone         string              `json:"phone"`
	Telecom       string              `json:"telecom"`
	Email         string              `json:"email"`
	Gender        string              `json:"gender"`
	School        string              `json:"school"`
	Grade         string              `json:"grade"`
	Address       string              `json:"address"`
	DetailAddress string              `json:"detailAddress"`
	ImageURL      string              `json:"imageUrl"`
	TargetUnis    []TargetUniResponse `json:"targetUnis"`
}

// MemberResponse is the admin view of a member
type MemberResponse struct {
	ID         int64               `json:"id"`
	MemberID   string              `json:"memberId"`
	Name       string              `json:"name"`
	Birth      string              `json:"birth"`
	Phone      string              `json:"phone"`
	Telecom    string              `json:"telecom"`
	Email      string              `json:"email"`
	Gender     string              `json:"gender"`
	School     string              `json:"school"`
	Grade      string              `json:"grade"`
	Role       string              `json:"role"`
	Note       string              `json:"note"`
	ImageURL   string              `json:"imageUrl"`
	TargetUnis []TargetUniResponse `json:"targetUnis,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// MemberListResponse represents a page of members
type MemberListResponse struct {
	Members    []MemberResponse `json:"members"`
	Pagination PaginationInfo   `json:"pagination"`
}

// CheckIDResponse reports whether a login id can still be registered
type CheckIDResponse struct {
	MemberID  string `json:"memberId"`
	Available bool   `json:"available"`
}

// NewMemberFormResponse builds the edit form with exactly three rank slots
func NewMemberFormResponse(m *models.Member, imageURL string) MemberFormResponse {
	form := MemberFormResponse{
		MemberID:      m.MemberID,
		Name:          m.Name,
		Birth:         formatBirth(m.Birth),
		Phone:         m.Phone,
		Telecom:       string(m.Telecom),
		Email:         m.Email,
		Gender:        string(m.Gender),
		School:        m.School,
		Grade:         m.Grade,
		Address:       m.Address,
		DetailAddress: m.DetailAddress,
		ImageURL:      imageURL,
	}
	for _, t := range models.PadTargetUnis(m.TargetUnis) {
		form.TargetUnis = append(form.TargetUnis, TargetUniResponse{ID: t.ID, CollegeName: t.Name, Rank: t.Rank})
	}
	return form
}

// NewMemberResponse converts a member for admin listings
func NewMemberResponse(m *models.Member, imageURL string) MemberResponse {
	resp := MemberResponse{
		ID:        m.ID,
		MemberID:  m.MemberID,
		Name:      m.Name,
		Birth:     formatBirth(m.Birth),
		Phone:     m.Phone,
		Telecom:   string(m.Telecom),
		Email:     m.Email,
		Gender:    string(m.Gender),
		School:    m.School,
		Grade:     m.Grade,
		Role:      string(m.Role),
		Note:      m.Note,
		ImageURL:  imageURL,
		CreatedAt: m.CreatedAt,
	}
	for _, t := range m.TargetUnis {
		resp.TargetUnis = append(resp.TargetUnis, TargetUniResponse{ID: t.ID, CollegeName: t.Name, Rank: t.Rank})
	}
	return resp
}

func formatBirth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.BirthDateLayout)
}
