package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/learnway/member/internal/pkg/apperrors"
)

// BirthDateLayout is the yyyy-MM-dd format used by forms and responses
const BirthDateLayout = "2006-01-02"

// Role defines the member authority
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Telecom is the member's mobile carrier
type Telecom string

const (
	TelecomSKT     Telecom = "SKT"
	TelecomKT      Telecom = "KT"
	TelecomLGU     Telecom = "LGU"
	TelecomSKTMVNO Telecom = "SKT_MVNO"
	TelecomKTMVNO  Telecom = "KT_MVNO"
	TelecomLGUMVNO Telecom = "LGU_MVNO"
)

var telecoms = []Telecom{TelecomSKT, TelecomKT, TelecomLGU, TelecomSKTMVNO, TelecomKTMVNO, TelecomLGUMVNO}

// Gender of a member
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

var genders = []Gender{GenderMale, GenderFemale}

var roles = []Role{RoleUser, RoleAdmin}

// ParseTelecom converts form input into a Telecom
func ParseTelecom(field, value string) (Telecom, error) {
	for _, t := range telecoms {
		if string(t) == value {
			return t, nil
		}
	}
	return "", invalidEnum(field, value, telecoms)
}

// ParseGender converts form input into a Gender
func ParseGender(field, value string) (Gender, error) {
	for _, g := range genders {
		if string(g) == value {
			return g, nil
		}
	}
	return "", invalidEnum(field, value, genders)
}

// ParseRole converts stored or form input into a Role
func ParseRole(field, value string) (Role, error) {
	for _, r := range roles {
		if string(r) == value {
			return r, nil
		}
	}
	return "", invalidEnum(field, value, roles)
}

// ParseBirthDate parses a yyyy-MM-dd date
func ParseBirthDate(field, value string) (time.Time, error) {
	birth, err := time.Parse(BirthDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperrors.NewFieldError(field, apperrors.ErrInvalidFieldValue,
			fmt.Sprintf("%q is not a yyyy-MM-dd date", value))
	}
	return birth, nil
}

func invalidEnum[T ~string](field, value string, allowed []T) error {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return apperrors.NewFieldError(field, apperrors.ErrInvalidFieldValue,
		fmt.Sprintf("%q must be one of %s", value, strings.Join(names, ", ")))
}
