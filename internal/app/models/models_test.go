package models

import (
	"errors"
	"testing"
	"time"

	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTelecom(t *testing.T) {
	got, err := ParseTelecom("telecom", "KT_MVNO")
	require.NoError(t, err)
	assert.Equal(t, TelecomKTMVNO, got)

	_, err = ParseTelecom("telecom", "kt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidFieldValue))
	field, ok := apperrors.FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "telecom", field)
}

func TestParseGenderAndRole(t *testing.T) {
	g, err := ParseGender("gender", "FEMALE")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, g)

	_, err = ParseGender("gender", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidFieldValue))

	r, err := ParseRole("role", "ROLE_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("role", "ROLE_ROOT")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidFieldValue))
}

func TestParseBirthDate(t *testing.T) {
	birth, err := ParseBirthDate("birth", " 2007-03-14 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2007, time.March, 14, 0, 0, 0, 0, time.UTC), birth)

	_, err = ParseBirthDate("birth", "14/03/2007")
	require.Error(t, err)
	field, _ := apperrors.FieldOf(err)
	assert.Equal(t, "birth", field)
}

func TestMember_CopiesDoNotMutateOriginal(t *testing.T) {
	original := Member{ID: 7, MemberID: "kim", Name: "Kim", Password: "old", Image: "a.png", Role: RoleUser}

	updated := original.
		WithProfile(Profile{Name: "Lee", Telecom: TelecomSKT, Gender: GenderMale}).
		WithPassword("new").
		WithImage("b.png").
		WithNote("call back")

	assert.Equal(t, "Kim", original.Name)
	assert.Equal(t, "old", original.Password)
	assert.Equal(t, "a.png", original.Image)
	assert.Empty(t, original.Note)

	assert.Equal(t, int64(7), updated.ID)
	assert.Equal(t, "kim", updated.MemberID)
	assert.Equal(t, "Lee", updated.Name)
	assert.Equal(t, "new", updated.Password)
	assert.Equal(t, "b.png", updated.Image)
	assert.Equal(t, "call back", updated.Note)
	assert.Equal(t, updated.Profile().Telecom, TelecomSKT)
	assert.False(t, updated.IsAdmin())
}

func TestNormalizeTargetUniSlots(t *testing.T) {
	t.Run("pads and defaults ranks", func(t *testing.T) {
		slots, err := NormalizeTargetUniSlots([]TargetUniSlot{{Name: " Seoul "}})
		require.NoError(t, err)
		assert.Equal(t, []TargetUniSlot{{Name: "Seoul", Rank: 1}, {Rank: 2}, {Rank: 3}}, slots)
	})

	t.Run("truncates extra slots", func(t *testing.T) {
		slots, err := NormalizeTargetUniSlots([]TargetUniSlot{
			{Name: "a", Rank: 1}, {Name: "b", Rank: 2}, {Name: "c", Rank: 3}, {Name: "d", Rank: 3},
		})
		require.NoError(t, err)
		assert.Len(t, slots, TargetUniSlots)
		assert.Equal(t, "c", slots[2].Name)
	})

	t.Run("rejects out of range rank", func(t *testing.T) {
		_, err := NormalizeTargetUniSlots([]TargetUniSlot{{Name: "a"}, {Name: "b", Rank: 4}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidFieldValue))
		field, _ := apperrors.FieldOf(err)
		assert.Equal(t, "targetUnis[1].rank", field)
	})
}

func TestPlanTargetUnis_RenamesOnlyMatchingRank(t *testing.T) {
	existing := []*TargetUni{
		{ID: 1, MemberID: 9, Name: "Seoul", Rank: 1},
		{ID: 2, MemberID: 9, Name: "Yonsei", Rank: 2},
		{ID: 3, MemberID: 9, Name: "Korea", Rank: 3},
	}
	slots := []TargetUniSlot{{Rank: 1}, {Name: "KAIST", Rank: 2}, {Rank: 3}}

	plan := PlanTargetUnis(9, existing, slots)

	require.Len(t, plan.Renamed, 1)
	assert.Empty(t, plan.Created)
	assert.Equal(t, int64(2), plan.Renamed[0].ID)
	assert.Equal(t, "KAIST", plan.Renamed[0].Name)
	assert.Equal(t, "Yonsei", existing[1].Name, "existing rows are not mutated")
}

func TestPlanTargetUnis_CreatesMissingRanks(t *testing.T) {
	existing := []*TargetUni{{ID: 1, MemberID: 9, Name: "Seoul", Rank: 1}}
	slots := []TargetUniSlot{{Name: "Seoul", Rank: 1}, {Rank: 2}, {Name: "POSTECH", Rank: 3}}

	plan := PlanTargetUnis(9, existing, slots)

	assert.Empty(t, plan.Renamed, "unchanged names are not rewritten")
	require.Len(t, plan.Created, 1)
	assert.Equal(t, TargetUni{MemberID: 9, Name: "POSTECH", Rank: 3}, *plan.Created[0])
}

func TestPlanTargetUnis_DuplicateRanksCollapse(t *testing.T) {
	slots := []TargetUniSlot{{Name: "first", Rank: 2}, {Name: "second", Rank: 2}, {Rank: 3}}

	plan := PlanTargetUnis(4, nil, slots)

	require.Len(t, plan.Created, 1)
	assert.Equal(t, "second", plan.Created[0].Name)
	assert.Equal(t, 2, plan.Created[0].Rank)
}

func TestPlanTargetUnis_EmptyInputIsNoop(t *testing.T) {
	existing := []*TargetUni{{ID: 1, Name: "Seoul", Rank: 1}}
	slots, err := NormalizeTargetUniSlots(nil)
	require.NoError(t, err)

	assert.True(t, PlanTargetUnis(1, existing, slots).IsEmpty())
}

func TestPadTargetUnis(t *testing.T) {
	padded := PadTargetUnis([]*TargetUni{{ID: 5, Name: "Korea", Rank: 3}})

	require.Len(t, padded, 3)
	assert.Equal(t, TargetUni{Rank: 1}, padded[0])
	assert.Equal(t, TargetUni{Rank: 2}, padded[1])
	assert.Equal(t, "Korea", padded[2].Name)
}
