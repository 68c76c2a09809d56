package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/learnway/member/internal/pkg/apperrors"
)

const (
	// TargetUniSlots is the number of ranked preferences a member can hold
	TargetUniSlots = 3
	MinTargetRank  = 1
	MaxTargetRank  = TargetUniSlots
)

// TargetUni defines a ranked university preference based on the 'target_unis' table
type TargetUni struct {
	ID       int64  `json:"id" db:"id"`
	MemberID int64  `json:"-" db:"member_id"` // members.id of the owner
	Name     string `json:"collegeName" db:"uni_name"`
	Rank     int    `json:"rank" db:"uni_rank"`
}

// Renamed returns a copy with another institution name
func (t TargetUni) Renamed(name string) TargetUni {
	t.Name = name
	return t
}

// TargetUniSlot is one ranked entry as submitted on a form
type TargetUniSlot struct {
	Name string
	Rank int
}

// TargetUniPlan lists the writes needed to bring a member's rows in line with a form
type TargetUniPlan struct {
	Renamed []*TargetUni // existing rows whose name changes
	Created []*TargetUni // new rows, ID unset
}

// IsEmpty reports whether the plan writes nothing
func (p TargetUniPlan) IsEmpty() bool {
	return len(p.Renamed) == 0 && len(p.Created) == 0
}

// NormalizeTargetUniSlots pads or truncates slots to TargetUniSlots entries.
// A zero rank takes the slot position; other ranks must be within 1..3.
func NormalizeTargetUniSlots(slots []TargetUniSlot) ([]TargetUniSlot, error) {
	out := make([]TargetUniSlot, TargetUniSlots)
	for i := range out {
		out[i] = TargetUniSlot{Rank: i + 1}
		if i >= len(slots) {
			continue
		}
		slot := slots[i]
		slot.Name = strings.TrimSpace(slot.Name)
		if slot.Rank == 0 {
			slot.Rank = i + 1
		}
		if slot.Rank < MinTargetRank || slot.Rank > MaxTargetRank {
			return nil, apperrors.NewFieldError(fmt.Sprintf("targetUnis[%d].rank", i), apperrors.ErrInvalidFieldValue,
				fmt.Sprintf("rank %d must be between %d and %d", slot.Rank, MinTargetRank, MaxTargetRank))
		}
		out[i] = slot
	}
	return out, nil
}

// PlanTargetUnis matches slots against existing rows by rank, never by name.
// Slots with an empty name leave the row for that rank untouched. When two slots
// carry the same rank the later one wins, so a rank never gets two rows.
func PlanTargetUnis(memberPK int64, existing []*TargetUni, slots []TargetUniSlot) TargetUniPlan {
	byRank := make(map[int]*TargetUni, len(existing))
	for _, t := range existing {
		byRank[t.Rank] = t
	}

	renamed := make(map[int]*TargetUni)
	created := make(map[int]*TargetUni)
	for _, slot := range slots {
		if slot.Name == "" {
			continue
		}
		if current, ok := byRank[slot.Rank]; ok {
			if current.Name == slot.Name {
				delete(renamed, slot.Rank)
				continue
			}
			next := current.Renamed(slot.Name)
			renamed[slot.Rank] = &next
			continue
		}
		created[slot.Rank] = &TargetUni{MemberID: memberPK, Name: slot.Name, Rank: slot.Rank}
	}

	return TargetUniPlan{
		Renamed: sortedByRank(renamed),
		Created: sortedByRank(created),
	}
}

// PadTargetUnis returns exactly TargetUniSlots entries ordered by rank,
// filling missing ranks with empty entries.
func PadTargetUnis(unis []*TargetUni) []TargetUni {
	out := make([]TargetUni, TargetUniSlots)
	for i := range out {
		out[i] = TargetUni{Rank: i + 1}
	}
	for _, t := range unis {
		if t.Rank >= MinTargetRank && t.Rank <= MaxTargetRank {
			out[t.Rank-1] = *t
		}
	}
	return out
}

func sortedByRank(m map[int]*TargetUni) []*TargetUni {
	out := make([]*TargetUni, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
