package services

import (
	"time"

	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/pkg/session"
)

func identityOf(m *models.Member, imageURL string) session.Identity {
	return session.Identity{
		MemberID:    m.MemberID,
		ID:          m.ID,
		Name:        m.Name,
		Role:        string(m.Role),
		ImageURL:    imageURL,
		RefreshedAt: time.Now(),
	}
}
