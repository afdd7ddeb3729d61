package handler

import "github.com/seckernel/kernel-api/internal/core/domain"

// --- Domain → Response ---

func toArticleResponse(a *domain.Article) articleResponse {
	return articleResponse{
		Title:       a.Title,
		Description: optional(a.Description),
		Image:       optional(a.Image),
		Content:     a.Content,
		URL:         a.URL,
	}
}

func toProfileResponse(p *domain.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		AvatarURL: optional(p.AvatarURL),
		Plan:      p.Plan,
	}
}

// optional renders empty strings as JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
