package ports

import (
	"context"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// PageFetcher downloads a page for extraction.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.Page, error)
}

// ContentExtractor turns a downloaded page into an article.
type ContentExtractor interface {
	Extract(page *domain.Page) (*domain.Article, error)
}

// ParserService never fails: unreachable or unreadable pages come back as a
// fallback article titled with the URL.
type ParserService interface {
	ParseURL(ctx context.Context, rawURL string) *domain.Article
}
