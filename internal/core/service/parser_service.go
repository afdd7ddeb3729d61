package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seckernel/kernel-api/internal/core/domain"
	"github.com/seckernel/kernel-api/internal/core/ports"
	"github.com/seckernel/kernel-api/internal/pkg/metrics"
)

type ParserService struct {
	fetcher   ports.PageFetcher
	extractor ports.ContentExtractor
	log       zerolog.Logger
}

func NewParserService(fetcher ports.PageFetcher, extractor ports.ContentExtractor, log zerolog.Logger) *ParserService {
	return &ParserService{fetcher: fetcher, extractor: extractor, log: log}
}

// ParseURL downloads rawURL and extracts its readable content. Any failure
// degrades to domain.FallbackArticle.
func (s *ParserService) ParseURL(ctx context.Context, rawURL string) *domain.Article {
	log := s.log.With().Str("url", rawURL).Logger()

	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Msg("fetch failed, returning fallback")
		metrics.ArticleParsesTotal.WithLabelValues("fetch_failed").Inc()
		return domain.FallbackArticle(rawURL)
	}

	article, err := s.extractor.Extract(page)
	if err != nil {
		log.Warn().Err(err).Msg("extraction failed, returning fallback")
		metrics.ArticleParsesTotal.WithLabelValues("extract_failed").Inc()
		return domain.FallbackArticle(rawURL)
	}

	article.URL = rawURL
	if strings.TrimSpace(article.Title) == "" {
		article.Title = rawURL
	}
	metrics.ArticleParsesTotal.WithLabelValues("ok").Inc()
	return article
}
