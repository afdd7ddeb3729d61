package domain

// Page is a downloaded document handed to the content extractor.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
}

// Article is the readable content and metadata extracted from a URL.
type Article struct {
	Title       string
	Description string
	Image       string
	Content     string
	URL         string
}

// FallbackArticle is returned when a page cannot be fetched or parsed.
func FallbackArticle(url string) *Article {
	return &Article{Title: url, URL: url}
}
