package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// Elements that never hold article text.
var boilerplate = strings.Join([]string{
	"script", "style", "noscript", "template", "iframe", "svg", "canvas", "form",
	"nav", "header", "footer", "aside",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[aria-hidden=true]",
}, ", ")

// Candidate containers for the main content, most specific first.
var contentRoots = []string{"article", "main", "[role=main]", "#content", ".post-content", ".entry-content", "body"}

// Extractor pulls metadata and the main content block out of an HTML page.
type Extractor struct {
	sanitizer *Sanitizer
}

func NewExtractor(sanitizer *Sanitizer) *Extractor {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &Extractor{sanitizer: sanitizer}
}

func (e *Extractor) Extract(page *domain.Page) (*domain.Article, error) {
	if page == nil {
		return nil, fmt.Errorf("extract: %w: empty page", domain.ErrUnsupportedContent)
	}
	if !isHTML(page.ContentType) {
		return nil, fmt.Errorf("extract: %w: %s", domain.ErrUnsupportedContent, page.ContentType)
	}

	body, err := charset.NewReader(bytes.NewReader(page.Body), page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extract: charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	base, _ := url.Parse(page.URL)

	article := &domain.Article{
		URL: page.URL,
		Title: firstNonEmpty(
			metaContent(doc, "og:title"),
			metaContent(doc, "twitter:title"),
			doc.Find("head title").First().Text(),
			doc.Find("h1").First().Text(),
		),
		Description: firstNonEmpty(
			metaContent(doc, "og:description"),
			metaContent(doc, "twitter:description"),
			metaContent(doc, "description"),
		),
		Image: absolute(base, firstNonEmpty(
			metaContent(doc, "og:image"),
			metaContent(doc, "og:image:url"),
			metaContent(doc, "twitter:image"),
		)),
	}

	doc.Find(boilerplate).Remove()
	root := mainContent(doc)
	absolutizeLinks(root, base)

	raw, err := root.Html()
	if err != nil {
		return nil, fmt.Errorf("extract: render content: %w", err)
	}
	article.Content = strings.TrimSpace(e.sanitizer.Sanitize(raw))
	return article, nil
}

// metaContent looks a key up in both property= (Open Graph) and name= meta tags.
func metaContent(doc *goquery.Document, key string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)).First()
	return strings.TrimSpace(sel.AttrOr("content", ""))
}

// mainContent picks the first candidate container that has text in it.
func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentRoots {
		s := doc.Find(sel).First()
		if s.Length() > 0 && strings.TrimSpace(s.Text()) != "" {
			return s
		}
	}
	return doc.Find("body").First()
}

func absolutizeLinks(root *goquery.Selection, base *url.URL) {
	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("href", absolute(base, s.AttrOr("href", "")))
	})
	root.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("src", absolute(base, s.AttrOr("src", "")))
	})
}

func absolute(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
