package widgets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/seckatie/moohub/internal/core"
)

// DefaultNewsFeeds maps news categories to Google News RSS feeds.
var DefaultNewsFeeds = map[string]string{
	"tech":    "https://news.google.com/rss/topics/CAAqIQgKIhtDQkFTRGdvSUwyMHZNRGRqTVhZU0FtdHZLQUFQAQ?hl=ko&gl=KR&ceid=KR:ko",
	"economy": "https://news.google.com/rss/topics/CAAqJggKIiBDQkFTRWdvSUwyMHZNRGx6TVdZU0FtdHZHZ0pMVWlnQVAB?hl=ko&gl=KR&ceid=KR:ko",
	"general": "https://news.google.com/rss?hl=ko&gl=KR&ceid=KR:ko",
}

// DefaultNewsCategory is used when the request names none.
const DefaultNewsCategory = "tech"

type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	Summary     string     `json:"summary,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Google News appends " - Publisher" to every headline.
var sourceSuffix = regexp.MustCompile(`(?:^|\s+)-\s+([^-]+)$`)

// News returns at most core.MaxNewsItems headlines for category.
func (s *Service) News(ctx context.Context, category string) ([]NewsItem, error) {
	if category == "" {
		category = DefaultNewsCategory
	}
	feedURL, ok := s.opts.NewsFeeds[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	return cached(s, "news:"+category, func() ([]NewsItem, error) {
		body, err := s.get(ctx, s.client, feedURL)
		if err != nil {
			return nil, err
		}
		defer body.Close()

		feed, err := gofeed.NewParser().Parse(body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse feed: %v", ErrUpstream, err)
		}
		return newsItems(feed), nil
	})
}

func newsItems(feed *gofeed.Feed) []NewsItem {
	out := []NewsItem{}
	for _, item := range feed.Items {
		if len(out) >= core.MaxNewsItems {
			break
		}
		title, source := splitHeadline(item.Title)
		if title == "" {
			continue
		}
		if source == "" {
			source = feed.Title
		}
		out = append(out, NewsItem{
			Title:       title,
			Link:        strings.TrimSpace(item.Link),
			Source:      source,
			Summary:     flattenHTML(item.Description),
			PublishedAt: item.PublishedParsed,
		})
	}
	return out
}

// splitHeadline separates "Headline - Publisher" into its two parts.
func splitHeadline(raw string) (title, source string) {
	title = strings.TrimSpace(raw)
	if m := sourceSuffix.FindStringSubmatchIndex(title); m != nil {
		source = strings.TrimSpace(title[m[2]:m[3]])
		title = strings.TrimSpace(title[:m[0]])
	}
	return title, source
}

// flattenHTML reduces an HTML fragment to its visible text.
func flattenHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
