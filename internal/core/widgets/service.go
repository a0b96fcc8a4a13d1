package widgets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/seckatie/moohub/internal/core"
	"github.com/sirupsen/logrus"
)

// Default upstream locations.
const (
	DefaultYahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"
	DefaultExchangeURL   = "https://api.exchangerate-api.com/v4/latest/KRW"
	DefaultWeatherURL    = "https://api.openweathermap.org/data/2.5/weather"
	DefaultCalendarURL   = "https://www.googleapis.com/calendar/v3/calendars/primary/events"
)

// Options configures upstream locations and credentials. Zero values fall
// back to the public endpoints.
type Options struct {
	HTTPClient *http.Client

	NewsFeeds     map[string]string
	YahooChartURL string
	ExchangeURL   string
	WeatherURL    string
	CalendarURL   string

	WeatherAPIKey string
	WeatherCity   string

	CacheTTL time.Duration
}

// Service fetches widget data. Responses that are the same for every user are
// cached for CacheTTL.
type Service struct {
	client *http.Client
	opts   Options
	cache  *cache.Cache
	log    *logrus.Entry
}

func NewService(opts Options, log *logrus.Entry) *Service {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: core.DefaultUpstreamTimeout}
	}
	if opts.NewsFeeds == nil {
		opts.NewsFeeds = DefaultNewsFeeds
	}
	if opts.YahooChartURL == "" {
		opts.YahooChartURL = DefaultYahooChartURL
	}
	if opts.ExchangeURL == "" {
		opts.ExchangeURL = DefaultExchangeURL
	}
	if opts.WeatherURL == "" {
		opts.WeatherURL = DefaultWeatherURL
	}
	if opts.CalendarURL == "" {
		opts.CalendarURL = DefaultCalendarURL
	}
	if opts.WeatherCity == "" {
		opts.WeatherCity = "Seoul"
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = core.UpstreamCacheTTL
	}
	return &Service{
		client: opts.HTTPClient,
		opts:   opts,
		cache:  cache.New(opts.CacheTTL, core.UpstreamCacheCleanup),
		log:    log,
	}
}

// cached returns the value stored under key, or calls fetch and stores its
// result. Errors are never cached.
func cached[T any](s *Service, key string, fetch func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	s.cache.SetDefault(key, v)
	return v, nil
}

// get issues a GET with the shared user agent and returns the body of a 2xx
// response. The caller closes the body.
func (s *Service) get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", core.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, hostOf(url), resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

func hostOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
