package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

type Index struct {
	Symbol string
	Name   string
}

// Indices shown by the stock widget.
var Indices = []Index{
	{Symbol: "^KS11", Name: "KOSPI"},
	{Symbol: "^KQ11", Name: "KOSDAQ"},
	{Symbol: "^GSPC", Name: "S&P 500"},
	{Symbol: "^IXIC", Name: "NASDAQ"},
}

// Quote is one index. Value is "-" and Change 0 when the quote could not be
// fetched.
type Quote struct {
	Name   string  `json:"name"`
	Value  string  `json:"value"`
	Change float64 `json:"change"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// errNoQuotes marks a result in which every index failed. It keeps the
// placeholder result out of the cache.
var errNoQuotes = errors.New("no quote succeeded")

// Stocks fetches every index concurrently. A failed index never fails the
// others.
func (s *Service) Stocks(ctx context.Context) ([]Quote, error) {
	quotes, err := cached(s, "stocks", func() ([]Quote, error) {
		quotes := make([]Quote, len(Indices))
		var succeeded atomic.Int32
		g, gctx := errgroup.WithContext(ctx)
		for i, idx := range Indices {
			g.Go(func() error {
				price, change, err := s.fetchQuote(gctx, idx.Symbol)
				if err != nil {
					s.log.Warnf("Failed to fetch quote %s: %v", idx.Symbol, err)
					quotes[i] = Quote{Name: idx.Name, Value: "-", Change: 0}
					return nil
				}
				succeeded.Add(1)
				quotes[i] = Quote{Name: idx.Name, Value: formatPrice(price), Change: change}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if succeeded.Load() == 0 {
			return quotes, errNoQuotes
		}
		return quotes, nil
	})
	if errors.Is(err, errNoQuotes) {
		return quotes, nil
	}
	return quotes, err
}

func (s *Service) fetchQuote(ctx context.Context, symbol string) (price, change float64, err error) {
	u := s.opts.YahooChartURL + url.PathEscape(symbol) + "?range=1d&interval=1d"
	body, err := s.get(ctx, s.client, u)
	if err != nil {
		return 0, 0, err
	}
	defer body.Close()

	var resp chartResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return 0, 0, fmt.Errorf("%w: failed to decode chart: %v", ErrUpstream, err)
	}
	if len(resp.Chart.Result) == 0 {
		return 0, 0, fmt.Errorf("%w: chart has no result", ErrUpstream)
	}
	meta := resp.Chart.Result[0].Meta

	if meta.RegularMarketPrice != nil {
		price = *meta.RegularMarketPrice
	}
	prev := price
	switch {
	case meta.ChartPreviousClose != nil:
		prev = *meta.ChartPreviousClose
	case meta.PreviousClose != nil:
		prev = *meta.PreviousClose
	}
	if prev != 0 {
		change = round2((price - prev) / prev * 100)
	}
	return price, change, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatPrice renders v with two decimals and thousands separators.
func formatPrice(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
