package widgets

import (
	"context"
	"encoding/json"
	"fmt"
)

type Currency struct {
	Code string
	Flag string
}

// Currencies shown by the exchange widget, quoted in KRW.
var Currencies = []Currency{
	{Code: "USD", Flag: "🇺🇸"},
	{Code: "JPY", Flag: "🇯🇵"},
	{Code: "EUR", Flag: "🇪🇺"},
}

// Rate is the KRW price of one unit of Currency. Change is always 0; the
// upstream has no history.
type Rate struct {
	Currency string  `json:"currency"`
	Label    string  `json:"label"`
	Flag     string  `json:"flag"`
	Rate     float64 `json:"rate"`
	Change   float64 `json:"change"`
}

// Exchange fetches KRW based rates and inverts them.
func (s *Service) Exchange(ctx context.Context) ([]Rate, error) {
	return cached(s, "exchange", func() ([]Rate, error) {
		body, err := s.get(ctx, s.client, s.opts.ExchangeURL)
		if err != nil {
			return nil, err
		}
		defer body.Close()

		var resp struct {
			Rates map[string]float64 `json:"rates"`
		}
		if err := json.NewDecoder(body).Decode(&resp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode rates: %v", ErrUpstream, err)
		}
		if len(resp.Rates) == 0 {
			return nil, fmt.Errorf("%w: no rates", ErrUpstream)
		}

		out := make([]Rate, 0, len(Currencies))
		for _, c := range Currencies {
			r := Rate{Currency: c.Code, Label: c.Code, Flag: c.Flag}
			if v := resp.Rates[c.Code]; v != 0 {
				r.Rate = round2(1 / v)
			}
			out = append(out, r)
		}
		return out, nil
	})
}
