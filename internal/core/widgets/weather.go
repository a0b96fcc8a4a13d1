package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
)

type Weather struct {
	City        string `json:"city"`
	Temp        int    `json:"temp"`
	TempMin     int    `json:"tempMin"`
	TempMax     int    `json:"tempMax"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Weather returns current conditions for the configured city. Without an API
// key it returns ErrNotConfigured and makes no request.
func (s *Service) Weather(ctx context.Context) (Weather, error) {
	if s.opts.WeatherAPIKey == "" {
		return Weather{}, fmt.Errorf("%w: OPENWEATHER_API_KEY is not set", ErrNotConfigured)
	}
	city := s.opts.WeatherCity

	return cached(s, "weather:"+city, func() (Weather, error) {
		q := url.Values{}
		q.Set("q", city)
		q.Set("appid", s.opts.WeatherAPIKey)
		q.Set("units", "metric")
		q.Set("lang", "kr")

		body, err := s.get(ctx, s.client, s.opts.WeatherURL+"?"+q.Encode())
		if err != nil {
			return Weather{}, err
		}
		defer body.Close()

		var resp struct {
			Main struct {
				Temp    float64 `json:"temp"`
				TempMin float64 `json:"temp_min"`
				TempMax float64 `json:"temp_max"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
				Icon        string `json:"icon"`
			} `json:"weather"`
		}
		if err := json.NewDecoder(body).Decode(&resp); err != nil {
			return Weather{}, fmt.Errorf("%w: failed to decode weather: %v", ErrUpstream, err)
		}
		if len(resp.Weather) == 0 {
			return Weather{}, fmt.Errorf("%w: weather has no conditions", ErrUpstream)
		}

		return Weather{
			City:        city,
			Temp:        int(math.Round(resp.Main.Temp)),
			TempMin:     int(math.Round(resp.Main.TempMin)),
			TempMax:     int(math.Round(resp.Main.TempMax)),
			Description: resp.Weather[0].Description,
			Icon:        resp.Weather[0].Icon,
		}, nil
	})
}
