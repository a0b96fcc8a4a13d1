// Package widgets describes the dashboard panels and fetches the third-party
// data behind them.
package widgets

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind     = errors.New("unknown widget kind")
	ErrUnknownCategory = errors.New("unknown news category")
	ErrUpstream        = errors.New("upstream failure")
	// ErrNotConfigured means the widget needs a credential the server lacks.
	ErrNotConfigured = errors.New("widget not configured")
)

// Kind identifies a dashboard widget.
type Kind string

const (
	KindClock    Kind = "clock"
	KindWeather  Kind = "weather"
	KindCalendar Kind = "calendar"
	KindExchange Kind = "exchange"
	KindStock    Kind = "stock"
	KindMemo     Kind = "memo"
	KindNews     Kind = "news"
	KindTodo     Kind = "todo"
	KindMusic    Kind = "music"
	KindYoutube  Kind = "youtube"
)

// Descriptor is the registry entry for one widget kind. Endpoint is set for
// widgets whose data comes from this server.
type Descriptor struct {
	Kind           Kind   `json:"id"`
	Label          string `json:"label"`
	Icon           string `json:"icon"`
	DefaultVisible bool   `json:"visible"`
	Endpoint       string `json:"endpoint,omitempty"`
}

var registry = []Descriptor{
	{Kind: KindClock, Label: "Clock / D-Day", Icon: "🕐", DefaultVisible: true},
	{Kind: KindWeather, Label: "Weather", Icon: "🌤️", DefaultVisible: true, Endpoint: "/api/weather"},
	{Kind: KindCalendar, Label: "Calendar", Icon: "📅", DefaultVisible: true, Endpoint: "/api/calendar"},
	{Kind: KindExchange, Label: "Exchange rates", Icon: "💱", DefaultVisible: true, Endpoint: "/api/exchange"},
	{Kind: KindStock, Label: "Stocks", Icon: "📈", DefaultVisible: true, Endpoint: "/api/stocks"},
	{Kind: KindMemo, Label: "Quick memo", Icon: "📝", DefaultVisible: true, Endpoint: "/api/memo"},
	{Kind: KindNews, Label: "News", Icon: "📰", DefaultVisible: true, Endpoint: "/api/rss"},
	{Kind: KindTodo, Label: "To-do", Icon: "✅", DefaultVisible: false},
	{Kind: KindMusic, Label: "Music", Icon: "🎵", DefaultVisible: false},
	{Kind: KindYoutube, Label: "YouTube", Icon: "▶️", DefaultVisible: false},
}

// All returns the registry in default dashboard order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id string) (Descriptor, error) {
	for _, d := range registry {
		if string(d.Kind) == id {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownKind, id)
}
