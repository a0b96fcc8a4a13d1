package localstore

import (
	"errors"
	"fmt"
)

var ErrUnknownGenre = errors.New("unknown genre")

type Genre struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// MusicGenres are the music widget's choices; the first is the default.
var MusicGenres = []Genre{
	{ID: "lofi", Label: "Lo-fi", Emoji: "☕"},
	{ID: "kpop", Label: "K-POP", Emoji: "🇰🇷"},
	{ID: "pop", Label: "Pop", Emoji: "🎤"},
	{ID: "classical", Label: "Classical", Emoji: "🎻"},
	{ID: "jazz", Label: "Jazz", Emoji: "🎷"},
	{ID: "chill", Label: "Chill", Emoji: "🌿"},
}

// YouTubeGenres are the video widget's choices; the first is the default.
var YouTubeGenres = []Genre{
	{ID: "lofi", Label: "Lo-fi", Emoji: "☕"},
	{ID: "kpop", Label: "K-POP", Emoji: "🇰🇷"},
	{ID: "pop", Label: "Pop", Emoji: "🎤"},
	{ID: "classical", Label: "Classical", Emoji: "🎻"},
	{ID: "jazz", Label: "Jazz", Emoji: "🎷"},
	{ID: "ambient", Label: "Ambient", Emoji: "🌿"},
}

func findGenre(genres []Genre, id string) (Genre, bool) {
	for _, g := range genres {
		if g.ID == id {
			return g, true
		}
	}
	return Genre{}, false
}

// selectedGenre returns the saved genre, falling back to the first entry
// when nothing or something unknown is saved.
func (s *Store) selectedGenre(key string, genres []Genre) Genre {
	var id string
	if ok, err := s.get(key, &id); err == nil && ok {
		if g, found := findGenre(genres, id); found {
			return g
		}
	}
	return genres[0]
}

func (s *Store) selectGenre(key string, genres []Genre, id string) error {
	if _, ok := findGenre(genres, id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGenre, id)
	}
	return s.put(key, id)
}

func (s *Store) MusicGenre() Genre {
	return s.selectedGenre(KeyMusicGenre, MusicGenres)
}

func (s *Store) SetMusicGenre(id string) error {
	return s.selectGenre(KeyMusicGenre, MusicGenres, id)
}

func (s *Store) YouTubeGenre() Genre {
	return s.selectedGenre(KeyYouTubeGenre, YouTubeGenres)
}

func (s *Store) SetYouTubeGenre(id string) error {
	return s.selectGenre(KeyYouTubeGenre, YouTubeGenres, id)
}
