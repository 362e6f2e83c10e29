package contentsearch

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
)

const (
	maxQueryLength = 100
	maxResults     = 20
	tmdbImageBase  = "https://image.tmdb.org/t/p/w342"
)

// Result is one catalogue entry that can become a list item.
type Result struct {
	ExternalID string          `json:"externalId"`
	Title      string          `json:"title"`
	Subtitle   string          `json:"subtitle"`
	Year       int             `json:"year,omitempty"`
	ImageURL   string          `json:"imageUrl"`
	Category   models.Category `json:"category"`
}

type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Service routes searches to the provider of each category.
type Service struct {
	providers map[models.Category]Provider
}

func NewService(movies, music, games Provider) *Service {
	return &Service{providers: map[models.Category]Provider{
		models.CategoryMovies: movies,
		models.CategoryMusic:  music,
		models.CategoryGames:  games,
	}}
}

func (s *Service) Search(ctx context.Context, category models.Category, query string) ([]Result, error) {
	provider, ok := s.providers[category]
	if !ok || provider == nil {
		return nil, apperr.InvalidArgument("unknown category %q", category)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.InvalidArgument("query is required")
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return nil, apperr.InvalidArgument("query must be at most %d characters", maxQueryLength)
	}

	results, err := provider.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

// yearOf reads the year of an ISO date such as "2010-07-15".
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

type TMDB struct{ client *Client }

func NewTMDB(client *Client) *TMDB { return &TMDB{client: client} }

func (p *TMDB) Search(ctx context.Context, query string) ([]Result, error) {
	var resp struct {
		Results []struct {
			ID            int64  `json:"id"`
			Title         string `json:"title"`
			OriginalTitle string `json:"original_title"`
			ReleaseDate   string `json:"release_date"`
			PosterPath    string `json:"poster_path"`
		} `json:"results"`
	}
	if err := p.client.GetJSON(ctx, "/search/movie", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Results))
	for _, m := range resp.Results {
		r := Result{
			ExternalID: strconv.FormatInt(m.ID, 10),
			Title:      m.Title,
			Year:       yearOf(m.ReleaseDate),
			Category:   models.CategoryMovies,
		}
		if m.OriginalTitle != m.Title {
			r.Subtitle = m.OriginalTitle
		}
		if m.PosterPath != "" {
			r.ImageURL = tmdbImageBase + m.PosterPath
		}
		results = append(results, r)
	}
	return results, nil
}

type Deezer struct{ client *Client }

func NewDeezer(client *Client) *Deezer { return &Deezer{client: client} }

func (p *Deezer) Search(ctx context.Context, query string) ([]Result, error) {
	var resp struct {
		Data []struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			CoverMedium string `json:"cover_medium"`
			Artist      struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"data"`
	}
	if err := p.client.GetJSON(ctx, "/search/album", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Data))
	for _, a := range resp.Data {
		results = append(results, Result{
			ExternalID: strconv.FormatInt(a.ID, 10),
			Title:      a.Title,
			Subtitle:   a.Artist.Name,
			ImageURL:   a.CoverMedium,
			Category:   models.CategoryMusic,
		})
	}
	return results, nil
}

type RAWG struct{ client *Client }

func NewRAWG(client *Client) *RAWG { return &RAWG{client: client} }

func (p *RAWG) Search(ctx context.Context, query string) ([]Result, error) {
	var resp struct {
		Results []struct {
			ID              int64  `json:"id"`
			Name            string `json:"name"`
			Released        string `json:"released"`
			BackgroundImage string `json:"background_image"`
			Genres          []struct {
				Name string `json:"name"`
			} `json:"genres"`
		} `json:"results"`
	}
	q := url.Values{"search": {query}, "page_size": {strconv.Itoa(maxResults)}}
	if err := p.client.GetJSON(ctx, "/games", q, &resp); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Results))
	for _, g := range resp.Results {
		genres := make([]string, 0, len(g.Genres))
		for _, genre := range g.Genres {
			genres = append(genres, genre.Name)
		}
		results = append(results, Result{
			ExternalID: strconv.FormatInt(g.ID, 10),
			Title:      g.Name,
			Subtitle:   strings.Join(genres, ", "),
			Year:       yearOf(g.Released),
			ImageURL:   g.BackgroundImage,
			Category:   models.CategoryGames,
		})
	}
	return results, nil
}
