package scryfall

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
	"github.com/deckmuse/deckmuse/pkg/utils/safe"
)

const (
	defaultBaseURL          = "https://api.scryfall.com"
	defaultDocsURL          = "https://scryfall.com/docs/syntax"
	defaultMaxCardsPerQuery = 100
)

// formatProbeCard is a card printed in every set family; its legalities map
// enumerates all formats the service knows about.
const formatProbeCard = "Island"

// client implements interfaces.CardSearcher against the Scryfall REST API
type client struct {
	httpClient       *http.Client
	baseURL          string
	docsURL          string
	maxCardsPerQuery int
	requestDelay     time.Duration

	formatsOnce sync.Once
	formats     []string

	syntaxOnce sync.Once
	syntaxRef  string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL overrides the API base URL (used in tests)
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithDocsURL overrides the syntax documentation URL
func WithDocsURL(docsURL string) Option {
	return func(c *client) {
		c.docsURL = docsURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithMaxCardsPerQuery caps how many cards one search query may return
func WithMaxCardsPerQuery(limit int) Option {
	return func(c *client) {
		if limit > 0 {
			c.maxCardsPerQuery = limit
		}
	}
}

// WithRequestDelay inserts a pause after each lookup request. The public API
// asks clients to keep request rates modest.
func WithRequestDelay(d time.Duration) Option {
	return func(c *client) {
		c.requestDelay = d
	}
}

// New creates a new Scryfall card search client
func New(opts ...Option) interfaces.CardSearcher {
	c := &client{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		baseURL:          defaultBaseURL,
		docsURL:          defaultDocsURL,
		maxCardsPerQuery: defaultMaxCardsPerQuery,
		requestDelay:     100 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *client) Lookup(ctx context.Context, name string) (string, error) {
	u := c.baseURL + "/cards/named?format=text&fuzzy=" + url.QueryEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build lookup request", goerr.V("name", name))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "card lookup request failed", goerr.V("name", name))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return "", goerr.Wrap(types.ErrCardNotFound, "no card matches name", goerr.V("name", name))
	}
	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected status from card lookup",
			goerr.V("name", name),
			goerr.V("status", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read lookup response", goerr.V("name", name))
	}

	if c.requestDelay > 0 {
		time.Sleep(c.requestDelay)
	}

	return string(body), nil
}

type searchResponse struct {
	Data     []cardData `json:"data"`
	HasMore  bool       `json:"has_more"`
	NextPage string     `json:"next_page"`
}

type cardData struct {
	Name       string `json:"name"`
	TypeLine   string `json:"type_line"`
	ManaCost   string `json:"mana_cost"`
	OracleText string `json:"oracle_text"`
	Set        string `json:"set"`
	URI        string `json:"scryfall_uri"`
}

func (d *cardData) toModel() model.Card {
	return model.Card{
		Name:     d.Name,
		TypeLine: d.TypeLine,
		ManaCost: d.ManaCost,
		Text:     d.OracleText,
		SetCode:  d.Set,
		URI:      d.URI,
	}
}

func (c *client) Search(ctx context.Context, query string) ([]model.Card, error) {
	var cards []model.Card
	next := c.baseURL + "/cards/search?q=" + url.QueryEscape(query)

	for next != "" && len(cards) < c.maxCardsPerQuery {
		page, err := c.searchPage(ctx, next, query)
		if err != nil {
			return nil, err
		}
		if page == nil {
			// No matches at all
			return []model.Card{}, nil
		}

		for _, d := range page.Data {
			cards = append(cards, d.toModel())
		}

		next = ""
		if page.HasMore {
			next = page.NextPage
		}
	}

	if len(cards) > c.maxCardsPerQuery {
		cards = cards[:c.maxCardsPerQuery]
	}

	logging.From(ctx).Debug("search query finished", "query", query, "cards", len(cards))
	return cards, nil
}

func (c *client) searchPage(ctx context.Context, pageURL, query string) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build search request", goerr.V("query", query))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "search request failed", goerr.V("query", query))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status from search",
			goerr.V("query", query),
			goerr.V("status", resp.StatusCode),
		)
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, goerr.Wrap(err, "failed to decode search response", goerr.V("query", query))
	}

	return &page, nil
}
