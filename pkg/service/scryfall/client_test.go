package scryfall_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/service/scryfall"
)

func TestLookup(t *testing.T) {
	t.Run("returns card text", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Path).Equal("/cards/named")
			gt.Value(t, r.URL.Query().Get("fuzzy")).Equal("Lightning Bolt")
			gt.Value(t, r.URL.Query().Get("format")).Equal("text")
			fmt.Fprint(w, "Lightning Bolt {R}\nInstant\nLightning Bolt deals 3 damage to any target.")
		}))
		defer ts.Close()

		client := scryfall.New(scryfall.WithBaseURL(ts.URL), scryfall.WithRequestDelay(0))
		desc, err := client.Lookup(context.Background(), "Lightning Bolt")
		gt.NoError(t, err).Required()
		gt.String(t, desc).Contains("deals 3 damage")
	})

	t.Run("404 maps to ErrCardNotFound", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer ts.Close()

		client := scryfall.New(scryfall.WithBaseURL(ts.URL), scryfall.WithRequestDelay(0))
		_, err := client.Lookup(context.Background(), "Nonexistent Card")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrCardNotFound)).True()
	})
}

func TestSearch(t *testing.T) {
	type card struct {
		Name string `json:"name"`
	}
	type page struct {
		Data     []card `json:"data"`
		HasMore  bool   `json:"has_more"`
		NextPage string `json:"next_page,omitempty"`
	}

	t.Run("follows pagination", func(t *testing.T) {
		var ts *httptest.Server
		ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cards/search":
				gt.Value(t, r.URL.Query().Get("q")).Equal("t:goblin")
				_ = json.NewEncoder(w).Encode(page{
					Data:     []card{{Name: "Goblin Guide"}, {Name: "Goblin Lackey"}},
					HasMore:  true,
					NextPage: ts.URL + "/cards/search/page2",
				})
			case "/cards/search/page2":
				_ = json.NewEncoder(w).Encode(page{
					Data: []card{{Name: "Goblin Matron"}},
				})
			default:
				http.NotFound(w, r)
			}
		}))
		defer ts.Close()

		client := scryfall.New(scryfall.WithBaseURL(ts.URL))
		cards, err := client.Search(context.Background(), "t:goblin")
		gt.NoError(t, err).Required()
		gt.Array(t, cards).Length(3)
		gt.Value(t, cards[2].Name).Equal("Goblin Matron")
	})

	t.Run("stops at per-query cap", func(t *testing.T) {
		var ts *httptest.Server
		pageNum := 0
		ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pageNum++
			var cards []card
			for i := 0; i < 10; i++ {
				cards = append(cards, card{Name: "Card " + strconv.Itoa(pageNum) + "-" + strconv.Itoa(i)})
			}
			_ = json.NewEncoder(w).Encode(page{
				Data:     cards,
				HasMore:  true,
				NextPage: ts.URL + "/cards/search?page=" + strconv.Itoa(pageNum+1),
			})
		}))
		defer ts.Close()

		client := scryfall.New(scryfall.WithBaseURL(ts.URL), scryfall.WithMaxCardsPerQuery(25))
		cards, err := client.Search(context.Background(), "c:red")
		gt.NoError(t, err).Required()
		gt.Array(t, cards).Length(25)
		gt.Number(t, pageNum).Equal(3)
	})

	t.Run("no matches returns empty slice", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer ts.Close()

		client := scryfall.New(scryfall.WithBaseURL(ts.URL))
		cards, err := client.Search(context.Background(), "name:nothing-matches-this")
		gt.NoError(t, err).Required()
		gt.Array(t, cards).Length(0)
	})
}

func TestFormats(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gt.Value(t, r.URL.Query().Get("exact")).Equal("Island")
		fmt.Fprint(w, `{"legalities":{"modern":"legal","legacy":"legal","brawl":"legal"}}`)
	}))
	defer ts.Close()

	client := scryfall.New(scryfall.WithBaseURL(ts.URL))
	ctx := context.Background()

	formats := client.Formats(ctx)
	gt.Array(t, formats).Length(3)
	gt.Value(t, formats[0]).Equal("brawl")

	// Memoized: second call issues no request
	_ = client.Formats(ctx)
	gt.Number(t, calls).Equal(1)
}

func TestSyntaxReference(t *testing.T) {
	const docsPage = `<html><body>
	<div class="reference-block"><code>c:</code> color</div>
	<div class="other">ignore me</div>
	<div class="reference-block"><code>t:</code> type line</div>
	</body></html>`

	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, docsPage)
	}))
	defer ts.Close()

	client := scryfall.New(scryfall.WithDocsURL(ts.URL))
	ctx := context.Background()

	ref := client.SyntaxReference(ctx)
	gt.String(t, ref).Contains("c: color")
	gt.String(t, ref).Contains("t: type line")
	gt.Bool(t, strings.Contains(ref, "ignore me")).False()

	_ = client.SyntaxReference(ctx)
	gt.Number(t, calls).Equal(1)
}
