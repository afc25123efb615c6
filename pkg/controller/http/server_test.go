package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	server "github.com/deckmuse/deckmuse/pkg/controller/http"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/repository/memory"
	"github.com/deckmuse/deckmuse/pkg/usecase"
)

type stubSearcher struct {
	formats []string
}

func (s *stubSearcher) Lookup(ctx context.Context, name string) (string, error) {
	return name + " description", nil
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]model.Card, error) {
	return nil, nil
}

func (s *stubSearcher) Formats(ctx context.Context) []string { return s.formats }

func (s *stubSearcher) SyntaxReference(ctx context.Context) string { return "" }

type stubGenerator struct {
	advice string
	err    error
}

func (g *stubGenerator) Generate(ctx context.Context, tier types.ModelTier, system, user string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case strings.Contains(system, "extracts card names"):
		return "Lightning Bolt", nil
	case strings.Contains(system, "generate Scryfall search queries"):
		return "<strategy>burn</strategy>\n<queries>\n<query>c:r</query>\n</queries>", nil
	case strings.Contains(system, "rate the card's potential usefulness"):
		return "80", nil
	default:
		return g.advice, nil
	}
}

func newTestServer(gen *stubGenerator, formats []string) *server.Server {
	searcher := &stubSearcher{formats: formats}
	uc := usecase.New(memory.New(), searcher, gen)
	return server.New(uc, searcher)
}

func postDecklist(t *testing.T, srv *server.Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/advice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func pollStatus(t *testing.T, srv *server.Server, jobPath string) map[string]any {
	t.Helper()

	apiPath := "/api" + jobPath
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, apiPath, nil))
		gt.Number(t, w.Code).Equal(http.StatusOK)

		var body map[string]any
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		if body["status"] != string(model.JobStatusRunning) {
			return body
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(&stubGenerator{}, []string{"modern", "legacy"})

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`<option value="modern">`)
	gt.String(t, w.Body.String()).Contains(`<option value="legacy">`)
	gt.String(t, w.Body.String()).Contains(`action="/advice"`)
}

func TestSubmitAndPoll(t *testing.T) {
	srv := newTestServer(&stubGenerator{advice: "## Advice\nAdd *more* burn."}, nil)

	w := postDecklist(t, srv, url.Values{"decklist": {"4 Lightning Bolt"}})
	gt.Number(t, w.Code).Equal(http.StatusSeeOther)

	jobPath := w.Header().Get("Location")
	gt.String(t, jobPath).Contains("/advice/")

	// The job page renders the polling shell
	pageRec := httptest.NewRecorder()
	srv.ServeHTTP(pageRec, httptest.NewRequest(http.MethodGet, jobPath, nil))
	gt.Number(t, pageRec.Code).Equal(http.StatusOK)
	gt.String(t, pageRec.Body.String()).Contains("Analyzing your deck")

	body := pollStatus(t, srv, jobPath)
	gt.Value(t, body["status"]).Equal(string(model.JobStatusCompleted))

	// Markdown advice is rendered to HTML
	html, ok := body["advice_html"].(string)
	gt.Bool(t, ok).True()
	gt.String(t, html).Contains("<h2")
	gt.String(t, html).Contains("<em>more</em>")
}

func TestSubmitEmptyDecklist(t *testing.T) {
	srv := newTestServer(&stubGenerator{}, nil)

	w := postDecklist(t, srv, url.Values{"decklist": {""}})
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
}

func TestFailedJobReportsError(t *testing.T) {
	srv := newTestServer(&stubGenerator{err: context.DeadlineExceeded}, nil)

	w := postDecklist(t, srv, url.Values{"decklist": {"4 Lightning Bolt"}})
	gt.Number(t, w.Code).Equal(http.StatusSeeOther)

	body := pollStatus(t, srv, w.Header().Get("Location"))
	gt.Value(t, body["status"]).Equal(string(model.JobStatusFailed))

	msg, ok := body["error"].(string)
	gt.Bool(t, ok).True()
	gt.String(t, msg).Contains("deadline")
}

func TestUnknownJob(t *testing.T) {
	srv := newTestServer(&stubGenerator{}, nil)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/advice/"+model.NewJobID().String(), nil))
	gt.Number(t, w.Code).Equal(http.StatusNotFound)
}
