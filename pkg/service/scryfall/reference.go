package scryfall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/net/html"

	"github.com/deckmuse/deckmuse/pkg/utils/logging"
	"github.com/deckmuse/deckmuse/pkg/utils/safe"
)

// Formats returns the known format labels, fetched once from the legalities
// map of a canonical card. Failures are logged and yield an empty list; the
// next process restart retries.
func (c *client) Formats(ctx context.Context) []string {
	c.formatsOnce.Do(func() {
		formats, err := c.fetchFormats(ctx)
		if err != nil {
			logging.From(ctx).Error("failed to fetch format list", "error", err.Error())
			return
		}
		c.formats = formats
	})
	return c.formats
}

func (c *client) fetchFormats(ctx context.Context) ([]string, error) {
	u := c.baseURL + "/cards/named?exact=" + url.QueryEscape(formatProbeCard)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status from format probe", goerr.V("status", resp.StatusCode))
	}

	var card struct {
		Legalities map[string]string `json:"legalities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, err
	}

	formats := make([]string, 0, len(card.Legalities))
	for format := range card.Legalities {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats, nil
}

// SyntaxReference returns the search syntax documentation, fetched once from
// the docs page. Returns an empty string when the fetch or parse fails.
func (c *client) SyntaxReference(ctx context.Context) string {
	c.syntaxOnce.Do(func() {
		ref, err := c.fetchSyntaxReference(ctx)
		if err != nil {
			logging.From(ctx).Error("failed to fetch syntax reference", "error", err.Error())
			return
		}
		c.syntaxRef = ref
	})
	return c.syntaxRef
}

func (c *client) fetchSyntaxReference(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docsURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected status from syntax docs", goerr.V("status", resp.StatusCode))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", err
	}

	blocks := collectReferenceBlocks(doc)
	logging.From(ctx).Debug("downloaded syntax reference", "blocks", len(blocks))

	var sb strings.Builder
	sb.WriteString("<div>\n")
	sb.WriteString(strings.Join(blocks, "\n"))
	sb.WriteString("\n</div>")
	return sb.String(), nil
}

// collectReferenceBlocks walks the parsed document and extracts the text of
// every div with the "reference-block" class.
func collectReferenceBlocks(root *html.Node) []string {
	var blocks []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "reference-block") {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				blocks = append(blocks, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return blocks
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
