// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/pubmed-engine/internal/httputil"
	"github.com/pdiddy/pubmed-engine/internal/medline"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// entrezBase is the NCBI E-utilities endpoint root. Declared as a var so
// tests can substitute an httptest server.
var entrezBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// toolName identifies this client to NCBI in the tool parameter.
const toolName = "pubmed-engine"

const defaultBatchSize = 1000

// EntrezProvider retrieves PubMed articles through the E-utilities HTTP
// API. It pages through results in fixed-size EFetch batches using the
// Entrez history server, and refuses searches whose match count exceeds
// EntrezMaxResults.
type EntrezProvider struct {
	Client *http.Client
	Config types.EntrezConfig

	// Progress receives per-page progress lines when Config.Verbose is
	// set. Nil means no reporting.
	Progress io.Writer
}

// Name returns the provider identifier.
func (p *EntrezProvider) Name() string { return "entrez" }

// Search runs an ESearch for query, then pages through EFetch until all
// matching records are accumulated. A match count above EntrezMaxResults
// fails with *ResultLimitError and no partial table.
func (p *EntrezProvider) Search(ctx context.Context, query string) (*types.ArticleTable, error) {
	if query == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	w := io.Discard
	if p.Config.Verbose && p.Progress != nil {
		w = p.Progress
	}

	hist, count, err := p.esearch(ctx, query)
	if err != nil {
		return nil, err
	}
	if count > EntrezMaxResults {
		return nil, &ResultLimitError{Count: count}
	}

	batch := p.Config.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	table := &types.ArticleTable{}
	for start := 0; start < count; start += batch {
		if start > 0 && p.Config.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.Config.BatchDelay):
			}
		}

		fmt.Fprintf(w, "downloading %d-%d/%d\n", start, min(start+batch, count), count)

		articles, err := p.efetch(ctx, hist, start, batch)
		if err != nil {
			return nil, err
		}
		table.Append(articles...)
	}

	fmt.Fprintf(w, "done: %d articles\n", table.Len())
	return table, nil
}

// entrezHistory identifies a result set on the Entrez history server.
type entrezHistory struct {
	WebEnv   string
	QueryKey string
}

// esearchResponse is the retmode=json ESearch payload. NCBI encodes the
// count as a string.
type esearchResponse struct {
	Result struct {
		Count    string `json:"count"`
		WebEnv   string `json:"webenv"`
		QueryKey string `json:"querykey"`
	} `json:"esearchresult"`
}

// esearch posts the query to the history server and returns the session
// handle plus total match count.
func (p *EntrezProvider) esearch(ctx context.Context, query string) (entrezHistory, int, error) {
	params := p.commonParams()
	params.Set("term", query)
	params.Set("usehistory", "y")
	params.Set("retmode", "json")

	resp, err := p.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return entrezHistory{}, 0, fmt.Errorf("ESearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entrezHistory{}, 0, fmt.Errorf("ESearch returned HTTP %d", resp.StatusCode)
	}

	var sr esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return entrezHistory{}, 0, fmt.Errorf("parsing ESearch response: %w", err)
	}

	count, err := strconv.Atoi(sr.Result.Count)
	if err != nil {
		return entrezHistory{}, 0, fmt.Errorf("parsing ESearch count %q: %w", sr.Result.Count, err)
	}

	return entrezHistory{WebEnv: sr.Result.WebEnv, QueryKey: sr.Result.QueryKey}, count, nil
}

// efetch retrieves one MEDLINE page from the history server.
func (p *EntrezProvider) efetch(ctx context.Context, hist entrezHistory, start, batch int) ([]types.Article, error) {
	params := p.commonParams()
	params.Set("rettype", "medline")
	params.Set("retmode", "text")
	params.Set("retstart", strconv.Itoa(start))
	params.Set("retmax", strconv.Itoa(batch))
	params.Set("WebEnv", hist.WebEnv)
	params.Set("query_key", hist.QueryKey)

	resp, err := p.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("EFetch request (retstart=%d): %w", start, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("EFetch returned HTTP %d (retstart=%d)", resp.StatusCode, start)
	}

	articles, err := medline.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing EFetch page (retstart=%d): %w", start, err)
	}
	return articles, nil
}

// commonParams builds the parameters shared by every E-utilities call.
func (p *EntrezProvider) commonParams() url.Values {
	params := url.Values{
		"db":   {"pubmed"},
		"tool": {toolName},
	}
	if p.Config.Email != "" {
		params.Set("email", p.Config.Email)
	}
	if p.Config.APIKey != "" {
		params.Set("api_key", p.Config.APIKey)
	}
	return params
}

func (p *EntrezProvider) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	reqURL := entrezBase + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.Config.UserAgent)

	return httputil.DoWithRetry(ctx, p.Client, req, 0)
}
