// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lark fetches document metadata and block trees from the Lark
// (Feishu) open API. The client handles tenant access tokens, cursor
// pagination, and the API's enveloped error codes.
package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/meshintel/larkdown/internal/httputil"
	"github.com/meshintel/larkdown/pkg/types"
)

// apiBase is the Lark open-platform API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://open.feishu.cn/open-apis"

const (
	defaultPageSize = 500
	defaultTimeout  = 30 * time.Second
)

// API error codes worth translating into actionable messages.
const (
	codeDocPermissionDenied = 99991672
	codeTokenInvalid        = 99991677
	codeDocNotFound         = 99992402
)

// Client talks to the Lark document API.
type Client struct {
	httpClient *http.Client
	token      string
	userAgent  string
	pageSize   int
	maxRetries int
}

// NewClient builds a Client from configuration. Zero values fall back to
// sensible defaults (30 s timeout, 500-block pages).
func NewClient(cfg types.APIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		token:      cfg.AccessToken,
		userAgent:  cfg.UserAgent,
		pageSize:   pageSize,
		maxRetries: cfg.MaxRetries,
	}
}

// envelope is the common response wrapper: code 0 means success, anything
// else carries a message describing the failure.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// GetDocumentInfo fetches a document's metadata. When the API returns an
// empty title the first eight characters of the document id stand in, so
// downstream file naming always has something to work with.
func (c *Client) GetDocumentInfo(ctx context.Context, docID string) (types.DocumentInfo, error) {
	var data struct {
		Document struct {
			DocumentID string `json:"document_id"`
			RevisionID int    `json:"revision_id"`
			Title      string `json:"title"`
		} `json:"document"`
	}

	endpoint := fmt.Sprintf("%s/docx/v1/documents/%s", apiBase, url.PathEscape(docID))
	if err := c.get(ctx, endpoint, &data); err != nil {
		return types.DocumentInfo{}, fmt.Errorf("fetching document %s: %w", docID, err)
	}

	info := types.DocumentInfo{
		DocumentID: data.Document.DocumentID,
		RevisionID: data.Document.RevisionID,
		Title:      data.Document.Title,
	}
	if info.DocumentID == "" {
		info.DocumentID = docID
	}
	if info.Title == "" {
		short := docID
		if len(short) > 8 {
			short = short[:8]
		}
		info.Title = "Document_" + short
	}
	return info, nil
}

// ListAllBlocks walks the block listing endpoint until the cursor is
// exhausted and returns every block of the document in API order.
func (c *Client) ListAllBlocks(ctx context.Context, docID string) ([]types.Block, error) {
	endpoint := fmt.Sprintf("%s/docx/v1/documents/%s/blocks", apiBase, url.PathEscape(docID))

	var blocks []types.Block
	pageToken := ""
	for {
		params := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
		if pageToken != "" {
			params.Set("page_token", pageToken)
		}

		var data struct {
			Items     []types.Block `json:"items"`
			HasMore   bool          `json:"has_more"`
			PageToken string        `json:"page_token"`
		}
		if err := c.get(ctx, endpoint+"?"+params.Encode(), &data); err != nil {
			return nil, fmt.Errorf("listing blocks of %s: %w", docID, err)
		}

		blocks = append(blocks, data.Items...)
		if !data.HasMore || data.PageToken == "" {
			return blocks, nil
		}
		pageToken = data.PageToken
	}
}

// BatchTmpDownloadURLs resolves media tokens to temporary download URLs.
// The URLs expire after roughly 24 hours; tokens the API does not resolve
// are simply absent from the result.
func (c *Client) BatchTmpDownloadURLs(ctx context.Context, tokens []string) (map[string]string, error) {
	if len(tokens) == 0 {
		return map[string]string{}, nil
	}

	params := url.Values{}
	for _, token := range tokens {
		params.Add("file_tokens", token)
	}
	endpoint := fmt.Sprintf("%s/drive/v1/medias/batch_get_tmp_download_url?%s", apiBase, params.Encode())

	var data struct {
		TmpDownloadURLs []struct {
			FileToken      string `json:"file_token"`
			TmpDownloadURL string `json:"tmp_download_url"`
		} `json:"tmp_download_urls"`
	}
	if err := c.get(ctx, endpoint, &data); err != nil {
		return nil, fmt.Errorf("resolving media download urls: %w", err)
	}

	urls := make(map[string]string, len(data.TmpDownloadURLs))
	for _, entry := range data.TmpDownloadURLs {
		if entry.FileToken != "" && entry.TmpDownloadURL != "" {
			urls[entry.FileToken] = entry.TmpDownloadURL
		}
	}
	return urls, nil
}

// mediaPreviewURL is the stable preview endpoint used when no temporary
// download URL can be obtained for a token.
const mediaPreviewURL = "https://internal-api-drive-stream.feishu.cn/space/api/box/stream/download/preview/%s/"

// ResolveMediaURLs returns one download URL per token. Temporary drive URLs
// are preferred; when the batch call fails or omits a token, the stable
// preview URL built from the token stands in, so callers always get a usable
// link.
func (c *Client) ResolveMediaURLs(ctx context.Context, tokens []string) map[string]string {
	urls, err := c.BatchTmpDownloadURLs(ctx, tokens)
	if err != nil {
		urls = map[string]string{}
	}
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if _, ok := urls[token]; !ok {
			urls[token] = fmt.Sprintf(mediaPreviewURL, token)
		}
	}
	return urls
}

// get performs an authenticated GET, unwraps the response envelope, and
// decodes the data payload into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned HTTP %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if env.Code != 0 {
		return apiError(env.Code, env.Msg)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("parsing response data: %w", err)
		}
	}
	return nil
}

// apiError turns well-known envelope codes into messages that tell the
// operator what to fix instead of echoing a bare number.
func apiError(code int, msg string) error {
	switch code {
	case codeTokenInvalid:
		return fmt.Errorf("api error %d: access token is invalid or expired, refresh it and retry", code)
	case codeDocNotFound:
		return fmt.Errorf("api error %d: document does not exist or the app cannot see it", code)
	case codeDocPermissionDenied:
		return fmt.Errorf("api error %d: the app lacks read permission on this document", code)
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("api error %d: %s", code, msg)
}
