// Package gateway is the HTTP client of the remote ERP service: it fetches
// source documents for derivation and persists finished documents. It is the
// only place documents cross the process boundary; the editing engine itself
// never performs I/O.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/meridian-erp/meridian/internal/docform"
)

var (
	// ErrSourceUnavailable indicates the source document could not be fetched;
	// derivation must abort without touching the current form.
	ErrSourceUnavailable = errors.New("gateway: source document unavailable")
	// ErrRejected indicates the remote service refused the submission.
	ErrRejected = errors.New("gateway: submission rejected")
)

// Attachment is an uploaded file forwarded verbatim on submission.
type Attachment struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// SubmitRequest carries an already-validated, already-aggregated document.
// The remote service is the system of record for totals from here on; the
// engine never re-derives after acknowledgement.
type SubmitRequest struct {
	DocType     string                 `json:"doc_type"`
	Header      docform.DocumentHeader `json:"header"`
	Lines       []docform.LineItem     `json:"lines"`
	Totals      docform.Totals         `json:"totals"`
	Attachments []Attachment           `json:"attachments,omitempty"`
}

// SubmitResult is the acknowledgement of a persisted document.
type SubmitResult struct {
	DocumentNumber string `json:"document_number"`
}

// Client talks to the ERP document service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient constructs an ERP gateway client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchDocument loads one source document for derivation.
func (c *Client) FetchDocument(ctx context.Context, kind, number string) (docform.SourceDocument, error) {
	url := fmt.Sprintf("%s/documents/%s/%s", c.baseURL, kind, number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return docform.SourceDocument{}, fmt.Errorf("gateway: build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return docform.SourceDocument{}, fmt.Errorf("%w: %s %s: %v", ErrSourceUnavailable, kind, number, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return docform.SourceDocument{}, fmt.Errorf("%w: %s %s: status %d", ErrSourceUnavailable, kind, number, resp.StatusCode)
	}

	var doc docform.SourceDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return docform.SourceDocument{}, fmt.Errorf("%w: %s %s: decode: %v", ErrSourceUnavailable, kind, number, err)
	}
	if doc.Kind == "" {
		doc.Kind = kind
	}
	return doc, nil
}

type rejection struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Submit persists the document and returns the assigned number.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("gateway: encode submission: %w", err)
	}

	url := fmt.Sprintf("%s/documents/%s", c.baseURL, req.DocType)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var rej rejection
		_ = json.NewDecoder(resp.Body).Decode(&rej)
		if c.logger != nil {
			c.logger.Warn("submission rejected",
				slog.String("doc_type", req.DocType),
				slog.Int("status", resp.StatusCode),
				slog.String("detail", rej.Detail))
		}
		if rej.Detail != "" {
			return SubmitResult{}, fmt.Errorf("%w: %s", ErrRejected, rej.Detail)
		}
		return SubmitResult{}, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SubmitResult{}, fmt.Errorf("gateway: decode acknowledgement: %w", err)
	}
	return result, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
