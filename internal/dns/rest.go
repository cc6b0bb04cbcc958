package dns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/logger"
)

// RESTProvider talks to a zone-scoped JSON record API with bearer-token
// auth. Endpoint layout:
//
//	GET    {base}/zones/{zone}/records
//	PUT    {base}/zones/{zone}/records/{name}/{type}
//	DELETE {base}/zones/{zone}/records/{name}/{type}
type RESTProvider struct {
	baseURL string
	zone    string
	token   string
	client  *http.Client
}

// NewRESTProvider creates a provider for one zone.
func NewRESTProvider(baseURL, zone, token string) (*RESTProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.Wrap(errors.ErrCodeConfig, "dns api url is required", nil)
	}
	if zone == "" {
		return nil, errors.Wrap(errors.ErrCodeConfig, "dns zone is required", nil)
	}
	if token == "" {
		return nil, errors.Wrap(errors.ErrCodeConfig, "dns api token is required (set DECKHAND_DNS_TOKEN)", nil)
	}

	return &RESTProvider{
		baseURL: baseURL,
		zone:    zone,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetHTTPClient replaces the HTTP client. Useful for testing.
func (p *RESTProvider) SetHTTPClient(c *http.Client) {
	p.client = c
}

// Zone returns the managed zone name
func (p *RESTProvider) Zone() string {
	return p.zone
}

func (p *RESTProvider) recordURL(name, recordType string) string {
	return fmt.Sprintf("%s/zones/%s/records/%s/%s",
		p.baseURL, url.PathEscape(p.zone), url.PathEscape(name), url.PathEscape(recordType))
}

func (p *RESTProvider) do(ctx context.Context, method, u string, body interface{}) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.DebugKV("dns api request", "method", method, "url", u)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// List returns all records in the zone
func (p *RESTProvider) List(ctx context.Context) ([]Record, error) {
	u := fmt.Sprintf("%s/zones/%s/records", p.baseURL, url.PathEscape(p.zone))

	data, status, err := p.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDNS, "list records", err)
	}
	if status != http.StatusOK {
		return nil, apiError("list records", status, data)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDNS, "decode record list", err)
	}
	return records, nil
}

// Set creates or updates a record (PUT is an upsert on name/type)
func (p *RESTProvider) Set(ctx context.Context, rec Record) error {
	if rec.Name == "" || rec.Type == "" {
		return errors.Validation("record name and type are required")
	}

	_, status, err := p.do(ctx, http.MethodPut, p.recordURL(rec.Name, rec.Type), rec)
	if err != nil {
		return errors.WrapResource(errors.ErrCodeDNS, rec.Name, "set record", err)
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusNoContent {
		return apiError("set record "+rec.Name, status, nil)
	}
	return nil
}

// Delete removes a record by name and type
func (p *RESTProvider) Delete(ctx context.Context, name, recordType string) error {
	_, status, err := p.do(ctx, http.MethodDelete, p.recordURL(name, recordType), nil)
	if err != nil {
		return errors.WrapResource(errors.ErrCodeDNS, name, "delete record", err)
	}
	if status == http.StatusNotFound {
		return errors.WrapResource(errors.ErrCodeNotFound, name, "dns record not found", nil)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return apiError("delete record "+name, status, nil)
	}
	return nil
}

func apiError(op string, status int, body []byte) error {
	msg := fmt.Sprintf("%s: provider returned %d", op, status)
	if len(body) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.TrimSpace(string(body)))
	}
	return errors.Wrap(errors.ErrCodeDNS, msg, nil)
}
