// internal/infrastructure/remote/client.go
package remote

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

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/lineitem"
)

// Client is the typed wrapper over the remote line item store. It implements
// lineitem.RemoteStore over JSON/HTTP and maps failures into the domain
// error taxonomy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewClient creates a remote store client from configuration
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.RemoteStore.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RemoteStore.Timeout,
		},
		logger: logger.WithField("component", "remote_client"),
	}
}

// wireRecord is the remote row as it appears on the wire. OwnerRef stays a
// pointer so a missing field is distinguishable from an empty one.
type wireRecord struct {
	ID          string          `json:"id"`
	OwnerRef    *string         `json:"ownerRef"`
	ProductRef  string          `json:"productRef"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"maxQuantity"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type wireCreate struct {
	OwnerRef   string          `json:"ownerRef"`
	ProductRef string          `json:"productRef"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Size       string          `json:"size"`
	Color      string          `json:"color"`
	ImageURL   string          `json:"imageUrl"`
}

type wirePatch struct {
	Quantity *int             `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Size     *string          `json:"size,omitempty"`
	Color    *string          `json:"color,omitempty"`
	ImageURL *string          `json:"imageUrl,omitempty"`
}

type wireError struct {
	Message string `json:"message"`
}

// ListForOwner fetches every record for an owner via the owner-scoped route
func (c *Client) ListForOwner(ctx context.Context, ownerRef string) ([]lineitem.RemoteRecord, error) {
	endpoint := fmt.Sprintf("/line-items/owner/%s", url.PathEscape(ownerRef))
	body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

// FindMatches looks up records for one variant key. Zero, one, or several
// matches are all legitimate outcomes.
func (c *Client) FindMatches(ctx context.Context, ownerRef, productRef, size, color string) ([]lineitem.RemoteRecord, error) {
	query := url.Values{}
	query.Set("ownerRef", ownerRef)
	query.Set("productRef", productRef)
	query.Set("size", size)
	query.Set("color", color)

	body, err := c.doRequest(ctx, http.MethodGet, "/line-items?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

// Create inserts a new remote record
func (c *Client) Create(ctx context.Context, input lineitem.RemoteRecordInput) (*lineitem.RemoteRecord, error) {
	payload := wireCreate{
		OwnerRef:   input.OwnerRef,
		ProductRef: input.ProductRef,
		Quantity:   input.Quantity,
		Price:      input.Price,
		Size:       input.Size,
		Color:      input.Color,
		ImageURL:   input.ImageURL,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/line-items", payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Update applies a partial update to a remote record
func (c *Client) Update(ctx context.Context, id string, patch lineitem.RemotePatch) (*lineitem.RemoteRecord, error) {
	payload := wirePatch{
		Quantity: patch.Quantity,
		Price:    patch.Price,
		Size:     patch.Size,
		Color:    patch.Color,
		ImageURL: patch.ImageURL,
	}
	endpoint := fmt.Sprintf("/line-items/%s", url.PathEscape(id))
	body, err := c.doRequest(ctx, http.MethodPut, endpoint, payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Delete removes a remote record
func (c *Client) Delete(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("/line-items/%s", url.PathEscape(id))
	_, err := c.doRequest(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// doRequest performs one HTTP exchange and maps non-2xx responses into
// RemoteError with the server message surfaced verbatim when present
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote store request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &lineitem.RemoteError{
			StatusCode: resp.StatusCode,
			StatusText: resp.Status,
		}
		var we wireError
		if err := json.Unmarshal(body, &we); err == nil {
			remoteErr.Message = we.Message
		}
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   endpoint,
			"status": resp.StatusCode,
		}).Debug("remote store call failed")
		return nil, remoteErr
	}

	return body, nil
}

func decodeRecords(body []byte) ([]lineitem.RemoteRecord, error) {
	var wires []wireRecord
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, &lineitem.DecodeError{Field: "(root)", Reason: "is not a record list"}
	}
	records := make([]lineitem.RemoteRecord, 0, len(wires))
	for _, w := range wires {
		rec, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func decodeRecord(body []byte) (*lineitem.RemoteRecord, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &lineitem.DecodeError{Field: "(root)", Reason: "is empty"}
	}
	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &lineitem.DecodeError{Field: "(root)", Reason: "is not a record"}
	}
	return w.toDomain()
}

// toDomain validates the loosely-specified wire shape into a strict record.
// Missing required fields fail with a decode error instead of defaulting.
func (w wireRecord) toDomain() (*lineitem.RemoteRecord, error) {
	if w.ID == "" {
		return nil, &lineitem.DecodeError{Field: "id", Reason: "is missing"}
	}
	if w.ProductRef == "" {
		return nil, &lineitem.DecodeError{Field: "productRef", Reason: "is missing"}
	}
	if w.Quantity < 0 {
		return nil, &lineitem.DecodeError{Field: "quantity", Reason: "is negative"}
	}
	if w.Price.IsNegative() {
		return nil, &lineitem.DecodeError{Field: "price", Reason: "is negative"}
	}
	return &lineitem.RemoteRecord{
		ID:          w.ID,
		OwnerRef:    w.OwnerRef,
		ProductRef:  w.ProductRef,
		ProductName: w.ProductName,
		ImageURL:    w.ImageURL,
		Price:       w.Price,
		Quantity:    w.Quantity,
		MaxQuantity: w.MaxQuantity,
		Size:        w.Size,
		Color:       w.Color,
		CreatedAt:   w.CreatedAt,
	}, nil
}
