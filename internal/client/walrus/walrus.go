// Package walrus uploads certificate files to a Walrus publisher and reads
// them back through an aggregator.
package walrus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/netx"
	"github.com/sethvargo/go-retry"
)

const (
	defaultEpochs  = 100
	defaultTimeout = 30 * time.Second
	defaultBackoff = 500 * time.Millisecond
	tokenValidity  = 5 * time.Minute
	blobsPath      = "/v1/blobs"
)

// Client talks to a Walrus publisher (writes) and aggregator (reads).
type Client struct {
	publisherURL  string
	aggregatorURL string
	epochs        int
	jwtSecret     []byte
	maxFileSize   int64
	retries       uint64
	backoff       time.Duration
	timeout       time.Duration
	httpClient    *http.Client
	now           func() time.Time
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEpochs sets how many storage epochs each upload is paid for.
func WithEpochs(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.epochs = n
		}
	}
}

// WithJWTSecret enables bearer authentication against the publisher.
func WithJWTSecret(secret string) Option {
	return func(c *Client) {
		if secret != "" {
			c.jwtSecret = []byte(secret)
		}
	}
}

// WithMaxFileSize rejects larger payloads before any request is made.
// Zero disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(c *Client) { c.maxFileSize = n }
}

// WithRetries retries transport errors and 5xx answers up to n extra times
// with exponential backoff starting at base.
func WithRetries(n int, base time.Duration) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = uint64(n)
		}
		if base > 0 {
			c.backoff = base
		}
	}
}

// WithTimeout bounds every single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a Walrus client. Trailing slashes on both URLs are ignored.
func New(publisherURL, aggregatorURL string, opts ...Option) *Client {
	c := &Client{
		publisherURL:  strings.TrimRight(publisherURL, "/"),
		aggregatorURL: strings.TrimRight(aggregatorURL, "/"),
		epochs:        defaultEpochs,
		backoff:       defaultBackoff,
		timeout:       defaultTimeout,
		httpClient:    &http.Client{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentAddress returns the aggregator URL serving blobID.
func (c *Client) ContentAddress(blobID string) string {
	return c.aggregatorURL + blobsPath + "/" + url.PathEscape(blobID)
}

// storeResponse is the subset of the publisher answer we rely on. Exactly
// one of the two branches is present on success.
type storeResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
			Size   int64  `json:"size"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
	} `json:"alreadyCertified"`
}

func parseStoreResponse(body []byte) (string, models.UploadOutcome, error) {
	var sr storeResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", "", fmt.Errorf("decode publisher response: %w", err)
	}

	switch {
	case sr.NewlyCreated != nil && sr.NewlyCreated.BlobObject.BlobID != "":
		return sr.NewlyCreated.BlobObject.BlobID, models.OutcomeNewlyCreated, nil
	case sr.AlreadyCertified != nil && sr.AlreadyCertified.BlobID != "":
		return sr.AlreadyCertified.BlobID, models.OutcomeAlreadyCertified, nil
	}
	return "", "", errors.New("publisher response has no blob id")
}

// Upload stores data for owner and returns its content address.
//
// Every failure wraps common.ErrUploadFailed. A deadline additionally wraps
// common.ErrTimeout.
func (c *Client) Upload(ctx context.Context, data []byte, owner string) (*models.UploadResult, error) {
	if owner == "" {
		return nil, common.ErrNotConnected
	}
	if c.maxFileSize > 0 && int64(len(data)) > c.maxFileSize {
		return nil, fmt.Errorf("%w: file is %d bytes, limit is %d", common.ErrUploadFailed, len(data), c.maxFileSize)
	}

	q := url.Values{}
	q.Set("epochs", strconv.Itoa(c.epochs))
	q.Set("send_object_to", owner)
	target := c.publisherURL + blobsPath + "?" + q.Encode()

	header := http.Header{}
	if c.jwtSecret != nil {
		tok, err := GenerateToken(PublisherClaims{
			SendObjectTo: owner,
			Epochs:       c.epochs,
			Size:         int64(len(data)),
			MaxSize:      c.maxFileSize,
		}, c.jwtSecret, c.now(), tokenValidity)
		if err != nil {
			return nil, fmt.Errorf("%w: sign publisher token: %w", common.ErrUploadFailed, err)
		}
		header.Set("Authorization", "Bearer "+tok)
	}

	var lastErr error
	var body []byte

	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		b, err := netx.Do(reqCtx, c.httpClient, http.MethodPut, target, data, header)
		if err != nil {
			lastErr = err
			if netx.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		if lastErr != nil && !errors.Is(err, lastErr) {
			err = errors.Join(lastErr, err)
		}
		return nil, uploadError(err)
	}

	blobID, outcome, err := parseStoreResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUploadFailed, err)
	}

	return &models.UploadResult{
		BlobID:         blobID,
		ContentAddress: c.ContentAddress(blobID),
		Outcome:        outcome,
		Size:           int64(len(data)),
	}, nil
}

func uploadError(err error) error {
	if netx.IsTimeout(err) {
		return errors.Join(common.ErrTimeout, fmt.Errorf("%w: %w", common.ErrUploadFailed, err))
	}
	return fmt.Errorf("%w: %w", common.ErrUploadFailed, err)
}

// Fetch reads the blob behind contentAddress. A bare blob id is accepted
// too and resolved against the aggregator.
func (c *Client) Fetch(ctx context.Context, contentAddress string) ([]byte, error) {
	target := contentAddress
	if !strings.Contains(contentAddress, "://") {
		target = c.ContentAddress(contentAddress)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b, err := netx.Do(ctx, c.httpClient, http.MethodGet, target, nil, nil)
	if err != nil {
		if netx.IsTimeout(err) {
			return nil, errors.Join(common.ErrTimeout, fmt.Errorf("fetch %s: %w", target, err))
		}
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	return b, nil
}
