// Package s3blob is the S3-compatible alternative to the Walrus store.
// Blobs are content addressed: the object key is derived from the file's
// SHA-256, so uploading the same file twice is a no-op.
package s3blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/netx"
)

const keyPrefix = "blobs/"

// Options configures a Store.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // e.g. http://127.0.0.1:9000 for MinIO; empty uses AWS
	AccessKey string
	SecretKey string

	MaxFileSize int64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Store keeps certificate files in one bucket.
type Store struct {
	client      *s3.Client
	bucket      string
	baseURL     string
	maxFileSize int64
	timeout     time.Duration
}

// New loads the AWS configuration and builds a Store. Static credentials
// are used when both keys are set; otherwise the default chain applies.
func New(ctx context.Context, o Options) (*Store, error) {
	if o.Bucket == "" {
		return nil, errors.New("s3 blob: bucket not set")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
	}
	if o.AccessKey != "" && o.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}
	if o.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(o.HTTPClient))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3 blob: load AWS config: %w", err)
	}

	endpoint := strings.TrimRight(o.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if endpoint != "" {
			so.BaseEndpoint = aws.String(endpoint)
			so.UsePathStyle = true
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		so.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	baseURL := endpoint
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://s3.%s.amazonaws.com", o.Region)
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Store{
		client:      client,
		bucket:      o.Bucket,
		baseURL:     baseURL,
		maxFileSize: o.MaxFileSize,
		timeout:     timeout,
	}, nil
}

// KeyFor returns the object key of data.
func KeyFor(data []byte) string {
	sum := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// ContentAddress returns the URL of key in the bucket.
func (s *Store) ContentAddress(key string) string {
	return s.baseURL + "/" + s.bucket + "/" + key
}

// Upload stores data unless an object with the same key already exists.
func (s *Store) Upload(ctx context.Context, data []byte, owner string) (*models.UploadResult, error) {
	if owner == "" {
		return nil, common.ErrNotConnected
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: file is %d bytes, limit is %d", common.ErrUploadFailed, len(data), s.maxFileSize)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := KeyFor(data)
	res := &models.UploadResult{
		BlobID:         key,
		ContentAddress: s.ContentAddress(key),
		Size:           int64(len(data)),
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	switch {
	case err == nil:
		res.Outcome = models.OutcomeAlreadyCertified
		return res, nil
	case !isNotFound(err):
		return nil, storeError("head", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata:    map[string]string{"owner": owner},
	})
	if err != nil {
		return nil, storeError("put", key, err)
	}

	res.Outcome = models.OutcomeNewlyCreated
	return res, nil
}

// Fetch reads the object behind contentAddress. A bare key is accepted too.
func (s *Store) Fetch(ctx context.Context, contentAddress string) ([]byte, error) {
	key := strings.TrimPrefix(contentAddress, s.baseURL+"/"+s.bucket+"/")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("fetch %s: %w", key, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func storeError(op, key string, err error) error {
	wrapped := fmt.Errorf("%w: s3 %s %s: %w", common.ErrUploadFailed, op, key, err)
	if netx.IsTimeout(err) {
		return errors.Join(common.ErrTimeout, wrapped)
	}
	return wrapped
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	var nf *s3types.NotFound
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
