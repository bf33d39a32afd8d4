package storage

import (
	"context"
	"io"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	bucket string
	client *gcs.Client
	signer *GCSSigner
}

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// Client provides an existing GCS client.
	Client *gcs.Client
	// CredentialsFile is a service account JSON key. It authenticates the
	// client and, when it carries a private key, enables signed URLs.
	CredentialsFile string
	// GoogleAccessID is the service account email used for signing.
	GoogleAccessID string
	// PrivateKey is the PEM service account key used for signing.
	PrivateKey []byte
}

// GCSSigner holds credentials for signed URL generation.
type GCSSigner struct {
	GoogleAccessID string
	PrivateKey     []byte
}

// NewGCS constructs a GCS adapter for bucket with optional signing support.
func NewGCS(ctx context.Context, bucket string, opts GCSOptions) (*GCSAdapter, error) {
	signer, err := gcsSigner(opts)
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		var clientOpts []option.ClientOption
		if opts.CredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
		}

		client, err = gcs.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, err
		}
	}

	return &GCSAdapter{bucket: bucket, client: client, signer: signer}, nil
}

func gcsSigner(opts GCSOptions) (*GCSSigner, error) {
	if opts.GoogleAccessID != "" && len(opts.PrivateKey) > 0 {
		return &GCSSigner{GoogleAccessID: opts.GoogleAccessID, PrivateKey: opts.PrivateKey}, nil
	}

	if opts.CredentialsFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, err
	}

	jwtCfg, err := google.JWTConfigFromJSON(data)
	if err != nil {
		return nil, err
	}

	return &GCSSigner{GoogleAccessID: jwtCfg.Email, PrivateKey: jwtCfg.PrivateKey}, nil
}

// PutObject uploads data to GCS.
func (g *GCSAdapter) PutObject(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = opts.ContentType
	if len(opts.Metadata) > 0 {
		writer.Metadata = opts.Metadata
	}

	if _, err := io.Copy(writer, r); err != nil {
		//nolint:errcheck,gosec // the copy error is the one worth returning
		writer.Close()
		return ObjectInfo{}, err
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Bucket: g.bucket, Key: key, Size: opts.Size, ContentType: opts.ContentType}
	if attrs := writer.Attrs(); attrs != nil {
		info.Size = attrs.Size
		info.ETag = attrs.Etag
	}

	return info, nil
}

// PresignGet returns a signed GET URL.
func (g *GCSAdapter) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if g.signer == nil {
		return "", ErrMissingSigner
	}
	return gcs.SignedURL(g.bucket, key, &gcs.SignedURLOptions{
		Method:         "GET",
		Expires:        time.Now().Add(expiry),
		GoogleAccessID: g.signer.GoogleAccessID,
		PrivateKey:     g.signer.PrivateKey,
	})
}

// Close closes the GCS client.
func (g *GCSAdapter) Close() error {
	return g.client.Close()
}
