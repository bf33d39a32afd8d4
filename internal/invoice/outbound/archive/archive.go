package archive

import (
	"bytes"
	"context"
	"errors"
	"path"
	"time"

	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPrefix = "invoices"
	defaultExpiry = 15 * time.Minute
)

// Archive uploads rendered invoices to object storage and returns a
// presigned download URL.
type Archive struct {
	store  storage.Storage
	prefix string
	expiry time.Duration
	ins    instrument.Instrumentation
}

func New(store storage.Storage, prefix string, expiry time.Duration, ins instrument.Instrumentation) *Archive {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	return &Archive{store: store, prefix: prefix, expiry: expiry, ins: ins}
}

// Key is the object key of filename.
func (a *Archive) Key(filename string) string {
	return path.Join(a.prefix, filename)
}

func (a *Archive) Save(ctx context.Context, number, filename string, pdf []byte) (_ string, err error) {
	key := a.Key(filename)
	ctx, span := a.ins.Tracer("invoice.outbound.archive").Start(ctx, "Save", trace.WithAttributes(attribute.String("object.key", key)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(pdf) == 0 {
		return "", errors.New("archive: empty document")
	}

	if _, err := a.store.PutObject(ctx, key, bytes.NewReader(pdf), storage.PutOptions{
		Size:        int64(len(pdf)),
		ContentType: "application/pdf",
		Metadata:    map[string]string{"invoice-number": number},
	}); err != nil {
		return "", err
	}

	return a.store.PresignGet(ctx, key, a.expiry)
}
