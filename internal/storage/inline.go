package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"pbxadmin/internal/model"
)

// inlineStore implements BlobStore by encoding the blob as a self-contained
// data URI stored directly in the metadata row. It trades the external
// storage dependency for unbounded row size: no size ceiling is enforced here
// beyond the metadata store's own field limits, so this variant should only
// be selected for small assets.
type inlineStore struct{}

// NewInline creates the inline blob store.
func NewInline() BlobStore {
	return inlineStore{}
}

// Put encodes the content as data:<mime>;base64,<payload>. The key is unused;
// the encoded string itself is the reference.
func (inlineStore) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (model.StorageReference, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return model.StorageReference{}, fmt.Errorf("read upload content: %w", err)
	}

	ct := opt.ContentType
	if ct == "" {
		ct = http.DetectContentType(buf)
	}

	value := fmt.Sprintf("data:%s;base64,%s", ct, base64.StdEncoding.EncodeToString(buf))
	return model.StorageReference{Kind: model.RefInline, Value: value}, nil
}

// Delete is a no-op: the blob lives in the metadata field, so removal is
// implicit in deleting the row.
func (inlineStore) Delete(ctx context.Context, ref model.StorageReference) error {
	return nil
}
