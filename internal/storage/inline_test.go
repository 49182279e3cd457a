package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbxadmin/internal/model"
)

func TestInlineStorePut(t *testing.T) {
	ctx := context.Background()
	store := NewInline()

	t.Run("encodes content as a data URI", func(t *testing.T) {
		ref, err := store.Put(ctx, "greeting.wav", bytes.NewReader([]byte("hello")), PutOptions{ContentType: "audio/wav"})
		require.NoError(t, err)

		assert.Equal(t, model.RefInline, ref.Kind)
		assert.Equal(t, "data:audio/wav;base64,"+base64.StdEncoding.EncodeToString([]byte("hello")), ref.Value)
	})

	t.Run("detects content type when none is declared", func(t *testing.T) {
		ref, err := store.Put(ctx, "note.txt", strings.NewReader("plain text content"), PutOptions{})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(ref.Value, "data:text/plain"))
	})

	t.Run("round-trips the payload", func(t *testing.T) {
		content := []byte{0x00, 0x01, 0xfe, 0xff}
		ref, err := store.Put(ctx, "blob.bin", bytes.NewReader(content), PutOptions{ContentType: "application/octet-stream"})
		require.NoError(t, err)

		_, payload, found := strings.Cut(ref.Value, ";base64,")
		require.True(t, found)
		decoded, err := base64.StdEncoding.DecodeString(payload)
		require.NoError(t, err)
		assert.Equal(t, content, decoded)
	})
}

func TestInlineStoreDelete(t *testing.T) {
	store := NewInline()

	// Removal is implicit in deleting the metadata row.
	err := store.Delete(context.Background(), model.StorageReference{Kind: model.RefInline, Value: "data:audio/wav;base64,aGk="})
	assert.NoError(t, err)
}
