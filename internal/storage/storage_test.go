package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/forum/pkg/errcode"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name        string
		size        int64
		contentType string
		wantExt     string
		wantErr     bool
	}{
		{"png", 10, "image/png", ".png", false},
		{"jpeg", 10, "image/jpeg", ".jpg", false},
		{"jpg alias", 10, "image/jpg", ".jpg", false},
		{"webp with params", 10, "image/webp; charset=binary", ".webp", false},
		{"gif upper case", 10, "IMAGE/GIF", ".gif", false},
		{"pdf rejected", 10, "application/pdf", "", true},
		{"svg rejected", 10, "image/svg+xml", "", true},
		{"too large", MaxAvatarBytes + 1, "image/png", "", true},
		{"exactly max", MaxAvatarBytes, "image/png", ".png", false},
		{"empty", 0, "image/png", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ext, err := Validate(tc.size, tc.contentType)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errcode.ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExt, ext)
		})
	}
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)

	body := []byte("\x89PNG fake image")
	url, err := store.Put(context.Background(), Object{Body: bytes.NewReader(body), Size: int64(len(body)), ContentType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	assert.Equal(t, dir, store.Dir())
	data, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, body, data)
}

func TestLocalPut_BodyLargerThanDeclared(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)

	body := bytes.Repeat([]byte("a"), int(MaxAvatarBytes)+10)
	_, err = store.Put(context.Background(), Object{Body: bytes.NewReader(body), Size: 10, ContentType: "image/gif"})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file must be removed")
}

func TestLocalPut_RejectsType(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	_, err = store.Put(context.Background(), Object{Body: strings.NewReader("x"), Size: 1, ContentType: "text/plain"})
	assert.ErrorIs(t, err, errcode.ErrBadRequest)
}
