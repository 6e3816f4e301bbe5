package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/config"
	"go.uber.org/zap"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 15, 0, 0, time.UTC)
	assert.Equal(t, "reports/2025/03/20250314T101500Z-faturas_marco.xlsx", objectName("faturas marco.xlsx", now))
	// directories in the name are dropped
	assert.Equal(t, "reports/2025/03/20250314T101500Z-passwd", objectName("../../etc/passwd", now))
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	ctx := context.Background()

	path, size, err := s.Upload(ctx, "faturas.xlsx", "application/octet-stream", strings.NewReader("conteúdo"))
	require.NoError(t, err)
	assert.Equal(t, "reports/2025/01/20250102T030405Z-faturas.xlsx", path)
	assert.Equal(t, int64(len("conteúdo")), size)

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "conteúdo", string(data))

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Download(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, path))
}

func TestLocalStorage_RejectsEscapes(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{"../outside.txt", "reports/../../outside.txt", "/etc/passwd"} {
		_, err := s.Download(ctx, p)
		assert.Error(t, err, p)
		assert.NotErrorIs(t, err, ErrNotFound, p)
		assert.Error(t, s.Delete(ctx, p), p)
	}
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	local, err := NewStorage(ctx, &config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	_, ok := local.(*LocalStorage)
	assert.True(t, ok)

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "azure"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "s3"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}

func TestLocalStorage_UploadReaderError(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Upload(context.Background(), "x.xlsx", "", io.MultiReader(bytes.NewReader([]byte("a")), errReader{}))
	assert.Error(t, err)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
