package s3store

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReaderCountsBytes(t *testing.T) {
	payload := make([]byte, 1000)
	var calls []int64
	r := &progressReader{
		r:     bytes.NewReader(payload),
		total: 1000,
		fn: func(transferred, total int64) {
			assert.Equal(t, int64(1000), total)
			calls = append(calls, transferred)
		},
	}

	n, err := io.Copy(io.Discard, r)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	require.NotEmpty(t, calls)
	var last int64
	for _, c := range calls {
		assert.GreaterOrEqual(t, c, last)
		last = c
	}
	assert.Equal(t, int64(1000), calls[len(calls)-1])
}

func TestDownloadURLPublicBase(t *testing.T) {
	s := &Store{publicBase: "https://packages.example.com"}
	url, err := s.downloadURL(context.Background(), "foo_v1.0.py")
	require.NoError(t, err)
	assert.Equal(t, "https://packages.example.com/foo_v1.0.py", url)
}
