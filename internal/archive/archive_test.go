package archive

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/common"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType(pdfBytes))
	assert.Equal(t, "image/png", DetectContentType([]byte("\x89PNG\r\n\x1a\n0000")))
	assert.Equal(t, "image/jpeg", DetectContentType([]byte("\xff\xd8\xff\xe0")))
	assert.Equal(t, "text/plain", DetectContentType([]byte("hello")))
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("7f0c2f5e-9a61-4c1e-8a39-0d7b1c2e3f40")
	assert.Equal(t, "finance/7f0c2f5e-9a61-4c1e-8a39-0d7b1c2e3f40.pdf", ObjectKey(constants.FinanceFlow, id, "application/pdf"))
	assert.Equal(t, "approval/7f0c2f5e-9a61-4c1e-8a39-0d7b1c2e3f40.jpg", ObjectKey(constants.Approval, id, "image/jpeg"))
	assert.Equal(t, "approval/7f0c2f5e-9a61-4c1e-8a39-0d7b1c2e3f40.bin", ObjectKey(constants.Approval, id, "text/plain"))
}

func TestMinioArchiver_Put(t *testing.T) {
	var (
		mu          sync.Mutex
		method      string
		path        string
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := NewMinioArchiver(common.ArchiveConfig{
		Endpoint:  srv.URL,
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "vetting-documents",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	id := uuid.New()
	key, err := a.Put(context.Background(), constants.FinanceFlow, id, pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, "finance/"+id.String()+".pdf", key)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/vetting-documents/"+key, path)
	assert.Equal(t, "application/pdf", contentType)
}
