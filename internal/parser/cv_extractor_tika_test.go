package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockTikaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tika":
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "text/plain", r.Header.Get("Accept"))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Jane Doe\nSoftware Engineer\njane@example.com"))
		case "/meta":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{
				"Content-Type": "application/pdf",
				"pdf:PDFVersion": "1.7",
				"xmpTPg:NPages": 2,
				"dc:title": "Jane Doe CV",
				"X-TIKA:Parsed-By": "org.apache.tika.parser.pdf.PDFParser"
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestTikaCVExtractorExtractsText(t *testing.T) {
	server := newMockTikaServer(t)
	defer server.Close()

	extractor := NewTikaCVExtractor(server.URL)
	text, metadata, err := extractor.ExtractText(context.Background(), []byte("%PDF-1.7 fake"), "cv.pdf")
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe")
	assert.Equal(t, "cv.pdf", metadata["source_filename"])
	assert.Contains(t, metadata, "text_length")
	// Minimal mode keeps important keys and drops the parser internals.
	assert.Equal(t, "Jane Doe CV", metadata["dc:title"])
	assert.NotContains(t, metadata, "X-TIKA:Parsed-By")
}

func TestTikaCVExtractorMetadataModes(t *testing.T) {
	server := newMockTikaServer(t)
	defer server.Close()

	none := NewTikaCVExtractor(server.URL, WithMetadataMode(MetadataModeNone))
	_, metadata, err := none.ExtractText(context.Background(), []byte("data"), "cv.pdf")
	require.NoError(t, err)
	assert.NotContains(t, metadata, "dc:title")

	full := NewTikaCVExtractor(server.URL, WithMetadataMode(MetadataModeFull))
	_, metadata, err = full.ExtractText(context.Background(), []byte("data"), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe CV", metadata["dc:title"])
	assert.Contains(t, metadata, "X-TIKA:Parsed-By")
}

func TestTikaCVExtractorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := NewTikaCVExtractor(server.URL)
	_, _, err := extractor.ExtractText(context.Background(), []byte("data"), "cv.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestTikaCVExtractorFromReader(t *testing.T) {
	server := newMockTikaServer(t)
	defer server.Close()

	extractor := NewTikaCVExtractor(server.URL, WithTikaTimeout(10*time.Second))
	text, _, err := extractor.ExtractFromReader(context.Background(), strings.NewReader("plain cv text"), "cv.txt")
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFor("cv.pdf"))
	assert.Equal(t, "application/pdf", contentTypeFor("CV.PDF"))
	assert.Equal(t, "text/plain", contentTypeFor("cv.txt"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("cv"))
}
