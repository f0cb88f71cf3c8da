package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"i-hire-go/internal/logger"
)

// DocumentExtractor extracts plain text from an uploaded CV document.
type DocumentExtractor interface {
	// ExtractText extracts text and document metadata from raw file bytes.
	// filename is used to derive the content type and is passed to the
	// extraction backend as the resource name.
	ExtractText(ctx context.Context, data []byte, filename string) (string, map[string]interface{}, error)

	// ExtractFromReader reads the full document and extracts its text.
	ExtractFromReader(ctx context.Context, reader io.Reader, filename string) (string, map[string]interface{}, error)
}

// Metadata extraction modes for TikaCVExtractor.
const (
	MetadataModeNone    = "none"
	MetadataModeMinimal = "minimal"
	MetadataModeFull    = "full"
)

// TikaCVExtractor extracts CV text through an Apache Tika server. It handles
// PDF, Word and plain-text uploads uniformly: Tika picks the parser from the
// Content-Type header.
type TikaCVExtractor struct {
	ServerURL string
	Client    *http.Client

	metadataMode       string
	extractAnnotations bool
}

// TikaOption configures a TikaCVExtractor.
type TikaOption func(*TikaCVExtractor)

// WithMetadataMode selects how much document metadata is fetched alongside
// the text: "none", "minimal" (default) or "full".
func WithMetadataMode(mode string) TikaOption {
	return func(e *TikaCVExtractor) {
		switch mode {
		case MetadataModeNone, MetadataModeMinimal, MetadataModeFull:
			e.metadataMode = mode
		}
	}
}

// WithAnnotations toggles extraction of PDF link annotation text.
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaCVExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTikaTimeout sets the HTTP client timeout.
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaCVExtractor) {
		e.Client.Timeout = timeout
	}
}

var _ DocumentExtractor = (*TikaCVExtractor)(nil)

// NewTikaCVExtractor creates an extractor for the given Tika server URL,
// e.g. http://localhost:9998.
func NewTikaCVExtractor(serverURL string, options ...TikaOption) *TikaCVExtractor {
	extractor := &TikaCVExtractor{
		ServerURL:          serverURL,
		Client:             &http.Client{Timeout: 60 * time.Second},
		metadataMode:       MetadataModeMinimal,
		extractAnnotations: true,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromReader reads the document into memory and extracts its text.
func (e *TikaCVExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, filename string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("reading document: %w", err)
	}
	return e.ExtractText(ctx, data, filename)
}

// ExtractText sends the document to the Tika server in plain-text mode and
// returns the extracted text plus metadata per the configured mode.
func (e *TikaCVExtractor) ExtractText(ctx context.Context, data []byte, filename string) (string, map[string]interface{}, error) {
	startTime := time.Now()

	baseMetadata := map[string]interface{}{
		"extraction_time": time.Now().UTC().Format(time.RFC3339),
		"source_filename": filename,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", baseMetadata, fmt.Errorf("creating tika request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeFor(filename))
	req.Header.Set("Accept", "text/plain")
	if filename != "" {
		req.Header.Set("X-Tika-Resource-Name", filename)
	}
	if !e.extractAnnotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("calling tika server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", baseMetadata, fmt.Errorf("tika server returned status %d", resp.StatusCode)
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("reading tika response: %w", err)
	}
	text := string(textBytes)

	baseMetadata["text_length"] = len(text)
	baseMetadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if e.metadataMode == MetadataModeNone {
		return text, baseMetadata, nil
	}

	rawMetadata, err := e.fetchMetadata(ctx, data, filename)
	if err != nil {
		// Text extraction succeeded; missing metadata is not fatal.
		logger.Warn().Err(err).Str("filename", filename).Msg("tika metadata extraction failed")
		return text, baseMetadata, nil
	}

	for k, v := range rawMetadata {
		if e.metadataMode == MetadataModeFull || isImportantMetadata(k) {
			baseMetadata[k] = v
		}
	}

	return text, baseMetadata, nil
}

// fetchMetadata queries the Tika /meta endpoint for document metadata.
func (e *TikaCVExtractor) fetchMetadata(ctx context.Context, data []byte, filename string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/meta", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating tika meta request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeFor(filename))
	req.Header.Set("Accept", "application/json")
	if filename != "" {
		req.Header.Set("X-Tika-Resource-Name", filename)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling tika meta endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika meta endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tika meta response: %w", err)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("parsing tika metadata: %w", err)
	}
	return metadata, nil
}

// isImportantMetadata filters the Tika metadata flood down to the handful of
// fields worth keeping in minimal mode.
func isImportantMetadata(key string) bool {
	importantKeys := map[string]bool{
		"Content-Type":        true,
		"pdf:PDFVersion":      true,
		"xmpTPg:NPages":       true,
		"dcterms:created":     true,
		"dc:title":            true,
		"language":            true,
		"pdf:charsPerPage":    true,
		"pdf:docinfo:title":   true,
		"pdf:docinfo:created": true,
	}
	return importantKeys[key]
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
