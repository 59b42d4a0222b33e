// Package loader extracts ordered text units from uploaded documents.
package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docsense/docsense/internal/models"
)

// SourceTypePDF is the only supported source type.
const SourceTypePDF = "pdf"

var (
	// ErrUnsupportedSourceType is returned when the declared source type is not recognized.
	ErrUnsupportedSourceType = errors.New("unsupported source type")
	// ErrExtraction is returned when the byte stream is not a valid document of the declared type.
	ErrExtraction = errors.New("extraction failed")
)

// Loader extracts ordered (text, metadata) pages from document bytes.
type Loader struct{}

// NewLoader returns a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load extracts pages from content. sourceType selects the parser ("pdf");
// filename is carried into each page's metadata. Pages containing only
// whitespace are dropped. A document that parses but yields no text returns
// an empty slice with a nil error.
func (l *Loader) Load(content []byte, sourceType, filename string) ([]models.Page, error) {
	switch strings.ToLower(sourceType) {
	case SourceTypePDF:
		return loadPDF(content, filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSourceType, sourceType)
	}
}
