package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat means no extractor exists for the content type.
// Documents hitting this fail immediately; there is nothing to retry.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractionError wraps a format-library failure (corrupt file, password
// protected PDF, ...). These are deterministic, so they are not retried
// either; the document is marked failed.
type ExtractionError struct {
	Kind Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extract converts raw uploaded bytes into plain text by dispatching on the
// classified content type. Output is raw extractor text; sanitization is the
// caller's job.
func Extract(data []byte, contentType string) (string, error) {
	kind := ClassifyContentType(contentType)
	switch kind {
	case KindPlainText:
		return string(data), nil
	case KindPDF:
		body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
		if err != nil {
			return "", &ExtractionError{Kind: kind, Err: err}
		}
		return body, nil
	case KindWordDoc:
		body, _, err := docconv.ConvertDocx(bytes.NewReader(data))
		if err != nil {
			return "", &ExtractionError{Kind: kind, Err: err}
		}
		return body, nil
	case KindSlides:
		body, _, err := docconv.ConvertPptx(bytes.NewReader(data))
		if err != nil {
			return "", &ExtractionError{Kind: kind, Err: err}
		}
		return body, nil
	case KindSpreadsheet:
		return extractSpreadsheet(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
	}
}

// extractSpreadsheet concatenates cell text across all sheets, one row per
// line. docconv has no xlsx converter, so this goes through excelize.
func extractSpreadsheet(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", &ExtractionError{Kind: KindSpreadsheet, Err: err}
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", &ExtractionError{Kind: KindSpreadsheet, Err: err}
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
