package extract

import "strings"

// Kind is the extraction family a content type maps to. Classification
// happens once, then dispatch switches exhaustively on the result instead
// of scattering substring checks.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPlainText
	KindPDF
	KindSpreadsheet
	KindWordDoc
	KindSlides
)

func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "plaintext"
	case KindPDF:
		return "pdf"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindWordDoc:
		return "worddoc"
	case KindSlides:
		return "slides"
	default:
		return "unsupported"
	}
}

// ClassifyContentType maps a MIME type to its extraction Kind. Parameters
// after ";" are ignored. Spreadsheet and slides checks run before the word
// check because Office MIME types all contain "officedocument".
func ClassifyContentType(contentType string) Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	switch {
	case ct == "text/plain" || ct == "text/markdown":
		return KindPlainText
	case ct == "application/pdf":
		return KindPDF
	case strings.Contains(ct, "spreadsheet") || strings.Contains(ct, "excel"):
		return KindSpreadsheet
	case strings.Contains(ct, "presentation") || strings.Contains(ct, "powerpoint"):
		return KindSlides
	case strings.Contains(ct, "word") || strings.Contains(ct, "document"):
		return KindWordDoc
	default:
		return KindUnsupported
	}
}
