package constants

import "strings"

// MaxFileSizeDefault is the per-file upload limit (20 MB).
const MaxFileSizeDefault int64 = 20 << 20

// MaxFilesDefault bounds the number of files in one upload.
const MaxFilesDefault = 10

const (
	ContentTypePDF = "application/pdf"
	PDFMagic       = "%PDF-"
)

// AllowedExtensions holds the accepted upload extensions.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// AcceptedContentTypes are the multipart content types treated as PDF. Some browsers
// send octet-stream for PDFs, so the magic bytes decide in that case.
var AcceptedContentTypes = map[string]struct{}{
	ContentTypePDF:             {},
	"application/x-pdf":        {},
	"application/octet-stream": {},
	"":                         {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// NormalizeContentType strips parameters ("; charset=...") and lowercases.
func NormalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
