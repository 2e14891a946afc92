package email

import (
	"mime"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// not every system mime table knows the office types
var knownContentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".pdf":  "application/pdf",
}

// AttachmentContentType guesses a MIME type from the file extension.
func AttachmentContentType(path string) string {
	extension := strings.ToLower(filepath.Ext(path))
	if extension == "" {
		return defaultContentType
	}
	if contentType, ok := knownContentTypes[extension]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(extension); contentType != "" {
		return contentType
	}
	return defaultContentType
}
