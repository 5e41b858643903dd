package fingerprint

import (
	"github.com/h2non/filetype"
)

// Classifier decides from a file header whether a file can be previewed
type Classifier interface {
	Previewable(header []byte) bool
}

// MediaClassifier marks images and videos as previewable
type MediaClassifier struct{}

// Previewable sniffs the header's MIME type
func (MediaClassifier) Previewable(header []byte) bool {
	if len(header) == 0 {
		return false
	}
	kind, err := filetype.Match(header)
	if err != nil || kind == filetype.Unknown {
		return false
	}
	switch kind.MIME.Type {
	case "image", "video":
		return true
	default:
		return false
	}
}
