// Package attachment resolves message file references to supported media
// types by filename suffix.
package attachment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/parleyhq/parley-backend/internal/providers"
)

// ErrUnsupportedFileType is returned for any suffix outside the supported set.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// mimeBySuffix is the closed set of supported suffixes. Matching is
// case-sensitive; "image.PNG" is not a supported file.
var mimeBySuffix = map[string]string{
	"gif":  "image/gif",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// Resolve maps a file URI to a media descriptor.
//
// A message that already has a persisted identifier is a replayed history
// turn; its attachment reference is ignored so only the newest turn ever
// carries media. A URI that cannot be parsed, or has no suffix at all,
// downgrades to no attachment so bad historical data cannot block a dispatch.
// A parseable URI with an unrecognized suffix fails the whole dispatch.
func Resolve(fileURL string, persisted bool) (*providers.Image, error) {
	if fileURL == "" || persisted {
		return nil, nil
	}

	u, err := url.Parse(fileURL)
	if err != nil {
		return nil, nil
	}

	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	dot := strings.LastIndex(path, ".")
	if dot < 0 || dot == len(path)-1 {
		return nil, nil
	}

	suffix := path[dot+1:]
	mimeType, ok := mimeBySuffix[suffix]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, suffix)
	}

	return &providers.Image{URL: fileURL, MIMEType: mimeType}, nil
}
