package media

import "errors"

// ErrUnsupportedMediaType reports content a [Thumbnailer] cannot render.
var ErrUnsupportedMediaType = errors.New("unsupported media type")
