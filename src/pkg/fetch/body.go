package fetch

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

/*
GetBody reads the body of resp, undoing any Content-Encoding.

At most maxBytes decoded bytes are read; a larger body is an error.
Pass the original url for clearer logging.
*/
func GetBody(resp *http.Response, urlStr string, maxBytes int64) (body []byte, e *xerr.Error) {
	var reader io.Reader
	contentEncoding := resp.Header.Get("Content-Encoding")

	tl.Log(tl.Verbose, palette.BlueDim, "Get body (content encoding is '%s') for '%s'", contentEncoding, urlStr)
	switch contentEncoding {
	case "gzip":
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return body, xerr.NewError(fmt.Errorf("%w: %w", ErrFetch, err), "Unable to get gzip reader", urlStr)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case "deflate":
		flateReader := flate.NewReader(resp.Body)
		defer flateReader.Close()
		reader = flateReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "", "identity":
		reader = resp.Body
	default:
		reader = resp.Body
		tl.Log(tl.Warning, palette.YellowDim, "Unsupported %s: '%s'", "Content-Encoding", contentEncoding)
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return body, xerr.NewError(fmt.Errorf("%w: %w", ErrFetch, err), "Failed to read response body", urlStr)
	}
	if int64(len(body)) > maxBytes {
		return nil, xerr.NewError(fmt.Errorf("%w: body exceeds %d bytes", ErrFetch, maxBytes), "Response body too large", urlStr)
	}
	tl.Log(tl.Verbose, palette.GreenDim, "Got body length %v (content encoding is '%s') for '%s'", len(body), contentEncoding, urlStr)

	return body, nil
}
