package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrBadPayload is returned when a base64 payload cannot be decoded.
var ErrBadPayload = errors.New("invalid base64 payload")

var mimeToExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"audio/mpeg": "mp3",
	"audio/mp3":  "mp3",
}

var extToMime = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"mp3":  "audio/mpeg",
}

// MimeFromPath guesses a content type from the extension of p.
func MimeFromPath(p string) string {
	if m, ok := extToMime[extOf(p)]; ok {
		return m
	}
	return "application/octet-stream"
}

// ExtFromMime returns the extension used for mime, or "" when unknown.
func ExtFromMime(mime string) string { return mimeToExt[strings.ToLower(mime)] }

// Payload is a decoded upload body.
type Payload struct {
	Data []byte
	Mime string // empty when the input was raw base64
	Ext  string
}

// DecodePayload accepts either a data URL (data:<mime>;base64,<data>) or raw
// base64. For data URLs the extension comes from the mime type, for raw base64
// from filename.
func DecodePayload(encoded, filename string) (*Payload, error) {
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		mime, b64, found := strings.Cut(rest, ";base64,")
		if !found || mime == "" {
			return nil, fmt.Errorf("%w: malformed data url", ErrBadPayload)
		}
		data, err := decodeBase64(b64)
		if err != nil {
			return nil, err
		}
		return &Payload{Data: data, Mime: mime, Ext: ExtFromMime(mime)}, nil
	}
	data, err := decodeBase64(encoded)
	if err != nil {
		return nil, err
	}
	return &Payload{Data: data, Ext: extOf(filename)}, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// unpadded input is common from browsers
		if data2, err2 := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); err2 == nil {
			return data2, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return data, nil
}

// DataURL encodes data as a data URL of the given mime type.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
