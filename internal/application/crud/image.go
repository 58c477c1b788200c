package crud

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/khoahotran/portfolio/pkg/apperror"
)

const MaxImageSize = 5 << 20

// ImageFromUpload checks an uploaded file and inlines it as a data URI.
func ImageFromUpload(field string, r io.Reader, size int64) (string, error) {
	if size > MaxImageSize {
		return "", apperror.NewRejected(field, "the image must be 5MB or smaller")
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", apperror.NewInvalidInput("could not read the uploaded file", err)
	}
	if n > MaxImageSize {
		return "", apperror.NewRejected(field, "the image must be 5MB or smaller")
	}
	if n == 0 {
		return "", apperror.NewRejected(field, "the uploaded file is empty")
	}

	mime := mimetype.Detect(buf.Bytes())
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", apperror.NewRejected(field, "please select an image file")
	}
	contentType := strings.SplitN(mime.String(), ";", 2)[0]
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
