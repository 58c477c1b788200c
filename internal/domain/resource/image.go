package resource

import "strings"

// Image is an image field while it is being edited. Exactly one of URL and
// Data is set; choosing one clears the other.
type Image struct {
	URL  string
	Data string
}

func ParseImage(ref string) Image {
	if IsDataURI(ref) {
		return Image{Data: ref}
	}
	return Image{URL: strings.TrimSpace(ref)}
}

func (i *Image) UseURL(url string) {
	i.URL = strings.TrimSpace(url)
	i.Data = ""
}

func (i *Image) UseUpload(dataURI string) {
	i.Data = dataURI
	i.URL = ""
}

// Ref is the value stored in the record.
func (i Image) Ref() string {
	if i.Data != "" {
		return i.Data
	}
	return i.URL
}

func (i Image) IsZero() bool {
	return i.Ref() == ""
}
