package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePreviewFiltersUnsafeURLs(t *testing.T) {
	tpl, err := parseTemplates()
	require.NoError(t, err)

	cases := []struct {
		ref  string
		want string
	}{
		{ref: "javascript:alert(1)", want: `src="#ZgotmplZ"`},
		{ref: "https://cdn.example.com/a.png", want: `src="https://cdn.example.com/a.png"`},
		{ref: "data:image/png;base64,AAAA", want: `src="data:image/png;base64,AAAA"`},
	}
	for _, tc := range cases {
		out, err := fragment(tpl, "image-field", imageFieldView{Name: "image_url", Label: "Image", Preview: imgSrc(tc.ref)})
		require.NoError(t, err)
		assert.Contains(t, string(out), tc.want, tc.ref)
	}
}

func TestRemoveValsCarryTheEntry(t *testing.T) {
	v := listFieldView{Name: "technologies", Values: []string{"Go", `Say "hi"`}}
	assert.JSONEq(t, `{"op":"remove-technologies","remove":"Say \"hi\"","index":"1"}`, v.RemoveVals(1))
	assert.JSONEq(t, `{"op":"add-technologies"}`, v.AddVals())
}
