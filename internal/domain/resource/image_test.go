package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageChoiceClearsTheOther(t *testing.T) {
	img := ParseImage("data:image/png;base64,AAAA")
	assert.Equal(t, "data:image/png;base64,AAAA", img.Data)
	assert.Empty(t, img.URL)

	img.UseURL(" https://cdn.example.com/a.png ")
	assert.Equal(t, "https://cdn.example.com/a.png", img.Ref())
	assert.Empty(t, img.Data)

	img.UseUpload("data:image/jpeg;base64,BBBB")
	assert.Equal(t, "data:image/jpeg;base64,BBBB", img.Ref())
	assert.Empty(t, img.URL)

	assert.True(t, ParseImage("").IsZero())
}

func TestIsImageDataURI(t *testing.T) {
	assert.True(t, IsImageDataURI("data:image/webp;base64,AAAA"))
	assert.False(t, IsImageDataURI("data:text/html;base64,PHNjcmlwdD4="))
	assert.False(t, IsImageDataURI("https://cdn.example.com/a.png"))
}
