package ai

import (
	"testing"

	"genzhealth/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSymptomRequest(t *testing.T) {
	req := models.SymptomRequest{Symptoms: "  headache and fever for 2 days ", Age: "30", Gender: "male"}
	require.NoError(t, ValidateSymptomRequest(&req))
	assert.Equal(t, "headache and fever for 2 days", req.Symptoms)
	assert.Equal(t, models.ModelPerplexity, req.Model)

	cases := map[string]models.SymptomRequest{
		"symptoms": {Symptoms: "headache", Age: "30", Gender: "male"},
		"age":      {Symptoms: "headache and fever", Age: "thirty", Gender: "male"},
		"gender":   {Symptoms: "headache and fever", Age: "30"},
		"model":    {Symptoms: "headache and fever", Age: "30", Gender: "female", Model: "gpt"},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			err := ValidateSymptomRequest(&in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestValidateImageRequest(t *testing.T) {
	ok := models.ImageRequest{ImageType: "x-ray", BodyPart: "wrist", MimeType: "IMAGE/PNG", Data: []byte{1, 2, 3}}
	require.NoError(t, ValidateImageRequest(&ok, 10))
	assert.Equal(t, "image/png", ok.MimeType)

	tooBig := ok
	err := ValidateImageRequest(&tooBig, 2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "image", verr.Field)

	gif := ok
	gif.MimeType = "image/gif"
	require.ErrorAs(t, ValidateImageRequest(&gif, 0), &verr)
	assert.Equal(t, "mimeType", verr.Field)

	noBody := ok
	noBody.BodyPart = " "
	require.ErrorAs(t, ValidateImageRequest(&noBody, 0), &verr)
	assert.Equal(t, "bodyPart", verr.Field)
}

func TestDataURLRoundTrip(t *testing.T) {
	data := []byte("\x89PNG fake image bytes")
	url := EncodeDataURL("image/png", data)
	assert.Contains(t, url, "data:image/png;base64,")

	mime, decoded, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, decoded)

	_, _, err = DecodeDataURL("image/png;base64,AAAA")
	assert.Error(t, err)
	_, _, err = DecodeDataURL("data:image/png,plain")
	assert.Error(t, err)
}
