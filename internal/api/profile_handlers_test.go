package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookradio/bookradio-server/internal/domain"
)

// multipartUpdate builds a profile update request body.
func multipartUpdate(t *testing.T, fields map[string]string, avatar []byte) (body *bytes.Buffer, contentType string) {
	t.Helper()

	body = &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if avatar != nil {
		part, err := writer.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write(avatar)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (ts *testServer) putProfile(token string, fields map[string]string, avatar []byte) *httptest.ResponseRecorder {
	ts.t.Helper()

	body, contentType := multipartUpdate(ts.t, fields, avatar)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	ts.server.ServeHTTP(resp, req)
	return resp
}

func TestGetProfile(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser("reader@example.com", "listening-pass-1")

	resp := ts.do(http.MethodGet, "/api/v1/profile", nil, token)

	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope[domain.Profile](t, resp)
	assert.Equal(t, "reader@example.com", envelope.Data.Email)
	assert.Equal(t, "Reader", envelope.Data.Username)
}

func TestUpdateProfile_Fields(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser("reader@example.com", "listening-pass-1")

	resp := ts.putProfile(token, map[string]string{
		"username": "Night Reader",
		"bio":      "Listens at 1.5x.",
	}, nil)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	envelope := decodeEnvelope[domain.Profile](t, resp)
	assert.Equal(t, "Night Reader", envelope.Data.Username)
	assert.Equal(t, "Listens at 1.5x.", envelope.Data.Bio)
}

func TestUpdateProfile_Avatar(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser("reader@example.com", "listening-pass-1")

	resp := ts.putProfile(token, nil, testPNG(t))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	envelope := decodeEnvelope[domain.Profile](t, resp)
	require.NotEmpty(t, envelope.Data.AvatarURL)
	assert.NotEmpty(t, envelope.Data.AvatarBlur)

	// The returned URL serves the uploaded image.
	served := ts.get(envelope.Data.AvatarURL)
	assert.Equal(t, http.StatusOK, served.Code)
}

func TestUpdateProfile_RejectsGarbageAvatar(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser("reader@example.com", "listening-pass-1")

	resp := ts.putProfile(token, nil, []byte("definitely not an image"))

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServeAvatar_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.get("/uploads/avatars/nope.png")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	traversal := ts.get("/uploads/avatars/..%2fauth.key")
	assert.Equal(t, http.StatusNotFound, traversal.Code)
}
