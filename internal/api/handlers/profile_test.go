package handlers_test

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/dom/sticky-notes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

// multipartBody builds a form with an optional name and avatar file.
func multipartBody(t *testing.T, name, filename string, file []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if name != "" {
		require.NoError(t, w.WriteField("name", name))
	}
	if filename != "" {
		part, err := w.CreateFormFile("avatar", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func putProfile(t *testing.T, url, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPut, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestProfileHandler_Get(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, _ := testutil.NewUserBuilder().WithUsername("public").WithName("Public Person").Build(t, ts.DB.DB)

	resp := doJSON(t, http.MethodGet, ts.APIURL("/user/public"), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile profileJSON
	testutil.AssertJSONResponse(t, resp, &profile)
	assert.Equal(t, user.ID.String(), profile.ID)
	assert.Equal(t, "Public Person", profile.Name)
	assert.Nil(t, profile.AvatarURL)

	resp = doJSON(t, http.MethodGet, ts.APIURL("/user/nobody"), "", nil)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "User not found")
}

func TestProfileHandler_Update(t *testing.T) {
	ts := testutil.NewTestServer(t)
	owner, token := testutil.NewUserBuilder().WithUsername("owner").BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 1, 1))))

	t.Run("name and avatar", func(t *testing.T) {
		body, ct := multipartBody(t, "Renamed", "face.png", img.Bytes())
		resp := putProfile(t, ts.APIURL("/user/owner"), token, body, ct)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile profileJSON
		testutil.AssertJSONResponse(t, resp, &profile)
		assert.Equal(t, owner.ID.String(), profile.ID)
		assert.Equal(t, "Renamed", profile.Name)
		require.NotNil(t, profile.AvatarURL)
		assert.True(t, strings.HasPrefix(*profile.AvatarURL, "/uploads/avatars/"))

		// The stored avatar is served back from the upload route.
		got, err := http.Get(ts.BaseURL() + *profile.AvatarURL)
		require.NoError(t, err)
		defer got.Body.Close()
		assert.Equal(t, http.StatusOK, got.StatusCode)
		data, err := io.ReadAll(got.Body)
		require.NoError(t, err)
		assert.Equal(t, img.Bytes(), data)
	})

	t.Run("non-image avatar", func(t *testing.T) {
		body, ct := multipartBody(t, "", "script.png", []byte("not really a png"))
		resp := putProfile(t, ts.APIURL("/user/owner"), token, body, ct)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Only images (jpg, jpeg, png, gif, webp) are allowed")
	})

	t.Run("other user's profile", func(t *testing.T) {
		body, ct := multipartBody(t, "Hacked", "", nil)
		resp := putProfile(t, ts.APIURL("/user/owner"), otherToken, body, ct)
		testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "You can only edit your own profile")
	})

	t.Run("requires auth", func(t *testing.T) {
		body, ct := multipartBody(t, "Anon", "", nil)
		resp := putProfile(t, ts.APIURL("/user/owner"), "", body, ct)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("not multipart", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.APIURL("/user/owner"), token, map[string]string{"name": "x"})
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid form data")
	})

	stored, err := ts.Repos.User.GetByUsername(t.Context(), "owner")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
}
