// ABOUTME: Tests for the typed endpoint wrappers
// ABOUTME: Verifies paths, bodies, and decoded shapes against a fake backend

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "x", body["password"])
		assert.Equal(t, "dev-1", body["device_id"])

		fmt.Fprint(w, `{"data":{"access_token":"AT1","refresh_token":"RT1","expires_in":3600},"request_id":"r1"}`)
	}))
	defer server.Close()

	c := New(server.URL)
	pair, err := c.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "x", DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, "AT1", pair.AccessToken)
	assert.Equal(t, "RT1", pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)
}

func TestLogin_IncompletePairRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"access_token":"AT1"}}`)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "x"})
	assert.Error(t, err)
}

func TestRefreshToken_SendsRefreshTokenWithoutRetry(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		require.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "RT1", body["refresh_token"])
		writeError(w, http.StatusUnauthorized, CodeInvalidToken)
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "AT1", nextToken: "AT2"}
	c := New(server.URL, WithTokenSource(tokens))

	_, err := c.RefreshToken(context.Background(), "RT1")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Zero(t, tokens.refreshes)
}

func TestMe_And_UpdateMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"data":{"id":"u1","email":"a@b.com","name":"Ana"}}`)
		case http.MethodPatch:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ana Maria", body["name"])
			_, hasPhone := body["phone"]
			assert.False(t, hasPhone)
			fmt.Fprint(w, `{"data":{"id":"u1","email":"a@b.com","name":"Ana Maria"}}`)
		}
	}))
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	user, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	name := "Ana Maria"
	user, err = c.UpdateMe(ctx, UpdateMeParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", user.Name)
}

func TestUploadAvatar_MultipartForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/me/avatar", r.URL.Path)
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile("avatar")
		if err != nil {
			t.Errorf("failed to read avatar form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		assert.Equal(t, "avatar.jpg", header.Filename)

		fmt.Fprint(w, `{"data":{"id":"u1","email":"a@b.com","avatar_url":"https://cdn/x.jpg"}}`)
	}))
	defer server.Close()

	c := New(server.URL)
	user, err := c.UploadAvatar(context.Background(), "avatar.jpg", []byte("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.jpg", user.AvatarURL)
}

func TestGiftCards_ListAndDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/me/gift_cards":
			fmt.Fprint(w, `{"data":[{"id":"g1","amount_cents":5000,"remaining_balance_cents":2500,"currency":"USD","status":"active"}]}`)
		case "/api/v1/me/gift_cards/g1":
			fmt.Fprint(w, `{"data":{"id":"g1","amount_cents":5000,"remaining_balance_cents":2500,"currency":"USD","status":"active","merchant_name":"Cafe Rio"}}`)
		default:
			writeError(w, http.StatusNotFound, "not_found")
		}
	}))
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	cards, err := c.GiftCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, int64(2500), cards[0].RemainingBalanceCents)

	card, err := c.GiftCard(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Cafe Rio", card.MerchantName)
}

func TestRedemptionToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/me/gift_cards/g1/redemption_token", r.URL.Path)
		fmt.Fprint(w, `{"data":{"token":"RDM123","expires_at":"2026-09-01T00:00:00Z"}}`)
	}))
	defer server.Close()

	c := New(server.URL)
	token, err := c.RedemptionToken(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "RDM123", token.Token)
	assert.Equal(t, "2026-09-01T00:00:00Z", token.ExpiresAt)
}

func TestLogout_PostsRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "RT1", body["refresh_token"])
		fmt.Fprint(w, `{"data":{"revoked":true}}`)
	}))
	defer server.Close()

	c := New(server.URL)
	require.NoError(t, c.Logout(context.Background(), "RT1"))
}
