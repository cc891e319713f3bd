//go:build unit

package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySet_FailedFetchIsRetriedNextCall(t *testing.T) {
	t.Parallel()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
	defer server.Close()

	auth := NewAuthenticator(server.URL)
	ctx := context.TODO()

	_, err := auth.keySet(ctx)
	require.Error(t, err)

	set, err := auth.keySet(ctx)
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 2, requests)

	// A successful fetch is cached.
	again, err := auth.keySet(ctx)
	require.NoError(t, err)
	assert.Equal(t, set, again)
	assert.Equal(t, 2, requests)
}

func TestVerify_NoConfigOrHeaderIsAnonymous(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Nil(t, NewAuthenticator("").Verify(req))

	auth := NewAuthenticator("https://auth.example.com/jwks.json")
	assert.Nil(t, auth.Verify(req))
}
