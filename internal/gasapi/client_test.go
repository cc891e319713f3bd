//go:build unit

package gasapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ota618/shachoai-sub000/internal/outbox"
)

func TestConfirmComplete_SendsActionAndHints(t *testing.T) {
	t.Parallel()

	var got struct {
		Action  string         `json:"action"`
		Payload map[string]any `json:"payload"`
	}
	var auth, tenantID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		tenantID = r.Header.Get("X-Tenant-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("true"))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Token: "jwt-token", TenantID: "org-1"})

	ok, err := client.ConfirmComplete(context.TODO(), 42, &outbox.ItemPayload{Answer: "resolved", URL: "https://example.com/doc"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "complete", got.Action)
	assert.Equal(t, float64(42), got.Payload["row"])
	assert.Equal(t, "resolved", got.Payload["answer"])
	assert.Equal(t, "https://example.com/doc", got.Payload["url"])
	assert.Equal(t, "Bearer jwt-token", auth)
	assert.Equal(t, "org-1", tenantID)
}

func TestConfirmComplete_NilPayloadSendsRowOnly(t *testing.T) {
	t.Parallel()

	var got struct {
		Payload map[string]any `json:"payload"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("true"))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})

	ok, err := client.ConfirmComplete(context.TODO(), 8, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"row": float64(8)}, got.Payload)
}

func TestConfirm_InterpretsBooleanishBodies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want bool
	}{
		{"bare true", "true", true},
		{"quoted true", `"true"`, true},
		{"ok envelope", `{"ok":true}`, true},
		{"success envelope", `{"success":true}`, true},
		{"ok false", `{"ok":false}`, false},
		{"bare false", "false", false},
		{"unrelated object", `{"rows":[]}`, false},
		{"garbage", "whatever", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := New(Config{BaseURL: server.URL})
			ok, err := client.ConfirmNoChange(context.TODO(), 7)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestConfirm_RejectionStatusesArePermanent(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := New(Config{BaseURL: server.URL})
		ok, err := client.ConfirmComplete(context.TODO(), 1, nil)

		assert.False(t, ok)
		assert.ErrorIs(t, err, outbox.ErrPermanent, "status %d", status)
		server.Close()
	}
}

func TestConfirm_GatewayFailureIsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	ok, err := client.ConfirmComplete(context.TODO(), 1, nil)

	assert.False(t, ok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, outbox.ErrPermanent)
}

func TestConfirm_NetworkFailureIsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(Config{BaseURL: server.URL})
	ok, err := client.ConfirmNoChange(context.TODO(), 1)

	assert.False(t, ok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, outbox.ErrPermanent)
}
