package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostlock/console/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL, Token: "test-token"})
	require.NoError(t, err)
	return client, server
}

func TestBearerCredentialOnEveryCall(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]model.Case{})
	}))

	_, err := client.ListCases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestListCases(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cases/", r.URL.Path)
		json.NewEncoder(w).Encode([]model.Case{{ID: 1, Name: "Alpha", Description: "first"}})
	}))

	cases, err := client.ListCases(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "Alpha", cases[0].Name)
}

func TestUnauthorizedTriggersTeardown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tornDown := 0
	client, err := NewClient(Options{
		BaseURL:        server.URL,
		Token:          "expired",
		OnUnauthorized: func() { tornDown++ },
	})
	require.NoError(t, err)

	_, err = client.ListEntities(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, tornDown)

	// A second rejection of the same credential does not tear down again.
	_, err = client.ListCases(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, tornDown)

	// A replaced credential gets its own teardown.
	client.SetToken("still-bad")
	_, err = client.ListCases(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 2, tornDown)
}

func TestAPIErrorCarriesServerDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Entity not found"})
	}))

	err := client.DeleteEntity(context.Background(), 42)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
	assert.Equal(t, "Entity not found", apiErr.Detail)
	assert.Contains(t, err.Error(), "Entity not found")
}

func TestAPIErrorWithoutDetailFallsBackToStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	err := client.DeleteCase(context.Background(), 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Conflict())
	assert.Contains(t, apiErr.Error(), "409")
}

func TestLoginInstallsToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "alice", payload["username"])
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh", "token_type": "bearer"})
	}))

	token, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, "fresh", client.token)
}

func TestRunTransform(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entities/10/transforms/run", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(model.TransformResult{
			Nodes:   []model.Entity{{ID: 12, CaseID: 1, Name: "AbuseIPDB score=7", Kind: "threat"}},
			Edges:   []model.Relationship{{ID: 102, SourceEntityID: 10, TargetEntityID: 12, Relation: "reported_as"}},
			Message: "",
		})
	}))

	result, err := client.RunTransform(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, result.Nodes, 1)
	assert.Len(t, result.Edges, 1)
}

func TestTimelineLimit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]model.TimelineEvent{})
	}))

	_, err := client.ListTimeline(context.Background(), 25)
	require.NoError(t, err)
}

func TestDeleteEndpointsHaveNoTrailingSlash(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	ctx := context.Background()
	require.NoError(t, client.DeleteCase(ctx, 1))
	require.NoError(t, client.DeleteEntity(ctx, 2))
	require.NoError(t, client.DeleteRelationship(ctx, 3))
	require.NoError(t, client.DeleteComment(ctx, 4))
	require.NoError(t, client.DeleteAPIKey(ctx, 5))

	// The server routes deletes on /{id}; a trailing slash would only
	// work through a 307 redirect.
	assert.Equal(t, []string{
		"/cases/1",
		"/entities/2",
		"/relationships/3",
		"/comments/4",
		"/apikeys/5",
	}, paths)
}

func TestCreateRelationshipPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(10), payload["source_entity_id"])
		assert.Equal(t, float64(11), payload["target_entity_id"])
		assert.Equal(t, "resolves_to", payload["relation"])
		json.NewEncoder(w).Encode(model.Relationship{ID: 100, SourceEntityID: 10, TargetEntityID: 11, Relation: "resolves_to"})
	}))

	created, err := client.CreateRelationship(context.Background(), 10, 11, "resolves_to")
	require.NoError(t, err)
	assert.Equal(t, int64(100), created.ID)
}
