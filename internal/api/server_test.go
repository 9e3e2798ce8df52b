package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persondir/persondir/internal/api"
	"github.com/persondir/persondir/internal/codec"
	"github.com/persondir/persondir/internal/models"
	"github.com/persondir/persondir/internal/store"
)

func newTestServer(t *testing.T, authToken string) (http.Handler, *store.MockStore) {
	t.Helper()
	ms := store.NewMockStore()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv := api.NewServer(ms, codec.JSONCodec{}, logger, authToken, 100)
	return srv.Handler(), ms
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func seedRecord(t *testing.T, ms *store.MockStore, id, name string, age uint32, food *string) {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ms.Upsert(context.Background(), models.Record{
		ID:        id,
		Person:    models.Person{Name: name, Age: age, FavouriteFood: food},
		Source:    "test",
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, "")
	w := doRequest(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreatePerson(t *testing.T) {
	h, ms := newTestServer(t, "")

	w := doRequest(t, h, http.MethodPost, "/v1/people",
		`{"name":"Ada","age":36,"favourite_food":"tea"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID     string `json:"id"`
		Stored bool   `json:"stored"`
	}
	require.NoError(t, codec.JSONCodec{}.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Stored)
	require.NotEmpty(t, resp.ID)

	rec, err := ms.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", rec.Person.Name)
	assert.Equal(t, uint32(36), rec.Person.Age)
	require.NotNil(t, rec.Person.FavouriteFood)
	assert.Equal(t, "tea", *rec.Person.FavouriteFood)
	assert.Equal(t, "api", rec.Source)
}

func TestCreatePersonWithoutFavouriteFood(t *testing.T) {
	h, ms := newTestServer(t, "")

	w := doRequest(t, h, http.MethodPost, "/v1/people", `{"name":"Grace","age":85}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, codec.JSONCodec{}.Unmarshal(w.Body.Bytes(), &resp))

	rec, err := ms.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Nil(t, rec.Person.FavouriteFood)
}

func TestCreatePersonValidation(t *testing.T) {
	h, _ := newTestServer(t, "")

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{"name":`},
		{"missing name", `{"age":36}`},
		{"missing age", `{"name":"Ada"}`},
		{"negative age", `{"name":"Ada","age":-1}`},
		{"age too large", `{"name":"Ada","age":4294967296}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/v1/people", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetPersonEmitsContractShape(t *testing.T) {
	h, ms := newTestServer(t, "")
	seedRecord(t, ms, "id-1", "Grace", 85, nil)

	w := doRequest(t, h, http.MethodGet, "/v1/people/id-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	// The embedded person keeps key order and the explicit null.
	assert.Contains(t, w.Body.String(), `"person":{"name":"Grace","age":85,"favourite_food":null}`)
}

func TestGetPersonNotFound(t *testing.T) {
	h, _ := newTestServer(t, "")
	w := doRequest(t, h, http.MethodGet, "/v1/people/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePerson(t *testing.T) {
	h, ms := newTestServer(t, "")
	seedRecord(t, ms, "id-1", "Ada", 36, nil)

	w := doRequest(t, h, http.MethodDelete, "/v1/people/id-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())

	w = doRequest(t, h, http.MethodDelete, "/v1/people/id-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPeople(t *testing.T) {
	h, ms := newTestServer(t, "")
	seedRecord(t, ms, "id-1", "Ada", 36, models.Favourite("tea"))
	seedRecord(t, ms, "id-2", "Grace", 85, nil)
	seedRecord(t, ms, "id-3", "Linus", 34, nil)

	w := doRequest(t, h, http.MethodGet, "/v1/people?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	type listResponse struct {
		People     []models.Record `json:"people"`
		NextCursor string          `json:"next_cursor"`
	}
	var resp listResponse
	require.NoError(t, codec.JSONCodec{}.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.People, 2)
	assert.Equal(t, "id-2", resp.NextCursor)

	w = doRequest(t, h, http.MethodGet, "/v1/people?limit=2&cursor=id-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = listResponse{}
	require.NoError(t, codec.JSONCodec{}.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.People, 1)
	assert.Empty(t, resp.NextCursor)
}

func TestListPeopleEmptyIsAnArray(t *testing.T) {
	h, _ := newTestServer(t, "")
	w := doRequest(t, h, http.MethodGet, "/v1/people", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"people":[]`)
}

func TestListPeopleBadLimit(t *testing.T) {
	h, _ := newTestServer(t, "")
	w := doRequest(t, h, http.MethodGet, "/v1/people?limit=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	h, ms := newTestServer(t, "")
	seedRecord(t, ms, "id-1", "Ada", 36, models.Favourite("tea"))
	seedRecord(t, ms, "id-2", "Grace", 85, nil)

	w := doRequest(t, h, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.DirectoryStats
	require.NoError(t, codec.JSONCodec{}.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 2, stats.TotalPeople)
	assert.EqualValues(t, 1, stats.WithFavouriteFood)
}

func TestAuthRequired(t *testing.T) {
	h, ms := newTestServer(t, "secret-token")
	seedRecord(t, ms, "id-1", "Ada", 36, nil)

	// No token.
	w := doRequest(t, h, http.MethodGet, "/v1/people/id-1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/v1/people/id-1", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/v1/people/id-1", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Healthz stays open.
	w = doRequest(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
