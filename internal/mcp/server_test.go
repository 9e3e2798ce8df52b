package mcp_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persondir/persondir/internal/codec"
	persondirmcp "github.com/persondir/persondir/internal/mcp"
	"github.com/persondir/persondir/internal/store"
)

// newMCPServer returns a Server backed by a MockStore.
func newMCPServer(t *testing.T) (*persondirmcp.Server, *store.MockStore) {
	t.Helper()
	ms := store.NewMockStore()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv := persondirmcp.NewServer(ms, codec.JSONCodec{}, logger)
	return srv, ms
}

// makeReq builds a CallToolRequest with the given arguments.
func makeReq(toolName string, args map[string]any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	return req
}

// textContent extracts the first TextContent string from a CallToolResult.
func textContent(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content item")
	tc, ok := result.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

// addAndGetID calls the add_person handler and returns the stored record ID.
func addAndGetID(t *testing.T, srv *persondirmcp.Server, args map[string]any) string {
	t.Helper()
	result, err := srv.HandleAddPerson(context.Background(), makeReq("add_person", args))
	require.NoError(t, err)
	require.False(t, result.IsError, "add_person returned error: %s", textContent(t, result))

	var resp struct {
		ID     string `json:"id"`
		Stored bool   `json:"stored"`
	}
	require.NoError(t, codec.JSONCodec{}.Unmarshal([]byte(textContent(t, result)), &resp))
	require.True(t, resp.Stored)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestAddAndGetPerson(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	id := addAndGetID(t, srv, map[string]any{
		"name":           "Ada",
		"age":            float64(36),
		"favourite_food": "tea",
	})

	result, err := srv.HandleGetPerson(ctx, makeReq("get_person", map[string]any{"id": id}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	body := textContent(t, result)
	assert.Contains(t, body, `"person":{"name":"Ada","age":36,"favourite_food":"tea"}`)
}

func TestAddPersonWithoutFavouriteFood(t *testing.T) {
	srv, ms := newMCPServer(t)

	id := addAndGetID(t, srv, map[string]any{"name": "Grace", "age": float64(85)})

	rec, err := ms.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, rec.Person.FavouriteFood)
}

func TestAddPersonEmptyFavouriteFoodIsPresent(t *testing.T) {
	srv, ms := newMCPServer(t)

	id := addAndGetID(t, srv, map[string]any{
		"name":           "Linus",
		"age":            float64(34),
		"favourite_food": "",
	})

	rec, err := ms.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rec.Person.FavouriteFood)
	assert.Equal(t, "", *rec.Person.FavouriteFood)
}

func TestAddPersonValidation(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing name", map[string]any{"age": float64(36)}},
		{"missing age", map[string]any{"name": "Ada"}},
		{"negative age", map[string]any{"name": "Ada", "age": float64(-1)}},
		{"fractional age", map[string]any{"name": "Ada", "age": 36.5}},
		{"non-string food", map[string]any{"name": "Ada", "age": float64(36), "favourite_food": 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := srv.HandleAddPerson(ctx, makeReq("add_person", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestRemovePerson(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	id := addAndGetID(t, srv, map[string]any{"name": "Ada", "age": float64(36)})

	result, err := srv.HandleRemovePerson(ctx, makeReq("remove_person", map[string]any{"id": id}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = srv.HandleGetPerson(ctx, makeReq("get_person", map[string]any{"id": id}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestListPeople(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	addAndGetID(t, srv, map[string]any{"name": "Ada", "age": float64(36)})
	addAndGetID(t, srv, map[string]any{"name": "Grace", "age": float64(85)})

	result, err := srv.HandleListPeople(ctx, makeReq("list_people", map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp struct {
		People []any `json:"people"`
	}
	require.NoError(t, codec.JSONCodec{}.Unmarshal([]byte(textContent(t, result)), &resp))
	assert.Len(t, resp.People, 2)
}

func TestStatsTool(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	addAndGetID(t, srv, map[string]any{"name": "Ada", "age": float64(36), "favourite_food": "tea"})
	addAndGetID(t, srv, map[string]any{"name": "Grace", "age": float64(85)})

	result, err := srv.HandleStats(ctx, makeReq("stats", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	body := textContent(t, result)
	assert.Contains(t, body, `"total_people":2`)
	assert.Contains(t, body, `"with_favourite_food":1`)
}

func TestNilStoreReturnsErrorResults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv := persondirmcp.NewServer(nil, codec.JSONCodec{}, logger)

	result, err := srv.HandleStats(context.Background(), makeReq("stats", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
