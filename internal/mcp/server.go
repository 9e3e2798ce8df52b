// Package mcp implements the Model Context Protocol server for persondir.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/persondir/persondir/internal/codec"
	"github.com/persondir/persondir/internal/models"
	"github.com/persondir/persondir/internal/store"
)

// defaultListLimit is the default number of results for list_people.
const defaultListLimit = 25

// Server wraps an MCPServer with persondir dependencies.
type Server struct {
	mcp    *mcpserver.MCPServer
	st     store.Store
	codec  codec.Codec
	logger *slog.Logger
}

// NewServer creates a new MCP server. If st is nil, tool calls will return
// an error response instead of panicking.
func NewServer(st store.Store, c codec.Codec, logger *slog.Logger) *Server {
	s := &Server{
		st:     st,
		codec:  c,
		logger: logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"persondir",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildAddPersonTool(), s.handleAddPerson)
	mcpSrv.AddTool(buildGetPersonTool(), s.handleGetPerson)
	mcpSrv.AddTool(buildListPeopleTool(), s.handleListPeople)
	mcpSrv.AddTool(buildRemovePersonTool(), s.handleRemovePerson)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleAddPerson is the exported handler for the "add_person" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleAddPerson(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAddPerson(ctx, req)
}

// HandleGetPerson is the exported handler for the "get_person" tool.
func (s *Server) HandleGetPerson(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleGetPerson(ctx, req)
}

// HandleListPeople is the exported handler for the "list_people" tool.
func (s *Server) HandleListPeople(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleListPeople(ctx, req)
}

// HandleRemovePerson is the exported handler for the "remove_person" tool.
func (s *Server) HandleRemovePerson(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRemovePerson(ctx, req)
}

// HandleStats is the exported handler for the "stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v through the codec and returns it as a tool text result.
func (s *Server) toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := s.codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildAddPersonTool() mcpgo.Tool {
	return mcpgo.NewTool("add_person",
		mcpgo.WithDescription("Store a person in the directory. Omit favourite_food when it is unknown; an empty string is a known-but-empty value, not absence."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("The person's display name"),
		),
		mcpgo.WithNumber("age",
			mcpgo.Required(),
			mcpgo.Description("Age in whole years, non-negative"),
		),
		mcpgo.WithString("favourite_food",
			mcpgo.Description("The person's favourite food, if known"),
		),
	)
}

func buildGetPersonTool() mcpgo.Tool {
	return mcpgo.NewTool("get_person",
		mcpgo.WithDescription("Retrieve a person record by ID. Returns the serialized record; favourite_food is null when unknown."),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("The ID of the person to retrieve"),
		),
	)
}

func buildListPeopleTool() mcpgo.Tool {
	return mcpgo.NewTool("list_people",
		mcpgo.WithDescription("List person records in stable ID order with cursor pagination."),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of results (default: 25)"),
		),
		mcpgo.WithString("cursor",
			mcpgo.Description("Opaque pagination cursor from a previous call"),
		),
	)
}

func buildRemovePersonTool() mcpgo.Tool {
	return mcpgo.NewTool("remove_person",
		mcpgo.WithDescription("Delete a person record by ID."),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("The ID of the person to delete"),
		),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("stats",
		mcpgo.WithDescription("Get directory statistics: total people, how many have a favourite food, breakdown by age decade."),
	)
}

// --- tool handlers ---

// handleAddPerson validates the arguments and upserts a new person record.
func (s *Server) handleAddPerson(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	name, ok := req.GetArguments()["name"].(string)
	if !ok {
		return mcpgo.NewToolResultError("name is required and must be a string"), nil
	}

	age := req.GetFloat("age", -1)
	if age < 0 || age != math.Trunc(age) || age > math.MaxUint32 {
		return mcpgo.NewToolResultError("age must be a non-negative integer no greater than 4294967295"), nil
	}

	// Key presence carries meaning: a missing favourite_food is absence,
	// an empty string is a present empty value.
	var favourite *string
	if raw, present := req.GetArguments()["favourite_food"]; present {
		food, isString := raw.(string)
		if !isString {
			return mcpgo.NewToolResultError("favourite_food must be a string"), nil
		}
		favourite = &food
	}

	now := time.Now().UTC()
	rec := models.Record{
		ID: uuid.NewString(),
		Person: models.Person{
			Name:          name,
			Age:           uint32(age),
			FavouriteFood: favourite,
		},
		Source:    "mcp",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.st.Upsert(ctx, rec); err != nil {
		return mcpgo.NewToolResultErrorf("store upsert failed: %s", err.Error()), nil
	}

	return s.toolResultJSON(map[string]any{"id": rec.ID, "stored": true})
}

// handleGetPerson retrieves a record by ID.
func (s *Server) handleGetPerson(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	id := req.GetString("id", "")
	if strings.TrimSpace(id) == "" {
		return mcpgo.NewToolResultError("id is required and must not be empty"), nil
	}

	rec, err := s.st.Get(ctx, id)
	if err != nil {
		return mcpgo.NewToolResultErrorf("store get failed: %s", err.Error()), nil
	}

	return s.toolResultJSON(rec)
}

// handleListPeople returns a page of records.
func (s *Server) handleListPeople(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	limit := req.GetFloat("limit", defaultListLimit)
	if limit <= 0 || limit != math.Trunc(limit) {
		return mcpgo.NewToolResultError("limit must be a positive integer"), nil
	}
	cursor := req.GetString("cursor", "")

	people, next, err := s.st.List(ctx, uint64(limit), cursor)
	if err != nil {
		return mcpgo.NewToolResultErrorf("store list failed: %s", err.Error()), nil
	}

	if people == nil {
		people = []models.Record{}
	}

	return s.toolResultJSON(map[string]any{
		"people":      people,
		"next_cursor": next,
	})
}

// handleRemovePerson deletes a record by ID.
func (s *Server) handleRemovePerson(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	id := req.GetString("id", "")
	if strings.TrimSpace(id) == "" {
		return mcpgo.NewToolResultError("id is required and must not be empty"), nil
	}

	if err := s.st.Delete(ctx, id); err != nil {
		return mcpgo.NewToolResultErrorf("store delete failed: %s", err.Error()), nil
	}

	return s.toolResultJSON(map[string]bool{"deleted": true})
}

// handleStats returns directory statistics.
func (s *Server) handleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	stats, err := s.st.Stats(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("store stats failed: %s", err.Error()), nil
	}

	return s.toolResultJSON(stats)
}
