package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/persondir/persondir/internal/models"
)

// Neo4jStore persists person records as Person nodes in neo4j.
//
// The favourite_food property is written only when the value is present;
// an absent favourite food is an absent property. Reads map a missing
// property back to a nil pointer, so the presence/absence distinction
// survives the round trip through the database.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jStore connects to neo4j and verifies connectivity.
func NewNeo4jStore(ctx context.Context, uri, username, password, database string, logger *slog.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver, database: database, logger: logger}, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

// EnsureConstraints creates the uniqueness constraint on Person.id.
func (s *Neo4jStore) EnsureConstraints(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, runErr := tx.Run(ctx,
			`CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE`,
			nil)
		if runErr != nil {
			return nil, runErr
		}
		_, consumeErr := res.Consume(ctx)
		return nil, consumeErr
	})
	if err != nil {
		return fmt.Errorf("ensuring person_id constraint: %w", err)
	}
	s.logger.Debug("ensured person_id uniqueness constraint")
	return nil
}

// Upsert merges a Person node keyed by ID, replacing all its properties.
func (s *Neo4jStore) Upsert(ctx context.Context, rec models.Record) error {
	props := map[string]any{
		"id":         rec.ID,
		"name":       rec.Person.Name,
		"age":        int64(rec.Person.Age),
		"source":     rec.Source,
		"created_at": rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	// SET p = $props replaces all node properties, which also clears a
	// previously stored favourite_food when the new value is absent.
	if rec.Person.FavouriteFood != nil {
		props["favourite_food"] = *rec.Person.FavouriteFood
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, runErr := tx.Run(ctx,
			`MERGE (p:Person {id: $id}) SET p = $props`,
			map[string]any{"id": rec.ID, "props": props})
		if runErr != nil {
			return nil, runErr
		}
		_, consumeErr := res.Consume(ctx)
		return nil, consumeErr
	})
	if err != nil {
		return fmt.Errorf("upserting person %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a single record by ID.
func (s *Neo4jStore) Get(ctx context.Context, id string) (*models.Record, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer func() { _ = session.Close(ctx) }()

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, runErr := tx.Run(ctx,
			`MATCH (p:Person {id: $id}) RETURN p`,
			map[string]any{"id": id})
		if runErr != nil {
			return nil, runErr
		}
		records, collectErr := res.Collect(ctx)
		if collectErr != nil {
			return nil, collectErr
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		raw, ok := records[0].Get("p")
		if !ok {
			return nil, fmt.Errorf("result has no p column")
		}
		node, ok := raw.(neo4j.Node)
		if !ok {
			return nil, fmt.Errorf("unexpected result type %T", raw)
		}
		rec := recordFromNode(node)
		return &rec, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*models.Record), nil
}

// Delete removes a record by ID.
func (s *Neo4jStore) Delete(ctx context.Context, id string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, runErr := tx.Run(ctx,
			`MATCH (p:Person {id: $id}) DETACH DELETE p`,
			map[string]any{"id": id})
		if runErr != nil {
			return nil, runErr
		}
		summary, consumeErr := res.Consume(ctx)
		if consumeErr != nil {
			return nil, consumeErr
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil
	})
	return err
}

// List returns records in ID order with cursor-based pagination.
func (s *Neo4jStore) List(ctx context.Context, limit uint64, cursor string) ([]models.Record, string, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer func() { _ = session.Close(ctx) }()

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, runErr := tx.Run(ctx,
			`MATCH (p:Person) WHERE p.id > $cursor RETURN p ORDER BY p.id LIMIT $limit`,
			map[string]any{"cursor": cursor, "limit": int64(limit)})
		if runErr != nil {
			return nil, runErr
		}
		records, collectErr := res.Collect(ctx)
		if collectErr != nil {
			return nil, collectErr
		}
		recs := make([]models.Record, 0, len(records))
		for _, r := range records {
			raw, ok := r.Get("p")
			if !ok {
				continue
			}
			node, ok := raw.(neo4j.Node)
			if !ok {
				continue
			}
			recs = append(recs, recordFromNode(node))
		}
		return recs, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("listing people: %w", err)
	}

	recs := out.([]models.Record)
	var nextCursor string
	if limit > 0 && uint64(len(recs)) == limit {
		nextCursor = recs[len(recs)-1].ID
	}
	return recs, nextCursor, nil
}

// Count returns the number of stored records.
func (s *Neo4jStore) Count(ctx context.Context) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer func() { _ = session.Close(ctx) }()

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, runErr := tx.Run(ctx, `MATCH (p:Person) RETURN count(p) AS c`, nil)
		if runErr != nil {
			return nil, runErr
		}
		record, singleErr := res.Single(ctx)
		if singleErr != nil {
			return nil, singleErr
		}
		raw, _ := record.Get("c")
		c, ok := raw.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected count type %T", raw)
		}
		return c, nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting people: %w", err)
	}
	return out.(int64), nil
}

// Stats returns collection statistics computed server-side.
func (s *Neo4jStore) Stats(ctx context.Context) (*models.DirectoryStats, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer func() { _ = session.Close(ctx) }()

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		stats := &models.DirectoryStats{ByAgeDecade: make(map[string]int64)}

		// count(p.favourite_food) counts only nodes where the property
		// is present, which is exactly the presence semantics we store.
		res, runErr := tx.Run(ctx,
			`MATCH (p:Person) RETURN count(p) AS total, count(p.favourite_food) AS with_food`,
			nil)
		if runErr != nil {
			return nil, runErr
		}
		record, singleErr := res.Single(ctx)
		if singleErr != nil {
			return nil, singleErr
		}
		if raw, ok := record.Get("total"); ok {
			if total, ok := raw.(int64); ok {
				stats.TotalPeople = total
			}
		}
		if raw, ok := record.Get("with_food"); ok {
			if withFood, ok := raw.(int64); ok {
				stats.WithFavouriteFood = withFood
			}
		}

		res, runErr = tx.Run(ctx,
			`MATCH (p:Person) RETURN p.age / 10 * 10 AS decade, count(*) AS c`,
			nil)
		if runErr != nil {
			return nil, runErr
		}
		records, collectErr := res.Collect(ctx)
		if collectErr != nil {
			return nil, collectErr
		}
		for _, r := range records {
			rawDecade, _ := r.Get("decade")
			rawCount, _ := r.Get("c")
			decade, ok := rawDecade.(int64)
			if !ok {
				continue
			}
			c, ok := rawCount.(int64)
			if !ok {
				continue
			}
			stats.ByAgeDecade[models.AgeDecade(uint32(decade))] = c
		}

		return stats, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching directory stats: %w", err)
	}
	return out.(*models.DirectoryStats), nil
}

// Close shuts down the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// recordFromNode maps a Person node's properties onto a Record. A missing
// favourite_food property becomes a nil pointer.
func recordFromNode(n neo4j.Node) models.Record {
	var rec models.Record
	if v, ok := n.Props["id"].(string); ok {
		rec.ID = v
	}
	if v, ok := n.Props["name"].(string); ok {
		rec.Person.Name = v
	}
	if v, ok := n.Props["age"].(int64); ok {
		rec.Person.Age = uint32(v)
	}
	if v, ok := n.Props["favourite_food"].(string); ok {
		food := v
		rec.Person.FavouriteFood = &food
	}
	if v, ok := n.Props["source"].(string); ok {
		rec.Source = v
	}
	if v, ok := n.Props["created_at"].(string); ok {
		if t, parseErr := time.Parse(time.RFC3339Nano, v); parseErr == nil {
			rec.CreatedAt = t
		}
	}
	if v, ok := n.Props["updated_at"].(string); ok {
		if t, parseErr := time.Parse(time.RFC3339Nano, v); parseErr == nil {
			rec.UpdatedAt = t
		}
	}
	return rec
}
