package neo4jstore

import (
	"context"

	"github.com/m04kA/MHS-BookingService/internal/infra/graph"
)

// schemaStatements are idempotent constraint and index definitions.
var schemaStatements = []string{
	`CREATE CONSTRAINT slot_id IF NOT EXISTS FOR (s:Slot) REQUIRE s.id IS UNIQUE`,
	`CREATE CONSTRAINT slot_key IF NOT EXISTS FOR (s:Slot) REQUIRE s.slotKey IS UNIQUE`,
	`CREATE CONSTRAINT lead_id IF NOT EXISTS FOR (l:Lead) REQUIRE l.id IS UNIQUE`,
	`CREATE CONSTRAINT lead_email IF NOT EXISTS FOR (l:Lead) REQUIRE l.email IS UNIQUE`,
	`CREATE CONSTRAINT salesman_id IF NOT EXISTS FOR (m:Salesman) REQUIRE m.id IS UNIQUE`,
	`CREATE CONSTRAINT salesman_email IF NOT EXISTS FOR (m:Salesman) REQUIRE m.email IS UNIQUE`,
	`CREATE INDEX slot_status_when IF NOT EXISTS FOR (s:Slot) ON (s.status, s.whenUtc)`,
	`CREATE INDEX slot_salesman IF NOT EXISTS FOR (s:Slot) ON (s.salesmanId)`,
}

// EnsureSchema creates the constraints the repositories rely on for uniqueness.
func EnsureSchema(ctx context.Context, client graph.Client) error {
	for _, stmt := range schemaStatements {
		if _, err := client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return wrap("EnsureSchema", err)
		}
	}
	return nil
}
