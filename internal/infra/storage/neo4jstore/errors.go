// Package neo4jstore implements the slot, booking, lead and salesman repositories on Neo4j.
// Slots are nodes offered by salesmen (OFFERS_APPOINTMENT) and reserved by leads
// (HAS_APPOINTMENT).
package neo4jstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/txmanager"
)

// ErrQuery wraps every failed Cypher statement.
var ErrQuery = errors.New("neo4jstore: query failed")

const (
	codeConstraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"
	codeDatabaseUnavailable = "Neo.TransientError.General.DatabaseUnavailable"
	prefixTransientTx       = "Neo.TransientError.Transaction."
)

// classify maps driver errors onto the shared storage sentinels.
func classify(err error) error {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case neoErr.Code == codeConstraintViolation:
			return storage.ErrDuplicate
		case neoErr.Code == codeDatabaseUnavailable:
			return storage.ErrUnavailable
		case strings.HasPrefix(neoErr.Code, prefixTransientTx):
			// deadlocks and lock timeouts between competing writers
			return txmanager.ErrSerializationFailure
		}
		return nil
	}

	if neo4j.IsConnectivityError(err) || errors.Is(err, context.DeadlineExceeded) {
		return storage.ErrUnavailable
	}
	return nil
}

func wrap(op string, err error) error {
	if class := classify(err); class != nil {
		return fmt.Errorf("%w: %s: %w: %v", ErrQuery, op, class, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrQuery, op, err)
}
