package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpReadsPgxErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "stores_owner_id_key", TableName: "stores", Message: "duplicate key"}
	err := Wrap(CodeConflict, fmt.Errorf("insert store: %w", pgErr), "create store")

	d := Dump(err)
	if d.PGCode != "23505" || d.PGConstraint != "stores_owner_id_key" || d.PGTable != "stores" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
}

func TestDumpReadsLibPQErrors(t *testing.T) {
	err := fmt.Errorf("update: %w", &pq.Error{Code: "23514", Constraint: "products_status_pairing_check", Table: "products"})

	d := Dump(err)
	if d.PGCode != "23514" || d.PGConstraint != "products_status_pairing_check" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if d.Code != "" {
		t.Fatalf("untyped error should not carry a code, got %s", d.Code)
	}
}
