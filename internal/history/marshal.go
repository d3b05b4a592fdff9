package history

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/ptest"
	"github.com/roach88/ptest/internal/canonical"
)

// FailureFields returns the canonical object form of a failure: the
// formatted summary plus either the panic value or the assertion location.
func FailureFields(f *ptest.Failure) map[string]any {
	obj := map[string]any{"summary": f.Error()}
	if f.IsPanic() {
		obj["panic"] = fmt.Sprint(f.Panic)
	} else {
		obj["func"] = f.Func
		obj["file"] = f.File
		obj["line"] = f.Line
		obj["condition"] = f.Condition
	}
	if f.Note != "" {
		obj["note"] = f.Note
	}
	return obj
}

// marshalFailure serializes a failure to canonical JSON. A nil failure is
// stored as SQL NULL.
func marshalFailure(f *ptest.Failure) (sql.NullString, error) {
	if f == nil {
		return sql.NullString{}, nil
	}
	data, err := canonical.Marshal(FailureFields(f))
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal failure: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalFailure decodes a stored failure. NULL decodes to nil.
func unmarshalFailure(s sql.NullString) (*FailureRecord, error) {
	if !s.Valid {
		return nil, nil
	}
	var rec FailureRecord
	if err := json.Unmarshal([]byte(s.String), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal failure: %w", err)
	}
	return &rec, nil
}

func nullString(s string, ok bool) sql.NullString {
	return sql.NullString{String: s, Valid: ok}
}
