package postgresadapter

import (
	"reflect"
	"strings"
	"testing"
)

// CreateVoter and SaveVoter translate unique violations on national_id
// into ErrDuplicateNationalID, so the column must actually carry the
// unique index that fires them.
func TestVoterModelNationalIDCarriesUniqueIndex(t *testing.T) {
	field, ok := reflect.TypeOf(voterModel{}).FieldByName("NationalID")
	if !ok {
		t.Fatalf("voterModel has no NationalID field")
	}
	tag := field.Tag.Get("gorm")
	if !strings.Contains(tag, "uniqueIndex") {
		t.Fatalf("expected uniqueIndex on national_id, got tag %q", tag)
	}
	if field.Type.Kind() != reflect.Pointer {
		t.Fatalf("national_id must be nullable so voters without one never collide, got %s", field.Type)
	}
}
