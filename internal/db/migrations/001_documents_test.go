package migrations

import "testing"

func TestAllVersionsAreUniqueAndOrdered(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatalf("expected migrations")
	}
	for i, m := range all {
		if m.Version != i+1 {
			t.Fatalf("migration %d has version %d", i, m.Version)
		}
		if m.Name == "" || m.UpSQL == "" {
			t.Fatalf("migration %d is incomplete: %#v", m.Version, m)
		}
	}
}
