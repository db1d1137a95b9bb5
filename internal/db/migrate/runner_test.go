package migrate

import "testing"

func TestRunEmptyDSN(t *testing.T) {
	if err := Run("", "up"); err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
}

func TestRunInvalidDirection(t *testing.T) {
	for _, dir := range []string{"", "sideways", "UP", "Down"} {
		if err := Run("postgres://localhost/test", dir); err == nil {
			t.Errorf("Run with direction %q should return error", dir)
		}
	}
}

func TestMigrationSourceIsReadable(t *testing.T) {
	// An unreachable host still has to get past source-driver creation, so a
	// broken embed would surface here as a "migrate source" error.
	err := Run("postgres://localhost:1/none", "up")
	if err == nil {
		t.Skip("unexpected live database")
	}
	if got := err.Error(); len(got) == 0 {
		t.Error("error message should not be empty")
	}
}
