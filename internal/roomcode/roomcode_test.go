package roomcode

import (
	"strings"
	"testing"

	"kindred/internal/models"
	"kindred/internal/testutil"
)

func TestGenerate(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		code, err := Generate(db)
		testutil.AssertNoError(t, err)

		if len(code) != Length {
			t.Fatalf("expected length %d, got %d", Length, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Errorf("unexpected character %q in code %q", r, code)
			}
		}
	})

	t.Run("unique_across_calls", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			code, err := Generate(db)
			testutil.AssertNoError(t, err)
			if seen[code] {
				t.Fatalf("duplicate code issued: %s", code)
			}
			seen[code] = true

			// Occupy the code so later collisions would be real.
			family := &models.Family{Name: "F", RoomCode: code, CreatorID: user.ID}
			if err := db.Create(family).Error; err != nil {
				t.Fatalf("failed to store family: %v", err)
			}
		}
	})
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"abc234":    "ABC234",
		"  ABC234 ": "ABC234",
		"AbC234":    "ABC234",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
