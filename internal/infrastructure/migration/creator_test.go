package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add owners table", "add_owners_table"},
		{"Add-Owners-Table", "add_owners_table"},
		{"ADD_OWNERS_TABLE", "add_owners_table"},
		{"add__owners__table", "add_owners_table"},
		{"Seed Category 2", "seed_category_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add owner email", "Index owner identities")
	require.NoError(t, err)
	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, "000001_add_owner_email.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000001_add_owner_email.down.sql", filepath.Base(mf.DownPath))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add owner email")
	assert.Contains(t, string(up), "Index owner identities")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(down), "-- Rollback: add owner email"))

	second, err := CreateMigration(dir, "second", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_add_owner_email", "000002_second"}, names)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestCreateMigration_ContinuesFromExistingVersions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_existing.up.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_existing.down.sql"), nil, 0o644))

	mf, err := CreateMigration(dir, "next", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbedded(t *testing.T) {
	names, err := Embedded()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_catalog",
		"000002_import_supplier_product",
		"000003_seed_fallback_category",
	}, names)

	for _, name := range names {
		for _, suffix := range []string{".up.sql", ".down.sql"} {
			body, err := embedded.ReadFile("sql/" + name + suffix)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(string(body)), name+suffix)
		}
	}
}

func TestEmbedded_FunctionSignatureMatchesImporter(t *testing.T) {
	body, err := embedded.ReadFile("sql/000002_import_supplier_product.up.sql")
	require.NoError(t, err)

	sig := string(body)
	start := strings.Index(sig, "import_supplier_product(")
	end := strings.Index(sig, ") RETURNS uuid")
	require.True(t, start >= 0 && end > start)

	params := strings.Split(sig[start+len("import_supplier_product("):end], ",")
	assert.Len(t, params, 25)
}
