package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/followups/internal/config"
	"github.com/jwalitptl/followups/pkg/auth"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// sqliteOpener shares one database file across the commands of a test.
func sqliteOpener(t *testing.T) func(context.Context, config.DatabaseConfig) (*sqlx.DB, error) {
	path := filepath.Join(t.TempDir(), "cli.db")
	return func(ctx context.Context, _ config.DatabaseConfig) (*sqlx.DB, error) {
		db, err := sqlx.ConnectContext(ctx, "sqlite3", "file:"+path+"?_foreign_keys=on")
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}
}

func run(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "migrate", "clinic", "staff", "token"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestTokenIssue(t *testing.T) {
	cfgPath := writeConfig(t, "auth:\n  jwt_secret: cli-secret\n  issuer: tests\n")
	userID := uuid.New()

	out, err := run(t, &RootOptions{}, "--config", cfgPath, "token", "issue", "--user", userID.String(), "--ttl", "1h")
	require.NoError(t, err)

	identity, err := auth.NewVerifier(auth.Config{Secret: "cli-secret", Issuer: "tests"}).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
}

func TestTokenIssueRejectsBadUser(t *testing.T) {
	cfgPath := writeConfig(t, "auth:\n  jwt_secret: cli-secret\n")

	_, err := run(t, &RootOptions{}, "--config", cfgPath, "token", "issue", "--user", "nobody")
	assert.Error(t, err)
}

func TestClinicAndStaffCommands(t *testing.T) {
	cfgPath := writeConfig(t, "log:\n  level: error\n")
	opts := &RootOptions{OpenDB: sqliteOpener(t)}

	_, err := run(t, opts, "--config", cfgPath, "migrate")
	require.NoError(t, err)

	out, err := run(t, opts, "--config", cfgPath, "clinic", "create", "--name", "Sunrise Clinic")
	require.NoError(t, err)
	fields := strings.Split(strings.TrimSpace(out), "\t")
	require.Len(t, fields, 3)
	code := fields[1]
	assert.Equal(t, "Sunrise Clinic", fields[2])

	out, err = run(t, opts, "--config", cfgPath, "clinic", "list")
	require.NoError(t, err)
	assert.Contains(t, out, code)

	userID := uuid.New()
	out, err = run(t, opts, "--config", cfgPath, "staff", "bind", "--user", userID.String(), "--clinic-code", code)
	require.NoError(t, err)
	assert.Contains(t, out, userID.String())

	// A user belongs to at most one clinic.
	_, err = run(t, opts, "--config", cfgPath, "staff", "bind", "--user", userID.String(), "--clinic-code", code)
	assert.Error(t, err)

	_, err = run(t, opts, "--config", cfgPath, "staff", "bind", "--user", uuid.NewString(), "--clinic-code", "missing")
	assert.Error(t, err)
}

func TestServeRequiresSecret(t *testing.T) {
	cfgPath := writeConfig(t, "log:\n  level: error\n")
	opts := &RootOptions{OpenDB: sqliteOpener(t)}

	_, err := run(t, opts, "--config", cfgPath, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}
