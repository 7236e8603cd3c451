package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5, cfg.Dashboard.RecentLimit)
	assert.True(t, cfg.Catalog.Seed)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.Mail.Enabled())
	assert.Equal(t, "http://localhost:8080", cfg.Server.PublicURL)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
database:
  driver: postgres
  uri: postgres://localhost/liftlog
jwt:
  secret: from-file
  expiration: 90m
s3:
  bucket_name: exports
mail:
  from: liftlog <noreply@liftlog.test>
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MAIL_API_KEY", "re_from_env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
	assert.True(t, cfg.S3.Enabled())
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, "liftlog <noreply@liftlog.test>", cfg.Mail.From)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:   ServerConfig{Timezone: "Europe/Berlin"},
		Database: DatabaseConfig{Driver: DriverMemory},
		JWT:      JWTConfig{Secret: "s", Expiration: time.Hour},
	}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.JWT.Secret = ""
	missing.Database = DatabaseConfig{Driver: DriverMongo}
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
	assert.Contains(t, err.Error(), "database.uri")

	unknown := valid
	unknown.Database.Driver = "sqlite"
	assert.ErrorContains(t, unknown.Validate(), "unknown database.driver")

	badZone := valid
	badZone.Server.Timezone = "Mars/Olympus"
	assert.Error(t, badZone.Validate())

	noMailer := valid
	noMailer.Auth.RequireEmailConfirmation = true
	assert.ErrorContains(t, noMailer.Validate(), "mail.api_key")

	noSender := noMailer
	noSender.Mail.APIKey = "re_test"
	assert.ErrorContains(t, noSender.Validate(), "mail.from")

	mailing := noSender
	mailing.Mail.From = "liftlog <noreply@liftlog.test>"
	assert.NoError(t, mailing.Validate())
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, ServerConfig{Timezone: "nowhere"}.Location())
	assert.Equal(t, "Europe/Berlin", ServerConfig{Timezone: "Europe/Berlin"}.Location().String())
}
