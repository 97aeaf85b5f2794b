package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 50051, cfg.Server.GRPCPort)
	assert.Equal(t, "doctor", cfg.Seed.DoctorUsername)
	assert.Equal(t, TransportHTTP, cfg.Portal.Transport)
	assert.Equal(t, 10*time.Second, cfg.Portal.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Features.MobileField)
	assert.True(t, cfg.Features.Prescriptions)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "5050")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")
	t.Setenv("WEB_ORIGIN", "http://a.test, http://b.test")
	t.Setenv("PORTAL_TRANSPORT", "grpc")
	t.Setenv("FEATURES_MOBILE_FIELD", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Portal.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "postgres://localhost/clinic", cfg.Database.URL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.Origins)
	assert.Equal(t, TransportGRPC, cfg.Portal.Transport)
	assert.False(t, cfg.Features.MobileField)
}

func TestValidateServer(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.EqualError(t, cfg.ValidateServer(), "JWT_SECRET is required")

	cfg.JWT.Secret = "x"
	assert.NoError(t, cfg.ValidateServer())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.ValidateServer())
}

func TestValidatePortal(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.EqualError(t, cfg.ValidatePortal(), "SESSION_SECRET is required")

	cfg.Session.Secret = "x"
	assert.NoError(t, cfg.ValidatePortal())

	cfg.Portal.Transport = "carrier-pigeon"
	assert.Error(t, cfg.ValidatePortal())
}
