package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8001/api/v1/auth", cfg.Services.AuthServiceURL)
	assert.Equal(t, "http://localhost:8003/api/v1/clinic-service", cfg.Services.ClinicServiceURL)
	assert.Equal(t, "http://localhost:8002/api/v1/patient-service", cfg.Services.PatientServiceURL)
	assert.Equal(t, 10*time.Second, cfg.Services.RequestTimeout)
	assert.Equal(t, 0, cfg.Booking.FacilityCacheTTLSeconds)
	assert.Equal(t, 50, cfg.Booking.NearbyRadiusKm)
	assert.Equal(t, 6, cfg.Booking.PageSize)
	assert.Equal(t, "none", cfg.Events.Backend)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoad_ServiceURLs(t *testing.T) {
	t.Setenv("PATIENT_SERVICE_URL", "https://patients.internal/api/v1/patient-service")
	t.Setenv("SERVICE_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://patients.internal/api/v1/patient-service", cfg.Services.PatientServiceURL)
	assert.Equal(t, 3*time.Second, cfg.Services.RequestTimeout)
}

func TestLoad_RejectsInvalidServiceURL(t *testing.T) {
	t.Setenv("CLINIC_SERVICE_URL", "localhost-without-scheme")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CLINIC_SERVICE_URL")
}

func TestLoad_EventsBackend(t *testing.T) {
	t.Setenv("EVENTS_BACKEND", "Kafka")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "kafka", cfg.Events.Backend)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Events.KafkaBrokers)

	t.Setenv("EVENTS_BACKEND", "rabbit")
	_, err = Load()
	assert.Error(t, err)
}

func TestAddressHelpers(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", db.DatabaseDSN())

	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.RedisAddr())
}
