package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults when environment is empty", func(t *testing.T) {
		t.Setenv("JOBPROMPTER_API_BASE", "")
		t.Setenv("JOBPROMPTER_API_TOKEN", "")
		t.Setenv("API_TIMEOUT", "")
		t.Setenv("API_RETRY_COUNT", "")

		settings := Load()

		assert.Equal(t, DefaultAPIBase, settings.APIBase)
		assert.Empty(t, settings.APIToken)
		assert.Equal(t, DefaultAPITimeout, settings.APITimeout)
		assert.Equal(t, 0, settings.APIRetryCount)
	})

	t.Run("Should read overrides from environment", func(t *testing.T) {
		t.Setenv("JOBPROMPTER_API_BASE", "http://backend:8080/api")
		t.Setenv("JOBPROMPTER_API_TOKEN", "secret")
		t.Setenv("API_TIMEOUT", "5s")
		t.Setenv("API_RETRY_COUNT", "2")

		settings := Load()

		assert.Equal(t, "http://backend:8080/api", settings.APIBase)
		assert.Equal(t, "secret", settings.APIToken)
		assert.Equal(t, 5*time.Second, settings.APITimeout)
		assert.Equal(t, 2, settings.APIRetryCount)
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Run("Should fall back on unparsable values", func(t *testing.T) {
		t.Setenv("SOME_INT", "not-a-number")
		t.Setenv("SOME_DURATION", "forever")

		assert.Equal(t, 7, GetEnvInt("SOME_INT", 7))
		assert.Equal(t, time.Minute, GetEnvDuration("SOME_DURATION", time.Minute))
	})
}
