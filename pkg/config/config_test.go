package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "hostel", cfg.Database.Name)
	assert.Equal(t, time.Duration(0), cfg.Allocation.RunTimeout)
	assert.Equal(t, time.Minute, cfg.Allocation.PreCheckTTL)
	assert.Equal(t, 24*time.Hour, cfg.Allocation.ResultCacheTTL)
	assert.True(t, cfg.Allocation.Notify)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOCATION_RUN_TIMEOUT", "90s")
	v.Set("ALLOCATION_PRECHECK_CACHE_TTL", "garbage")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)
	assert.Equal(t, 90*time.Second, cfg.Allocation.RunTimeout)
	assert.Equal(t, time.Minute, cfg.Allocation.PreCheckTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
