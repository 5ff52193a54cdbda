package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.66": true},
		EndpointConfigs: []EndpointConfig{
			{Path: "/v1/talent-pool/recompute", Method: "POST", Limit: 6, Window: time.Hour, Burst: 2},
			{Path: "/v1/candidates/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 3},
		},
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := testConfig().EndpointConfigs

	tests := []struct {
		name     string
		path     string
		method   string
		wantPath string
		wantNil  bool
	}{
		{name: "exact", path: "/v1/talent-pool/recompute", method: "POST", wantPath: "/v1/talent-pool/recompute"},
		{name: "prefix", path: "/v1/candidates/abc/score", method: "POST", wantPath: "/v1/candidates/"},
		{name: "method mismatch", path: "/v1/talent-pool/recompute", method: "GET", wantNil: true},
		{name: "no match", path: "/v1/other", method: "GET", wantNil: true},
		{name: "health unlimited", path: "/health", method: "GET", wantPath: "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestLimiter_BurstThenReject(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("1.2.3.4", "/v1/talent-pool/recompute", "POST")
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, 6, info.Limit)
	}

	allowed, info := l.Allow("1.2.3.4", "/v1/talent-pool/recompute", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.True(t, info.ResetTime.After(time.Now()))

	// Another client has its own bucket.
	allowed, _ = l.Allow("5.6.7.8", "/v1/talent-pool/recompute", "POST")
	assert.True(t, allowed)
}

func TestLimiter_PrefixTierSharedAcrossIDs(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/v1/candidates/id-"+string(rune('a'+i))+"/score", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("1.2.3.4", "/v1/candidates/id-z/score", "POST")
	assert.False(t, allowed)
}

func TestLimiter_ListsAndDisabled(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/v1/talent-pool/recompute", "POST")
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.66", "/v1/talent-pool", "GET")
	assert.False(t, allowed)

	off := NewLimiter(&Config{Enabled: false})
	defer off.Stop()
	allowed, info := off.Allow("1.2.3.4", "/v1/talent-pool/recompute", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 0, info.Limit)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/health", "GET")
		assert.True(t, allowed)
	}
	assert.Equal(t, 0, l.Size())
}

func TestLimiter_Sweep(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/v1/talent-pool", "GET")
	l.Allow("5.6.7.8", "/v1/talent-pool", "GET")
	assert.Equal(t, 2, l.Size())

	l.Sweep(time.Now().Add(time.Second))
	assert.Equal(t, 0, l.Size())
}

func TestLimiter_StopTwice(t *testing.T) {
	cfg := testConfig()
	cfg.CleanupInterval = time.Millisecond
	l := NewLimiter(cfg)
	l.Stop()
	l.Stop()
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "")
	t.Setenv("RATE_LIMIT_WHITELIST", "127.0.0.1, ::1")
	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 600, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["127.0.0.1"])
	assert.True(t, cfg.Whitelist["::1"])
	assert.NotEmpty(t, cfg.EndpointConfigs)
}
