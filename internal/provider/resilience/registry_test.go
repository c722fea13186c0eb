package resilience_test

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trekatlas/trekatlas/internal/provider/resilience"
)

func TestRegistry_RegisterAndHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.ClientConfig{Name: "opentopodata"})
	registry.Register("opentopodata", client)

	health := registry.Health("opentopodata")
	require.NotNil(t, health)
	assert.Equal(t, "opentopodata", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.Healthy())
	assert.False(t, health.Degraded())
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("opentopodata", resilience.NewClient(resilience.ClientConfig{Name: "opentopodata"}))

	health := registry.Health("opentopodata")
	require.NotNil(t, health)
	assert.Nil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)

	registry.RecordSuccess("opentopodata")
	registry.RecordFailure("opentopodata", assert.AnError)

	health = registry.Health("opentopodata")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
	assert.Equal(t, assert.AnError.Error(), health.LastError)
}

func TestRegistry_All(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"provider-a", "provider-b", "provider-c"} {
		registry.Register(name, resilience.NewClient(resilience.ClientConfig{Name: name}))
	}

	all := registry.All()
	assert.Len(t, all, 3)

	names := make(map[string]bool)
	for _, h := range all {
		names[h.Name] = true
		assert.Equal(t, gobreaker.StateClosed, h.CircuitState)
	}
	assert.True(t, names["provider-a"] && names["provider-b"] && names["provider-c"])
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.Nil(t, registry.Health("nonexistent"))

	// Recording against an unknown name is a no-op, not a panic.
	registry.RecordSuccess("nonexistent")
	registry.RecordFailure("nonexistent", assert.AnError)
}

func TestHealth_States(t *testing.T) {
	tests := []struct {
		state    gobreaker.State
		healthy  bool
		degraded bool
	}{
		{gobreaker.StateClosed, true, false},
		{gobreaker.StateHalfOpen, false, true},
		{gobreaker.StateOpen, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.Health{CircuitState: tt.state}
			assert.Equal(t, tt.healthy, h.Healthy())
			assert.Equal(t, tt.degraded, h.Degraded())
		})
	}
}
