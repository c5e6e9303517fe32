package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTracing_Disabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_Enabled(t *testing.T) {
	// The gRPC exporter connects lazily, so no collector is needed.
	shutdown, err := SetupTracing(context.Background(), TracingConfig{
		Endpoint:    "http://127.0.0.1:4317",
		ServiceName: "hr-pulse-test",
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestCollectorAddress(t *testing.T) {
	tests := []struct {
		in           string
		wantHost     string
		wantInsecure bool
		wantErr      bool
	}{
		{in: "localhost:4317", wantHost: "localhost:4317", wantInsecure: true},
		{in: "http://localhost:4317", wantHost: "localhost:4317", wantInsecure: true},
		{in: "https://otel.example.com:4317", wantHost: "otel.example.com:4317", wantInsecure: false},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, insecure, err := collectorAddress(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantInsecure, insecure)
		})
	}
}
