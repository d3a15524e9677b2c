package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ping(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestCheckerRegistry_Check(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name     string
		required error
		optional error
		want     Status
		code     int
	}{
		{name: "all up", want: StatusHealthy, code: http.StatusOK},
		{name: "optional down", optional: down, want: StatusDegraded, code: http.StatusOK},
		{name: "required down", required: down, want: StatusUnhealthy, code: http.StatusServiceUnavailable},
		{name: "both down", required: down, optional: down, want: StatusUnhealthy, code: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewCheckerRegistry()
			registry.Register(NewPingChecker("postgresql", ping(tt.required)))
			registry.RegisterOptional(NewPingChecker("mongodb", ping(tt.optional)))

			h := registry.Check(context.Background())
			assert.Equal(t, tt.want, h.Status)
			assert.Equal(t, tt.code, h.HTTPStatus())
			assert.Len(t, h.Checks, 2)
			assert.True(t, h.Checks["mongodb"].Optional)

			if tt.required != nil {
				assert.Equal(t, StatusUnhealthy, h.Checks["postgresql"].Status)
				assert.Contains(t, h.Checks["postgresql"].Message, "postgresql ping failed")
			}
			if tt.optional != nil {
				assert.Equal(t, StatusDegraded, h.Checks["mongodb"].Status)
			}
		})
	}
}
