package main

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/services"
)

func TestPromptRequestModes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		mode      string
		waypoints []string
	}{
		{"default normal", "A\nB\n\n", services.ModeNormal, nil},
		{"manual", "A\nB\n2\nPark, Lake ,\n", services.ModeManual, []string{"Park", "Lake"}},
		{"auto", "A\nB\n3\n", services.ModeAuto, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			req, err := promptRequest(bufio.NewReader(strings.NewReader(tc.input)), &out)
			require.NoError(t, err)

			assert.Equal(t, "A", req.Origin)
			assert.Equal(t, "B", req.Destination)
			assert.Equal(t, tc.mode, req.Mode)
			assert.Equal(t, tc.waypoints, req.Waypoints)
		})
	}
}

func TestPromptRequestRejectsBadInput(t *testing.T) {
	_, err := promptRequest(bufio.NewReader(strings.NewReader("A\n\n")), &bytes.Buffer{})
	assert.Error(t, err)

	_, err = promptRequest(bufio.NewReader(strings.NewReader("A\nB\n9\n")), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDescribeError(t *testing.T) {
	assert.Contains(t, describeError(domain.ErrNoEligibleRoute), "allowed detour")
	assert.Contains(t, describeError(fmt.Errorf("wrap: %w", domain.ErrNoCandidateRoutes)), "No routes")
	assert.Contains(t, describeError(&domain.MalformedRouteDataError{Index: 2, Field: "distance_meters"}), "route 2")
	assert.Contains(t, describeError(fmt.Errorf("wrap: %w", domain.ErrInvalidDetourDistance)), "distance-banded")
}
