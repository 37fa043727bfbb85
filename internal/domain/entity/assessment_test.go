package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRiskAssessment_JSONCarriesAssessedAt(t *testing.T) {
	at := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	data, err := json.Marshal(RiskAssessment{ID: "a1", AssessedAt: at})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	require.Equal(t, "2026-04-02T08:30:00Z", fields["assessed_at"])
}

func TestTimelineEntry_JSONCarriesCalibrationAnomaly(t *testing.T) {
	data, err := json.Marshal(TimelineEntry{ID: "e1", DiameterMM: 6})
	require.NoError(t, err)
	require.Contains(t, string(data), `"calibration_anomaly":false`)
}
