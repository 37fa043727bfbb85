package vision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dermacheck/internal/domain/entity"
)

func TestAsymmetryRatio_DiskIsSymmetric(t *testing.T) {
	m := maskFrom(80, 80, disk(39.5, 39.5, 25))
	require.Less(t, asymmetryRatio(m), 0.05)
}

func TestAsymmetryRatio_LobedShapeIsAsymmetric(t *testing.T) {
	main := disk(60, 60, 30)
	lobe := disk(42, 86, 14)
	m := maskFrom(120, 120, func(x, y int) bool { return main(x, y) || lobe(x, y) })

	require.Greater(t, asymmetryRatio(m), asymmetryRatio(maskFrom(120, 120, main)))
}

func TestBorderIrregularity(t *testing.T) {
	round := maskFrom(80, 80, disk(39.5, 39.5, 25))
	require.Less(t, borderIrregularity(round, traceContour(round)), 0.25)

	big := disk(60, 60, 35)
	bite := disk(90, 60, 25)
	bean := maskFrom(120, 120, func(x, y int) bool { return big(x, y) && !bite(x, y) })
	require.GreaterOrEqual(t, borderIrregularity(bean, traceContour(bean)), 0.25)
}

func TestTiers(t *testing.T) {
	cuts := [2]float64{0.15, 0.30}
	require.Equal(t, 0, tier2(0.149, cuts))
	require.Equal(t, 1, tier2(0.15, cuts))
	require.Equal(t, 2, tier2(0.30, cuts))

	cuts3 := [3]float64{0.05, 0.15, 0.25}
	require.Equal(t, 0, tier3(0, cuts3))
	require.Equal(t, 1, tier3(0.05, cuts3))
	require.Equal(t, 2, tier3(0.2, cuts3))
	require.Equal(t, 3, tier3(0.9, cuts3))
}

func TestRGBToHSV_OpenCVRange(t *testing.T) {
	h, s, v := rgbToHSV(255, 0, 0)
	require.InDelta(t, 0, h, 1e-9)
	require.InDelta(t, 255, s, 1e-9)
	require.InDelta(t, 255, v, 1e-9)

	h, _, _ = rgbToHSV(0, 0, 255)
	require.InDelta(t, 120, h, 1e-9)
}

func TestClassifyColor(t *testing.T) {
	cases := []struct {
		rgb  [3]float64
		want entity.ColorClass
	}{
		{[3]float64{25, 20, 20}, entity.ColorBlack},
		{[3]float64{100, 60, 40}, entity.ColorDarkBrown},
		{[3]float64{205, 160, 140}, entity.ColorLightBrown},
		{[3]float64{180, 50, 60}, entity.ColorRed},
		{[3]float64{90, 100, 130}, entity.ColorBlueGray},
		{[3]float64{120, 120, 120}, entity.ColorBlueGray},
		{[3]float64{240, 238, 235}, entity.ColorWhite},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, classifyColor(tc.rgb), "rgb %v", tc.rgb)
	}
}

func TestColorScore(t *testing.T) {
	require.Equal(t, 0, colorScore(0))
	require.Equal(t, 0, colorScore(1))
	require.Equal(t, 1, colorScore(2))
	require.Equal(t, 2, colorScore(3))
	require.Equal(t, 2, colorScore(6))
}
