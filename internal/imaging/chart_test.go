package imaging

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

func TestFitChart(t *testing.T) {
	in := stageInputs(t, fitParams())

	data, err := FitChart(in.Result, 4*vg.Inch, 3*vg.Inch)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
	assert.Greater(t, img.Bounds().Dy(), 0)
}

func TestFitChart_NoCurve(t *testing.T) {
	p := fitParams()
	p.MinLineLength = 106
	in := stageInputs(t, p)
	require.Equal(t, horizon.StatusInsufficientData, in.Result.Status)
	require.NotEmpty(t, in.Result.Points)

	data, err := FitChart(in.Result, 4*vg.Inch, 3*vg.Inch)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestFitChart_NilResult(t *testing.T) {
	_, err := FitChart(nil, 4*vg.Inch, 3*vg.Inch)
	assert.Error(t, err)

	_, err = Chart(nil, 4*vg.Inch, 3*vg.Inch)
	assert.Error(t, err)
}

func TestChart(t *testing.T) {
	in := stageInputs(t, fitParams())

	res, err := Chart(in.Result, 4*vg.Inch, 3*vg.Inch)
	require.NoError(t, err)
	assert.Equal(t, horizon.StatusCurve, res.Status)
	assert.Equal(t, 6, res.Points)
	assert.Equal(t, "image/png", res.MimeType)

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestChartTitle(t *testing.T) {
	in := stageInputs(t, fitParams())
	assert.Equal(t, "horizon fit: degree 2, 6 points", chartTitle(in.Result))

	bad := &horizon.Result{Status: horizon.StatusInsufficientData, Diagnostic: "insufficient points: 0 < 3"}
	assert.Equal(t, "horizon fit: insufficient points: 0 < 3", chartTitle(bad))
}
