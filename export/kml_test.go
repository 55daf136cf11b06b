package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulmach/profile"
)

func TestKML(t *testing.T) {
	annotated := profile.AnnotatedPath{
		{
			profile.NewVertex(-105, 40, 1600, 0),
			profile.NewVertex(-105.5, 40.5, 1700.5, 70000),
		},
		{},
		{
			profile.NewVertex(7, 46, 2000, 0),
			profile.NewVertex(7.1, 46, 2100, 7700),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, KML(&buf, "Ridge", annotated))

	out := buf.String()
	assert.Contains(t, out, "<name>Ridge</name>")
	assert.Contains(t, out, "<altitudeMode>absolute</altitudeMode>")
	assert.Contains(t, out, "-105,40,1600")
	assert.Contains(t, out, "-105.5,40.5,1700.5")
	assert.Equal(t, 2, strings.Count(out, "<Placemark>"), "empty parts are skipped")

	// valid xml
	decoder := xml.NewDecoder(&buf)
	for {
		_, err := decoder.Token()
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
	}
}
