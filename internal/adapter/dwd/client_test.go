package dwd

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/dwd-warncodes/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frostAlert = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<alert xmlns="urn:oasis:names:tc:emergency:cap:1.2">
  <identifier>2.49.0.0.276.0.DWD.PVW.1736700000000.frost</identifier>
  <sender>opendata@dwd.de</sender>
  <sent>2026-01-12T07:30:00+01:00</sent>
  <status>Actual</status>
  <msgType>Alert</msgType>
  <scope>Public</scope>
  <info>
    <language>de-DE</language>
    <category>Met</category>
    <event>FROST</event>
    <severity>Minor</severity>
    <eventCode>
      <valueName>PROFILE_VERSION</valueName>
      <value>2.1.11</value>
    </eventCode>
    <eventCode>
      <valueName>II</valueName>
      <value>22</value>
    </eventCode>
    <onset>2026-01-12T18:00:00+01:00</onset>
    <expires>2026-01-13T10:00:00+01:00</expires>
    <headline>Amtliche WARNUNG vor FROST</headline>
    <description>Es tritt leichter Frost um -3 °C auf.</description>
    <area>
      <areaDesc>Stadt Freiburg im Breisgau</areaDesc>
      <polygon>47.9,7.8 48.0,7.8 48.0,7.9 47.9,7.8</polygon>
      <geocode>
        <valueName>WARNCELLID</valueName>
        <value>108311000</value>
      </geocode>
    </area>
  </info>
  <info>
    <language>en-GB</language>
    <event>frost</event>
    <eventCode>
      <valueName>II</valueName>
      <value>22</value>
    </eventCode>
  </info>
</alert>`

const testAlert = `<?xml version="1.0" encoding="UTF-8"?>
<alert xmlns="urn:oasis:names:tc:emergency:cap:1.2">
  <identifier>2.49.0.0.276.0.DWD.PVW.1736700000000.test</identifier>
  <msgType>Update</msgType>
  <info>
    <language>de-DE</language>
    <event>TEST-WARNUNG</event>
    <severity>Minor</severity>
    <eventCode>
      <valueName>II</valueName>
      <value>98</value>
    </eventCode>
    <onset>not-a-time</onset>
    <area>
      <areaDesc>Kreis Breisgau-Hochschwarzwald</areaDesc>
      <geocode>
        <valueName>WARNCELLID</valueName>
        <value>108315</value>
      </geocode>
    </area>
  </info>
</alert>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildZip(t *testing.T, members map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, members[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeArchive_GermanInfoOnly(t *testing.T) {
	data := buildZip(t, map[string]string{
		"Z_CAP_frost.xml": frostAlert,
		"README.txt":      "not an alert",
		"Z_CAP_test.XML":  testAlert,
	}, "Z_CAP_frost.xml", "README.txt", "Z_CAP_test.XML")

	alerts, err := DecodeArchive(data)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	frost := alerts[0]
	assert.Equal(t, "2.49.0.0.276.0.DWD.PVW.1736700000000.frost", frost.Identifier)
	assert.Equal(t, "Alert", frost.MsgType)
	assert.Equal(t, "FROST", frost.Event)
	assert.Equal(t, "22", frost.EventCode)
	assert.Equal(t, "Minor", frost.Severity)
	assert.Equal(t, "de-DE", frost.Language)
	assert.Equal(t, "Amtliche WARNUNG vor FROST", frost.Headline)
	assert.True(t, frost.Onset.Equal(time.Date(2026, 1, 12, 17, 0, 0, 0, time.UTC)))
	assert.True(t, frost.Expires.Equal(time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC)))
	require.Len(t, frost.Areas, 1)
	assert.Equal(t, "Stadt Freiburg im Breisgau", frost.Areas[0].Desc)
	assert.Equal(t, "108311000", frost.Areas[0].WarnCellID)
	assert.Equal(t, "08311000", frost.Areas[0].AGS())
	assert.True(t, frost.Areas[0].HasPolygon)

	test := alerts[1]
	assert.Equal(t, "98", test.EventCode)
	assert.Equal(t, "Update", test.MsgType)
	assert.True(t, test.Onset.IsZero())
	assert.True(t, test.Expires.IsZero())
	require.Len(t, test.Areas, 1)
	assert.False(t, test.Areas[0].HasPolygon)
	assert.True(t, test.AffectsAGS("08315001"))
}

const lowercaseLanguageAlert = `<?xml version="1.0" encoding="UTF-8"?>
<alert xmlns="urn:oasis:names:tc:emergency:cap:1.2">
  <identifier>gewitter-lower</identifier>
  <msgType>Alert</msgType>
  <info>
    <language>de-de</language>
    <event>GEWITTER</event>
    <eventCode><valueName>II</valueName><value>31</value></eventCode>
    <area>
      <areaDesc>Stadt Fulda</areaDesc>
      <geocode><valueName>WARNCELLID</valueName><value>106631009</value></geocode>
    </area>
  </info>
</alert>`

const multiCellAlert = `<?xml version="1.0" encoding="UTF-8"?>
<alert xmlns="urn:oasis:names:tc:emergency:cap:1.2">
  <identifier>sturm-multi</identifier>
  <msgType>Alert</msgType>
  <info>
    <language>DE-DE</language>
    <event>STURMBÖEN</event>
    <eventCode><valueName>II</valueName><value>52</value></eventCode>
    <area>
      <areaDesc>Vogelsberg</areaDesc>
      <polygon>50.5,9.2 50.6,9.2 50.6,9.3 50.5,9.2</polygon>
      <geocode><valueName>EXCLUDE_POLYGON</valueName><value>x</value></geocode>
      <geocode><valueName>WARNCELLID</valueName><value>106535001</value></geocode>
      <geocode><valueName>WARNCELLID</valueName><value>106535002</value></geocode>
    </area>
    <area>
      <areaDesc>See</areaDesc>
    </area>
  </info>
</alert>`

func TestDecodeArchive_LanguageCaseInsensitive(t *testing.T) {
	data := buildZip(t, map[string]string{
		"lower.xml": lowercaseLanguageAlert,
		"upper.xml": multiCellAlert,
	}, "lower.xml", "upper.xml")

	alerts, err := DecodeArchive(data)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "31", alerts[0].EventCode)
	assert.Equal(t, "de-DE", alerts[0].Language)
	assert.Equal(t, "52", alerts[1].EventCode)
	assert.Equal(t, "de-DE", alerts[1].Language)
}

func TestDecodeArchive_EveryWarnCellID(t *testing.T) {
	data := buildZip(t, map[string]string{"multi.xml": multiCellAlert}, "multi.xml")

	alerts, err := DecodeArchive(data)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	areas := alerts[0].Areas
	require.Len(t, areas, 3)
	assert.Equal(t, "106535001", areas[0].WarnCellID)
	assert.Equal(t, "106535002", areas[1].WarnCellID)
	for _, a := range areas[:2] {
		assert.Equal(t, "Vogelsberg", a.Desc)
		assert.True(t, a.HasPolygon)
	}
	assert.Equal(t, "See", areas[2].Desc)
	assert.Empty(t, areas[2].WarnCellID)

	assert.True(t, alerts[0].AffectsAGS("06535002"))
	assert.False(t, alerts[0].AffectsAGS("06535003"))
}

func TestDecodeArchive_NoXML(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "x"}, "notes.txt")

	_, err := DecodeArchive(data)
	require.ErrorIs(t, err, ErrNoXML)
}

func TestDecodeArchive_NotAZip(t *testing.T) {
	_, err := DecodeArchive([]byte("definitely not a zip"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoXML)
}

func TestDecodeArchive_MalformedXML(t *testing.T) {
	data := buildZip(t, map[string]string{"broken.xml": "<alert><info>"}, "broken.xml")

	_, err := DecodeArchive(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xml")
}

func TestClient_FetchAlerts_Success(t *testing.T) {
	archive := buildZip(t, map[string]string{"a.xml": frostAlert}, "a.xml")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := NewClient(srv.URL, 5*time.Second, metrics, testLogger())

	alerts, err := c.FetchAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "22", alerts[0].EventCode)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedRequests.WithLabelValues("success")), 0)
}

func TestClient_FetchAlerts_NilMetrics(t *testing.T) {
	archive := buildZip(t, map[string]string{"a.xml": frostAlert}, "a.xml")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil, testLogger())
	alerts, err := c.FetchAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestClient_FetchAlerts_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := NewClient(srv.URL, 5*time.Second, metrics, testLogger())

	_, err := c.FetchAlerts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedRequests.WithLabelValues("error")), 0)
}

func TestClient_FetchAlerts_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, 5*time.Second, observability.NewMetricsForTesting(), testLogger())
	_, err := c.FetchAlerts(ctx)
	require.Error(t, err)
}
