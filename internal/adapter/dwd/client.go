package dwd

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
	"github.com/couchcryptid/dwd-warncodes/internal/observability"
)

// ErrNoXML is returned when the downloaded archive holds no CAP document.
var ErrNoXML = errors.New("dwd: archive contains no xml member")

// language is the only CAP info language kept from the feed.
const language = "de-DE"

// maxArchiveSize bounds the download; the full COMMUNEUNION feed is a few MiB.
const maxArchiveSize = 64 << 20

// Client downloads and decodes the DWD open-data CAP warning feed.
type Client struct {
	feedURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for the ZIP archive at feedURL. metrics may
// be nil.
func NewClient(feedURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchAlerts downloads the archive and returns every German-language alert
// it contains, in archive order.
func (c *Client) FetchAlerts(ctx context.Context) ([]domain.Alert, error) {
	start := time.Now()
	alerts, err := c.fetch(ctx)
	c.observe(start, err)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("dwd feed fetched", "alerts", len(alerts), "duration", time.Since(start))
	return alerts, nil
}

func (c *Client) observe(start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.FeedAPIDuration.Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.FeedRequests.WithLabelValues(outcome).Inc()
}

func (c *Client) fetch(ctx context.Context) ([]domain.Alert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dwd feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dwd feed error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return DecodeArchive(data)
}

// DecodeArchive decodes every .xml member of a ZIP archive as a CAP 1.2 alert.
func DecodeArchive(data []byte) ([]domain.Alert, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var (
		alerts []domain.Alert
		found  bool
	)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".xml") {
			continue
		}
		found = true

		decoded, err := decodeMember(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.Name, err)
		}
		alerts = append(alerts, decoded...)
	}
	if !found {
		return nil, ErrNoXML
	}
	return alerts, nil
}

func decodeMember(f *zip.File) ([]domain.Alert, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var doc capAlert
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toAlerts(), nil
}

// CAP 1.2 document types. Element names match any namespace.

type capAlert struct {
	XMLName    xml.Name  `xml:"alert"`
	Identifier string    `xml:"identifier"`
	MsgType    string    `xml:"msgType"`
	Infos      []capInfo `xml:"info"`
}

type capInfo struct {
	Language    string         `xml:"language"`
	Event       string         `xml:"event"`
	Severity    string         `xml:"severity"`
	EventCodes  []capNameValue `xml:"eventCode"`
	Onset       string         `xml:"onset"`
	Expires     string         `xml:"expires"`
	Headline    string         `xml:"headline"`
	Description string         `xml:"description"`
	Instruction string         `xml:"instruction"`
	Areas       []capArea      `xml:"area"`
}

type capArea struct {
	AreaDesc string         `xml:"areaDesc"`
	Polygons []string       `xml:"polygon"`
	Geocodes []capNameValue `xml:"geocode"`
}

type capNameValue struct {
	ValueName string `xml:"valueName"`
	Value     string `xml:"value"`
}

func (a capAlert) toAlerts() []domain.Alert {
	var out []domain.Alert
	for _, info := range a.Infos {
		if !strings.EqualFold(strings.TrimSpace(info.Language), language) {
			continue
		}
		alert := domain.Alert{
			Identifier:  strings.TrimSpace(a.Identifier),
			MsgType:     strings.TrimSpace(a.MsgType),
			Event:       strings.TrimSpace(info.Event),
			EventCode:   lookupValue(info.EventCodes, "II"),
			Headline:    strings.TrimSpace(info.Headline),
			Description: strings.TrimSpace(info.Description),
			Instruction: strings.TrimSpace(info.Instruction),
			Severity:    strings.TrimSpace(info.Severity),
			Language:    language,
			Onset:       parseTime(info.Onset),
			Expires:     parseTime(info.Expires),
		}
		for _, area := range info.Areas {
			alert.Areas = append(alert.Areas, area.toAreas()...)
		}
		out = append(out, alert)
	}
	return out
}

// toAreas returns one Area per WARNCELLID geocode, or a single Area without
// a cell id when the area carries none.
func (a capArea) toAreas() []domain.Area {
	base := domain.Area{
		Desc:       strings.TrimSpace(a.AreaDesc),
		HasPolygon: hasPolygon(a.Polygons),
	}
	var out []domain.Area
	for _, g := range a.Geocodes {
		if strings.TrimSpace(g.ValueName) != "WARNCELLID" {
			continue
		}
		area := base
		area.WarnCellID = strings.TrimSpace(g.Value)
		out = append(out, area)
	}
	if len(out) == 0 {
		out = append(out, base)
	}
	return out
}

func lookupValue(pairs []capNameValue, name string) string {
	for _, p := range pairs {
		if strings.TrimSpace(p.ValueName) == name {
			return strings.TrimSpace(p.Value)
		}
	}
	return ""
}

func hasPolygon(polygons []string) bool {
	for _, p := range polygons {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// parseTime returns the zero time for missing or malformed timestamps.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
