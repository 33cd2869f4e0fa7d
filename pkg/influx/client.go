package influx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/galdor/go-ejson"
	"github.com/galdor/go-influx/pkg/shttp"
	"github.com/galdor/go-influx/pkg/utils"
	"github.com/galdor/go-log"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
)

type ClientCfg struct {
	Log        *log.Logger           `json:"-"`
	HTTPClient *http.Client          `json:"-"`
	Hostname   string                `json:"-"`
	Registerer prometheus.Registerer `json:"-"`
	Clock      func() time.Time      `json:"-"`

	URI           string            `json:"uri"`
	Bucket        string            `json:"bucket"`
	Org           string            `json:"org,omitempty"`
	Token         string            `json:"token,omitempty"`
	Precision     Precision         `json:"precision,omitempty"`
	BatchSize     int               `json:"batch_size,omitempty"`
	FlushInterval int               `json:"flush_interval,omitempty"` // milliseconds
	Tags          map[string]string `json:"tags,omitempty"`
	Gzip          bool              `json:"gzip,omitempty"`
	LogRequests   bool              `json:"log_requests,omitempty"`
	GoProbe       bool              `json:"go_probe,omitempty"`
}

// Client writes protocol lines to the write endpoint, either directly or
// through a buffer flushed periodically and whenever it reaches the batch
// size.
type Client struct {
	Cfg        ClientCfg
	Log        *log.Logger
	HTTPClient *http.Client
	Metrics    *Metrics

	uri      *url.URL
	settings PointSettings

	linesChan chan []string
	lines     []string

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func (cfg *ClientCfg) ValidateJSON(v *ejson.Validator) {
	if cfg.URI != "" {
		v.CheckStringURI("uri", cfg.URI)
	}

	v.CheckStringNotEmpty("bucket", cfg.Bucket)

	if cfg.Precision != "" {
		v.Check("precision", cfg.Precision.Valid(), "invalidPrecision",
			"invalid precision %q", cfg.Precision)
	}

	v.Check("batch_size", cfg.BatchSize >= 0, "invalidBatchSize",
		"batch size must be positive")
	v.Check("flush_interval", cfg.FlushInterval >= 0, "invalidFlushInterval",
		"flush interval must be positive")

	v.Push("tags")
	for name, value := range cfg.Tags {
		v.CheckStringNotEmpty(name, value)
	}
	v.Pop()
}

func NewClient(cfg ClientCfg) (*Client, error) {
	if cfg.Log == nil {
		cfg.Log = log.DefaultLogger("influx")
	}

	if cfg.HTTPClient == nil {
		httpClient, err := shttp.NewClient(shttp.ClientCfg{
			Log:         cfg.Log.Child("http", log.Data{}),
			LogRequests: cfg.LogRequests,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot create http client: %w", err)
		}

		cfg.HTTPClient = httpClient.Client
	}

	if cfg.URI == "" {
		cfg.URI = "http://localhost:8086"
	}
	uri, err := shttp.ParseHTTPURI(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid uri: %w", err)
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing or empty bucket")
	}

	if cfg.Precision == "" {
		cfg.Precision = PrecisionNanosecond
	}
	if !cfg.Precision.Valid() {
		return nil, fmt.Errorf("invalid precision %q", cfg.Precision)
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10_000
	}

	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 1000
	}

	tags := make(Tags)
	if cfg.Hostname != "" {
		tags["host"] = cfg.Hostname
	}
	for name, value := range cfg.Tags {
		tags[name] = value
	}

	metrics, err := NewMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Cfg:        cfg,
		Log:        cfg.Log,
		HTTPClient: cfg.HTTPClient,
		Metrics:    metrics,

		uri: uri,
		settings: PointSettings{
			DefaultTags: tags,
			ConvertTime: NewTimeConverter(cfg.Precision, cfg.Clock),
		},

		linesChan: make(chan []string),

		stopChan: make(chan struct{}),
	}

	return c, nil
}

// PointSettings returns the settings used to render points.
func (c *Client) PointSettings() *PointSettings {
	return &c.settings
}

func (c *Client) Start() {
	c.wg.Add(1)
	go c.main()

	if c.Cfg.GoProbe {
		c.wg.Add(1)
		go c.goProbeMain()
	}
}

func (c *Client) Stop() {
	close(c.stopChan)
	c.wg.Wait()

	c.HTTPClient.CloseIdleConnections()
}

func (c *Client) main() {
	defer c.wg.Done()

	timer := time.NewTicker(time.Duration(c.Cfg.FlushInterval) * time.Millisecond)
	defer timer.Stop()

	for {
		select {
		case <-c.stopChan:
			c.flush()
			return

		case lines := <-c.linesChan:
			c.enqueueLines(lines)

		case <-timer.C:
			c.flush()
		}
	}
}

func (c *Client) EnqueuePoint(p *Point) {
	c.EnqueuePoints(Points{p})
}

// EnqueuePoints renders points in the calling goroutine, so that callers are
// free to modify or reuse them as soon as the function returns. As for
// EnqueueLines, Start must have been called first.
func (c *Client) EnqueuePoints(points Points) {
	lines := c.encodePoints(points)
	if len(lines) == 0 {
		return
	}

	c.EnqueueLines(lines)
}

// EnqueueLines blocks until the lines are picked up by the write loop; Start
// must have been called first.
func (c *Client) EnqueueLines(lines []string) {
	// We do not want to be stuck writing on c.linesChan if the client is
	// stopping, so we check the stop chan.

	select {
	case <-c.stopChan:
		return

	case c.linesChan <- lines:
	}
}

func (c *Client) WritePoint(p *Point) error {
	return c.WritePoints(Points{p})
}

func (c *Client) WritePoints(points Points) error {
	// Most of the time, it is more important to avoid blocking the caller
	// than to guarantee delivery. When the caller needs to know that points
	// were accepted, it can send them directly instead of queuing them.

	lines := c.encodePoints(points)
	if len(lines) == 0 {
		return nil
	}

	return c.WriteLines(lines)
}

func (c *Client) WriteLines(lines []string) error {
	return c.sendLines(lines)
}

func (c *Client) encodePoints(points Points) []string {
	lines := make([]string, 0, len(points))

	for _, p := range points {
		line, ok := p.LineProtocol(&c.settings)
		if !ok {
			c.Log.Error("dropping %s", p)
			c.Metrics.PointsDropped.Inc()
			continue
		}

		lines = append(lines, line)
	}

	return lines
}

func (c *Client) enqueueLines(lines []string) {
	c.lines = append(c.lines, lines...)

	if len(c.lines) >= c.Cfg.BatchSize {
		c.flush()
	}
}

func (c *Client) flush() {
	if len(c.lines) == 0 {
		return
	}

	if err := c.sendLines(c.lines); err != nil {
		c.Log.Error("cannot send %d lines: %v", len(c.lines), err)
	}

	// There is no retry: lines which could not be sent are lost.
	c.lines = nil
}

func (c *Client) writeURI() *url.URL {
	query := url.Values{}
	query.Set("bucket", c.Cfg.Bucket)
	if c.Cfg.Org != "" {
		query.Set("org", c.Cfg.Org)
	}
	query.Set("precision", string(c.Cfg.Precision))

	return utils.URIMerge(c.uri, &url.URL{
		Path:     "/api/v2/write",
		RawQuery: query.Encode(),
	})
}

func (c *Client) sendLines(lines []string) error {
	// Remember that the function can be called from another goroutine through
	// WriteLines.

	var buf bytes.Buffer
	encodeLines(lines, &buf)

	body := &buf
	if c.Cfg.Gzip {
		var zbuf bytes.Buffer

		w := gzip.NewWriter(&zbuf)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("cannot compress request body: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("cannot compress request body: %w", err)
		}

		body = &zbuf
	}

	req, err := http.NewRequest("POST", c.writeURI().String(), body)
	if err != nil {
		return fmt.Errorf("cannot create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if c.Cfg.Gzip {
		req.Header.Set("Content-Encoding", "gzip")
	}

	if c.Cfg.Token != "" {
		req.Header.Set("Authorization", "Token "+c.Cfg.Token)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Metrics.WriteRequests.WithLabelValues("error").Inc()
		return fmt.Errorf("cannot send request: %w", err)
	}
	defer res.Body.Close()

	if !(res.StatusCode >= 200 && res.StatusCode < 300) {
		c.Metrics.WriteRequests.WithLabelValues("rejected").Inc()

		bodyData, err := io.ReadAll(res.Body)
		if err != nil {
			c.Log.Error("cannot read response body: %v", err)
		}

		bodyString := ""
		if len(bodyData) > 0 {
			// Influx can send incredibly long error messages, sometimes
			// including the entire payload received.
			if len(bodyData) > 200 {
				bodyData = append(bodyData[:200], []byte(" [truncated]")...)
			}

			bodyString = " (" + string(bodyData) + ")"
		}

		return fmt.Errorf("request failed with status %d%s",
			res.StatusCode, bodyString)
	}

	c.Metrics.WriteRequests.WithLabelValues("success").Inc()
	c.Metrics.LinesWritten.Add(float64(len(lines)))

	return nil
}
