package influx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/galdor/go-ejson"
	"github.com/galdor/go-influx/pkg/shttp"
	"github.com/galdor/go-log"
)

type APIClientCfg struct {
	Log        *log.Logger  `json:"-"`
	HTTPClient *http.Client `json:"-"`

	URI   string `json:"uri"`
	Token string `json:"token,omitempty"`
}

// APIClient exposes the management endpoints of the API. Each method issues
// a single request and decodes its response.
type APIClient struct {
	Cfg APIClientCfg
	Log *log.Logger

	client *shttp.APIClient
}

func (cfg *APIClientCfg) ValidateJSON(v *ejson.Validator) {
	if cfg.URI != "" {
		v.CheckStringURI("uri", cfg.URI)
	}
}

func NewAPIClient(cfg APIClientCfg) (*APIClient, error) {
	if cfg.Log == nil {
		cfg.Log = log.DefaultLogger("influx_api")
	}

	if cfg.HTTPClient == nil {
		httpClient, err := shttp.NewClient(shttp.ClientCfg{
			Log: cfg.Log.Child("http", log.Data{}),
		})
		if err != nil {
			return nil, fmt.Errorf("cannot create http client: %w", err)
		}

		cfg.HTTPClient = httpClient.Client
	}

	if cfg.URI == "" {
		cfg.URI = "http://localhost:8086"
	}
	if _, err := shttp.ParseHTTPURI(cfg.URI); err != nil {
		return nil, fmt.Errorf("invalid uri: %w", err)
	}

	client, err := shttp.NewAPIClient(shttp.APIClientCfg{
		Client:  cfg.HTTPClient,
		BaseURI: cfg.URI,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Token != "" {
		client.Authorization = "Token " + cfg.Token
	}

	c := APIClient{
		Cfg: cfg,
		Log: cfg.Log,

		client: client,
	}

	return &c, nil
}

func (c *APIClient) request(ctx context.Context, method, uriPath string, query url.Values, reqBody, resBody any) error {
	uri := url.URL{Path: uriPath}
	if len(query) > 0 {
		uri.RawQuery = query.Encode()
	}

	_, err := c.client.SendRequest(ctx, method, uri.String(), reqBody, resBody)
	return err
}

// Routes is the map of top level routes returned by the root endpoint.
type Routes map[string]interface{}

func (c *APIClient) Routes(ctx context.Context) (Routes, error) {
	var routes Routes

	if err := c.request(ctx, "GET", "/api/v2/", nil, nil, &routes); err != nil {
		return nil, err
	}

	return routes, nil
}
