package influx

import (
	"context"
	"net/url"
)

type Organization struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Orgs lists organizations, optionally restricted to the one named name.
func (c *APIClient) Orgs(ctx context.Context, name string) ([]Organization, error) {
	query := url.Values{}
	if name != "" {
		query.Set("org", name)
	}

	var res struct {
		Orgs []Organization `json:"orgs"`
	}

	if err := c.request(ctx, "GET", "/api/v2/orgs", query, nil, &res); err != nil {
		return nil, err
	}

	return res.Orgs, nil
}

func (c *APIClient) Org(ctx context.Context, id string) (*Organization, error) {
	var org Organization

	uriPath := "/api/v2/orgs/" + id
	if err := c.request(ctx, "GET", uriPath, nil, nil, &org); err != nil {
		return nil, err
	}

	return &org, nil
}

func (c *APIClient) CreateOrg(ctx context.Context, name, description string) (*Organization, error) {
	reqOrg := Organization{
		Name:        name,
		Description: description,
	}

	var org Organization
	if err := c.request(ctx, "POST", "/api/v2/orgs", nil, &reqOrg, &org); err != nil {
		return nil, err
	}

	return &org, nil
}
