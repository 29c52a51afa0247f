// Package client provides REST access to the form schema API.
package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/faciam-dev/gforms/pkg/formschema"
)

// Client talks to a running api-server.
type Client interface {
	ListSchemas(ctx context.Context) ([]formschema.Schema, error)
	GetSchema(ctx context.Context, id string) (formschema.Schema, error)
	CreateSchema(ctx context.Context, name, description, rawSchema string) (formschema.Schema, error)
	UpdateSchema(ctx context.Context, id, name, description, rawSchema string) (formschema.Schema, error)
	DeleteSchema(ctx context.Context, id string) error
	Render(ctx context.Context, schemaID string) (formschema.RenderPlan, error)
	Submit(ctx context.Context, schemaID string, data map[string]any) (formschema.Submission, error)
	ListSubmissions(ctx context.Context, schemaID string) ([]formschema.Submission, error)
	UpdateSubmission(ctx context.Context, id string, data map[string]any, revision int64) (formschema.Submission, error)
	DeleteSubmission(ctx context.Context, id string) error
	Login(ctx context.Context, username, password string) (string, error)
}

type httpClient struct {
	base string
	http *resty.Client
}

type Option func(*httpClient)

// WithToken sets the Authorization token.
func WithToken(tok string) Option {
	return func(c *httpClient) {
		c.http.SetAuthToken(tok)
	}
}

// WithTenant sets the tenant header sent with every request.
func WithTenant(tid string) Option {
	return func(c *httpClient) {
		c.http.SetHeader("X-Tenant-ID", tid)
	}
}

// NewHTTP returns a new Client for the given base URL.
func NewHTTP(base string, opts ...Option) Client {
	c := &httpClient{base: base, http: resty.New()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ListSchemas(ctx context.Context) ([]formschema.Schema, error) {
	var out []formschema.Schema
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/form-schemas")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) GetSchema(ctx context.Context, id string) (formschema.Schema, error) {
	var out formschema.Schema
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/form-schemas/" + id)
	if err != nil {
		return out, err
	}
	if resp.IsError() {
		return out, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) CreateSchema(ctx context.Context, name, description, rawSchema string) (formschema.Schema, error) {
	var out formschema.Schema
	body := map[string]any{"name": name, "description": description, "schema": rawSchema}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(c.base + "/v1/form-schemas")
	if err != nil {
		return out, err
	}
	if resp.IsError() {
		return out, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) UpdateSchema(ctx context.Context, id, name, description, rawSchema string) (formschema.Schema, error) {
	var out formschema.Schema
	body := map[string]any{"name": name, "description": description, "schema": rawSchema}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Put(c.base + "/v1/form-schemas/" + id)
	if err != nil {
		return out, err
	}
	if resp.IsError() {
		return out, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) DeleteSchema(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Delete(c.base + "/v1/form-schemas/" + id)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

func (c *httpClient) Render(ctx context.Context, schemaID string) (formschema.RenderPlan, error) {
	var out formschema.RenderPlan
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/form-schemas/" + schemaID + "/render")
	if err != nil {
		return out, err
	}
	if resp.IsError() {
		return out, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) Submit(ctx context.Context, schemaID string, data map[string]any) (formschema.Submission, error) {
	var out formschema.Submission
	resp, err := c.http.R().SetContext(ctx).SetBody(map[string]any{"data": data}).SetResult(&out).
		Post(c.base + "/v1/form-schemas/" + schemaID + "/submissions")
	if err != nil {
		return out, err
	}
	if resp.IsError() {
		return out, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) ListSubmissions(ctx context.Context, schemaID string) ([]formschema.Submission, error) {
	var out []formschema.Submission
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/form-schemas/" + schemaID + "/submissions")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) UpdateSubmission(ctx context.Context, id string, data map[string]any, revision int64) (formschema.Submission, error) {
	var out formschema.Submission
	body := map[string]any{"data": data, "revision": revision}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Put(c.base + "/v1/submissions/" + id)
	if err != nil {
		return out, err
	}
	if resp.IsError() {
		if resp.StatusCode() == 409 {
			return out, fmt.Errorf("revision %s is stale: %s", strconv.FormatInt(revision, 10), resp.Status())
		}
		return out, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) DeleteSubmission(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Delete(c.base + "/v1/submissions/" + id)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

func (c *httpClient) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"username": username, "password": password}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(c.base + "/v1/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", restyErr(resp)
	}
	return out.AccessToken, nil
}

func restyErr(resp *resty.Response) error {
	return fmt.Errorf("%s", resp.Status())
}
