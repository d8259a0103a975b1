// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flywheel is a read-only client for the Flywheel data platform
// REST API. It resolves group/project paths, loads containers with their
// files, and exposes them through the narrow interfaces the qc and centers
// packages consume.
package flywheel

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/naccdata/nacc-common/internal/httputil"
	"github.com/naccdata/nacc-common/pkg/types"
)

// authScheme prefixes the API key in the Authorization header.
const authScheme = "scitran-user"

// ErrNotFound is returned when a path or container does not exist.
var ErrNotFound = errors.New("not found")

// Client reads containers from the platform API.
type Client struct {
	http   *resty.Client
	logger *zap.SugaredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport (used by tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.SetTransport(rt) }
}

// WithBaseURL overrides the API base URL derived from the key.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(url, "/")) }
}

// NewClient creates a client from the platform configuration. The API key
// selects both the site and the credentials.
func NewClient(cfg types.PlatformConfig, logger *zap.SugaredLogger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	baseURL, err := BaseURL(cfg.APIKey)
	if err != nil {
		return nil, err
	}
	c := &Client{
		http:   httputil.NewClient(cfg.HTTPConfig, logger),
		logger: logger,
	}
	c.http.SetBaseURL(baseURL)
	c.http.SetAuthScheme(authScheme)
	c.http.SetAuthToken(cfg.APIKey)
	c.http.SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL derives the API base URL from a key of the form
// host:secret or host:port:secret.
func BaseURL(apiKey string) (string, error) {
	if apiKey == "" {
		return "", errors.WithHint(
			errors.New("no platform API key"),
			"set --api-key, NACC_QC_API_KEY, FW_API_KEY, or .secrets/flywheel-api-key",
		)
	}
	parts := strings.Split(apiKey, ":")
	switch {
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return fmt.Sprintf("https://%s/api", parts[0]), nil
	case len(parts) == 3 && parts[0] != "" && parts[1] != "" && parts[2] != "":
		return fmt.Sprintf("https://%s:%s/api", parts[0], parts[1]), nil
	default:
		return "", errors.WithHint(
			errors.New("malformed platform API key"),
			"expected host:key or host:port:key",
		)
	}
}

// Lookup resolves a slash-separated path (e.g. "nacc/metadata") to a
// container. It returns nil and no error when nothing exists at the path.
func (c *Client) Lookup(ctx context.Context, path string) (*Container, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, errors.Newf("empty lookup path %q", path)
	}

	var container Container
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"path": segments}).
		SetResult(&container).
		Post("/lookup")
	if err != nil {
		return nil, errors.Wrapf(err, "looking up %s", path)
	}
	if resp.StatusCode() == http.StatusNotFound {
		c.logger.Debugw("lookup found nothing", "path", path)
		return nil, nil
	}
	if err := statusError(resp, "looking up "+path); err != nil {
		return nil, err
	}
	if container.Type == "" {
		container.Type = typeForDepth(len(segments))
	}
	return &container, nil
}

// Container fetches the current state of a container by type and ID.
func (c *Client) Container(ctx context.Context, containerType, id string) (*Container, error) {
	var container Container
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"collection": collection(containerType), "id": id}).
		SetResult(&container).
		Get("/{collection}/{id}")
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s %s", containerType, id)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", containerType, id)
	}
	if err := statusError(resp, fmt.Sprintf("loading %s %s", containerType, id)); err != nil {
		return nil, err
	}
	if container.Type == "" {
		container.Type = containerType
	}
	return &container, nil
}

// Reload fetches the current state of a previously loaded container.
func (c *Client) Reload(ctx context.Context, container *Container) (*Container, error) {
	return c.Container(ctx, container.Type, container.ID)
}

// LookupInfo resolves path, reloads the record, and returns its info.
func (c *Client) LookupInfo(ctx context.Context, path string) (map[string]any, bool, error) {
	found, err := c.Lookup(ctx, path)
	if err != nil || found == nil {
		return nil, false, err
	}
	current, err := c.Reload(ctx, found)
	if err != nil {
		return nil, false, err
	}
	return current.Info, true, nil
}

// Project loads the project with the given container ID.
func (c *Client) Project(ctx context.Context, id string) (*Project, error) {
	container, err := c.Container(ctx, TypeProject, id)
	if err != nil {
		return nil, err
	}
	return &Project{client: c, container: *container}, nil
}

// LookupProject resolves a group/project path to a Project.
func (c *Client) LookupProject(ctx context.Context, path string) (*Project, error) {
	found, err := c.Lookup(ctx, path)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.WithHint(
			errors.Wrapf(ErrNotFound, "project %s", path),
			"paths take the form group/project",
		)
	}
	if found.Type != TypeProject {
		return nil, errors.Newf("%s is a %s, not a project", path, found.Type)
	}
	return &Project{client: c, container: *found}, nil
}

func statusError(resp *resty.Response, action string) error {
	if resp.IsSuccess() {
		return nil
	}
	err := errors.Newf("%s: platform returned HTTP %d", action, resp.StatusCode())
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.WithHint(err, "check that the API key is valid and has access")
	case http.StatusTooManyRequests:
		return errors.WithHint(err, "the platform is rate limiting requests; try again later")
	}
	return err
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
