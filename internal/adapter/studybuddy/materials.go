package studybuddy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// ListResources returns the general resource catalog.
func (c *Client) ListResources(ctx context.Context) ([]domain.Resource, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/resources", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list resources: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list resources: %w", err)
	}
	items, err := decodeList[apiResource](body)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list resources: %w", err)
	}

	out := make([]domain.Resource, 0, len(items))
	for _, it := range items {
		out = append(out, it.toDomain())
	}
	return out, nil
}

// ListMaterials returns shared materials, optionally restricted to one module.
func (c *Client) ListMaterials(ctx context.Context, module string) ([]domain.Material, error) {
	path := "/student-resources/resources"
	if module != "" {
		path += "/module/" + url.PathEscape(module)
	}

	req, err := c.newJSONRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list materials: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list materials: %w", err)
	}
	items, err := decodeList[apiMaterial](body)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list materials: %w", err)
	}

	out := make([]domain.Material, 0, len(items))
	for _, it := range items {
		out = append(out, it.toDomain())
	}
	return out, nil
}

// UploadMaterial uploads a material as multipart form (title, module_name, file).
func (c *Client) UploadMaterial(ctx context.Context, d domain.MaterialDraft) error {
	req, err := c.newMultipartRequest(ctx, "/student-resources/", nil, []multipartField{
		{name: "title", value: d.Title},
		{name: "module_name", value: d.ModuleName},
		{name: "file", file: d.File},
	})
	if err != nil {
		return fmt.Errorf("studybuddy: upload material: %w", err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: upload material: %w", err)
	}
	return nil
}

// DownloadMaterial streams the binary content of a material.
func (c *Client) DownloadMaterial(ctx context.Context, id int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url("/student-resources/resources/download/"+strconv.FormatInt(id, 10), nil), nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: download material %d: %w", id, err)
	}
	rc, err := c.stream(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: download material %d: %w", id, err)
	}
	return rc, nil
}
