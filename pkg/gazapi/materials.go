package gazapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/RigelNana/gazotheque/pkg/models"
)

// FormField is one multipart field of the creation form. Order is kept.
type FormField struct {
	Key   string
	Value string
}

func (c *Client) ListMaterials(ctx context.Context) ([]models.Material, error) {
	var out []models.Material
	if err := c.getJSON(ctx, "list_materials", "/materials/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMaterialsByOwner(ctx context.Context, ownerID int64) ([]models.Material, error) {
	var out []models.Material
	if err := c.getJSON(ctx, "list_owner_materials", fmt.Sprintf("/materials/owner/%d/", ownerID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LatestMaterials(ctx context.Context) ([]models.Material, error) {
	var out []models.Material
	if err := c.getJSON(ctx, "latest_materials", "/materials/latest/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByTags calls the dedicated tag-search endpoint.
func (c *Client) SearchByTags(ctx context.Context, tags []string) ([]models.Material, error) {
	q := url.Values{}
	for _, t := range tags {
		q.Add("tags", t)
	}
	var out []models.Material
	if err := c.getJSON(ctx, "search_by_tags", "/materials/search-by-tags?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMaterial(ctx context.Context, id int64) (*models.Material, error) {
	var out models.Material
	if err := c.getJSON(ctx, "get_material", fmt.Sprintf("/materials/%d/", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMaterial posts the creation form as multipart/form-data. Every tag is
// sent as its own "tags" field.
func (c *Client) CreateMaterial(ctx context.Context, fields []FormField, tags []string) (*models.Material, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, tag := range tags {
		if err := w.WriteField("tags", tag); err != nil {
			return nil, fmt.Errorf("create_material: write tag: %w", err)
		}
	}
	for _, f := range fields {
		if err := w.WriteField(f.Key, f.Value); err != nil {
			return nil, fmt.Errorf("create_material: write %s: %w", f.Key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("create_material: close form: %w", err)
	}

	var out models.Material
	err := c.do(ctx, request{
		operation:   "create_material",
		method:      http.MethodPost,
		path:        "/materials/create/",
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMaterial PUTs the full field set of a material.
func (c *Client) UpdateMaterial(ctx context.Context, id int64, payload map[string]any) (*models.Material, error) {
	var out models.Material
	if err := c.sendJSON(ctx, "update_material", http.MethodPut, fmt.Sprintf("/materials/%d/", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMaterial(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		operation: "delete_material",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/materials/%d/", id),
	}, nil)
}

func (c *Client) TotalCount(ctx context.Context) (*models.TotalCount, error) {
	var out models.TotalCount
	if err := c.getJSON(ctx, "count", "/materials/count/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CountByLab(ctx context.Context) (models.LabCounts, error) {
	out := models.LabCounts{}
	if err := c.getJSON(ctx, "count_by_lab", "/materials/count-by-lab", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BarChart(ctx context.Context) (*models.BarChart, error) {
	var out models.BarChart
	if err := c.getJSON(ctx, "bar_chart", "/materials/bar-chart", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ActiveOwners(ctx context.Context) ([]models.OwnerLite, error) {
	var out []models.OwnerLite
	if err := c.getJSON(ctx, "active_owners", "/active_owners/lite/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tags returns the tag suggestions of /tags/.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var out tagList
	if err := c.getJSON(ctx, "tags", "/tags/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MaterialTags returns the tags currently attached to at least one material.
func (c *Client) MaterialTags(ctx context.Context) ([]string, error) {
	var out tagList
	if err := c.getJSON(ctx, "material_tags", "/materials/tags", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// tagList decodes plain strings as well as {"name": ...} or {"markup": ...}
// objects into plain tag strings.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var wrapped struct {
			Tags []json.RawMessage `json:"tags"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return err
		}
		raw = wrapped.Tags
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Name   string `json:"name"`
			Markup string `json:"markup"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		if obj.Name != "" {
			out = append(out, obj.Name)
		} else if obj.Markup != "" {
			out = append(out, obj.Markup)
		}
	}
	*t = out
	return nil
}
