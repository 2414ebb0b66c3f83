package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/RigelNana/gazotheque/pkg/gazapi"
	"github.com/RigelNana/gazotheque/pkg/inventory"
	"github.com/RigelNana/gazotheque/pkg/labels"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MaterialQueries are the read endpoints proxied without local state.
type MaterialQueries interface {
	LatestMaterials(ctx context.Context) ([]models.Material, error)
	ListMaterialsByOwner(ctx context.Context, ownerID int64) ([]models.Material, error)
	SearchByTags(ctx context.Context, tags []string) ([]models.Material, error)
	ActiveOwners(ctx context.Context) ([]models.OwnerLite, error)
	Tags(ctx context.Context) ([]string, error)
	MaterialTags(ctx context.Context) ([]string, error)
}

type MaterialHandler struct {
	form    *inventory.FormController
	detail  *inventory.DetailController
	catalog *inventory.Catalog
	queries MaterialQueries
	archive labels.Archiver
	logger  *logrus.Logger
}

// NewMaterialHandler wires the material endpoints. archive may be nil when no
// object store is configured.
func NewMaterialHandler(
	form *inventory.FormController,
	detail *inventory.DetailController,
	catalog *inventory.Catalog,
	queries MaterialQueries,
	archive labels.Archiver,
	logger *logrus.Logger,
) *MaterialHandler {
	return &MaterialHandler{
		form:    form,
		detail:  detail,
		catalog: catalog,
		queries: queries,
		archive: archive,
		logger:  logger,
	}
}

type createMaterialRequest struct {
	Title          string   `json:"material_title"`
	Owner          *int64   `json:"owner"`
	Team           string   `json:"team"`
	Origin         string   `json:"origin"`
	CodeCommande   string   `json:"codeCommande"`
	CodeBarres     string   `json:"codeBarres"`
	Size           string   `json:"size"`
	LevRisk        string   `json:"levRisk"`
	LabDestination string   `json:"lab_destination"`
	DateArrivee    string   `json:"date_arrivee"`
	Tags           []string `json:"tags"`
}

func (r *createMaterialRequest) form() (*inventory.MaterialForm, error) {
	arrival, err := models.ParseNullTime(r.DateArrivee)
	if err != nil {
		return nil, fmt.Errorf("%w: date_arrivee: %v", inventory.ErrInvalidValue, err)
	}
	f := &inventory.MaterialForm{
		Title:          r.Title,
		Owner:          r.Owner,
		Team:           r.Team,
		Origin:         r.Origin,
		CodeCommande:   r.CodeCommande,
		CodeBarres:     r.CodeBarres,
		Size:           r.Size,
		LevRisk:        r.LevRisk,
		LabDestination: r.LabDestination,
		DateArrivee:    arrival,
	}
	for _, t := range r.Tags {
		f.AddTag(t)
	}
	return f, nil
}

// CreateMaterial 创建气瓶
// POST /api/materials
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req createMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	form, err := req.form()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.form.Submit(upstreamContext(c), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.catalog.Invalidate()

	c.JSON(http.StatusCreated, redirectFields(gin.H{
		"success": true,
		"message": result.Message,
		"data":    result.Material,
	}, result.Redirect, result.RedirectAfter))
}

// ListMaterials filters and paginates the cached collection.
// GET /api/materials?search=&tags=&page=&page_size=&filter_key=
//
// filter_key is the key the client got with its current page. When the
// predicate no longer matches it, the client is sent back to page 0.
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	items, err := h.catalog.Snapshot(upstreamContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	search := c.Query("search")
	tags := queryList(c, "tags")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(inventory.DefaultPageSize)))

	listing := inventory.NewListing(items)
	listing.SetPageSize(size)
	listing.SetSearch(search)
	listing.SetTags(tags)
	if key := c.Query("filter_key"); key == "" || key == inventory.FilterKey(search, tags) {
		listing.SetPage(page)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       listing.Current(),
		"fetched_at": h.catalog.FetchedAt(),
	})
}

// RefreshMaterials refetches the collection.
// POST /api/materials/refresh
func (h *MaterialHandler) RefreshMaterials(c *gin.Context) {
	items, err := h.catalog.Refresh(upstreamContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(items), "fetched_at": h.catalog.FetchedAt()})
}

// GetMaterial returns the record and what the caller may do with it.
// GET /api/materials/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.detail.Load(upstreamContext(c), currentUser(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// GetPublicMaterial is what a scanned QR code opens. It never grants any
// action.
// GET /api/public/materials/:id
func (h *MaterialHandler) GetPublicMaterial(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.detail.Load(c.Request.Context(), nil, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

type updateMaterialRequest struct {
	Edits   map[string]string `json:"edits"`
	Confirm bool              `json:"confirm"`
}

// UpdateMaterial applies pending edits once the user confirmed them.
// PUT /api/materials/:id
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	edits := make(inventory.Edits, len(req.Edits))
	for k, v := range req.Edits {
		edits[inventory.Field(k)] = v
	}

	view, err := h.detail.Update(upstreamContext(c), currentUser(c), id, edits, req.Confirm)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.catalog.Invalidate()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": inventory.UpdateSuccessMessage, "data": view})
}

// DeleteMaterial removes a record. Confirmation comes as ?confirm=true or a
// JSON body {"confirm": true}.
// DELETE /api/materials/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	confirmed, err := deleteConfirmed(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}

	result, err := h.detail.Delete(upstreamContext(c), currentUser(c), id, confirmed)
	if err != nil {
		var apiErr *gazapi.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 500 {
			h.logger.WithError(err).WithField("material_id", id).Warn("delete failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": inventory.DeleteFailureMessage, "detail": apiErr.Display()})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	h.catalog.Invalidate()
	c.JSON(http.StatusOK, redirectFields(gin.H{
		"success": true,
		"message": result.Message,
	}, result.Redirect, result.RedirectAfter))
}

func deleteConfirmed(c *gin.Context) (bool, error) {
	if v := c.Query("confirm"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, err
		}
		return b, nil
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return false, nil
	}
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return body.Confirm, nil
}

// GetLabel serves the QR label of a record, or archives it for a print
// station with ?archive=true.
// GET /api/materials/:id/label
func (h *MaterialHandler) GetLabel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.detail.Load(upstreamContext(c), currentUser(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	png, err := labels.DecodeQRCode(view.Material.QRCode)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no printable qr code", "detail": err.Error()})
		return
	}

	if c.Query("archive") == "true" {
		if h.archive == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "label archive not configured"})
			return
		}
		url, err := h.archive.Archive(c.Request.Context(), id, png)
		if err != nil {
			h.logger.WithError(err).WithField("material_id", id).Error("label archive failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to archive label", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"url": url, "object": labels.ObjectName(id)}})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=material-%d.png", id))
	c.Data(http.StatusOK, "image/png", png)
}

// LatestMaterials GET /api/materials/latest
func (h *MaterialHandler) LatestMaterials(c *gin.Context) {
	items, err := h.queries.LatestMaterials(upstreamContext(c))
	h.respondRows(c, items, err)
}

// MyMaterials lists the records of the caller's owner profile.
// GET /api/materials/mine
func (h *MaterialHandler) MyMaterials(c *gin.Context) {
	user := currentUser(c)
	if user == nil || user.OwnerID == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []inventory.Row{}})
		return
	}
	items, err := h.queries.ListMaterialsByOwner(upstreamContext(c), *user.OwnerID)
	h.respondRows(c, items, err)
}

// SearchByTags uses the dedicated endpoint instead of local filtering.
// GET /api/materials/search-by-tags?tags=a&tags=b
func (h *MaterialHandler) SearchByTags(c *gin.Context) {
	tags := queryList(c, "tags")
	if len(tags) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one tag is required"})
		return
	}
	items, err := h.queries.SearchByTags(upstreamContext(c), tags)
	h.respondRows(c, items, err)
}

func (h *MaterialHandler) respondRows(c *gin.Context, items []models.Material, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows := make([]inventory.Row, 0, len(items))
	for _, m := range items {
		rows = append(rows, inventory.NewRow(m))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

// ActiveOwners feeds the owner select of the creation form.
// GET /api/owners
func (h *MaterialHandler) ActiveOwners(c *gin.Context) {
	owners, err := h.queries.ActiveOwners(upstreamContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": owners})
}

// Tags GET /api/tags
func (h *MaterialHandler) Tags(c *gin.Context) {
	tags, err := h.queries.Tags(upstreamContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tags})
}

// MaterialTags lists tags in use, for the listing filter.
// GET /api/materials/tags
func (h *MaterialHandler) MaterialTags(c *gin.Context) {
	tags, err := h.queries.MaterialTags(upstreamContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tags})
}

// queryList accepts both ?k=a&k=b and ?k=a,b.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
