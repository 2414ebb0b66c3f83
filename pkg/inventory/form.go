package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/RigelNana/gazotheque/pkg/gazapi"
	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	CreateRedirectDelay  = 2 * time.Second
	CreateSuccessMessage = "Nouvelle bouteille ajoutée avec succès ! Redirection en cours...."
)

// DetailPath is the dashboard route of a material detail view.
func DetailPath(id int64) string {
	return fmt.Sprintf("/details/material-detail/%d", id)
}

// MaterialForm is the state of the creation form.
type MaterialForm struct {
	Title          string
	Owner          *int64
	Team           string
	Origin         string
	CodeCommande   string
	CodeBarres     string
	Size           string
	LevRisk        string
	LabDestination string
	DateArrivee    models.NullTime

	tags TagSet
}

// AddTag is called when the user confirms a tag (Enter). Duplicates and blank
// input are ignored.
func (f *MaterialForm) AddTag(tag string) bool {
	return f.tags.Add(tag)
}

func (f *MaterialForm) RemoveTag(tag string) bool {
	return f.tags.Remove(tag)
}

func (f *MaterialForm) Tags() []string {
	return f.tags.Values()
}

// Validate flags every missing required field.
func (f *MaterialForm) Validate() FormErrors {
	return FormErrors{
		Title:  strings.TrimSpace(f.Title) == "",
		Owner:  f.Owner == nil,
		Team:   strings.TrimSpace(f.Team) == "",
		Origin: strings.TrimSpace(f.Origin) == "",
	}
}

// Fields returns the multipart fields to post. Empty optional values are
// left out.
func (f *MaterialForm) Fields() []gazapi.FormField {
	var owner string
	if f.Owner != nil {
		owner = strconv.FormatInt(*f.Owner, 10)
	}
	candidates := []gazapi.FormField{
		{Key: string(FieldTitle), Value: f.Title},
		{Key: string(FieldOwner), Value: owner},
		{Key: string(FieldTeam), Value: f.Team},
		{Key: string(FieldOrigin), Value: f.Origin},
		{Key: string(FieldCodeCommande), Value: f.CodeCommande},
		{Key: string(FieldCodeBarres), Value: f.CodeBarres},
		{Key: string(FieldSize), Value: f.Size},
		{Key: string(FieldLevRisk), Value: f.LevRisk},
		{Key: string(FieldLabDestination), Value: f.LabDestination},
		{Key: string(FieldDateArrivee), Value: f.DateArrivee.DateString()},
	}
	out := make([]gazapi.FormField, 0, len(candidates))
	for _, c := range candidates {
		if c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}

// MaterialCreator is the part of the API the form needs.
type MaterialCreator interface {
	CreateMaterial(ctx context.Context, fields []gazapi.FormField, tags []string) (*models.Material, error)
}

// CreateResult tells the caller where to go once the success message has
// been shown for RedirectAfter.
type CreateResult struct {
	Material      *models.Material
	Message       string
	Redirect      string
	RedirectAfter time.Duration
}

type FormController struct {
	api    MaterialCreator
	logger *logrus.Logger
}

func NewFormController(api MaterialCreator, logger *logrus.Logger) *FormController {
	return &FormController{api: api, logger: logger}
}

// Submit validates the form and, only if every required field is present,
// posts it. Server rejections come back as *gazapi.APIError.
func (c *FormController) Submit(ctx context.Context, form *MaterialForm) (*CreateResult, error) {
	if errs := form.Validate(); errs.Any() {
		return nil, &ValidationError{Fields: errs}
	}

	created, err := c.api.CreateMaterial(ctx, form.Fields(), form.Tags())
	if err != nil {
		c.logger.WithError(err).WithField("title", form.Title).Warn("material creation failed")
		return nil, err
	}
	metrics.MaterialsCreated.Inc()
	c.logger.WithField("material_id", created.MaterialID).Info("material created")

	return &CreateResult{
		Material:      created,
		Message:       CreateSuccessMessage,
		Redirect:      DetailPath(created.MaterialID),
		RedirectAfter: CreateRedirectDelay,
	}, nil
}
