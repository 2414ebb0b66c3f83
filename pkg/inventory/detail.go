package inventory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	DeleteRedirectDelay  = 1 * time.Second
	DeleteRedirectPath   = "/"
	UpdateSuccessMessage = "Les détails de la bouteille ont été mis à jour avec succès !"
	DeleteSuccessMessage = "La bouteille a été supprimée avec succès"
	DeleteFailureMessage = "Impossible de supprimer le matériel, réessayez plus tard!!!"
)

// State of a detail view. Ready is terminal; a refresh goes through Loading
// again.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// MaterialStore is the part of the API the detail view needs.
type MaterialStore interface {
	GetMaterial(ctx context.Context, id int64) (*models.Material, error)
	UpdateMaterial(ctx context.Context, id int64, payload map[string]any) (*models.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
}

// ConsignmentNotifier is told when an update turned a material consigned.
type ConsignmentNotifier interface {
	MaterialConsigned(ctx context.Context, m *models.Material, by *models.User) error
}

// DetailView is one loaded record with the permissions of the viewer.
type DetailView struct {
	State       State            `json:"state"`
	Material    *models.Material `json:"material"`
	Permissions Permissions      `json:"permissions"`
	Fields      map[Field]bool   `json:"fields"`
}

// Edits are pending edit form values keyed by field. Dates accept the API
// formats, tags a comma separated list, owner a numeric owner id.
type Edits map[Field]string

type DeleteResult struct {
	Message       string
	Redirect      string
	RedirectAfter time.Duration
}

type DetailController struct {
	api      MaterialStore
	notifier ConsignmentNotifier
	logger   *logrus.Logger
}

// NewDetailController builds a controller. notifier may be nil.
func NewDetailController(api MaterialStore, notifier ConsignmentNotifier, logger *logrus.Logger) *DetailController {
	return &DetailController{api: api, notifier: notifier, logger: logger}
}

// Load fetches the record and evaluates permissions once both the record and
// the user are known.
func (c *DetailController) Load(ctx context.Context, user *models.User, id int64) (*DetailView, error) {
	m, err := c.api.GetMaterial(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load material %d: %w", id, err)
	}
	perms := DerivePermissions(user, m)
	return &DetailView{
		State:       StateReady,
		Material:    m,
		Permissions: perms,
		Fields:      perms.FieldStates(),
	}, nil
}

// Update applies edits after the second confirmation. The record is re-read
// first so the gates run against server state, and re-read again after the
// PUT so server-computed fields show up.
func (c *DetailController) Update(ctx context.Context, user *models.User, id int64, edits Edits, confirmed bool) (*DetailView, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	for _, f := range sortedFields(edits) {
		if !validField(f) {
			return nil, &FieldError{Field: f, Err: ErrInvalidValue}
		}
	}
	current, err := c.Load(ctx, user, id)
	if err != nil {
		return nil, err
	}
	perms := current.Permissions
	if perms.IsConsigned {
		return nil, ErrConsigned
	}
	if !perms.CanEdit {
		return nil, ErrForbidden
	}
	for _, f := range sortedFields(edits) {
		if !perms.CanEditField(f) {
			return nil, &FieldError{Field: f, Err: ErrForbidden}
		}
	}

	payload, err := BuildUpdatePayload(current.Material, edits)
	if err != nil {
		return nil, err
	}

	log := c.logger.WithFields(logrus.Fields{"material_id": id, "user_id": user.UserID})
	if _, err := c.api.UpdateMaterial(ctx, id, payload); err != nil {
		log.WithError(err).Warn("material update failed")
		return nil, err
	}
	log.Info("material updated")

	reloaded, err := c.Load(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if reloaded.Material.Consigned() {
		metrics.MaterialsConsigned.Inc()
		c.notifyConsigned(ctx, reloaded.Material, user)
	}
	return reloaded, nil
}

func (c *DetailController) notifyConsigned(ctx context.Context, m *models.Material, user *models.User) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.MaterialConsigned(ctx, m, user); err != nil {
		c.logger.WithError(err).WithField("material_id", m.MaterialID).Error("failed to publish consignment event")
	}
}

// Delete removes a record after confirmation. Only administrators may delete,
// and never a consigned record.
func (c *DetailController) Delete(ctx context.Context, user *models.User, id int64, confirmed bool) (*DeleteResult, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	current, err := c.Load(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if current.Permissions.IsConsigned {
		return nil, ErrConsigned
	}
	if !current.Permissions.CanDelete {
		return nil, ErrForbidden
	}

	log := c.logger.WithFields(logrus.Fields{"material_id": id, "user_id": user.UserID})
	if err := c.api.DeleteMaterial(ctx, id); err != nil {
		log.WithError(err).Warn("material delete failed")
		return nil, err
	}
	log.Info("material deleted")

	return &DeleteResult{
		Message:       DeleteSuccessMessage,
		Redirect:      DeleteRedirectPath,
		RedirectAfter: DeleteRedirectDelay,
	}, nil
}

// BuildUpdatePayload merges edits into the full field set of m, formatting
// dates the way the API expects.
func BuildUpdatePayload(m *models.Material, edits Edits) (map[string]any, error) {
	payload := map[string]any{
		string(FieldTitle):          m.Title,
		string(FieldTeam):           m.Team,
		string(FieldOrigin):         m.Origin,
		string(FieldCodeCommande):   m.CodeCommande,
		string(FieldCodeBarres):     m.CodeBarres,
		string(FieldSize):           m.Size,
		string(FieldLevRisk):        m.LevRisk,
		string(FieldLabDestination): m.LabDestination,
		string(FieldDateArrivee):    formatDate(m.DateArrivee),
		string(FieldDateDepart):     formatDateTime(m.DateDepart),
		string(FieldTags):           nonNilTags(m.Tags),
	}
	if m.Owner != nil {
		payload[string(FieldOwner)] = *m.Owner
	}

	for _, f := range sortedFields(edits) {
		value := edits[f]
		switch f {
		case FieldDateArrivee, FieldDateDepart:
			t, err := models.ParseNullTime(value)
			if err != nil {
				return nil, &FieldError{Field: f, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
			}
			if f == FieldDateArrivee {
				payload[string(f)] = formatDate(t)
			} else {
				payload[string(f)] = formatDateTime(t)
			}
		case FieldOwner:
			ownerID, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return nil, &FieldError{Field: f, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
			}
			payload[string(f)] = ownerID
		case FieldTags:
			payload[string(f)] = ParseTagList(value).Values()
		default:
			if !validField(f) {
				return nil, &FieldError{Field: f, Err: ErrInvalidValue}
			}
			payload[string(f)] = value
		}
	}
	return payload, nil
}

func formatDate(t models.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time.Format(models.DateLayout)
}

func formatDateTime(t models.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time.UTC().Format(models.DateTimeLayout)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func sortedFields(edits Edits) []Field {
	fields := make([]Field, 0, len(edits))
	for f := range edits {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
