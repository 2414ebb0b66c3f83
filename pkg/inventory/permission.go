// Package inventory holds the material lifecycle rules of the dashboard: who
// may see, edit and delete a record, how the creation form is validated, and
// how the material collection is filtered and paginated.
package inventory

import (
	"github.com/RigelNana/gazotheque/pkg/models"
)

// Field names a material field, using its API name.
type Field string

const (
	FieldTitle          Field = "material_title"
	FieldOwner          Field = "owner"
	FieldTeam           Field = "team"
	FieldOrigin         Field = "origin"
	FieldCodeCommande   Field = "codeCommande"
	FieldCodeBarres     Field = "codeBarres"
	FieldSize           Field = "size"
	FieldLevRisk        Field = "levRisk"
	FieldLabDestination Field = "lab_destination"
	FieldDateArrivee    Field = "date_arrivee"
	FieldDateDepart     Field = "date_depart"
	FieldTags           Field = "tags"
)

// EditFields lists the fields of the edit form, in display order.
var EditFields = []Field{
	FieldTitle,
	FieldOwner,
	FieldTeam,
	FieldOrigin,
	FieldCodeCommande,
	FieldCodeBarres,
	FieldSize,
	FieldLevRisk,
	FieldLabDestination,
	FieldDateArrivee,
	FieldDateDepart,
	FieldTags,
}

// ownerEditable is what a non-admin owner may change on a live record.
var ownerEditable = map[Field]bool{
	FieldOrigin: true,
}

func validField(f Field) bool {
	for _, ef := range EditFields {
		if ef == f {
			return true
		}
	}
	return false
}

// Permissions is what a user may do with one material.
type Permissions struct {
	IsOwner     bool `json:"is_owner"`
	IsAdmin     bool `json:"is_admin"`
	IsConsigned bool `json:"is_consigned"`
	CanView     bool `json:"can_view"`
	CanEdit     bool `json:"can_edit"`
	CanDelete   bool `json:"can_delete"`
}

// IsAdmin grants administrative rights to role "admin" (exact match) and to
// staff users. The Material Record Service applies the same rule.
func IsAdmin(u *models.User) bool {
	if u == nil {
		return false
	}
	return u.Role == models.RoleAdmin || u.IsStaff
}

// IsOwner reports whether u is the owner of m.
func IsOwner(u *models.User, m *models.Material) bool {
	if u == nil || m == nil {
		return false
	}
	ownerID, ok := m.OwnerUserID()
	return ok && ownerID == u.UserID
}

// DerivePermissions evaluates the layered rules: record-level gate
// (admin or owner), field-level gate (owner only touches origin), then the
// consignment override that freezes the record for everyone. A nil user is an
// anonymous visitor of the public page.
func DerivePermissions(u *models.User, m *models.Material) Permissions {
	p := Permissions{CanView: m != nil}
	if m == nil {
		return p
	}
	p.IsAdmin = IsAdmin(u)
	p.IsOwner = IsOwner(u, m)
	p.IsConsigned = m.Consigned()
	p.CanEdit = (p.IsAdmin || p.IsOwner) && !p.IsConsigned
	p.CanDelete = p.IsAdmin && !p.IsConsigned
	return p
}

// CanEditField is the field-level gate.
func (p Permissions) CanEditField(f Field) bool {
	if !p.CanEdit || !validField(f) {
		return false
	}
	if p.IsAdmin {
		return true
	}
	return p.IsOwner && ownerEditable[f]
}

// FieldStates maps every edit field to whether its input is enabled.
func (p Permissions) FieldStates() map[Field]bool {
	states := make(map[Field]bool, len(EditFields))
	for _, f := range EditFields {
		states[f] = p.CanEditField(f)
	}
	return states
}

// EditableFields returns the enabled fields in display order.
func (p Permissions) EditableFields() []Field {
	var out []Field
	for _, f := range EditFields {
		if p.CanEditField(f) {
			out = append(out, f)
		}
	}
	return out
}
