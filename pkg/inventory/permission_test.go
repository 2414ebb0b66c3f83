package inventory

import (
	"testing"

	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/stretchr/testify/assert"
)

var (
	adminUser = &models.User{UserID: 1, Role: "admin"}
	staffUser = &models.User{UserID: 2, Role: "user", IsStaff: true}
	ownerUser = &models.User{UserID: 3, Role: "owner"}
	otherUser = &models.User{UserID: 4, Role: "user"}
)

func liveMaterial() *models.Material {
	return &models.Material{
		MaterialID:   10,
		Title:        "Argon",
		Owner:        int64p(30),
		OwnerDetails: &models.OwnerDetails{UserID: 3, FirstName: "Ada", LastName: "Lovelace"},
	}
}

func consignedMaterial() *models.Material {
	m := liveMaterial()
	m.DateDepart = day("2024-05-01")
	return m
}

func TestDerivePermissions(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		material *models.Material
		want     Permissions
		editable []Field
	}{
		{
			name:     "admin on live record",
			user:     adminUser,
			material: liveMaterial(),
			want:     Permissions{IsAdmin: true, CanView: true, CanEdit: true, CanDelete: true},
			editable: EditFields,
		},
		{
			name:     "staff counts as admin",
			user:     staffUser,
			material: liveMaterial(),
			want:     Permissions{IsAdmin: true, CanView: true, CanEdit: true, CanDelete: true},
			editable: EditFields,
		},
		{
			name:     "owner edits origin only",
			user:     ownerUser,
			material: liveMaterial(),
			want:     Permissions{IsOwner: true, CanView: true, CanEdit: true},
			editable: []Field{FieldOrigin},
		},
		{
			name:     "non-admin non-owner",
			user:     otherUser,
			material: liveMaterial(),
			want:     Permissions{CanView: true},
		},
		{
			name:     "anonymous visitor",
			user:     nil,
			material: liveMaterial(),
			want:     Permissions{CanView: true},
		},
		{
			name:     "admin on consigned record",
			user:     adminUser,
			material: consignedMaterial(),
			want:     Permissions{IsAdmin: true, IsConsigned: true, CanView: true},
		},
		{
			name:     "owner on consigned record",
			user:     ownerUser,
			material: consignedMaterial(),
			want:     Permissions{IsOwner: true, IsConsigned: true, CanView: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePermissions(tt.user, tt.material)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.editable, got.EditableFields())

			states := got.FieldStates()
			assert.Len(t, states, len(EditFields))
			for _, f := range EditFields {
				assert.Equal(t, containsField(tt.editable, f), states[f], "field %s", f)
			}
		})
	}
}

func TestConsignedRecordIsFrozenForEveryone(t *testing.T) {
	for _, u := range []*models.User{adminUser, staffUser, ownerUser, otherUser, nil} {
		p := DerivePermissions(u, consignedMaterial())
		assert.False(t, p.CanDelete)
		assert.False(t, p.CanEdit)
		for _, f := range EditFields {
			assert.False(t, p.CanEditField(f))
		}
	}
}

func TestOwnershipDoesNotGrantDelete(t *testing.T) {
	p := DerivePermissions(ownerUser, liveMaterial())
	assert.True(t, p.CanEdit)
	assert.False(t, p.CanDelete)
}

func TestIsAdminIsCaseSensitive(t *testing.T) {
	assert.False(t, IsAdmin(&models.User{Role: "Admin"}))
	assert.False(t, IsAdmin(&models.User{Role: "administrator"}))
	assert.True(t, IsAdmin(&models.User{Role: "admin"}))
	assert.False(t, IsAdmin(nil))
}

func TestIsOwnerFallsBackToOwnerField(t *testing.T) {
	m := &models.Material{Owner: int64p(4)}
	assert.True(t, IsOwner(otherUser, m))
	assert.False(t, IsOwner(ownerUser, m))

	// owner_details wins when present
	m.OwnerDetails = &models.OwnerDetails{UserID: 3}
	assert.True(t, IsOwner(ownerUser, m))
	assert.False(t, IsOwner(otherUser, m))
}

func TestUnknownFieldIsNeverEditable(t *testing.T) {
	p := DerivePermissions(adminUser, liveMaterial())
	assert.False(t, p.CanEditField("qrcode"))
	assert.False(t, p.CanEditField("material_id"))
}

func TestNilMaterial(t *testing.T) {
	assert.Equal(t, Permissions{}, DerivePermissions(adminUser, nil))
}

func containsField(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
