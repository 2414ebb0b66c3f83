package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RigelNana/gazotheque/pkg/gazapi"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEvaluatesPermissions(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	ctrl := NewDetailController(api, nil, quietLogger())

	view, err := ctrl.Load(context.Background(), ownerUser, 10)
	require.NoError(t, err)
	assert.Equal(t, StateReady, view.State)
	assert.True(t, view.Permissions.IsOwner)
	assert.True(t, view.Fields[FieldOrigin])
	assert.False(t, view.Fields[FieldTitle])
}

func TestLoadMissingRecord(t *testing.T) {
	ctrl := NewDetailController(newFakeAPI(), nil, quietLogger())
	_, err := ctrl.Load(context.Background(), adminUser, 99)
	assert.True(t, gazapi.IsNotFound(err))
}

// Admin sets a departure date: PUT carries the ISO date, the record reloads
// consigned and every field becomes read-only.
func TestAdminConsignsMaterial(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	notifier := &recordingNotifier{}
	ctrl := NewDetailController(api, notifier, quietLogger())

	view, err := ctrl.Update(context.Background(), adminUser, 10, Edits{FieldDateDepart: "2024-05-01"}, true)
	require.NoError(t, err)

	require.Len(t, api.puts, 1)
	assert.Equal(t, "2024-05-01T00:00:00.000Z", api.puts[0]["date_depart"])
	assert.Equal(t, "Argon", api.puts[0]["material_title"])
	assert.Equal(t, int64(30), api.puts[0]["owner"])

	assert.True(t, view.Permissions.IsConsigned)
	assert.False(t, view.Permissions.CanDelete)
	assert.Empty(t, view.Permissions.EditableFields())
	assert.Equal(t, []int64{10}, notifier.calls)

	// and it stays frozen
	_, err = ctrl.Update(context.Background(), adminUser, 10, Edits{FieldOrigin: "x"}, true)
	assert.ErrorIs(t, err, ErrConsigned)
	_, err = ctrl.Delete(context.Background(), adminUser, 10, true)
	assert.ErrorIs(t, err, ErrConsigned)
	assert.Empty(t, api.deletes)
}

func TestUpdateRequiresConfirmation(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	ctrl := NewDetailController(api, nil, quietLogger())

	_, err := ctrl.Update(context.Background(), adminUser, 10, Edits{FieldOrigin: "Linde"}, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, api.puts)
}

func TestOwnerMayOnlyEditOrigin(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	ctrl := NewDetailController(api, nil, quietLogger())

	view, err := ctrl.Update(context.Background(), ownerUser, 10, Edits{FieldOrigin: "Linde"}, true)
	require.NoError(t, err)
	assert.Equal(t, "Linde", view.Material.Origin)

	_, err = ctrl.Update(context.Background(), ownerUser, 10, Edits{FieldTitle: "Renamed"}, true)
	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, FieldTitle, ferr.Field)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, api.puts, 1)
}

func TestStrangerCannotEdit(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	ctrl := NewDetailController(api, nil, quietLogger())

	_, err := ctrl.Update(context.Background(), otherUser, 10, Edits{FieldOrigin: "Linde"}, true)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = ctrl.Update(context.Background(), nil, 10, Edits{FieldOrigin: "Linde"}, true)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, api.puts)
}

func TestUpdateRejectsBadValues(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	ctrl := NewDetailController(api, nil, quietLogger())

	_, err := ctrl.Update(context.Background(), adminUser, 10, Edits{FieldDateArrivee: "yesterday"}, true)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = ctrl.Update(context.Background(), adminUser, 10, Edits{FieldOwner: "abc"}, true)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Empty(t, api.puts)
}

func TestUpdateRejectsUnknownFieldBeforePermissions(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	ctrl := NewDetailController(api, nil, quietLogger())

	for _, user := range []*models.User{adminUser, ownerUser} {
		_, err := ctrl.Update(context.Background(), user, 10, Edits{FieldOrigin: "Linde", Field("qrcode"): "x"}, true)
		var ferr *FieldError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, Field("qrcode"), ferr.Field)
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.NotErrorIs(t, err, ErrForbidden)
	}
	assert.Empty(t, api.puts)
}

func TestUpdateServerErrorPassesThrough(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	api.putErr = &gazapi.APIError{Status: 400, Key: "size", Message: "invalid"}
	ctrl := NewDetailController(api, nil, quietLogger())

	_, err := ctrl.Update(context.Background(), adminUser, 10, Edits{FieldSize: "B50"}, true)
	var apiErr *gazapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "size", apiErr.Key)
}

func TestNotifierFailureDoesNotFailUpdate(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	notifier := &recordingNotifier{err: errors.New("broker down")}
	ctrl := NewDetailController(api, notifier, quietLogger())

	view, err := ctrl.Update(context.Background(), adminUser, 10, Edits{FieldDateDepart: "2024-05-01"}, true)
	require.NoError(t, err)
	assert.True(t, view.Permissions.IsConsigned)
	assert.Len(t, notifier.calls, 1)
}

func TestDeleteGates(t *testing.T) {
	tests := []struct {
		name      string
		user      *models.User
		confirmed bool
		wantErr   error
	}{
		{"cancelled dialog", adminUser, false, ErrNotConfirmed},
		{"owner", ownerUser, true, ErrForbidden},
		{"stranger", otherUser, true, ErrForbidden},
		{"anonymous", nil, true, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(*liveMaterial())
			ctrl := NewDetailController(api, nil, quietLogger())

			res, err := ctrl.Delete(context.Background(), tt.user, 10, tt.confirmed)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, api.deletes)
		})
	}
}

func TestAdminDeletesLiveMaterial(t *testing.T) {
	api := newFakeAPI(*liveMaterial())
	ctrl := NewDetailController(api, nil, quietLogger())

	res, err := ctrl.Delete(context.Background(), staffUser, 10, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, api.deletes)
	assert.Equal(t, "/", res.Redirect)
	assert.Equal(t, time.Second, res.RedirectAfter)
	assert.Equal(t, DeleteSuccessMessage, res.Message)
}

func TestBuildUpdatePayloadKeepsUntouchedFields(t *testing.T) {
	m := liveMaterial()
	m.DateArrivee = day("2024-01-15")
	m.Tags = []string{"a"}

	payload, err := BuildUpdatePayload(m, Edits{FieldTags: "b, c,b", FieldOwner: " 12 "})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", payload["date_arrivee"])
	assert.Nil(t, payload["date_depart"])
	assert.Equal(t, []string{"b", "c"}, payload["tags"])
	assert.Equal(t, int64(12), payload["owner"])
	assert.Equal(t, "Argon", payload["material_title"])
}

func TestBuildUpdatePayloadClearsDate(t *testing.T) {
	m := liveMaterial()
	m.DateArrivee = day("2024-01-15")
	payload, err := BuildUpdatePayload(m, Edits{FieldDateArrivee: ""})
	require.NoError(t, err)
	assert.Nil(t, payload["date_arrivee"])
}

func TestBuildUpdatePayloadRejectsUnknownField(t *testing.T) {
	_, err := BuildUpdatePayload(liveMaterial(), Edits{"qrcode": "x"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}
