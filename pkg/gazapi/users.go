package gazapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/RigelNana/gazotheque/pkg/models"
)

// UpdateUser patches a user through PUT /users/{id}/.
func (c *Client) UpdateUser(ctx context.Context, userID int64, patch map[string]any) (*models.User, error) {
	var out models.User
	if err := c.sendJSON(ctx, "update_user", http.MethodPut, fmt.Sprintf("/users/%d/", userID), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadProfilePicture sends a picture as the "profil_pic" multipart field.
func (c *Client) UploadProfilePicture(ctx context.Context, userID int64, filename string, r io.Reader) (*models.User, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("profil_pic", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("upload_picture: create part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("upload_picture: copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload_picture: close form: %w", err)
	}

	var out models.User
	err = c.do(ctx, request{
		operation:   "upload_picture",
		method:      http.MethodPost,
		path:        fmt.Sprintf("/users/upload_pictures/%d/", userID),
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
