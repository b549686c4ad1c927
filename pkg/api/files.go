package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadFile posts content as the multipart field "file". The backend
// answers with a string map (a URL on success, error/message otherwise).
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (map[string]string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", w.FormDataContentType())
	header.Set("Accept", "application/json")

	out := map[string]string{}
	if err := c.send(ctx, http.MethodPost, "/api/files/upload", buf.Bytes(), header, &out); err != nil {
		return nil, err
	}
	return out, nil
}
