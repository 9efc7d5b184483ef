package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// FilePart is one binary attachment of a multipart request.
type FilePart struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

// PostMultipart issues a POST request whose body is multipart form data:
// one JSON-encoded metadata field (named metaField, e.g. "auction" or
// "user") plus any number of binary file parts.
func (c *Client) PostMultipart(ctx context.Context, path, metaField string, meta any, files []FilePart, out any) error {
	return c.doMultipart(ctx, http.MethodPost, path, metaField, meta, files, out)
}

// PutMultipart is PostMultipart with the PUT method, used by update
// operations that may replace photos.
func (c *Client) PutMultipart(ctx context.Context, path, metaField string, meta any, files []FilePart, out any) error {
	return c.doMultipart(ctx, http.MethodPut, path, metaField, meta, files, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path, metaField string, meta any, files []FilePart, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("restclient: encode %s metadata: %w", metaField, err)
	}
	if err := writeJSONField(writer, metaField, encoded); err != nil {
		return fmt.Errorf("restclient: write %s part: %w", metaField, err)
	}

	for _, file := range files {
		part, err := writer.CreatePart(fileHeader(file))
		if err != nil {
			return fmt.Errorf("restclient: create file part %s: %w", file.Filename, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return fmt.Errorf("restclient: write file part %s: %w", file.Filename, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("restclient: finalize multipart body: %w", err)
	}

	return c.do(ctx, method, path, &body, writer.FormDataContentType(), out)
}

// writeJSONField adds the metadata part with an explicit application/json
// content type so the backend can bind it directly.
func writeJSONField(writer *multipart.Writer, field string, payload []byte) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, field))
	header.Set("Content-Type", "application/json")

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(payload)
	return err
}

func fileHeader(file FilePart) textproto.MIMEHeader {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		file.FieldName, sanitizeFilename(file.Filename)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	return header
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, "\\", "")
	return name
}
