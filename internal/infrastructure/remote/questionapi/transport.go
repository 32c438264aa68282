package questionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

const maxErrorBody = 2048

func (c *Client) postJSON(ctx context.Context, path, operation, schema string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, operation, schema, out)
}

func (c *Client) postFile(ctx context.Context, path, operation, schema string, doc domain.Document, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreatePart(filePartHeader(doc))
	if err != nil {
		return fmt.Errorf("create %s form: %w", operation, err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return fmt.Errorf("write %s form: %w", operation, err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close %s form: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return c.do(req, operation, schema, out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// filePartHeader mirrors multipart.Writer.CreateFormFile but keeps the
// document's own content type.
func filePartHeader(doc domain.Document) textproto.MIMEHeader {
	contentType := strings.TrimSpace(doc.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(uploadField), quoteEscaper.Replace(doc.Filename)))
	h.Set("Content-Type", contentType)
	return h
}

func (c *Client) do(req *http.Request, operation, schema string, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("question service %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", operation, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return domain.WrapError(domain.ErrContract, operation, fmt.Errorf("decode response: %w", err))
	}
	if err := validateBody(operation, schema, generic); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.WrapError(domain.ErrContract, operation, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
