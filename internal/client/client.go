// Package client uploads survey exports to a signsurvey server and follows
// the streamed import progress.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/signsurvey/internal/progress"
	"github.com/JonMunkholm/signsurvey/internal/survey"
)

// APIError is a non-streamed error answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Action  string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (Code: %s, HTTP %d)", e.Message, e.Code, e.Status)
}

// Client talks to one server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: an import stream lasts as long as the export.
		http: &http.Client{Transport: http.DefaultTransport},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadPhotos imports the export at path. See Upload.
func (c *Client) UploadPhotos(ctx context.Context, path string, onMessage func(progress.Message, *progress.Tally)) (*progress.Tally, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	return c.Upload(ctx, filepath.Base(path), f, onMessage)
}

// Upload streams r to the import endpoint as the multipart part "file" and
// feeds every progress message into a Tally, calling onMessage after each.
// The returned Tally holds the authoritative totals when err is nil; a
// stream that ends early yields progress.ErrIncomplete with the Tally of what
// arrived.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, onMessage func(progress.Message, *progress.Tally)) (*progress.Tally, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := mw.FormDataContentType()

	written := make(chan error, 1)
	go func() {
		err := writeFilePart(mw, name, r)
		pw.CloseWithError(err)
		written <- err
	}()
	defer func() {
		pr.Close()
		<-written
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/photos/import", pr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", progress.ContentType+", application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, progress.ContentType); err != nil {
		return nil, err
	}

	tally, err := progress.Consume(resp.Body, onMessage)
	if err != nil {
		return tally, fmt.Errorf("import %s: %w", name, err)
	}
	return tally, nil
}

func writeFilePart(mw *multipart.Writer, name string, r io.Reader) error {
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy export: %w", err)
	}
	return mw.Close()
}

// GetPhoto fetches one stored photo by photo name.
func (c *Client) GetPhoto(ctx context.Context, customID string) (survey.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/photos/"+url.PathEscape(customID), nil)
	if err != nil {
		return survey.Photo{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return survey.Photo{}, fmt.Errorf("get photo %s: %w", customID, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "application/json"); err != nil {
		return survey.Photo{}, err
	}

	var photo survey.Photo
	if err := json.NewDecoder(resp.Body).Decode(&photo); err != nil {
		return survey.Photo{}, fmt.Errorf("decode photo %s: %w", customID, err)
	}
	return photo, nil
}

// checkResponse turns anything other than a 200 with the wanted media type
// into an error.
func checkResponse(resp *http.Response, wantType string) error {
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if resp.StatusCode == http.StatusOK && mediaType == wantType {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Action  string `json:"action"`
		Code    string `json:"code"`
	}
	if mediaType == "application/json" && json.Unmarshal(body, &payload) == nil {
		apiErr.Code = payload.Code
		apiErr.Action = payload.Action
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
