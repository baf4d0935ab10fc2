// Package gateway talks to the OpenEPaperLink access point: pushing rendered
// images to tags and consuming the tag inventory and live telemetry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Tag is one entry of the access point's tag database.
type Tag struct {
	Mac         string `json:"mac"`
	Alias       string `json:"alias"`
	HWType      int    `json:"hwType"`
	BatteryMv   int    `json:"batteryMv"`
	LastSeen    int64  `json:"updatelast"`
	NextUpdate  int64  `json:"nextupdate"`
	NextCheckin int64  `json:"nextcheckin"`
	Pending     int    `json:"pending"`
}

// Client is the HTTP side of the access point API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(host string) *Client {
	return &Client{
		baseURL: "http://" + host,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadImage posts a rendered JPEG for one tag. Dithering stays off: the
// image is already quantized to the panel palette server-side.
func (c *Client) UploadImage(ctx context.Context, mac, filename string, image []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("mac", mac); err != nil {
		return err
	}
	if err := w.WriteField("dither", "0"); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(image); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/imgupload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload image for %s: %w", mac, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload image for %s: HTTP %d: %s", mac, resp.StatusCode, payload)
	}
	return nil
}

// FetchTags dumps the access point's tag database.
func (c *Client) FetchTags(ctx context.Context) ([]Tag, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get_db", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tag db: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch tag db: HTTP %d: %s", resp.StatusCode, payload)
	}

	var parsed struct {
		Tags []Tag `json:"tags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode tag db: %w", err)
	}
	if parsed.Tags == nil {
		return nil, fmt.Errorf("tag db response has no tags array")
	}
	return parsed.Tags, nil
}

// Battery voltage range of the supported tag hardware, in millivolts.
const (
	batteryEmptyMv = 2200
	batteryFullMv  = 3000
)

// MvToPercent maps a battery voltage onto 0-100, clamped at both ends.
func MvToPercent(mv, vEmpty, vFull int) int {
	if vFull <= vEmpty {
		return 0
	}
	pct := float64(mv-vEmpty) * 100.0 / float64(vFull-vEmpty)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return int(pct + 0.5)
}
