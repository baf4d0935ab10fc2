package gateway

import (
	"context"
	"fmt"
)

// ImageLoader fetches a stored rendered image by filename.
type ImageLoader interface {
	LoadFile(ctx context.Context, name string) ([]byte, error)
}

// ImageSender resolves a queued task's filename against storage and ships
// the bytes to the access point.
type ImageSender struct {
	Loader ImageLoader
	Client *Client
}

func (s *ImageSender) Send(ctx context.Context, mac, filename string) error {
	data, err := s.Loader.LoadFile(ctx, filename)
	if err != nil {
		return fmt.Errorf("load %s: %w", filename, err)
	}
	return s.Client.UploadImage(ctx, mac, filename, data)
}
