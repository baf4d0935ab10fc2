// Package content manages what each display is currently showing: accepting
// submissions, rendering them through the template pipeline and scheduling
// delivery to the gateway.
package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/model"
	"github.com/inkfleet/inkfleet/internal/render"
)

// Store is the persistence surface of the content pipeline.
type Store interface {
	GetDisplayByMac(mac string) (*model.Display, error)
	ResolveTemplate(typeKey string, width, height int) (*model.TemplateDefinition, error)
	GetDisplayContent(mac, typeKey string) (*model.DisplayContent, error)
	UpsertDisplayContent(c *model.DisplayContent) error
	ListAllDisplayContent() ([]model.DisplayContent, error)
}

// ImageStore persists rendered images under a stable name.
type ImageStore interface {
	SaveFile(ctx context.Context, name string, data []byte) error
}

// Queue schedules gateway deliveries.
type Queue interface {
	Enqueue(filename, mac string)
}

// ErrInvalidSubmission rejects content that lacks its addressing fields.
var ErrInvalidSubmission = errors.New("content needs display mac and template type")

// Service ties submission storage to the render-and-deliver pipeline.
type Service struct {
	store    Store
	renderer *render.Renderer
	images   ImageStore
	queue    Queue
}

func NewService(store Store, renderer *render.Renderer, images ImageStore, queue Queue) *Service {
	return &Service{store: store, renderer: renderer, images: images, queue: queue}
}

// Submit replaces the display's content for one template type and pushes
// the re-rendered image into the delivery queue. Sub-item positions are
// assigned from submission order.
func (s *Service) Submit(ctx context.Context, c *model.DisplayContent) error {
	if c.DisplayMac == "" || c.TypeKey == "" {
		return ErrInvalidSubmission
	}
	if _, err := s.store.GetDisplayByMac(c.DisplayMac); err != nil {
		return fmt.Errorf("display %s: %w", c.DisplayMac, err)
	}
	for i := range c.SubItems {
		c.SubItems[i].Position = i
	}
	if err := s.store.UpsertDisplayContent(c); err != nil {
		return err
	}
	return s.Redeliver(ctx, c.DisplayMac, c.TypeKey)
}

// ApplyDefault replaces the display's content with the type's neutral
// default and redelivers it. Used when the last real content expired.
func (s *Service) ApplyDefault(ctx context.Context, mac, typeKey string) error {
	return s.Submit(ctx, DefaultContent(typeKey, mac))
}

// Redeliver renders the stored content (or the type default when nothing
// is stored) against the display's template variant and enqueues the
// upload. Rendering happens here, off the interactive request path's
// storage transaction; the queue serializes the actual send.
func (s *Service) Redeliver(ctx context.Context, mac, typeKey string) error {
	display, err := s.store.GetDisplayByMac(mac)
	if err != nil {
		return fmt.Errorf("display %s: %w", mac, err)
	}

	tpl, err := s.store.ResolveTemplate(typeKey, display.Width, display.Height)
	if err != nil {
		return fmt.Errorf("resolve template %s %dx%d: %w", typeKey, display.Width, display.Height, err)
	}

	c, err := s.store.GetDisplayContent(mac, typeKey)
	switch {
	case errors.Is(err, db.ErrNotFound):
		log.Warn().Str("mac", mac).Str("type", typeKey).
			Msg("no stored content, rendering type default")
		c = DefaultContent(typeKey, mac)
	case err != nil:
		return err
	}

	subItems := c.SubItems
	if typeKey == model.TemplateEventBoard {
		// The board lists chronologically, not in submission order.
		subItems = sortByStart(subItems)
	}

	rendered, err := s.renderer.Render(tpl, c.Fields, subItems)
	if err != nil {
		return fmt.Errorf("render %s for %s: %w", typeKey, mac, err)
	}

	filename := ImageFilename(mac, typeKey)
	if err := s.images.SaveFile(ctx, filename, rendered); err != nil {
		return fmt.Errorf("store rendered image %s: %w", filename, err)
	}

	s.queue.Enqueue(filename, mac)
	log.Info().Str("mac", mac).Str("type", typeKey).Str("filename", filename).
		Msg("rendered content queued for delivery")
	return nil
}

// ReplayAll re-renders and re-enqueues every stored content row. Runs once
// at startup so deliveries lost to a restart still reach their displays.
func (s *Service) ReplayAll(ctx context.Context) {
	rows, err := s.store.ListAllDisplayContent()
	if err != nil {
		log.Error().Err(err).Msg("startup replay could not list stored content")
		return
	}
	scheduled := 0
	for _, c := range rows {
		if err := s.Redeliver(ctx, c.DisplayMac, c.TypeKey); err != nil {
			log.Error().Err(err).Str("mac", c.DisplayMac).Str("type", c.TypeKey).
				Msg("startup replay failed for display")
			continue
		}
		scheduled++
	}
	log.Info().Int("scheduled", scheduled).Msg("startup replay enqueued display updates")
}

// ImageFilename is the stable per-(display, type) name of the rendered
// image, so re-renders overwrite instead of accumulating.
func ImageFilename(mac, typeKey string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, ":", "")) + "_" + typeKey + ".jpg"
}

func sortByStart(items []model.SubItem) []model.SubItem {
	sorted := make([]model.SubItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		switch {
		case sorted[i].Start == nil:
			return false
		case sorted[j].Start == nil:
			return true
		default:
			return sorted[i].Start.Before(*sorted[j].Start)
		}
	})
	return sorted
}
