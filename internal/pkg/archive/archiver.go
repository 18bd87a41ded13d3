package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/LukasBrandt/PaySweep/app/repository"
	"github.com/gofiber/fiber/v2/log"
)

const batchLimit = 200

// Archiver moves processed webhook payloads into cold storage. The database
// row stays behind for dedupe; only the payload leaves the hot path.
type Archiver struct {
	events repository.WebhookEventRepository
	client *Client
}

// NewArchiver wires the archiver from config; returns an error when the
// archive is disabled or misconfigured.
func NewArchiver(events repository.WebhookEventRepository) (*Archiver, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("webhook archive is disabled")
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Archiver{events: events, client: client}, nil
}

// ArchiveProcessedEvents uploads processed, unarchived events older than the
// cutoff. One failing upload is logged and skipped; the rest of the batch
// proceeds. Returns the number of events archived.
func (a *Archiver) ArchiveProcessedEvents(ctx context.Context, olderThan time.Time) (int, error) {
	events, err := a.events.ListProcessedUnarchived(olderThan, batchLimit)
	if err != nil {
		return 0, fmt.Errorf("list events to archive: %w", err)
	}

	archived := 0
	for _, event := range events {
		key := a.client.config.GetObjectKey(event.Provider, event.ProviderEventID, event.CreatedAt)
		if err := a.client.UploadPayload(ctx, key, []byte(event.PayloadJSON)); err != nil {
			log.Warnf("[Archive] upload event %d failed: %v", event.ID, err)
			continue
		}
		if err := a.events.MarkArchived(event.ID); err != nil {
			log.Errorf("[Archive] mark archived for event %d failed: %v", event.ID, err)
			continue
		}
		archived++
	}

	log.Infof("[Archive] archived %d of %d candidate events", archived, len(events))
	return archived, nil
}
