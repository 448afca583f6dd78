package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/hasher"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

const envelopeVersion = 1

// Persister encodes sections into checksummed envelopes and writes them to a Store.
// A section is only written when its revision is newer than the last one written,
// so a batch built from an older snapshot never overwrites a fresher save.
type Persister struct {
	mu      sync.Mutex
	written map[types.SnapshotSection]uint64

	store Store
	log   logger.Logger
	now   func() time.Time
}

func New(store Store, log logger.Logger) *Persister {
	return &Persister{
		written: make(map[types.SnapshotSection]uint64),
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// Save writes a single section. Errors wrap types.ErrSnapshotFailed.
func (p *Persister) Save(ctx context.Context, section types.SnapshotSection, revision uint64, state any) error {
	ctx = wrap.WithAction(ctx, types.ActionSnapshotSaved)

	p.mu.Lock()
	defer p.mu.Unlock()

	if last, ok := p.written[section]; ok && revision <= last {
		return nil
	}

	payload, err := p.encode(section, state)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrSnapshotFailed, err))
	}

	if err := p.store.Save(ctx, section, payload); err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionSnapshotFailed), fmt.Errorf("%w: save %s: %w", types.ErrSnapshotFailed, section, err))
	}

	p.written[section] = revision
	p.log.Debug(ctx, "snapshot saved", "section", section, "revision", revision, "bytes", len(payload))
	return nil
}

// SaveAll snapshots every component and writes them in one batch.
func (p *Persister) SaveAll(ctx context.Context, components ...Component) error {
	ctx = wrap.WithAction(ctx, types.ActionSnapshotSaved)

	// snapshots are taken before p.mu to keep the component -> persister lock order
	entries := make([]models.SnapshotEntry, 0, len(components))
	for _, c := range components {
		entries = append(entries, c.SnapshotEntry())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	batch := make(map[types.SnapshotSection][]byte, len(entries))
	for _, e := range entries {
		if last, ok := p.written[e.Section]; ok && e.Revision <= last {
			continue
		}
		payload, err := p.encode(e.Section, e.State)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrSnapshotFailed, err))
		}
		batch[e.Section] = payload
	}

	if len(batch) == 0 {
		p.log.Debug(ctx, "snapshot is up to date")
		return nil
	}

	if err := p.store.SaveBatch(ctx, batch); err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionSnapshotFailed), fmt.Errorf("%w: save batch: %w", types.ErrSnapshotFailed, err))
	}

	for _, e := range entries {
		if _, ok := batch[e.Section]; ok {
			p.written[e.Section] = e.Revision
		}
	}

	p.log.Info(ctx, "snapshot saved", "sections", len(batch))
	return nil
}

// RestoreAll loads every component's section. Missing sections leave the component empty.
func (p *Persister) RestoreAll(ctx context.Context, components ...Component) error {
	ctx = wrap.WithAction(ctx, types.ActionSnapshotRestored)

	for _, c := range components {
		section := c.Section()

		payload, err := p.Load(ctx, section)
		if errors.Is(err, types.ErrSnapshotNotFound) {
			p.log.Info(ctx, "no snapshot found, starting empty", "section", section)
			continue
		}
		if err != nil {
			return err
		}

		if err := c.RestoreSnapshot(payload); err != nil {
			return wrap.Error(ctx, fmt.Errorf("restore %s: %w", section, err))
		}

		p.mu.Lock()
		p.written[section] = c.SnapshotEntry().Revision
		p.mu.Unlock()

		p.log.Info(ctx, "snapshot restored", "section", section)
	}

	return nil
}

// Load reads a section and verifies its envelope. It returns the inner payload.
func (p *Persister) Load(ctx context.Context, section types.SnapshotSection) (json.RawMessage, error) {
	raw, err := p.store.Load(ctx, section)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	env, err := Decode(raw)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("section %s: %w", section, err))
	}
	if env.Section != section {
		return nil, wrap.Error(ctx, fmt.Errorf("section %s: envelope holds %q", section, env.Section))
	}

	return env.Payload, nil
}

// List describes the stored sections.
func (p *Persister) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	infos, err := p.store.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return infos, nil
}

func (p *Persister) encode(section types.SnapshotSection, state any) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", section, err)
	}

	env := models.SnapshotEnvelope{
		Section:  section,
		Version:  envelopeVersion,
		Checksum: hasher.SumBytes(payload),
		SavedAt:  p.now().UTC(),
		Payload:  payload,
	}

	return json.Marshal(env)
}

// Decode parses an envelope and checks the payload checksum.
func Decode(raw []byte) (*models.SnapshotEnvelope, error) {
	var env models.SnapshotEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	if !hasher.Verify(env.Payload, env.Checksum) {
		return nil, types.ErrChecksumMismatch
	}
	return &env, nil
}
