package cache

import (
	"bytes"
	"context"

	"github.com/blackwell-systems/levelshelf/internal/icons"
)

// Wrap returns a read-through FetchFunc: cached covers are served from
// disk, anything else is fetched and stored. A failed store is logged and
// the fetched bytes are still returned.
func (m *Manager) Wrap(fetch icons.FetchFunc) icons.FetchFunc {
	return func(ctx context.Context, id string) ([]byte, error) {
		if data, err := m.Read(id); err == nil && len(data) > 0 {
			m.log.Debug().Str("id", id).Msg("cover cache hit")
			return data, nil
		}

		data, err := fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, err := m.Store(id, bytes.NewReader(data), ""); err != nil {
			m.log.Warn().Err(err).Str("id", id).Msg("could not cache cover")
		}
		return data, nil
	}
}
