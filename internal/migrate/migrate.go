// Package migrate rewrites levels that only carry the legacy info.json
// metadata into the level.yml schema.
package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
)

// Candidate is a level directory described only by info.json.
type Candidate struct {
	Dir      string
	Metadata catalog.Metadata
}

// Scan finds level directories under root that have info.json but no
// level.yml. Unreadable legacy files are logged and skipped.
func Scan(root string, log zerolog.Logger) ([]Candidate, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var out []Candidate
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if exists(filepath.Join(dir, catalog.MetadataFile)) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, catalog.LegacyMetadataFile))
		if err != nil {
			if !os.IsNotExist(err) {
				log.Warn().Err(err).Str("dir", dir).Msg("skipping unreadable legacy metadata")
			}
			continue
		}
		m, err := catalog.ParseLegacyMetadata(data)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("skipping malformed legacy metadata")
			continue
		}
		if m.PrimaryID() == "" {
			m.ID = e.Name()
		}
		out = append(out, Candidate{Dir: dir, Metadata: m})
	}
	return out, nil
}

// Run writes level.yml for every candidate and records each one in the
// ledger. info.json is left in place. With dryRun nothing is written.
func Run(candidates []Candidate, ledger *Ledger, dryRun bool, log zerolog.Logger) ([]LedgerEntry, error) {
	var done []LedgerEntry
	for _, c := range candidates {
		entry := LedgerEntry{Dir: c.Dir, LevelID: c.Metadata.PrimaryID(), Title: c.Metadata.Title}
		if dryRun {
			done = append(done, entry)
			continue
		}
		if err := catalog.WriteMetadata(c.Dir, c.Metadata); err != nil {
			return done, fmt.Errorf("migrating %s: %w", c.Dir, err)
		}
		if err := ledger.Append(entry); err != nil {
			return done, fmt.Errorf("recording %s: %w", c.Dir, err)
		}
		log.Info().Str("dir", c.Dir).Str("id", entry.LevelID).Msg("level migrated")
		done = append(done, entry)
	}
	return done, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
