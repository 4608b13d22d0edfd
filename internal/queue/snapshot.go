package queue

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/levelshelf/internal/store"
)

// SnapshotHeader opens every serialized queue.
const SnapshotHeader = "levelshelf-queue:v1"

// Serialize renders the queue as a header line followed by one ID per line.
func (q *Queue) Serialize() string {
	var b strings.Builder
	b.WriteString(SnapshotHeader)
	b.WriteByte('\n')
	for _, id := range q.IDs() {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return b.String()
}

// Deserialize replaces the queue with the IDs in text. The header is
// optional; blank lines and '#' comments are ignored and IDs may also be
// comma separated. An empty snapshot leaves the queue untouched.
func (q *Queue) Deserialize(text string) error {
	ids, err := ParseSnapshot(text)
	if err != nil {
		return err
	}
	q.Replace(ids)
	return nil
}

// ParseSnapshot extracts the ordered, de-duplicated IDs from text.
func ParseSnapshot(text string) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || line == SnapshotHeader {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			if id := strings.TrimSpace(part); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading queue snapshot: %w", err)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, ErrEmptySnapshot
	}
	return ids, nil
}

// Save persists the queue.
func (q *Queue) Save(s *store.Store) error {
	return s.Put(store.KeyQueue, []byte(q.Serialize()))
}

// Load restores the queue from s. A missing or empty saved queue leaves the
// queue empty.
func (q *Queue) Load(s *store.Store) error {
	data, err := s.Get(store.KeyQueue)
	if errors.Is(err, store.ErrNotFound) {
		q.Clear()
		return nil
	}
	if err != nil {
		return err
	}
	if err := q.Deserialize(string(data)); err != nil {
		if errors.Is(err, ErrEmptySnapshot) {
			q.Clear()
			return nil
		}
		return err
	}
	return nil
}
