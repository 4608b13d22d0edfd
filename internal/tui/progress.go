package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackwell-systems/levelshelf/internal/install"
)

// Progress is one byte-count update. Total is negative when the archive
// size is unknown.
type Progress struct {
	Current int64
	Total   int64
}

// progressInterval limits updates to one per MiB (plus completion).
const progressInterval = 1024 * 1024

// JobProgress returns an install.ProgressFunc that forwards job progress to
// ch. Updates are throttled and dropped when ch is full.
func JobProgress(ch chan<- Progress) install.ProgressFunc {
	var lastReport int64
	return func(j *install.Job) {
		written := j.Written()
		complete := j.Total > 0 && written >= j.Total
		if written-lastReport < progressInterval && !complete {
			return
		}
		select {
		case ch <- Progress{Current: written, Total: j.Total}:
			lastReport = written
		default:
			// Channel full, skip this update
		}
	}
}

// progressMsg is sent when progress updates
type progressMsg struct {
	Progress
	closed bool
}

// tickMsg is sent periodically to refresh the UI
type tickMsg time.Time

// progressModel is the Bubble Tea model for showing progress
type progressModel struct {
	progress   progress.Model
	total      int64
	current    int64
	label      string
	done       bool
	cancelled  bool
	progressCh <-chan Progress
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForProgress(m.progressCh),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForProgress(ch <-chan Progress) tea.Cmd {
	return func() tea.Msg {
		// Block on channel read - UI stays alive via tickCmd
		p, ok := <-ch
		if !ok {
			return progressMsg{closed: true}
		}
		return progressMsg{Progress: p}
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		}

	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		return m, tickCmd()

	case progressMsg:
		if msg.closed {
			// Operation finished (extraction included)
			m.done = true
			return m, tea.Quit
		}
		m.current = msg.Current
		m.total = msg.Total
		return m, waitForProgress(m.progressCh)

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		return m, nil
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	currentMB := float64(m.current) / 1024 / 1024
	if m.total <= 0 {
		return fmt.Sprintf("%s\n%.2f MB\n", m.label, currentMB)
	}

	percent := float64(m.current) / float64(m.total)
	if percent > 1 {
		percent = 1
	}
	totalMB := float64(m.total) / 1024 / 1024

	return fmt.Sprintf(
		"%s\n%s\n%.2f MB / %.2f MB (%.0f%%)\n",
		m.label,
		m.progress.ViewAs(percent),
		currentMB,
		totalMB,
		percent*100,
	)
}

// ShowProgress displays a progress bar until progressCh is closed.
// The operation reports through JobProgress and closes the channel when
// it returns. Returns error if cancelled by user (Ctrl+C).
func ShowProgress(label string, progressCh <-chan Progress) error {
	prog := progress.New(progress.WithDefaultGradient())

	m := progressModel{
		progress:   prog,
		total:      -1,
		label:      label,
		progressCh: progressCh,
	}

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := finalModel.(progressModel); ok && fm.cancelled {
		return fmt.Errorf("cancelled by user")
	}

	return nil
}
