package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/paging"
	"github.com/blackwell-systems/levelshelf/internal/queue"
)

// Replaced in tests; there is no clipboard on CI machines.
var (
	clipboardWrite = clipboard.WriteAll
	clipboardRead  = clipboard.ReadAll
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the play queue",
		Long: `The play queue is an ordered list of installed levels. It is saved under
library.state_dir and can be shared as text with 'queue copy' and
'queue paste'.`,
	}

	cmd.AddCommand(
		newQueueListCmd(),
		newQueueAddCmd(),
		newQueueRemoveCmd(),
		newQueueClearCmd(),
		newQueueShuffleCmd(),
		newQueueCopyCmd(),
		newQueuePasteCmd(),
	)
	return cmd
}

func newQueueListCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the queued levels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			levels := e.queue.Resolve(e.catalog)
			if missing := e.queue.Len() - len(levels); missing > 0 {
				warn("%d queued level(s) are no longer installed", missing)
			}

			size := cfg.Browse.QueuePageSize
			count := paging.QueuePageCount(len(levels), size)
			page = paging.Clamp(page, count)

			out := cmd.OutOrStdout()
			if err := printLevels(out, paging.Slice(levels, page, size), e); err != nil {
				return err
			}
			pageFooter(out, page, count, len(levels), "queued")
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page to show, starting at 0")
	return cmd
}

func newQueueAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id...>",
		Short: "Queue installed levels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateQueue(func(e *env) error {
				for _, id := range args {
					if !e.installed(id) {
						return fmt.Errorf("%s is not installed; run 'levelshelf install %s' first", id, id)
					}
				}
				for _, id := range args {
					if e.queue.Add(id) {
						ok("Queued %s", id)
					} else {
						warn("%s is already queued", id)
					}
				}
				return nil
			})
		},
	}
}

func newQueueRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id...>",
		Aliases: []string{"rm"},
		Short:   "Remove levels from the queue",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateQueue(func(e *env) error {
				for _, id := range args {
					if e.queue.Remove(id) {
						ok("Removed %s", id)
					} else {
						warn("%s is not queued", id)
					}
				}
				return nil
			})
		},
	}
}

func newQueueClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateQueue(func(e *env) error {
				n := e.queue.Len()
				e.queue.Clear()
				ok("Cleared %d level(s)", n)
				return nil
			})
		},
	}
}

func newQueueShuffleCmd() *cobra.Command {
	var fromLocal bool

	cmd := &cobra.Command{
		Use:   "shuffle [amount]",
		Short: "Replace the queue with a random pick",
		Long: `Pick [amount] levels at random, favouring runs of nearby entries, and
make them the new queue. Without --from-local the pick is taken from the
current queue; with it, from every installed level. The amount defaults to
the size of the pool.

Examples:
  levelshelf queue shuffle
  levelshelf queue shuffle 10 --from-local`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount := -1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return fmt.Errorf("amount must be a non-negative number, got %q", args[0])
				}
				amount = n
			}

			return mutateQueue(func(e *env) error {
				var picked []string
				if fromLocal {
					pool := levelIDs(e.catalog.All())
					if amount < 0 {
						amount = len(pool)
					}
					picked = queue.Pick(pool, amount, nil)
					e.queue.Replace(picked)
				} else {
					if amount < 0 {
						amount = e.queue.Len()
					}
					picked = e.queue.Shuffle(amount)
				}
				ok("Queue now holds %d level(s)", len(picked))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fromLocal, "from-local", false, "Pick from all installed levels instead of the current queue")
	return cmd
}

func newQueueCopyCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the queue to the clipboard as text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			text := e.queue.Serialize()
			if printOnly {
				_, err := io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			if err := clipboardWrite(text); err != nil {
				return fmt.Errorf("writing clipboard: %w (use --print instead)", err)
			}
			ok("Copied %d level(s) to the clipboard", e.queue.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the snapshot instead of copying it")
	return cmd
}

func newQueuePasteCmd() *cobra.Command {
	var stdin bool

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Replace the queue with a snapshot from the clipboard",
		Long: `Read a queue snapshot (as written by 'queue copy') and make it the new
queue. IDs may be one per line or comma separated. An empty snapshot is an
error and leaves the queue unchanged.

Examples:
  levelshelf queue paste
  levelshelf queue copy --print | levelshelf queue paste --stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			} else {
				var err error
				text, err = clipboardRead()
				if err != nil {
					return fmt.Errorf("reading clipboard: %w (use --stdin instead)", err)
				}
			}

			return mutateQueue(func(e *env) error {
				if err := e.queue.Deserialize(text); err != nil {
					return err
				}
				if missing := e.queue.Len() - len(e.queue.Resolve(e.catalog)); missing > 0 {
					warn("%d pasted level(s) are not installed", missing)
				}
				ok("Queue now holds %d level(s)", e.queue.Len())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&stdin, "stdin", false, "Read the snapshot from stdin")
	return cmd
}

// mutateQueue runs fn against the saved queue and saves it if fn succeeds.
func mutateQueue(fn func(e *env) error) error {
	e, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	if err := fn(e); err != nil {
		return err
	}
	return e.saveQueue()
}

func levelIDs(levels []catalog.Level) []string {
	ids := make([]string, len(levels))
	for i, l := range levels {
		ids[i] = l.ID
	}
	return ids
}
