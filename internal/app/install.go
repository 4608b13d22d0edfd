package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/levelshelf/internal/install"
	"github.com/blackwell-systems/levelshelf/internal/tui"
	"github.com/blackwell-systems/levelshelf/internal/util"
)

func newInstallCmd() *cobra.Command {
	var (
		file     string
		checksum string
	)

	cmd := &cobra.Command{
		Use:   "install [id...]",
		Short: "Download and install levels",
		Long: `Download levels from the level service by ID and install them into
library.levels_dir. Use --file to install a local archive or a direct URL
instead (.zip, .7z, .rar, .tar.gz).

Examples:
  levelshelf install 4f2a9c
  levelshelf install --file ~/Downloads/neon-nights.zip
  levelshelf install neon --file https://example.com/neon.7z --sha256 9b1e...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("give at least one level ID, or --file")
			}
			if file != "" && len(args) > 1 {
				return fmt.Errorf("--file installs a single level; give at most one ID")
			}
			if checksum != "" && file == "" && len(args) > 1 {
				return fmt.Errorf("--sha256 applies to a single level")
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			if file != "" {
				id := ""
				if len(args) == 1 {
					id = args[0]
				}
				return installFile(cmd, e, id, file, checksum)
			}

			var failed int
			for _, id := range args {
				if e.installed(id) {
					warn("%s is already installed", id)
					continue
				}
				if err := installRemote(cmd, e, id, checksum); err != nil {
					warn("%s: %v", id, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d installs failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Install from a local archive or URL instead of the level service")
	cmd.Flags().StringVar(&checksum, "sha256", "", "Expected SHA-256 of the archive")
	return cmd
}

func installRemote(cmd *cobra.Command, e *env, id, checksum string) error {
	job, err := runInstall(cmd, "Downloading "+id, func(ctx context.Context, fn install.ProgressFunc) (*install.Job, error) {
		return e.downloader.Fetch(ctx, id, fn)
	})
	if err != nil {
		return err
	}
	return finishInstall(cmd.OutOrStdout(), e, job, checksum)
}

func installFile(cmd *cobra.Command, e *env, id, input, checksum string) error {
	src, err := install.Resolve(input)
	if err != nil {
		return err
	}
	if id == "" {
		id = install.IDFromName(src.Name)
	}
	if id == "" {
		return fmt.Errorf("cannot derive a level ID from %q; pass one as an argument", input)
	}

	isURL := strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
	if checksum != "" && !isURL {
		if err := util.VerifySHA256(input, checksum); err != nil {
			return err
		}
	}

	job, err := runInstall(cmd, "Installing "+src.Name, func(ctx context.Context, fn install.ProgressFunc) (*install.Job, error) {
		return e.downloader.InstallFrom(ctx, id, src, fn)
	})
	if err != nil {
		return err
	}
	return finishInstall(cmd.OutOrStdout(), e, job, checksum)
}

// finishInstall checks the streamed checksum and reports the new level.
// A mismatched install is removed again.
func finishInstall(w io.Writer, e *env, job *install.Job, checksum string) error {
	e.log.Debug().Str("job", job.ID.String()).Str("sha256", job.SHA256).Msg("install finished")
	if checksum != "" && !strings.EqualFold(job.SHA256, checksum) {
		if job.Level != nil {
			if err := e.catalog.Uninstall(job.Level.ID); err != nil {
				warn("could not remove %s: %v", job.Level.ID, err)
			}
		}
		return fmt.Errorf("sha256 mismatch for %s: got %s, want %s", job.LevelID, job.SHA256, checksum)
	}
	ok("Installed %s (%s)", job.Level.Title, job.Level.ID)
	fmt.Fprintf(w, "  path: %s\n", job.Level.Path)
	return nil
}

// runInstall runs op, with a progress bar when attached to a terminal.
// Cancelling the bar cancels op.
func runInstall(cmd *cobra.Command, label string, op func(context.Context, install.ProgressFunc) (*install.Job, error)) (*install.Job, error) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if !tui.ShouldUseTUI(cmd) {
		return op(ctx, nil)
	}

	progressCh := make(chan tui.Progress, 10)
	type result struct {
		job *install.Job
		err error
	}
	resCh := make(chan result, 1)

	go func() {
		job, err := op(ctx, tui.JobProgress(progressCh))
		close(progressCh)
		resCh <- result{job, err}
	}()

	if err := tui.ShowProgress(label, progressCh); err != nil {
		cancel()
		<-resCh
		return nil, err
	}
	res := <-resCh
	return res.job, res.err
}

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <id...>",
		Short: "Remove installed levels",
		Long: `Delete installed levels from library.levels_dir. Removed levels are
also dropped from the play queue.

Example:
  levelshelf uninstall 4f2a9c 77b0de`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			var failed int
			for _, id := range args {
				if err := e.catalog.Uninstall(id); err != nil {
					warn("%v", err)
					failed++
					continue
				}
				e.queue.Remove(id)
				ok("Uninstalled %s", id)
			}
			if err := e.saveQueue(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d levels could not be removed", failed, len(args))
			}
			return nil
		},
	}
}
