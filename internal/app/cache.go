package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the cover image cache",
		Long: `Covers downloaded from the level service are kept in library.cache_dir
so the browser can show them without refetching.`,
	}
	cmd.AddCommand(newCacheInfoCmd(), newCacheClearCmd())
	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cover cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			files, size, err := e.covers.Usage()
			if err != nil {
				return fmt.Errorf("reading cache: %w", err)
			}
			out := cmd.OutOrStdout()
			header(out, "Cover cache")
			fmt.Fprintf(out, "  Directory:  %s\n", e.covers.Dir())
			fmt.Fprintf(out, "  Covers:     %d\n", files)
			fmt.Fprintf(out, "  Size:       %s\n", humanBytes(size))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached cover",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			n, err := e.covers.Clear()
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			ok("Removed %d cached cover(s)", n)
			return nil
		},
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n := n / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
