package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
	"github.com/bongkokwei/rsoft-cad/pkg/store"
)

// newStoreCmd creates the design index management command.
func newStoreCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the design index",
	}
	cmd.PersistentFlags().StringVar(&dir, "store-dir", "", "design index directory (default: user cache dir)")

	cmd.AddCommand(storeListCommand(&dir))
	cmd.AddCommand(storeClearCommand(&dir))
	cmd.AddCommand(storePathCommand(&dir))
	return cmd
}

func openStore(flagDir string) (*store.Store, string, error) {
	dir, err := resolveStoreDir(flagDir)
	if err != nil {
		return nil, "", err
	}
	s, err := store.Open(dir)
	if err != nil {
		return nil, "", err
	}
	return s, dir, nil
}

// resolveStoreDir picks the index directory: the flag value when given,
// otherwise a stable location under the user's cache directory.
func resolveStoreDir(flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolve user cache dir")
	}
	return filepath.Join(base, "rsoft-cad", "designs"), nil
}

func storeListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded designs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(*dir)
			if err != nil {
				return err
			}
			records, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("Index is empty")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%s  %s  %s\n",
					styleDim.Render(r.CreatedAt.Format("2006-01-02 15:04")),
					styleTitle.Render(fmt.Sprintf("%-14s", r.Kind)),
					styleValue.Render(r.Filename))
				printDetail("cores: %d, path: %s", r.Cores, r.Path)
			}
			return nil
		},
	}
}

func storeClearCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every record from the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, path, err := openStore(*dir)
			if err != nil {
				return err
			}
			records, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Clear(); err != nil {
				return err
			}
			printSuccess("Cleared %d records", len(records))
			printDetail("Directory: %s", path)
			return nil
		},
	}
}

func storePathCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the index directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveStoreDir(*dir)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}
