package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vietddude/resilient/internal/core/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Work with retry profiles",
}

var profileCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every retry profile in the config file",
	Run:   runProfileCheck,
}

func init() {
	profileCmd.AddCommand(profileCheckCmd)
	rootCmd.AddCommand(profileCmd)
}

// checkProfiles prints one line per profile and returns how many are invalid.
func checkProfiles(w io.Writer, cfg *config.AppConfig) int {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	invalid := 0
	for _, name := range names {
		rc, err := cfg.Profile(name)
		if err != nil {
			invalid++
			kind := "value"
			if config.IsKind(err, config.KindType) {
				kind = "type"
			}
			_, _ = fmt.Fprintf(w, "%s\tINVALID (%s)\t%v\n", name, kind, err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\tOK\tmax_tries=%d backoff=%s\n", name, rc.MaxTries, describeBackoff(rc.Backoff))
	}
	return invalid
}

func describeBackoff(b *config.Backoff) string {
	if b == nil {
		return "off"
	}
	return fmt.Sprintf("%s..%s", b.Min, b.Max)
}

func runProfileCheck(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if len(cfg.Profiles) == 0 {
		slog.Warn("No profiles defined", "config", cfgPath)
		return
	}
	if n := checkProfiles(os.Stdout, cfg); n > 0 {
		slog.Error("Invalid profiles found", "count", n)
		os.Exit(1)
	}
}
