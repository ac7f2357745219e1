package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/reader"
	"github.com/jsphweid/utsu/voicebank"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "utsu",
	Short: "UTAU-style singing synthesis engine",
	Long: `utsu edits and renders songs for UTAU voicebanks: it resolves lyrics to
voicebank samples, fits notes to their neighbors and renders pitch curves.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("bad --log-level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
	return nil
}

// newVoicebankReader reads voicebanks with the configured default voicebank
// and lyric conversion table.
func newVoicebankReader() *reader.Reader {
	return reader.New(constants.GetVoicebankDir(), constants.GetLyricConversionPath())
}

func newManager(r *reader.Reader) *voicebank.Manager {
	return voicebank.NewManager(r, r.DefaultPath())
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
