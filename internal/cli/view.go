package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gradevault/gradevault/model"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	As string
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view <series-id> <version-index>",
		Short: "Decrypt and print one version of a series",
		Long: `Decrypt and print one version of a series.

The version index is zero-based: index 0 is the original submission. The
--as identity selects which stored key decrypts the envelope; only the
series teacher and student hold a wrapped copy of the content key.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid version index", err)
			}
			return runView(opts, cmd, args[0], index)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "viewer identity holding a stored key (required)")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func runView(opts *ViewOptions, cmd *cobra.Command, seriesID string, index int) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	ks, err := openKeyStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open key store", err)
	}
	_, priv, err := ks.LoadKeyPair(opts.As)
	if err != nil {
		return WrapExitError(ExitCommandError, "load key for "+opts.As, err)
	}

	svc, cleanup, err := buildService(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open backends", err)
	}
	defer cleanup()

	payload, err := svc.View(cmd.Context(), seriesID, index, opts.As, priv)
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "view", err)
	}

	resp := model.FromPayload(seriesID, index+1, payload)
	if opts.Format == "json" {
		return out.Success(resp)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "series %s version %d (enrollment %s)\n", resp.SeriesID, resp.VersionNumber, resp.EnrollmentID)
	names := make([]string, 0, len(resp.Marks.Components))
	for name := range resp.Marks.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %.2f\n", name, resp.Marks.Components[name])
	}
	fmt.Fprintf(w, "total %.2f  grade %s (%.2f)\n", resp.Marks.Total, resp.Marks.LetterGrade, resp.Marks.GradePoints)
	fmt.Fprintf(w, "computed at %s\n", resp.ComputedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
