package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradevault/gradevault/grade"
	"github.com/gradevault/gradevault/model"
)

// NewHeadCommand creates the head command.
func NewHeadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "head <series-id>",
		Short:         "Show the current version metadata of a series",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			svc, cleanup, err := buildService(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "open backends", err)
			}
			defer cleanup()

			head, err := svc.Head(cmd.Context(), args[0])
			out := newFormatter(rootOpts, cmd.OutOrStdout())
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "head", err)
			}

			resp := model.FromHeadInfo(head)
			if rootOpts.Format == "json" {
				return out.Success(resp)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "series    %s\n", resp.SeriesID)
			fmt.Fprintf(w, "course    %s (%s)\n", resp.CourseCode, resp.SemesterCode)
			fmt.Fprintf(w, "version   %d\n", resp.CurrentVersion)
			fmt.Fprintf(w, "content   %s\n", resp.HeadContentID)
			fmt.Fprintf(w, "timestamp %s\n", resp.HeadTimestamp.Format("2006-01-02 15:04:05 MST"))
			if resp.HeadReason != "" {
				fmt.Fprintf(w, "reason    %s\n", resp.HeadReason)
			}
			return nil
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <series-id>",
		Short:         "List every version of a series, oldest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			svc, cleanup, err := buildService(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "open backends", err)
			}
			defer cleanup()

			ctx := cmd.Context()
			out := newFormatter(rootOpts, cmd.OutOrStdout())
			count, err := svc.Ledger.VersionCount(ctx, args[0])
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "history", err)
			}
			entries := make([]model.VersionEntry, 0, count)
			for i := 0; i < count; i++ {
				rec, err := svc.Ledger.Version(ctx, args[0], i)
				if err != nil {
					_ = out.Error(err)
					return WrapExitError(ExitFailure, "history", err)
				}
				entries = append(entries, model.FromVersionRecord(rec))
			}

			if rootOpts.Format == "json" {
				return out.Success(entries)
			}
			w := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(w, "v%d\t%s\t%s\t%s\t%s\n",
					e.VersionNumber, e.Timestamp.Format("2006-01-02 15:04:05"), e.Editor, e.ContentID, e.Reason)
			}
			return nil
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:           "list <identity>",
		Short:         "List series where an identity is the teacher or the student",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			svc, cleanup, err := buildService(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "open backends", err)
			}
			defer cleanup()

			out := newFormatter(rootOpts, cmd.OutOrStdout())
			ids, err := svc.List(cmd.Context(), args[0], grade.Role(role))
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "list", err)
			}

			if rootOpts.Format == "json" {
				return out.Success(model.SeriesListing{Identity: args[0], Role: role, SeriesIDs: ids})
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "teacher", "role to match (teacher|student)")
	return cmd
}
