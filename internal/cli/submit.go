package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradevault/gradevault/grade"
	"github.com/gradevault/gradevault/model"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Teacher      string
	Student      string
	EnrollmentID string
	CourseCode   string
	SemesterCode string
	Components   string
	Reason       string
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit or correct a grade",
		Long: `Submit or correct a grade.

The first submission for a (teacher, student, enrollment, course, semester)
tuple creates a new series at version 1; later submissions append the next
version. Earlier versions are never modified.

Example:
  gradevault submit --teacher alice@uni --student bob@uni \
    --enrollment enr-1 --course CSE101 --semester fall2025 \
    --components '{"midterm":22.5,"final":41,"continuous":14}' \
    --reason "initial submission"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Teacher, "teacher", "", "teacher identity (required)")
	cmd.Flags().StringVar(&opts.Student, "student", "", "student identity (required)")
	cmd.Flags().StringVar(&opts.EnrollmentID, "enrollment", "", "enrollment id (required)")
	cmd.Flags().StringVar(&opts.CourseCode, "course", "", "course code (required)")
	cmd.Flags().StringVar(&opts.SemesterCode, "semester", "", "semester code (required)")
	cmd.Flags().StringVar(&opts.Components, "components", "", "component scores as JSON (required)")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "reason for this version")
	for _, f := range []string{"teacher", "student", "enrollment", "course", "semester", "components"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func runSubmit(opts *SubmitOptions, cmd *cobra.Command) error {
	var components map[string]float64
	if err := json.Unmarshal([]byte(opts.Components), &components); err != nil {
		return WrapExitError(ExitCommandError, "invalid --components JSON", err)
	}

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	svc, cleanup, err := buildService(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open backends", err)
	}
	defer cleanup()

	res, err := svc.Submit(cmd.Context(), grade.SubmitRequest{
		Teacher:      opts.Teacher,
		Student:      opts.Student,
		EnrollmentID: opts.EnrollmentID,
		CourseCode:   opts.CourseCode,
		SemesterCode: opts.SemesterCode,
		Marks:        grade.BuildMarks(components),
		Reason:       opts.Reason,
	})
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "submit", err)
	}

	resp := model.FromSubmitResult(res)
	if opts.Format == "json" {
		return out.Success(resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "series %s now at version %d (content %s)\n",
		resp.SeriesID, resp.VersionNumber, resp.ContentID)
	return nil
}
