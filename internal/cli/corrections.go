package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/portal-hub/student-portal/internal/domain/grade"
)

func newCorrectionsCmd() *cobra.Command {
	var status, semester string

	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "List your grade-correction requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sess, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			filter := grade.CorrectionFilter{
				Status:   grade.CorrectionStatus(status),
				Semester: semester,
			}
			corrections, err := a.grades.Corrections(cmd.Context(), sess.Student.ID, filter)
			if err != nil {
				return err
			}

			if len(corrections) == 0 {
				fmt.Println("No correction requests found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tGRADE\tREQUESTED\tSTATUS\tSUBMITTED")
			for _, c := range corrections {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					c.ID, c.GradeID, c.RequestedGrade, c.Status, c.SubmissionDate.Format("2006-01-02"))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, approved, rejected)")
	cmd.Flags().StringVar(&semester, "semester", "", "filter by semester")
	return cmd
}

func newSubmitCorrectionCmd() *cobra.Command {
	var req grade.CorrectionRequest

	cmd := &cobra.Command{
		Use:   "submit-correction",
		Short: "Submit a grade-correction request",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sess, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			req.StudentID = sess.Student.ID

			if err := req.Validate(grade.DefaultPolicy()); err != nil {
				return err
			}

			correction, err := a.grades.SubmitCorrection(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("Correction %s submitted (status: %s)\n", correction.ID, correction.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.GradeID, "grade-id", "", "grade to correct")
	cmd.Flags().StringVar(&req.RequestedGrade, "requested-grade", "", "the grade you believe is correct")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "why the recorded grade is wrong")
	cmd.Flags().StringVar(&req.SupportingDetails, "details", "", "optional supporting details")
	cmd.MarkFlagRequired("grade-id")
	cmd.MarkFlagRequired("requested-grade")
	cmd.MarkFlagRequired("reason")
	return cmd
}

func newCanCorrectCmd() *cobra.Command {
	var gradeID string

	cmd := &cobra.Command{
		Use:   "can-correct",
		Short: "Check whether a grade is open for correction",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sess, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			ok, err := a.grades.CanSubmitCorrection(cmd.Context(), gradeID, sess.Student.ID)
			if err != nil {
				return err
			}

			attempts, err := a.grades.CorrectionAttempts(cmd.Context(), gradeID, sess.Student.ID)
			if err != nil {
				return err
			}

			if ok {
				fmt.Printf("Correction allowed (%d of %d attempts used)\n", attempts, grade.MaxCorrectionAttempts)
			} else {
				fmt.Printf("Correction not allowed (%d of %d attempts used)\n", attempts, grade.MaxCorrectionAttempts)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&gradeID, "grade-id", "", "grade to check")
	cmd.MarkFlagRequired("grade-id")
	return cmd
}
