package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/portal-hub/student-portal/internal/domain/grade"
	"github.com/portal-hub/student-portal/internal/domain/shared"
)

func newGradesCmd() *cobra.Command {
	var filter grade.Filter
	var page, limit int

	cmd := &cobra.Command{
		Use:   "grades",
		Short: "List your grades",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sess, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			if page > 0 {
				result, err := a.grades.StudentGradesPaginated(cmd.Context(), sess.Student.ID,
					shared.PageRequest{Page: page, Limit: limit}, filter)
				if err != nil {
					return err
				}
				printGrades(result.Data)
				fmt.Printf("\nPage %d of %d (%d total)\n",
					result.Pagination.Page, result.Pagination.TotalPages, result.Pagination.Total)
				return nil
			}

			grades, err := a.grades.StudentGrades(cmd.Context(), sess.Student.ID, filter)
			if err != nil {
				return err
			}
			printGrades(grades)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Semester, "semester", "", `semester, e.g. "Fall 2023"`)
	cmd.Flags().StringVar(&filter.CourseCode, "course", "", "course code, e.g. CS101")
	cmd.Flags().StringVar(&filter.MinGrade, "min-grade", "", "lowest letter grade to include")
	cmd.Flags().StringVar(&filter.MaxGrade, "max-grade", "", "highest letter grade to include")
	cmd.Flags().IntVar(&page, "page", 0, "page number (0 fetches everything)")
	cmd.Flags().IntVar(&limit, "limit", 10, "page size")
	return cmd
}

func newGPACmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gpa",
		Short: "Compute your GPA from the recorded grades",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sess, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			grades, err := a.grades.StudentGrades(cmd.Context(), sess.Student.ID, grade.Filter{})
			if err != nil {
				return err
			}

			policy := grade.DefaultPolicy()
			fmt.Printf("GPA: %.2f over %d courses\n", policy.GPA(grades), len(grades))
			return nil
		},
	}
}

func printGrades(grades []grade.Grade) {
	if len(grades) == 0 {
		fmt.Println("No grades found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tNAME\tGRADE\tCREDITS\tSEMESTER")
	for _, g := range grades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", g.CourseCode, g.CourseName, g.Grade, g.CreditHours, g.Semester)
	}
	w.Flush()
}
