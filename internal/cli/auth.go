package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portal-hub/student-portal/internal/domain/student"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the student portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if email == "" {
				email = prompt("Email: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}

			sess, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%s)\n", sess.Student.FullName(), sess.Student.StudentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "portal account email")
	cmd.Flags().StringVar(&password, "password", "", "portal account password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			// Logout always succeeds, even when the server is unreachable.
			if _, err := a.session.Restore(cmd.Context()); err == nil {
				a.session.Logout(cmd.Context())
			}

			fmt.Println("Logged out")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var reg student.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new portal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sess, err := a.session.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}

			fmt.Printf("Registered and logged in as %s (%s)\n", sess.Student.FullName(), sess.Student.StudentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.StudentID, "student-id", "", "institutional student ID")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sess, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%s <%s>\nStudent ID: %s\n", sess.Student.FullName(), sess.Student.Email, sess.Student.StudentID)
			if !sess.ExpiresAt.IsZero() {
				fmt.Printf("Session expires: %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
