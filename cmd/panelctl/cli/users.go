package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/userpanel/internal/panel"
)

func newUsersCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and manage workspace users",
	}
	cmd.AddCommand(
		newUsersListCommand(opts),
		newBindRoleCommand(opts),
		newDeleteCommand(opts),
	)
	return cmd
}

func newUsersListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show users with the actions available to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			p, err := opts.openPanel(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderUsers(cmd.OutOrStdout(), p.View())
			return nil
		},
	}
}

func newBindRoleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bind-role USER_ID ROLE",
		Short: "Bind a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			p, err := opts.openPanel(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return p.RequestRoleBinding(ctx, args[0], args[1])
		},
	}
}

func newDeleteCommand(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			out := cmd.OutOrStdout()
			p, err := opts.openPanel(ctx, out)
			if err != nil {
				return err
			}
			if err := p.RequestDelete(args[0]); err != nil {
				return err
			}
			confirm := p.View().Confirmation
			if confirm == nil {
				return errors.New("no deletion staged")
			}
			if !yes {
				fmt.Fprintf(out, "%s [%s/%s] ", confirm.Prompt, confirm.ConfirmLabel, confirm.CancelLabel)
				if !confirmed(cmd.InOrStdin(), confirm.ConfirmLabel) {
					p.CancelDelete()
					fmt.Fprintln(out, confirm.CancelLabel)
					return nil
				}
			}
			return p.ConfirmDelete(ctx)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirmed reads one answer line. "y", "yes" and the localized confirm
// label count as consent.
func confirmed(in io.Reader, confirmLabel string) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return false
	}
	return answer == "y" || answer == "yes" || answer == strings.ToLower(confirmLabel)
}

func renderUsers(out io.Writer, v panel.View) {
	if v.Status == panel.StatusError {
		fmt.Fprintln(out, v.Error)
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "Email", "Role", "Actions"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range v.Rows {
		name := row.DisplayName
		if row.IsSelf {
			name += " (" + row.SelfTag + ")"
		}
		actions := make([]string, 0, len(row.Actions))
		for _, a := range row.Actions {
			actions = append(actions, a.Label)
		}
		table.Append([]string{row.ID, name, row.Email, row.Role, strings.Join(actions, "; ")})
	}
	table.Render()
}
