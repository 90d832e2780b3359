package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pders01/postr/internal/storage"
)

var usersFlags listFlags

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Print one page of users",
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

func init() {
	f := usersCmd.Flags()
	f.StringVar(&usersFlags.search, "search", "", "Only show users whose name, username or email contains this text")
	f.IntVar(&usersFlags.page, "page", 1, "Page number to print")
	f.BoolVar(&usersFlags.refresh, "refresh", false, "Bypass the cache")
}

func runUsers(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg, flags.allowLocal, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	m := rt.userManager()
	defer m.Dispose()
	if err := loadManager(cmd, rt, m, rt.users, usersFlags.refresh); err != nil {
		return err
	}
	m.ApplySearch(usersFlags.search)

	out := cmd.OutOrStdout()
	if len(m.Snapshot().Filtered) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No users found."))
		return nil
	}
	if err := selectPage(m, usersFlags.page); err != nil {
		return err
	}
	state := m.Snapshot()
	fmt.Fprintln(out, usersTable(state.Page.Items))
	writePageLine(out, state.Page, len(state.Filtered), len(state.All))
	return nil
}

func usersTable(users []storage.User) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "NAME", "USERNAME", "EMAIL", "WEBSITE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, u := range users {
		t.Row(strconv.Itoa(u.ID), u.Name, u.Username, u.Email, u.Website)
	}
	return t.String()
}
