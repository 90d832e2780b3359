package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/storage"
)

type listFlags struct {
	search  string
	userID  int
	page    int
	refresh bool
}

var postsFlags listFlags

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Print one page of posts",
	Args:  cobra.NoArgs,
	RunE:  runPosts,
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

func init() {
	f := postsCmd.Flags()
	f.StringVar(&postsFlags.search, "search", "", "Only show posts whose title or body contains this text")
	f.IntVar(&postsFlags.userID, "user", 0, "Only show posts by this user id")
	f.IntVar(&postsFlags.page, "page", 1, "Page number to print")
	f.BoolVar(&postsFlags.refresh, "refresh", false, "Bypass the cache")
}

func runPosts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg, flags.allowLocal, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	users, err := fetchDirectory(cmd, rt)
	if err != nil {
		return err
	}

	m := rt.postManager()
	defer m.Dispose()
	if err := loadManager(cmd, rt, m, rt.posts, postsFlags.refresh); err != nil {
		return err
	}

	m.SetUserFilter(postsFlags.userID)
	m.ApplySearch(postsFlags.search)

	out := cmd.OutOrStdout()
	if len(m.Snapshot().Filtered) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No posts found."))
		return nil
	}
	if err := selectPage(m, postsFlags.page); err != nil {
		return err
	}
	state := m.Snapshot()
	fmt.Fprintln(out, postsTable(state.Page.Items, users))
	writePageLine(out, state.Page, len(state.Filtered), len(state.All))
	return nil
}

// fetchDirectory loads users for author names. A failure is not fatal;
// posts then show the unknown-user placeholder.
func fetchDirectory(cmd *cobra.Command, rt *runtime) (*listing.Directory, error) {
	m := rt.userManager()
	defer m.Dispose()
	if err := loadManager(cmd, rt, m, rt.users, false); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return listing.NewDirectory(nil), nil
	}
	return listing.NewDirectory(m.Snapshot().All), nil
}

func loadManager[T listing.Item](cmd *cobra.Command, rt *runtime, m *listing.Manager[T], src listing.Source[T], refresh bool) error {
	ctx, cancel := rt.requestContext(cmd.Context())
	defer cancel()
	if refresh {
		return m.Reload(ctx, src)
	}
	return m.Load(ctx, src)
}

// selectPage moves m to page n, failing rather than showing another page
// when n is out of range.
func selectPage[T listing.Item](m *listing.Manager[T], n int) error {
	m.SetPage(n)
	page := m.Snapshot().Page
	if page.Number != n {
		return fmt.Errorf("page %d out of range (1-%d)", n, page.TotalPages)
	}
	return nil
}

func postsTable(posts []storage.Post, users *listing.Directory) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "TITLE", "AUTHOR").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, p := range posts {
		t.Row(strconv.Itoa(p.ID), clip(p.Title, 60), users.Name(p.UserID))
	}
	return t.String()
}

func writePageLine[T any](w io.Writer, page listing.Page[T], shown, total int) {
	window := make([]string, len(page.Window))
	for i, n := range page.Window {
		if n == page.Number {
			window[i] = "[" + strconv.Itoa(n) + "]"
		} else {
			window[i] = strconv.Itoa(n)
		}
	}
	line := fmt.Sprintf("page %d/%d  %s", page.Number, page.TotalPages, strings.Join(window, " "))
	if page.Truncated {
		line += " …"
	}
	if shown != total {
		line += fmt.Sprintf("  (%d of %d)", shown, total)
	}
	fmt.Fprintln(w, mutedStyle.Render(line))
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
