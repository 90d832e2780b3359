package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/storage"
)

func (a *App) View() string {
	contentHeight := max(a.height-3, 1)

	var content string
	switch a.view {
	case ViewPosts:
		content = a.viewPosts(contentHeight)
	case ViewPostDetail, ViewUserDetail:
		if a.rendering {
			content = renderCentered(a.width, contentHeight, a.spinner.View()+" "+renderMuted(MsgRendering))
		} else {
			content = a.viewport.View()
		}
	case ViewAddPost:
		content = a.viewAddPost(contentHeight)
	case ViewDeleteConfirm:
		content = a.viewDeleteConfirm(contentHeight)
	case ViewUserFilter:
		content = a.pickerList.View()
	case ViewUsers:
		if len(a.userList.Items()) == 0 {
			content = renderCentered(a.width, contentHeight, renderMuted("No users loaded"))
		} else {
			content = a.userList.View()
		}
	case ViewSearch:
		content = a.viewSearch(contentHeight)
	}

	content = ContentWrapper(a.width, contentHeight).Render(content)

	if status := a.getCustomStatusBar(); status != "" {
		return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width-1), status)
	}
	return content
}

// titledSource is implemented by sources that learn a display name on
// fetch, such as feeds.
type titledSource interface {
	Title() string
}

// sourceLabel prefers the source's own title over the configured label.
func (a *App) sourceLabel() string {
	if ts, ok := a.deps.Posts.(titledSource); ok {
		if title := ts.Title(); title != "" {
			return title
		}
	}
	return a.deps.SourceLabel
}

func (a *App) viewPosts(height int) string {
	state := a.posts.Snapshot()

	if !state.Loaded && a.loading {
		return renderCentered(a.width, height, a.spinner.View()+" "+renderMuted("Loading posts…"))
	}
	if len(state.All) == 0 {
		return renderCentered(a.width, height, GetWelcomeMessage(a.posts.ReadOnly()))
	}

	title := "› posts"
	if label := a.sourceLabel(); label != "" {
		title += " from " + label
	}
	rows := []string{renderHeader(title, a.filterSummary(state), a.width)}

	if a.filterInput.Focused() || a.filterInput.Value() != "" {
		rows = append(rows, renderInputFrame(a.filterInput.View(), a.filterInput.Focused(), a.filterInput.Width))
	}

	if len(state.Filtered) == 0 {
		rows = append(rows, "", renderMuted("No posts match the current filters • esc clears them"))
		return lipgloss.JoinVertical(lipgloss.Top, rows...)
	}

	if len(state.Page.Items) == 0 {
		rows = append(rows, "", renderMuted(fmt.Sprintf("Page %d is empty", state.Page.Number)))
	} else {
		rows = append(rows, a.postList.View())
	}
	rows = append(rows, "", renderPagination(state.Page))

	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

func (a *App) filterSummary(state listing.State[storage.Post]) string {
	parts := []string{fmt.Sprintf("%d of %d", len(state.Filtered), len(state.All))}
	if state.UserFilter != 0 {
		id := state.UserFilter
		parts = append(parts, "by "+a.directory.Name(&id))
	}
	if state.SettledTerm != "" {
		parts = append(parts, fmt.Sprintf("matching %q", state.SettledTerm))
	}
	if state.SearchTerm != state.SettledTerm {
		parts = append(parts, "…")
	}
	return strings.Join(parts, " • ")
}

// renderPagination draws prev/next and the numbered window. Ellipses mark
// pages outside the window.
func renderPagination(page listing.Page[storage.Post]) string {
	if page.TotalPages == 0 {
		return ""
	}

	var parts []string
	if page.HasPrev {
		parts = append(parts, PageStyle.Render("‹ prev"))
	} else {
		parts = append(parts, DisabledStyle.Render("‹ prev"))
	}

	if len(page.Window) > 0 && page.Window[0] > 1 {
		parts = append(parts, DisabledStyle.Render("…"))
	}
	for _, n := range page.Window {
		label := strconv.Itoa(n)
		if n == page.Number {
			parts = append(parts, CurrentPageStyle.Render(label))
		} else {
			parts = append(parts, PageStyle.Render(label))
		}
	}
	if len(page.Window) > 0 && page.Window[len(page.Window)-1] < page.TotalPages {
		parts = append(parts, DisabledStyle.Render("…"))
	}

	if page.HasNext {
		parts = append(parts, PageStyle.Render("next ›"))
	} else {
		parts = append(parts, DisabledStyle.Render("next ›"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (a *App) viewAddPost(height int) string {
	author := "no author"
	if id := a.posts.Snapshot().UserFilter; id != 0 {
		author = "as " + a.directory.Name(&id)
	}

	form := lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render("› new post"),
		renderMuted(author),
		"",
		renderInputFrame(a.titleInput.View(), a.titleInput.Focused(), a.titleInput.Width),
		renderInputFrame(a.bodyInput.View(), a.bodyInput.Focused(), a.bodyInput.Width()),
		"",
		renderHelp("Tab: switch field • "+a.keyHandler.keys.Submit.Help().Key+": save • Esc: cancel"),
	)
	return renderCentered(a.width, height, form)
}

func (a *App) viewDeleteConfirm(height int) string {
	title := "Unknown post"
	if a.postToDelete != nil {
		title = a.postToDelete.Title
	}

	modalWidth := (a.width * 4) / 5
	if modalWidth < 20 {
		modalWidth = max(a.width-4, 15)
	}
	title = truncateEnd(title, modalWidth-4)

	line := func(style lipgloss.Style, text string) string {
		return style.Width(modalWidth).Align(lipgloss.Center).Render(text)
	}

	return renderCentered(a.width, height, lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.NewStyle().Foreground(ErrorColor).Bold(true).Render("⚠ Delete Post"),
		"",
		line(ModalTextStyle, "Delete this post?"),
		"",
		line(ModalHighlight, title),
		"",
		line(lipgloss.NewStyle().Foreground(MutedColor), "The server copy is removed too."),
		"",
		renderHelp("Enter/y: confirm • Esc/n: cancel"),
	))
}

func (a *App) viewSearch(height int) string {
	helpText := "Type to search • Tab/↓: results • Esc: back"
	if !a.searchInput.Focused() {
		if len(a.searchList.Items()) > 0 {
			helpText = "↑↓: navigate • Enter: select • Tab/↑: search box • Esc: back"
		} else {
			helpText = "No results • Tab: search box • Esc: back"
		}
	}

	return lipgloss.NewStyle().MaxHeight(height).Render(lipgloss.JoinVertical(
		lipgloss.Top,
		HeaderStyle.Render("› search posts and users"),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderMuted(helpText),
		"",
		a.searchList.View(),
	))
}

func (a *App) getCustomStatusBar() string {
	if a.err != nil {
		return StatusBarStyle.Width(a.width).Render(StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}

	if a.help.ShowAll {
		return StatusBarStyle.Width(a.width).Render(a.help.View(a.keyHandler.keys))
	}

	var parts []string
	if a.status != "" {
		text := a.statusKind.style().Render(a.status)
		if a.loading {
			text = a.spinner.View() + " " + text
		}
		parts = append(parts, text)
	}
	if commands := a.keyHandler.GetHelpForCurrentView(); len(commands) > 0 {
		parts = append(parts, strings.Join(commands, " • "))
	}
	if len(parts) == 0 {
		return ""
	}
	return StatusBarStyle.Width(a.width).Render(strings.Join(parts, "  │  "))
}
