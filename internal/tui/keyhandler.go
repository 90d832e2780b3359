package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/search"
	"github.com/pders01/postr/internal/storage"
	"github.com/pders01/postr/internal/validation"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	keys        keyMap
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{
		app:         app,
		config:      cfg,
		keys:        newKeyMap(cfg),
		modifierKey: cfg.Keys.Modifier + "+",
	}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewPosts:
		return kh.app.filterInput.Focused()
	case ViewAddPost:
		return true
	case ViewSearch:
		return kh.app.searchInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app

	switch msg.String() {
	case "ctrl+c":
		return app, tea.Quit
	case "esc":
		if app.view == ViewPosts {
			app.filterInput.Blur()
			return app, nil
		}
		return kh.navigateBack()
	case "enter":
		return kh.handleTextInputEnter(msg)
	}

	switch app.view {
	case ViewAddPost:
		switch {
		case key.Matches(msg, kh.keys.Submit):
			return kh.submitPost()
		case msg.String() == "tab" || msg.String() == "shift+tab":
			return app, kh.toggleFormFocus()
		}
	case ViewSearch:
		if msg.String() == "tab" || msg.String() == "down" {
			if len(app.searchList.Items()) > 0 {
				app.searchInput.Blur()
				app.searchList.Select(0)
			}
			return app, nil
		}
	}

	return kh.delegateToTextInput(msg)
}

func (kh *KeyHandler) handleTextInputEnter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app

	switch app.view {
	case ViewPosts:
		// Enter settles the filter without waiting for the debounce.
		app.filterInput.Blur()
		app.posts.ApplySearch(limitQuery(app.filterInput.Value()))
		app.syncPosts()
		return app, nil

	case ViewAddPost:
		if app.titleInput.Focused() {
			return app, kh.toggleFormFocus()
		}
		return kh.delegateToTextInput(msg)

	case ViewSearch:
		if items := app.searchList.Items(); len(items) > 0 {
			if i, ok := items[0].(searchResultItem); ok {
				return kh.selectSearchResult(i)
			}
		}
		return app, nil

	default:
		return app, nil
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	var cmd tea.Cmd

	switch app.view {
	case ViewPosts:
		prev := app.filterInput.Value()
		app.filterInput, cmd = app.filterInput.Update(msg)
		if app.filterInput.Value() == prev {
			return app, cmd
		}
		ticket := app.posts.SetSearchTerm(limitQuery(app.filterInput.Value()))
		return app, tea.Batch(cmd, tea.Tick(ticket.Delay, func(time.Time) tea.Msg {
			return filterSettleMsg{seq: ticket.Seq}
		}))

	case ViewAddPost:
		if app.titleInput.Focused() {
			app.titleInput, cmd = app.titleInput.Update(msg)
		} else {
			app.bodyInput, cmd = app.bodyInput.Update(msg)
		}
		return app, cmd

	case ViewSearch:
		prev := app.pendingSearchQuery
		app.searchInput, cmd = app.searchInput.Update(msg)

		query := limitQuery(app.searchInput.Value())
		if query == prev {
			return app, cmd
		}
		app.pendingSearchQuery = query
		app.searchSeq++
		seq := app.searchSeq
		return app, tea.Batch(cmd, tea.Tick(app.searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceFireMsg{seq: seq}
		}))

	default:
		return app, nil
	}
}

func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app := kh.app

	switch {
	case key.Matches(msg, kh.keys.Quit):
		return app, tea.Quit, true
	case key.Matches(msg, kh.keys.Back):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Help):
		app.help.ShowAll = !app.help.ShowAll
		return app, nil, true
	case key.Matches(msg, kh.keys.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Refresh):
		return app, tea.Batch(app.startLoading(MsgRefreshing), app.loadAll(true)), true
	}

	switch app.view {
	case ViewPosts:
		return kh.handlePostsCustomKeys(msg)
	case ViewPostDetail:
		return kh.handlePostDetailCustomKeys(msg)
	case ViewUsers:
		return kh.handleUsersCustomKeys(msg)
	case ViewUserDetail:
		if key.Matches(msg, kh.keys.Open) && app.currentUser != nil {
			return app, app.openWebsite(*app.currentUser), true
		}
	case ViewDeleteConfirm:
		return kh.handleDeleteConfirmKeys(msg)
	}
	return app, nil, false
}

func (kh *KeyHandler) handlePostsCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app := kh.app

	switch {
	case key.Matches(msg, kh.keys.Filter):
		return app, app.filterInput.Focus(), true

	case key.Matches(msg, kh.keys.NewPost):
		if app.posts.ReadOnly() {
			app.setError(listing.ErrReadOnly)
			return app, nil, true
		}
		app.view = ViewAddPost
		app.titleInput.Reset()
		app.bodyInput.Reset()
		app.bodyInput.Blur()
		return app, app.titleInput.Focus(), true

	case key.Matches(msg, kh.keys.Delete):
		if i, ok := app.postList.SelectedItem().(postItem); ok {
			return app, kh.confirmDelete(i.post), true
		}
		return app, nil, true

	case key.Matches(msg, kh.keys.UserFilter):
		app.view = ViewUserFilter
		kh.selectPickerEntry(app.posts.Snapshot().UserFilter)
		return app, nil, true

	case key.Matches(msg, kh.keys.Users):
		app.view = ViewUsers
		return app, nil, true

	case key.Matches(msg, kh.keys.PrevPage):
		if app.posts.PrevPage() {
			app.syncPosts()
			app.postList.Select(0)
		}
		return app, nil, true

	case key.Matches(msg, kh.keys.NextPage):
		if app.posts.NextPage() {
			app.syncPosts()
			app.postList.Select(0)
		}
		return app, nil, true

	case key.Matches(msg, kh.keys.Open):
		if i, ok := app.postList.SelectedItem().(postItem); ok {
			return app, kh.openAuthor(i.post), true
		}
		return app, nil, true
	}
	return app, nil, false
}

func (kh *KeyHandler) handlePostDetailCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	if app.currentPost == nil {
		return app, nil, false
	}
	switch {
	case key.Matches(msg, kh.keys.Open):
		return app, kh.openAuthor(*app.currentPost), true
	case key.Matches(msg, kh.keys.Delete):
		return app, kh.confirmDelete(*app.currentPost), true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleUsersCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	i, ok := app.userList.SelectedItem().(userItem)
	if !ok {
		return app, nil, false
	}
	switch {
	case key.Matches(msg, kh.keys.Open):
		return app, app.openWebsite(i.user), true
	case key.Matches(msg, kh.keys.UserFilter):
		kh.applyUserFilter(i.user.ID)
		return app, nil, true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleDeleteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	switch msg.String() {
	case "enter", "y":
		if app.postToDelete != nil {
			return app, tea.Batch(app.startLoading(MsgDeleting), app.deletePost(app.postToDelete.ID)), true
		}
		return app, nil, true
	case "n":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}
	return app, nil, false
}

// delegateToCharm lets the bubbles components handle keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	var cmd tea.Cmd
	enter := msg.String() == "enter"

	switch app.view {
	case ViewPosts:
		app.postList, cmd = app.postList.Update(msg)
		if enter {
			if i, ok := app.postList.SelectedItem().(postItem); ok {
				return kh.showPost(i.post, false)
			}
		}
		return app, cmd

	case ViewUsers:
		app.userList, cmd = app.userList.Update(msg)
		if enter {
			if i, ok := app.userList.SelectedItem().(userItem); ok {
				return kh.showUser(i.user, false)
			}
		}
		return app, cmd

	case ViewUserFilter:
		app.pickerList, cmd = app.pickerList.Update(msg)
		if enter {
			if i, ok := app.pickerList.SelectedItem().(pickerItem); ok {
				kh.applyUserFilter(i.id)
				return app, nil
			}
		}
		return app, cmd

	case ViewSearch:
		if !app.searchInput.Focused() {
			switch msg.String() {
			case "tab", "shift+tab", "/", "i":
				return app, app.searchInput.Focus()
			case "up":
				if app.searchList.Index() == 0 {
					return app, app.searchInput.Focus()
				}
			}
		}
		app.searchList, cmd = app.searchList.Update(msg)
		if enter {
			if i, ok := app.searchList.SelectedItem().(searchResultItem); ok {
				return kh.selectSearchResult(i)
			}
		}
		return app, cmd

	case ViewPostDetail, ViewUserDetail:
		app.viewport, cmd = app.viewport.Update(msg)
		return app, cmd

	default:
		return app, nil
	}
}

func (kh *KeyHandler) showPost(p storage.Post, fromSearch bool) (tea.Model, tea.Cmd) {
	app := kh.app
	post := p
	app.currentPost = &post
	app.cameFromSearch = fromSearch
	app.view = ViewPostDetail
	app.viewport.SetContent("")
	app.rendering = true
	app.setStatus(MsgRendering, StatusInfo)
	return app, tea.Batch(app.spinner.Tick, app.renderPost(post))
}

func (kh *KeyHandler) showUser(u storage.User, fromSearch bool) (tea.Model, tea.Cmd) {
	app := kh.app
	user := u
	app.currentUser = &user
	app.cameFromSearch = fromSearch
	app.view = ViewUserDetail
	app.viewport.SetContent("")
	app.rendering = true
	app.setStatus(MsgRendering, StatusInfo)
	return app, tea.Batch(app.spinner.Tick, app.renderUser(user))
}

func (kh *KeyHandler) confirmDelete(p storage.Post) tea.Cmd {
	app := kh.app
	if app.posts.ReadOnly() {
		app.setError(listing.ErrReadOnly)
		return nil
	}
	post := p
	app.postToDelete = &post
	app.previousView = app.view
	app.view = ViewDeleteConfirm
	return nil
}

func (kh *KeyHandler) openAuthor(p storage.Post) tea.Cmd {
	app := kh.app
	if p.UserID == nil {
		app.setError(fmt.Errorf("post %d has no author", p.ID))
		return nil
	}
	u, ok := app.directory.Lookup(*p.UserID)
	if !ok {
		app.setError(fmt.Errorf("author of post %d is not loaded", p.ID))
		return nil
	}
	return app.openWebsite(u)
}

func (kh *KeyHandler) applyUserFilter(id int) {
	app := kh.app
	app.posts.SetUserFilter(id)
	app.view = ViewPosts
	app.syncPosts()
	app.postList.Select(0)
	if id == 0 {
		app.setStatus(MsgFiltersClear, StatusInfo)
		return
	}
	app.setStatus(MsgFilteredBy(app.directory.Name(&id)), StatusInfo)
}

func (kh *KeyHandler) selectPickerEntry(id int) {
	for i, item := range kh.app.pickerList.Items() {
		if p, ok := item.(pickerItem); ok && p.id == id {
			kh.app.pickerList.Select(i)
			return
		}
	}
}

func (kh *KeyHandler) toggleFormFocus() tea.Cmd {
	app := kh.app
	if app.titleInput.Focused() {
		app.titleInput.Blur()
		return app.bodyInput.Focus()
	}
	app.bodyInput.Blur()
	return app.titleInput.Focus()
}

// submitPost validates the form and starts the create. The active user
// filter, if any, becomes the author.
func (kh *KeyHandler) submitPost() (tea.Model, tea.Cmd) {
	app := kh.app

	var userID *int
	if id := app.posts.Snapshot().UserFilter; id != 0 {
		userID = storage.IntPtr(id)
	}

	draft, err := validation.ValidateDraft(app.titleInput.Value(), app.bodyInput.Value(), userID)
	if err != nil {
		app.setError(err)
		return app, nil
	}
	return app, tea.Batch(app.startLoading(MsgCreating), app.createPost(draft))
}

func (kh *KeyHandler) selectSearchResult(result searchResultItem) (tea.Model, tea.Cmd) {
	r := result.result
	if r == nil {
		return kh.app, nil
	}
	switch {
	case r.Kind == search.KindPost && r.Post != nil:
		return kh.showPost(*r.Post, true)
	case r.Kind == search.KindUser && r.User != nil:
		return kh.showUser(*r.User, true)
	}
	return kh.app, nil
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	app := kh.app

	switch app.view {
	case ViewAddPost, ViewUserFilter, ViewUsers:
		app.titleInput.Blur()
		app.bodyInput.Blur()
		app.view = ViewPosts
		return app, nil

	case ViewDeleteConfirm:
		app.postToDelete = nil
		app.view = app.previousView
		return app, nil

	case ViewPostDetail, ViewUserDetail:
		if app.cameFromSearch {
			app.view = ViewSearch
			app.cameFromSearch = false
			app.searchInput.Blur()
			return app, nil
		}
		if app.view == ViewUserDetail {
			app.view = ViewUsers
		} else {
			app.view = ViewPosts
		}
		return app, nil

	case ViewSearch:
		app.view = app.previousView
		app.searchInput.Reset()
		app.searchInput.Blur()
		app.pendingSearchQuery = ""
		app.searchSeq++
		app.searchResults = nil
		app.searchList.SetItems([]list.Item{})
		return app, nil

	case ViewPosts:
		state := app.posts.Snapshot()
		if state.SearchTerm != "" || state.SettledTerm != "" || state.UserFilter != 0 {
			app.filterInput.Reset()
			app.posts.ApplySearch("")
			app.posts.SetUserFilter(0)
			app.syncPosts()
			app.setStatus(MsgFiltersClear, StatusInfo)
		}
		return app, nil

	default:
		return app, nil
	}
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	app := kh.app
	if app.view != ViewSearch {
		app.previousView = app.view
		if app.view == ViewPostDetail || app.view == ViewUserDetail || app.view == ViewDeleteConfirm {
			app.previousView = ViewPosts
		}
	}
	app.view = ViewSearch
	app.cameFromSearch = false
	app.searchInput.Reset()
	app.pendingSearchQuery = ""
	app.searchResults = nil
	app.searchList.SetItems([]list.Item{})

	engineName := fmt.Sprintf("%T", app.searchEngine)
	if ds, ok := app.searchEngine.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			app.setStatus(fmt.Sprintf("Search: %s • idx: %d", engineName, n), StatusInfo)
			return app, app.searchInput.Focus()
		}
	}
	app.setStatus(fmt.Sprintf("Search: %s", engineName), StatusInfo)
	return app, app.searchInput.Focus()
}

// GetHelpForCurrentView returns our custom key hints; the bubbles
// components document their own navigation.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys
	hint := func(b key.Binding) string {
		h := b.Help()
		return h.Key + ": " + h.Desc
	}

	switch kh.app.view {
	case ViewPosts:
		if kh.app.filterInput.Focused() {
			return []string{"enter: apply", "esc: done"}
		}
		help := []string{hint(k.Filter), hint(k.UserFilter), hint(k.Users), hint(k.Search)}
		if !kh.app.posts.ReadOnly() {
			help = append(help, hint(k.NewPost), hint(k.Delete))
		}
		return append(help, hint(k.PrevPage), hint(k.NextPage))

	case ViewPostDetail:
		help := []string{hint(k.Open)}
		if !kh.app.posts.ReadOnly() {
			help = append(help, hint(k.Delete))
		}
		return append(help, hint(k.Back))

	case ViewUsers:
		return []string{"enter: details", hint(k.Open), hint(k.UserFilter), hint(k.Back)}

	case ViewUserDetail:
		return []string{hint(k.Open), hint(k.Back)}

	case ViewUserFilter:
		return []string{"enter: apply", "esc: cancel"}

	case ViewSearch:
		return []string{"enter: open", "tab: results", "esc: back"}

	case ViewAddPost:
		return []string{hint(k.Submit), "tab: switch field", "esc: cancel"}

	case ViewDeleteConfirm:
		return []string{"enter: confirm", "esc: cancel"}

	default:
		return []string{}
	}
}
