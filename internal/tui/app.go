package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/opener"
	"github.com/pders01/postr/internal/search"
	"github.com/pders01/postr/internal/storage"
)

// Deps are the collaborators the App drives. Posts and Users are
// required; a nil Mutator makes the posts list read-only.
type Deps struct {
	Posts     listing.Source[storage.Post]
	Users     listing.Source[storage.User]
	Mutator   listing.Mutator[storage.Post]
	PostCache listing.Cache[storage.Post]
	UserCache listing.Cache[storage.User]
	Search    search.Searcher
	Opener    *opener.Opener
	// SourceLabel names where posts come from, shown in the header.
	SourceLabel string
}

type App struct {
	config       *config.Config
	deps         Deps
	ctx          context.Context
	cancel       context.CancelFunc
	posts        *listing.Manager[storage.Post]
	users        *listing.Manager[storage.User]
	directory    *listing.Directory
	searchEngine search.Searcher
	opener       *opener.Opener
	keyHandler   *KeyHandler
	events       chan tea.Msg
	unsubscribe  []func()

	postList    list.Model
	userList    list.Model
	pickerList  list.Model
	searchList  list.Model
	filterInput textinput.Model
	searchInput textinput.Model
	titleInput  textinput.Model
	bodyInput   textarea.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model

	view           View
	previousView   View
	cameFromSearch bool
	currentPost    *storage.Post
	currentUser    *storage.User
	postToDelete   *storage.Post
	searchResults  []searchResultItem

	searchSeq          uint64
	pendingSearchQuery string
	searchDebounce     time.Duration

	width      int
	height     int
	err        error
	status     string
	statusKind StatusKind
	loading    bool
	rendering  bool

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(cfg *config.Config, deps Deps) *App {
	ApplyTheme(cfg.UI.Colors)

	postList := newList("› posts", true)
	postList.SetShowPagination(false)
	postList.SetShowTitle(false)
	userList := newList("› users", true)
	pickerList := newList("› filter by user", false)
	searchList := newList("› search results", true)
	searchList.SetShowTitle(false)

	fi := textinput.New()
	fi.Placeholder = "Filter posts by title or body..."
	fi.Prompt = "/ "
	fi.CharLimit = 256

	si := textinput.New()
	si.Placeholder = "Search posts and users..."
	si.CharLimit = 256

	ti := textinput.New()
	ti.Placeholder = "Title"

	body := textarea.New()
	body.Placeholder = "Write the post body..."
	body.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AuthorStyle

	engine := deps.Search
	if engine == nil {
		engine = search.NewEngine()
	}
	op := deps.Opener
	if op == nil {
		op = opener.New(cfg, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:         cfg,
		deps:           deps,
		ctx:            ctx,
		cancel:         cancel,
		searchEngine:   engine,
		opener:         op,
		events:         make(chan tea.Msg, 32),
		directory:      listing.NewDirectory(nil),
		postList:       postList,
		userList:       userList,
		pickerList:     pickerList,
		searchList:     searchList,
		filterInput:    fi,
		searchInput:    si,
		titleInput:     ti,
		bodyInput:      body,
		viewport:       viewport.New(0, 0),
		spinner:        sp,
		help:           help.New(),
		view:           ViewPosts,
		previousView:   ViewPosts,
		searchDebounce: cfg.List.SearchDebounce,
	}

	app.posts = listing.New(listing.Options[storage.Post]{
		Name:           "posts",
		PageSize:       cfg.List.PageSize,
		MaxPageButtons: cfg.List.MaxPageButtons,
		Debounce:       cfg.List.SearchDebounce,
		ClampPage:      cfg.List.ClampPage,
		RefilterOnAdd:  cfg.List.RefilterOnAdd,
		Mutator:        deps.Mutator,
		Cache:          deps.PostCache,
	})
	app.users = listing.New(listing.Options[storage.User]{
		Name:           "users",
		PageSize:       cfg.List.PageSize,
		MaxPageButtons: cfg.List.MaxPageButtons,
		Debounce:       cfg.List.SearchDebounce,
		ClampPage:      true,
		Cache:          deps.UserCache,
	})

	app.unsubscribe = append(app.unsubscribe,
		app.posts.Subscribe(func(ev listing.Event[storage.Post]) {
			app.notify(listChangedMsg{list: "posts", kind: ev.Kind, err: ev.Err})
		}),
		app.users.Subscribe(func(ev listing.Event[storage.User]) {
			app.notify(listChangedMsg{list: "users", kind: ev.Kind, err: ev.Err})
		}),
	)

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func newList(title string, showDescription bool) list.Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = showDescription
	if !showDescription {
		d.SetSpacing(0)
	}
	l := list.New([]list.Item{}, d, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// Close stops pending work and detaches from the list managers.
func (a *App) Close() {
	a.cancel()
	for _, unsub := range a.unsubscribe {
		unsub()
	}
	a.posts.Dispose()
	a.users.Dispose()
	if err := a.searchEngine.Close(); err != nil {
		debuglog.Warnf("closing search index: %v", err)
	}
}

// notify forwards a manager event to the tea loop. A full queue drops the
// message; the next sync reads the latest snapshot anyway.
func (a *App) notify(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Detail.WordWrapMaxWidth
	minWidth := a.config.UI.Detail.WordWrapMinWidth

	wordWrapWidth := (a.width * 9) / 10
	if maxWidth > 0 && wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	a.loading = true
	a.setStatus(MsgLoading, StatusInfo)
	return tea.Batch(
		tea.EnterAltScreen,
		a.spinner.Tick,
		a.loadAll(false),
		a.waitForEvent(),
	)
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
	if kind != StatusError {
		a.err = nil
	}
}

func (a *App) setError(err error) {
	if err == nil {
		return
	}
	debuglog.Errorf("%v", err)
	a.err = err
	a.status = ""
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.loading && !a.rendering {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case listChangedMsg:
		if msg.kind == listing.EventError && msg.err != nil {
			a.setError(msg.err)
		}
		a.syncAll()
		return a, a.waitForEvent()

	case loadedMsg:
		a.loading = false
		a.syncAll()
		if err := firstErr(msg.postsErr, msg.usersErr); err != nil {
			a.setError(err)
		} else if msg.postsErr == nil && msg.usersErr == nil {
			a.setStatus(MsgLoaded(msg.posts, a.directory.Len()), StatusSuccess)
		}

	case filterSettleMsg:
		if a.posts.SettleSearch(msg.seq) {
			a.syncPosts()
		}

	case postCreatedMsg:
		a.loading = false
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.titleInput.Reset()
		a.bodyInput.Reset()
		a.view = ViewPosts
		a.syncPosts()
		a.postList.Select(0)
		a.setStatus(MsgPostCreated, StatusSuccess)

	case postDeletedMsg:
		a.loading = false
		a.postToDelete = nil
		if msg.err != nil {
			a.view = a.previousView
			a.setError(msg.err)
			return a, nil
		}
		a.view = ViewPosts
		a.currentPost = nil
		a.syncPosts()
		a.setStatus(MsgPostDeleted, StatusSuccess)

	case contentRenderedMsg:
		a.rendering = false
		if a.view == ViewPostDetail || a.view == ViewUserDetail {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		if a.statusKind != StatusError && a.status == MsgRendering {
			a.status = ""
		}

	case searchDebounceFireMsg:
		if msg.seq == a.searchSeq && a.view == ViewSearch {
			if len([]rune(a.pendingSearchQuery)) > 1 {
				return a, a.performSearch(a.pendingSearchQuery)
			}
			a.setSearchResults(nil)
		}

	case searchResultsMsg:
		if a.view == ViewSearch && msg.query == a.pendingSearchQuery {
			a.setSearchResults(msg.results)
			if len(msg.results) == 0 {
				a.setStatus(MsgNoResults, StatusInfo)
			} else {
				a.setStatus(MsgResultsCount(len(msg.results)), StatusInfo)
			}
		}

	case websiteOpenedMsg:
		if msg.err != nil {
			a.setError(msg.err)
		} else {
			a.setStatus(MsgOpened(msg.url), StatusSuccess)
		}

	case errorMsg:
		a.setError(msg.err)
	}

	switch a.view {
	case ViewPostDetail, ViewUserDetail:
		switch msg.(type) {
		case tea.MouseMsg:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	case ViewAddPost:
		var cmd tea.Cmd
		if a.titleInput.Focused() {
			a.titleInput, cmd = a.titleInput.Update(msg)
		} else {
			a.bodyInput, cmd = a.bodyInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	pageRows := max(a.config.List.PageSize, 1)
	a.postList.SetSize(width, min(pageRows*3+2, max(height-8, 5)))
	a.userList.SetSize(width, max(height-3, 5))
	a.pickerList.SetSize(width, max(height-3, 5))
	a.searchList.SetSize(width, max(height-10, 5))

	a.viewport.Width = width
	a.viewport.Height = max(height-3, 1)

	inputWidth := width - 8
	if inputWidth < 20 {
		inputWidth = max(width-4, 10)
	}
	a.filterInput.Width = inputWidth
	a.searchInput.Width = inputWidth
	a.titleInput.Width = inputWidth
	a.bodyInput.SetWidth(inputWidth)
	a.bodyInput.SetHeight(max(min(height-14, 12), 3))
	a.help.Width = width
}

// syncAll refreshes every list component from the managers.
func (a *App) syncAll() {
	a.syncUsers()
	a.syncPosts()
}

func (a *App) syncPosts() {
	state := a.posts.Snapshot()
	items := make([]list.Item, len(state.Page.Items))
	for i, p := range state.Page.Items {
		items[i] = postItem{post: p, author: a.directory.Name(p.UserID), preview: a.config.UI.Detail.MaxPreviewLength}
	}
	idx := a.postList.Index()
	a.postList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		a.postList.Select(idx)
	}
}

func (a *App) syncUsers() {
	state := a.users.Snapshot()
	a.directory = listing.NewDirectory(state.All)

	users := make([]list.Item, len(state.Filtered))
	for i, u := range state.Filtered {
		users[i] = userItem{user: u}
	}
	a.userList.SetItems(users)

	picker := make([]list.Item, 0, len(state.All)+1)
	picker = append(picker, pickerItem{id: 0, label: "All Users"})
	for _, u := range a.directory.Users() {
		picker = append(picker, pickerItem{id: u.ID, label: u.Name})
	}
	a.pickerList.SetItems(picker)
}

func (a *App) setSearchResults(results []*search.Result) {
	a.searchResults = make([]searchResultItem, len(results))
	items := make([]list.Item, len(results))
	for i, r := range results {
		item := searchResultItem{result: r}
		if r.Post != nil {
			item.author = a.directory.Name(r.Post.UserID)
		}
		a.searchResults[i] = item
		items[i] = item
	}
	a.searchList.SetItems(items)
}

type postItem struct {
	post    storage.Post
	author  string
	preview int
}

func (i postItem) Title() string { return i.post.Title }

func (i postItem) Description() string {
	limit := i.preview
	if limit <= 0 {
		limit = 80
	}
	return renderMuted(truncateEnd(singleLine(i.post.Body), limit)) + AuthorStyle.Render(" • "+i.author)
}

func (i postItem) FilterValue() string { return i.post.Title }

type userItem struct {
	user storage.User
}

func (i userItem) Title() string { return i.user.Name }

// maxContactWidth bounds the email and website shown in list rows.
const maxContactWidth = 32

func (i userItem) Description() string {
	desc := fmt.Sprintf("@%s • %s", i.user.Username, truncateMiddle(i.user.Email, maxContactWidth))
	if i.user.Website != "" {
		desc += " • " + truncateMiddle(i.user.Website, maxContactWidth)
	}
	return renderMuted(desc)
}

func (i userItem) FilterValue() string { return i.user.Name }

type pickerItem struct {
	id    int
	label string
}

func (i pickerItem) Title() string       { return i.label }
func (i pickerItem) Description() string { return "" }
func (i pickerItem) FilterValue() string { return i.label }

type searchResultItem struct {
	result *search.Result
	author string
}

func (i searchResultItem) Title() string {
	if i.result.Kind == search.KindUser {
		return HeaderStyle.Render("👤 " + i.result.Title())
	}
	return "📝 " + i.result.Title()
}

func (i searchResultItem) Description() string {
	if i.result.Kind == search.KindUser && i.result.User != nil {
		return renderMuted("@" + i.result.User.Username + " • " + i.result.User.Email)
	}
	snippet := ""
	for _, m := range i.result.Matches {
		if m.Field == "body" {
			snippet = m.Text
			break
		}
	}
	if snippet == "" && i.result.Post != nil {
		snippet = truncateEnd(singleLine(i.result.Post.Body), 50)
	}
	return renderMuted(snippet + " • by " + i.author)
}

func (i searchResultItem) FilterValue() string { return i.result.Title() }

type listChangedMsg struct {
	list string
	kind listing.EventKind
	err  error
}

type loadedMsg struct {
	reload   bool
	posts    int
	postsErr error
	usersErr error
}

type filterSettleMsg struct {
	seq uint64
}

type postCreatedMsg struct {
	post storage.Post
	err  error
}

type postDeletedMsg struct {
	id  int
	err error
}

type contentRenderedMsg struct {
	content string
}

type searchDebounceFireMsg struct {
	seq uint64
}

type searchResultsMsg struct {
	query   string
	results []*search.Result
}

type websiteOpenedMsg struct {
	url string
	err error
}

type errorMsg struct {
	err error
}
