package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/postr/internal/config"
)

// keyMap holds the configurable action keys. Navigation inside lists and
// inputs is left to the bubbles components.
type keyMap struct {
	Filter     key.Binding
	Search     key.Binding
	NewPost    key.Binding
	Delete     key.Binding
	UserFilter key.Binding
	Users      key.Binding
	Refresh    key.Binding
	Open       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	Submit     key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings
	withMod := func(k, desc string) key.Binding {
		return key.NewBinding(key.WithKeys(mod+k), key.WithHelp(mod+k, desc))
	}
	plain := func(k, desc string) key.Binding {
		return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
	}

	return keyMap{
		Filter:     plain("/", "filter"),
		Search:     withMod(b.Search, "search"),
		NewPost:    withMod(b.NewPost, "new"),
		Delete:     withMod(b.DeletePost, "delete"),
		UserFilter: withMod(b.UserFilter, "by user"),
		Users:      withMod(b.Users, "users"),
		Refresh:    withMod(b.Refresh, "refetch"),
		Open:       withMod(b.OpenWebsite, "website"),
		PrevPage:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		NextPage:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		Submit:     withMod("s", "save"),
		Back:       plain(b.Back, "back"),
		Help:       plain(b.Help, "keys"),
		Quit:       key.NewBinding(key.WithKeys(b.Quit, "ctrl+c"), key.WithHelp(b.Quit, "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.Search, k.UserFilter, k.Users},
		{k.NewPost, k.Delete, k.Open, k.Refresh},
		{k.PrevPage, k.NextPage, k.Back, k.Quit},
	}
}
