package tui

type View int

const (
	ViewPosts View = iota
	ViewPostDetail
	ViewAddPost
	ViewDeleteConfirm
	ViewUserFilter
	ViewUsers
	ViewUserDetail
	ViewSearch
)

func (v View) String() string {
	switch v {
	case ViewPosts:
		return "posts"
	case ViewPostDetail:
		return "post"
	case ViewAddPost:
		return "new post"
	case ViewDeleteConfirm:
		return "delete"
	case ViewUserFilter:
		return "user filter"
	case ViewUsers:
		return "users"
	case ViewUserDetail:
		return "user"
	case ViewSearch:
		return "search"
	default:
		return "unknown"
	}
}
