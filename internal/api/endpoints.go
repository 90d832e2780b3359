package api

import (
	"context"

	"github.com/pders01/postr/internal/storage"
)

// PostsEndpoint exposes the posts collection as a listing source and
// mutator.
type PostsEndpoint struct {
	client *Client
}

func (c *Client) Posts() *PostsEndpoint { return &PostsEndpoint{client: c} }

func (e *PostsEndpoint) Fetch(ctx context.Context) ([]storage.Post, error) {
	return e.client.FetchPosts(ctx)
}

func (e *PostsEndpoint) Create(ctx context.Context, draft storage.Post) (storage.Post, error) {
	return e.client.CreatePost(ctx, draft)
}

func (e *PostsEndpoint) Delete(ctx context.Context, key int) error {
	return e.client.DeletePost(ctx, key)
}

// UsersEndpoint is read-only.
type UsersEndpoint struct {
	client *Client
}

func (c *Client) Users() *UsersEndpoint { return &UsersEndpoint{client: c} }

func (e *UsersEndpoint) Fetch(ctx context.Context) ([]storage.User, error) {
	return e.client.FetchUsers(ctx)
}
