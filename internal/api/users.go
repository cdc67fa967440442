package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// CreateUser registers the signed-in user with the backend. An existing user
// is not an error; created reports whether a new account was made.
func (c *Client) CreateUser(ctx context.Context, name, email string) (created bool, err error) {
	err = c.do(ctx, request{
		op:     "create user",
		method: http.MethodPost,
		path:   "/create-user/",
		query:  url.Values{"name": {name}, "email": {email}},
	}, nil)
	if err == nil {
		return true, nil
	}
	if StatusCode(err) == http.StatusBadRequest && strings.Contains(strings.ToLower(Message(err, "")), "already exists") {
		return false, nil
	}
	return false, err
}
