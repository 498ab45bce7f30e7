package box

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetCurrentUser returns the account the token acts for.
func (c *Client) GetCurrentUser(ctx context.Context, opts ...CallOption) (User, error) {
	c.logger.Debug("GetCurrentUser called")

	ctx, cancel := c.withOperationTimeout(ctx, opCurrentUser)
	defer cancel()

	endpoint := strings.TrimSuffix(c.baseURL, "/") + "/users/me"
	if fields := joinFields(collectOptions(opts).fields); fields != "" {
		endpoint += "?" + url.Values{"fields": {fields}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return User{}, fmt.Errorf("creating %s request: %w", opCurrentUser, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.send(req, opCurrentUser)
	if err != nil {
		return User{}, err
	}
	defer closeBodySafely(res.Body, c.logger, opCurrentUser.String())

	var user User
	if err := mapResponse(res, NoPrecondition(), &user); err != nil {
		return User{}, fmt.Errorf("%s: %w", opCurrentUser, err)
	}
	return user, nil
}
