// Package box (item.go) holds the operations shared by folders and files.
// Each action exists once, parameterized by ItemType; folder.go and file.go
// add typed shortcuts.
package box

import (
	"context"
)

// Get fetches one item. With IfNoneMatch(etag) the call fails with
// ErrNotModified while the item is unchanged.
//
// Example:
//
//	item, err := client.Get(ctx, box.TypeFolder, "0", box.NoPrecondition(),
//	    box.WithFields(box.FieldName, box.FieldSize, box.FieldETag))
//	if errors.Is(err, box.ErrNotModified) { /* cached copy is current */ }
func (c *Client) Get(ctx context.Context, itemType ItemType, id string, pre Precondition, opts ...CallOption) (Item, error) {
	c.logger.Debugf("Get called for %s %s (%s)", itemType, id, pre)
	var item Item
	err := c.call(ctx, opGet, itemType, requestParams{
		id:           id,
		precondition: pre,
		options:      collectOptions(opts),
	}, &item)
	return item, err
}

// ListItems returns one page of a folder's children.
func (c *Client) ListItems(ctx context.Context, folderID string, opts ...CallOption) (ItemCollection, error) {
	c.logger.Debugf("ListItems called for folder %s", folderID)
	return c.listPage(ctx, folderID, collectOptions(opts))
}

// ListAllItems walks every page of a folder listing.
func (c *Client) ListAllItems(ctx context.Context, folderID string, opts ...CallOption) ([]Item, error) {
	base := collectOptions(opts)
	limit := base.limit
	if limit == 0 {
		limit = DefaultPageLimit
	}

	var all []Item
	for offset := base.offset; ; {
		page := base
		page.offset, page.limit = offset, limit

		col, err := c.listPage(ctx, folderID, page)
		if err != nil {
			return all, err
		}
		all = append(all, col.Entries...)
		offset += len(col.Entries)
		if len(col.Entries) == 0 || offset >= col.TotalCount {
			return all, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, folderID string, o callOptions) (ItemCollection, error) {
	var items ItemCollection
	err := c.call(ctx, opListItems, TypeFolder, requestParams{id: folderID, options: o}, &items)
	return items, err
}

// CreateFolder creates a folder named name inside parentID.
//
// Example:
//
//	folder, err := client.CreateFolder(ctx, box.RootFolderID, "Reports")
func (c *Client) CreateFolder(ctx context.Context, parentID, name string, opts ...CallOption) (Folder, error) {
	c.logger.Debugf("CreateFolder called for parent %s, name '%s'", parentID, name)
	var folder Folder
	err := c.call(ctx, opCreateFolder, TypeFolder, requestParams{
		parentID: parentID,
		name:     name,
		options:  collectOptions(opts),
	}, &folder)
	return folder, err
}

// Delete removes an item. Deleting a non-empty folder requires
// Recursive(true); otherwise the service rejects the call.
func (c *Client) Delete(ctx context.Context, itemType ItemType, id string, pre Precondition, opts ...CallOption) error {
	c.logger.Debugf("Delete called for %s %s (%s)", itemType, id, pre)
	return c.call(ctx, opDelete, itemType, requestParams{
		id:           id,
		precondition: pre,
		options:      collectOptions(opts),
	}, nil)
}

// Copy duplicates an item into parentID. An empty newName keeps the source
// name, which the service rejects when parentID is the source's own parent.
func (c *Client) Copy(ctx context.Context, itemType ItemType, id, parentID, newName string, opts ...CallOption) (Item, error) {
	c.logger.Debugf("Copy called for %s %s into %s as '%s'", itemType, id, parentID, newName)
	var item Item
	err := c.call(ctx, opCopy, itemType, requestParams{
		id:       id,
		parentID: parentID,
		name:     newName,
		options:  collectOptions(opts),
	}, &item)
	return item, err
}

// Update changes any combination of name, description, parent and shared
// link in a single request.
func (c *Client) Update(ctx context.Context, itemType ItemType, id string, update UpdateRequest, pre Precondition, opts ...CallOption) (Item, error) {
	c.logger.Debugf("Update called for %s %s (%s)", itemType, id, pre)
	var item Item
	err := c.call(ctx, opUpdate, itemType, requestParams{
		id:           id,
		update:       update,
		precondition: pre,
		options:      collectOptions(opts),
	}, &item)
	return item, err
}

// Move reparents an item.
func (c *Client) Move(ctx context.Context, itemType ItemType, id, parentID string, pre Precondition, opts ...CallOption) (Item, error) {
	if parentID == "" {
		return Item{}, invalidInput("destination parent id is required")
	}
	return c.Update(ctx, itemType, id, UpdateRequest{ParentID: parentID}, pre, opts...)
}

// Rename gives an item a new name in place.
func (c *Client) Rename(ctx context.Context, itemType ItemType, id, name string, pre Precondition, opts ...CallOption) (Item, error) {
	if name == "" {
		return Item{}, invalidInput("new name is required")
	}
	return c.Update(ctx, itemType, id, UpdateRequest{Name: name}, pre, opts...)
}

// SetDescription replaces an item's description.
func (c *Client) SetDescription(ctx context.Context, itemType ItemType, id, description string, pre Precondition, opts ...CallOption) (Item, error) {
	if description == "" {
		return Item{}, invalidInput("description is required")
	}
	return c.Update(ctx, itemType, id, UpdateRequest{Description: description}, pre, opts...)
}

// Share creates or replaces the shared link of an item. The link is only
// present on the result when the field set includes it or is left unset.
func (c *Client) Share(ctx context.Context, itemType ItemType, id string, link SharedLinkSpec, pre Precondition, opts ...CallOption) (Item, error) {
	return c.Update(ctx, itemType, id, UpdateRequest{SharedLink: &link}, pre, opts...)
}

// Unshare removes the shared link of an item.
func (c *Client) Unshare(ctx context.Context, itemType ItemType, id string, pre Precondition, opts ...CallOption) (Item, error) {
	return c.Update(ctx, itemType, id, UpdateRequest{RemoveSharedLink: true}, pre, opts...)
}
