package box

import "context"

// GetFolder fetches a folder by id.
func (c *Client) GetFolder(ctx context.Context, id string, pre Precondition, opts ...CallOption) (Folder, error) {
	return c.Get(ctx, TypeFolder, id, pre, opts...)
}

// DeleteFolder removes a folder, and its content when recursive is set.
func (c *Client) DeleteFolder(ctx context.Context, id string, recursive bool, pre Precondition) error {
	return c.Delete(ctx, TypeFolder, id, pre, Recursive(recursive))
}

// CopyFolder copies a folder and its content into parentID.
func (c *Client) CopyFolder(ctx context.Context, id, parentID, newName string, opts ...CallOption) (Folder, error) {
	return c.Copy(ctx, TypeFolder, id, parentID, newName, opts...)
}

// MoveFolder moves a folder under parentID.
func (c *Client) MoveFolder(ctx context.Context, id, parentID string, pre Precondition, opts ...CallOption) (Folder, error) {
	return c.Move(ctx, TypeFolder, id, parentID, pre, opts...)
}

// RenameFolder renames a folder.
func (c *Client) RenameFolder(ctx context.Context, id, name string, pre Precondition, opts ...CallOption) (Folder, error) {
	return c.Rename(ctx, TypeFolder, id, name, pre, opts...)
}

// ShareFolder sets the shared link of a folder.
func (c *Client) ShareFolder(ctx context.Context, id string, link SharedLinkSpec, pre Precondition, opts ...CallOption) (Folder, error) {
	return c.Share(ctx, TypeFolder, id, link, pre, opts...)
}
