package domain

// Child is the registry identity of an account.
type Child struct {
	UserID      int
	AccountName string
}

// Children is the id-indexed registry of the identities managed by the
// coordinator. Lookups are linear and return the first match.
type Children struct {
	children []Child
}

// NewChildren returns an empty registry.
func NewChildren() *Children {
	return &Children{children: make([]Child, 0)}
}

// AddChild appends a new identity to the registry.
func (c *Children) AddChild(userID int, accountName string) {
	c.children = append(c.children, Child{
		UserID:      userID,
		AccountName: accountName,
	})
}

// ChildByID returns the identity registered with the given id, if any.
func (c *Children) ChildByID(userID int) (Child, bool) {
	for _, child := range c.children {
		if child.UserID == userID {
			return child, true
		}
	}
	return Child{}, false
}

// RemoveChild drops the first identity registered with the given id and
// reports whether one was found.
func (c *Children) RemoveChild(userID int) bool {
	for i, child := range c.children {
		if child.UserID == userID {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a copy of the registered identities in insertion order.
func (c *Children) All() []Child {
	children := make([]Child, len(c.children))
	copy(children, c.children)
	return children
}

func (c *Children) Len() int {
	return len(c.children)
}
