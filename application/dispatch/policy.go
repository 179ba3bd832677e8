package dispatch

import "strings"

// AuthorizationPolicy decides which verified identities may call protected actions
type AuthorizationPolicy interface {
	IsAuthorized(userID string) bool
}

// AllowList authorizes a fixed set of user ids. An empty list authorizes nobody.
type AllowList map[string]struct{}

// NewAllowList builds an allow list, ignoring blank entries
func NewAllowList(userIDs ...string) AllowList {
	list := make(AllowList, len(userIDs))
	for _, id := range userIDs {
		if id = strings.TrimSpace(id); id != "" {
			list[id] = struct{}{}
		}
	}
	return list
}

// IsAuthorized implements AuthorizationPolicy
func (a AllowList) IsAuthorized(userID string) bool {
	_, ok := a[userID]
	return ok
}
