package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cyverse-de/go-mod/restutils"

	"github.com/cyverse-de/identitystore-admin/client/identitystore"
)

// fakeDirectory is an in-memory Directory that records every call in order.
type fakeDirectory struct {
	calls []string

	groups      map[string]identitystore.Group // by display name
	users       map[string]identitystore.User  // by user name
	memberships []identitystore.Membership

	// failOn makes the named call return the mapped error.
	failOn map[string]error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		groups: map[string]identitystore.Group{},
		users:  map[string]identitystore.User{},
		failOn: map[string]error{},
	}
}

func notFound(what string) error {
	return restutils.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s not found", what))
}

func (f *fakeDirectory) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)

	for prefix, err := range f.failOn {
		if strings.HasPrefix(call, prefix) {
			return err
		}
	}
	return nil
}

func (f *fakeDirectory) GetGroupID(ctx context.Context, displayName string) (string, error) {
	if err := f.record("GetGroupID(%s)", displayName); err != nil {
		return "", err
	}
	g, ok := f.groups[displayName]
	if !ok {
		return "", notFound("group " + displayName)
	}
	return g.ID, nil
}

func (f *fakeDirectory) GetUserID(ctx context.Context, userName string) (string, error) {
	if err := f.record("GetUserID(%s)", userName); err != nil {
		return "", err
	}
	u, ok := f.users[userName]
	if !ok {
		return "", notFound("user " + userName)
	}
	return u.ID, nil
}

func (f *fakeDirectory) CreateUser(ctx context.Context, u identitystore.User) (string, error) {
	if err := f.record("CreateUser(%s,%s,%s,%s)", u.UserName, u.GivenName, u.FamilyName, u.DisplayName); err != nil {
		return "", err
	}
	u.ID = "u-" + u.UserName
	f.users[u.UserName] = u
	return u.ID, nil
}

func (f *fakeDirectory) CreateGroup(ctx context.Context, g identitystore.Group) (string, error) {
	if err := f.record("CreateGroup(%s,%s)", g.DisplayName, g.Description); err != nil {
		return "", err
	}
	g.ID = "g-" + g.DisplayName
	f.groups[g.DisplayName] = g
	return g.ID, nil
}

func (f *fakeDirectory) CreateGroupMembership(ctx context.Context, groupID, userID string) (string, error) {
	if err := f.record("CreateGroupMembership(%s,%s)", groupID, userID); err != nil {
		return "", err
	}
	id := fmt.Sprintf("m-%s-%s", groupID, userID)
	f.memberships = append(f.memberships, identitystore.Membership{ID: id, GroupID: groupID, UserID: userID})
	return id, nil
}

func (f *fakeDirectory) GetGroupMembershipID(ctx context.Context, groupID, userID string) (string, error) {
	if err := f.record("GetGroupMembershipID(%s,%s)", groupID, userID); err != nil {
		return "", err
	}
	for _, m := range f.memberships {
		if m.GroupID == groupID && m.UserID == userID {
			return m.ID, nil
		}
	}
	return "", notFound("membership")
}

func (f *fakeDirectory) DeleteGroupMembership(ctx context.Context, membershipID string) error {
	return f.record("DeleteGroupMembership(%s)", membershipID)
}

func (f *fakeDirectory) DeleteGroup(ctx context.Context, groupID string) error {
	return f.record("DeleteGroup(%s)", groupID)
}

func (f *fakeDirectory) DeleteUser(ctx context.Context, userID string) error {
	return f.record("DeleteUser(%s)", userID)
}

func (f *fakeDirectory) ListGroupMemberships(ctx context.Context, groupID string) ([]identitystore.Membership, error) {
	if err := f.record("ListGroupMemberships(%s)", groupID); err != nil {
		return nil, err
	}
	var ms []identitystore.Membership
	for _, m := range f.memberships {
		if m.GroupID == groupID {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func (f *fakeDirectory) ListGroupMembershipsForMember(ctx context.Context, userID string) ([]identitystore.Membership, error) {
	if err := f.record("ListGroupMembershipsForMember(%s)", userID); err != nil {
		return nil, err
	}
	var ms []identitystore.Membership
	for _, m := range f.memberships {
		if m.UserID == userID {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func (f *fakeDirectory) ListGroups(ctx context.Context) ([]identitystore.Group, error) {
	if err := f.record("ListGroups()"); err != nil {
		return nil, err
	}
	var gs []identitystore.Group
	for _, g := range f.groups {
		gs = append(gs, g)
	}
	sort.Slice(gs, func(i, j int) bool { return gs[i].ID < gs[j].ID })
	return gs, nil
}

func (f *fakeDirectory) DescribeUser(ctx context.Context, userID string) (identitystore.User, error) {
	if err := f.record("DescribeUser(%s)", userID); err != nil {
		return identitystore.User{}, err
	}
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return identitystore.User{}, notFound("user " + userID)
}

func (f *fakeDirectory) DescribeGroup(ctx context.Context, groupID string) (identitystore.Group, error) {
	if err := f.record("DescribeGroup(%s)", groupID); err != nil {
		return identitystore.Group{}, err
	}
	for _, g := range f.groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return identitystore.Group{}, notFound("group " + groupID)
}

func (f *fakeDirectory) addGroup(name string) identitystore.Group {
	g := identitystore.Group{ID: "g-" + name, DisplayName: name}
	f.groups[name] = g
	return g
}

func (f *fakeDirectory) addUser(name, display string) identitystore.User {
	u := identitystore.User{ID: "u-" + name, UserName: name, DisplayName: display}
	f.users[name] = u
	return u
}

func (f *fakeDirectory) addMembership(g identitystore.Group, u identitystore.User) {
	f.memberships = append(f.memberships, identitystore.Membership{
		ID:      fmt.Sprintf("m-%s-%s", g.ID, u.ID),
		GroupID: g.ID,
		UserID:  u.ID,
	})
}

type fakeNotifier struct {
	changed []string
	err     error
	closed  bool
}

func (n *fakeNotifier) GroupChanged(ctx context.Context, groupID string) error {
	if n.err != nil {
		return n.err
	}
	n.changed = append(n.changed, groupID)
	return nil
}

func (n *fakeNotifier) Close() {
	n.closed = true
}

func membershipWithoutUser(groupID string) identitystore.Membership {
	return identitystore.Membership{ID: "m-" + groupID + "-other", GroupID: groupID}
}
