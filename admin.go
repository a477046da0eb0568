package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cyverse-de/go-mod/restutils"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/cyverse-de/identitystore-admin/client/identitystore"
)

// Directory is the set of Identity Store calls the admin operations make.
// Users are looked up by userName and groups by displayName.
type Directory interface {
	GetGroupID(ctx context.Context, displayName string) (string, error)
	GetUserID(ctx context.Context, userName string) (string, error)
	CreateUser(ctx context.Context, u identitystore.User) (string, error)
	CreateGroup(ctx context.Context, g identitystore.Group) (string, error)
	CreateGroupMembership(ctx context.Context, groupID, userID string) (string, error)
	GetGroupMembershipID(ctx context.Context, groupID, userID string) (string, error)
	DeleteGroupMembership(ctx context.Context, membershipID string) error
	DeleteGroup(ctx context.Context, groupID string) error
	DeleteUser(ctx context.Context, userID string) error
	ListGroupMemberships(ctx context.Context, groupID string) ([]identitystore.Membership, error)
	ListGroupMembershipsForMember(ctx context.Context, userID string) ([]identitystore.Membership, error)
	ListGroups(ctx context.Context) ([]identitystore.Group, error)
	DescribeUser(ctx context.Context, userID string) (identitystore.User, error)
	DescribeGroup(ctx context.Context, groupID string) (identitystore.Group, error)
}

type Admin struct {
	directory Directory
	notifier  Notifier
	printer   *Printer
}

func NewAdmin(directory Directory, notifier Notifier, printer *Printer) *Admin {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Admin{
		directory: directory,
		notifier:  notifier,
		printer:   printer,
	}
}

// notify announces a group change. The directory change has already
// happened, so failures are only logged.
func (a *Admin) notify(ctx context.Context, groupID string) {
	if err := a.notifier.GroupChanged(ctx, groupID); err != nil {
		log.Error(errors.Wrapf(err, "Failed to publish change event for group %s", groupID))
	}
}

// CreateUser creates a user and, when groupName is set and names an existing
// group, adds the user to it.
func (a *Admin) CreateUser(ctx context.Context, userName, givenName, familyName, groupName string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "CreateUser")
	defer span.End()

	userID, err := a.directory.CreateUser(ctx, identitystore.User{
		UserName:    userName,
		GivenName:   givenName,
		FamilyName:  familyName,
		DisplayName: fmt.Sprintf("%s %s", givenName, familyName),
	})
	if err != nil {
		return err
	}
	a.printer.Linef("User:%s with UserId:%s created successfully", userName, userID)

	if groupName == "" {
		return nil
	}

	groupID, err := a.directory.GetGroupID(ctx, groupName)
	if err != nil {
		if restutils.GetStatusCode(err) == http.StatusNotFound {
			a.printer.Linef("Group Name %s does not exists, Skipping adding user to group", groupName)
			return nil
		}
		return err
	}

	if _, err = a.directory.CreateGroupMembership(ctx, groupID, userID); err != nil {
		return err
	}
	a.printer.Linef("User:%s added to Group:%s successfully", userName, groupName)
	a.notify(ctx, groupID)

	return nil
}

func (a *Admin) CreateGroup(ctx context.Context, groupName, description string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "CreateGroup")
	defer span.End()

	groupID, err := a.directory.CreateGroup(ctx, identitystore.Group{
		DisplayName: groupName,
		Description: description,
	})
	if err != nil {
		return err
	}
	a.printer.Linef("Group:%s with GroupId:%s created successfully", groupName, groupID)
	a.notify(ctx, groupID)

	return nil
}

func (a *Admin) AddUserToGroup(ctx context.Context, userName, groupName string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "AddUserToGroup")
	defer span.End()

	groupID, err := a.directory.GetGroupID(ctx, groupName)
	if err != nil {
		return err
	}

	userID, err := a.directory.GetUserID(ctx, userName)
	if err != nil {
		return err
	}

	if _, err = a.directory.CreateGroupMembership(ctx, groupID, userID); err != nil {
		return err
	}
	a.printer.Linef("User:%s added to Group:%s successfully", userName, groupName)
	a.notify(ctx, groupID)

	return nil
}

func (a *Admin) RemoveUserFromGroup(ctx context.Context, userName, groupName string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "RemoveUserFromGroup")
	defer span.End()

	groupID, err := a.directory.GetGroupID(ctx, groupName)
	if err != nil {
		return err
	}

	userID, err := a.directory.GetUserID(ctx, userName)
	if err != nil {
		return err
	}

	membershipID, err := a.directory.GetGroupMembershipID(ctx, groupID, userID)
	if err != nil {
		return err
	}

	if err = a.directory.DeleteGroupMembership(ctx, membershipID); err != nil {
		return err
	}
	a.printer.Linef("User:%s removed from Group:%s successfully", userName, groupName)
	a.notify(ctx, groupID)

	return nil
}

func (a *Admin) DeleteGroup(ctx context.Context, groupName string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "DeleteGroup")
	defer span.End()

	groupID, err := a.directory.GetGroupID(ctx, groupName)
	if err != nil {
		return err
	}

	if err = a.directory.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	a.printer.Linef("Group:%s with GroupId:%s deleted successfully", groupName, groupID)
	a.notify(ctx, groupID)

	return nil
}

func (a *Admin) DeleteUser(ctx context.Context, userName string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "DeleteUser")
	defer span.End()

	userID, err := a.directory.GetUserID(ctx, userName)
	if err != nil {
		return err
	}

	if err = a.directory.DeleteUser(ctx, userID); err != nil {
		return err
	}
	a.printer.Linef("User:%s with UserId:%s deleted successfully", userName, userID)

	return nil
}

// ListMembers prints the users in the first page of a group's memberships.
func (a *Admin) ListMembers(ctx context.Context, groupName string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "ListMembers")
	defer span.End()

	groupID, err := a.directory.GetGroupID(ctx, groupName)
	if err != nil {
		return err
	}

	memberships, err := a.directory.ListGroupMemberships(ctx, groupID)
	if err != nil {
		return err
	}

	users := make([]identitystore.User, 0, len(memberships))
	for _, m := range memberships {
		if m.UserID == "" {
			log.Debugf("skipping non-user membership %s", m.ID)
			continue
		}

		u, err := a.directory.DescribeUser(ctx, m.UserID)
		if err != nil {
			return err
		}
		log.Debugf("described user %+v", u)
		users = append(users, u)
	}

	return a.printer.Users(users)
}

// ListMemberships prints the groups in the first page of a user's memberships.
func (a *Admin) ListMemberships(ctx context.Context, userName string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "ListMemberships")
	defer span.End()

	userID, err := a.directory.GetUserID(ctx, userName)
	if err != nil {
		return err
	}

	memberships, err := a.directory.ListGroupMembershipsForMember(ctx, userID)
	if err != nil {
		return err
	}

	groups := make([]identitystore.Group, 0, len(memberships))
	for _, m := range memberships {
		g, err := a.directory.DescribeGroup(ctx, m.GroupID)
		if err != nil {
			return err
		}
		groups = append(groups, g)
	}

	return a.printer.GroupNames(groups)
}

func (a *Admin) ListGroups(ctx context.Context) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "ListGroups")
	defer span.End()

	groups, err := a.directory.ListGroups(ctx)
	if err != nil {
		return err
	}

	return a.printer.Groups(groups)
}

// PublishGroups sends a change event for every group in the first page of
// the store's groups. It keeps going past failures and returns the last one.
func (a *Admin) PublishGroups(ctx context.Context) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "PublishGroups")
	defer span.End()

	groups, err := a.directory.ListGroups(ctx)
	if err != nil {
		return errors.Wrap(err, "Failed listing groups")
	}

	var (
		overallError error
		published    int
	)
	for _, g := range groups {
		if err = a.notifier.GroupChanged(ctx, g.ID); err != nil {
			log.Error(errors.Wrapf(err, "Error publishing message for group %s", g.ID))
			overallError = err
			continue
		}
		published++
	}

	a.printer.Linef("Published %d group change events", published)
	return overallError
}
