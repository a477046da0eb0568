package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCreateUserCmd(opts *rootOptions) *cobra.Command {
	var storeID, userName, givenName, familyName, groupName string

	cmd := &cobra.Command{
		Use:     "create_user",
		Aliases: []string{"create-user"},
		Short:   "Create a user, optionally adding it to a group",
		Long: `Create a user in the identity store. The display name is "<givenname> <familyname>".

If --groupname is provided and the group exists, the new user is added to it.
If the group does not exist the user is still created and a warning is printed.

Examples:
  identitystore-admin create_user --identitystoreid d-1234567890 \
    --username alice --givenname Alice --familyname Liddell --groupname editors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.CreateUser(cmd.Context(), userName, givenName, familyName, groupName)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &userName, "username", "User Name for the user")
	requiredFlag(cmd, &givenName, "givenname", "First Name for the user")
	requiredFlag(cmd, &familyName, "familyname", "Last Name for the user")
	cmd.Flags().StringVar(&groupName, "groupname", "", "if provided and valid, the newly created user will be added to group")

	return cmd
}

func newCreateGroupCmd(opts *rootOptions) *cobra.Command {
	var storeID, groupName, description string

	cmd := &cobra.Command{
		Use:     "create_group",
		Aliases: []string{"create-group"},
		Short:   "Create a group",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.CreateGroup(cmd.Context(), groupName, description)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &groupName, "groupname", "Name of the Group")
	requiredFlag(cmd, &description, "description", "Group Description")

	return cmd
}

func newAddUserToGroupCmd(opts *rootOptions) *cobra.Command {
	var storeID, groupName, userName string

	cmd := &cobra.Command{
		Use:     "adduser_to_group",
		Aliases: []string{"adduser-to-group"},
		Short:   "Add an existing user to an existing group",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.AddUserToGroup(cmd.Context(), userName, groupName)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &groupName, "groupname", "Name of the group")
	requiredFlag(cmd, &userName, "username", "Name of the user")

	return cmd
}

func newRemoveUserFromGroupCmd(opts *rootOptions) *cobra.Command {
	var storeID, groupName, userName string

	cmd := &cobra.Command{
		Use:     "removeuser_from_group",
		Aliases: []string{"removeuser-from-group"},
		Short:   "Remove a user from a group",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.RemoveUserFromGroup(cmd.Context(), userName, groupName)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &groupName, "groupname", "Name of the group")
	requiredFlag(cmd, &userName, "username", "Name of the user")

	return cmd
}

func newDeleteGroupCmd(opts *rootOptions) *cobra.Command {
	var storeID, groupName string

	cmd := &cobra.Command{
		Use:     "delete_group",
		Aliases: []string{"delete-group"},
		Short:   "Delete a group",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.DeleteGroup(cmd.Context(), groupName)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &groupName, "groupname", "Name of the group")

	return cmd
}

func newDeleteUserCmd(opts *rootOptions) *cobra.Command {
	var storeID, userName string

	cmd := &cobra.Command{
		Use:     "delete_user",
		Aliases: []string{"delete-user"},
		Short:   "Delete a user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.DeleteUser(cmd.Context(), userName)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &userName, "username", "Name of the user")

	return cmd
}

func newListMembersCmd(opts *rootOptions) *cobra.Command {
	var storeID, groupName string

	cmd := &cobra.Command{
		Use:     "list_members",
		Aliases: []string{"list-members"},
		Short:   "List the members of a group",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.ListMembers(cmd.Context(), groupName)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &groupName, "groupname", "Name of the group")

	return cmd
}

func newListMembershipCmd(opts *rootOptions) *cobra.Command {
	var storeID, userName string

	cmd := &cobra.Command{
		Use:     "list_membership",
		Aliases: []string{"list-membership"},
		Short:   "List the groups a user belongs to",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.ListMemberships(cmd.Context(), userName)
			})
		},
	}

	storeIDFlag(cmd, &storeID)
	requiredFlag(cmd, &userName, "username", "Name of the user")

	return cmd
}

func newListGroupsCmd(opts *rootOptions) *cobra.Command {
	var storeID string

	cmd := &cobra.Command{
		Use:     "list_groups",
		Aliases: []string{"list-groups"},
		Short:   "List the groups in the identity store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.ListGroups(cmd.Context())
			})
		},
	}

	storeIDFlag(cmd, &storeID)

	return cmd
}

func newPublishGroupsCmd(opts *rootOptions) *cobra.Command {
	var storeID string

	cmd := &cobra.Command{
		Use:     "publish_groups",
		Aliases: []string{"publish-groups"},
		Short:   "Publish a change event for every group",
		Long: `Publish an AMQP change event (routing key "<amqp.routing_prefix>.<group id>")
for every group in the identity store, so downstream consumers can
reconcile their copies. Requires amqp.uri and amqp.exchange.name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.cfg.AMQPEnabled() {
				return errors.New("publish_groups requires amqp.uri to be configured")
			}
			return opts.withAdmin(cmd.Context(), storeID, func(a *Admin) error {
				return a.PublishGroups(cmd.Context())
			})
		},
	}

	storeIDFlag(cmd, &storeID)

	return cmd
}
