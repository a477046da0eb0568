package main

import (
	"context"
	"io"

	l "github.com/cyverse-de/go-mod/logging"
	"github.com/spf13/cobra"

	"github.com/cyverse-de/identitystore-admin/client/identitystore"
	"github.com/cyverse-de/identitystore-admin/config"
)

// dependencies are the pieces the commands need from the outside world.
type dependencies struct {
	out          io.Writer
	newDirectory func(ctx context.Context, cfg *config.Config, storeID string) (Directory, error)
	newNotifier  func(cfg *config.Config) (Notifier, error)
}

func defaultDependencies(out io.Writer) dependencies {
	return dependencies{
		out: out,
		newDirectory: func(ctx context.Context, cfg *config.Config, storeID string) (Directory, error) {
			return identitystore.NewFromConfig(ctx, cfg, storeID)
		},
		newNotifier: newNotifier,
	}
}

type rootOptions struct {
	deps dependencies

	cfgPath  string
	logLevel string
	output   string

	cfg    *config.Config
	format OutputFormat
}

// withAdmin builds an Admin for storeID, runs fn with it and releases the
// notifier afterwards.
func (o *rootOptions) withAdmin(ctx context.Context, storeID string, fn func(*Admin) error) error {
	directory, err := o.deps.newDirectory(ctx, o.cfg, storeID)
	if err != nil {
		return err
	}

	notifier, err := o.deps.newNotifier(o.cfg)
	if err != nil {
		return err
	}
	defer notifier.Close()

	return fn(NewAdmin(directory, notifier, NewPrinter(o.deps.out, o.format)))
}

func newRootCmd(deps dependencies) *cobra.Command {
	opts := &rootOptions{deps: deps}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Manage users and groups in an IAM Identity Center identity store",
		Long: `identitystore-admin creates and deletes users and groups in an AWS IAM
Identity Center identity store, manages group membership, and lists members
and memberships.

AWS credentials and region come from the usual SDK sources (environment,
shared config, instance role). They can be overridden in the config file.

Use "identitystore-admin [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l.SetupLogging(opts.logLevel)

			format, err := ParseOutputFormat(opts.output)
			if err != nil {
				return err
			}
			opts.format = format

			v, err := config.Load(opts.cfgPath)
			if err != nil {
				return err
			}
			opts.cfg, err = config.NewFromViper(v)
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgPath, "config", "", "The path to an optional config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "One of trace, debug, info, warn, error, fatal, or panic.")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", string(FormatText), "Output format for listings (text|table|json)")

	cmd.AddCommand(
		newCreateUserCmd(opts),
		newCreateGroupCmd(opts),
		newAddUserToGroupCmd(opts),
		newRemoveUserFromGroupCmd(opts),
		newDeleteGroupCmd(opts),
		newDeleteUserCmd(opts),
		newListMembersCmd(opts),
		newListMembershipCmd(opts),
		newListGroupsCmd(opts),
		newPublishGroupsCmd(opts),
	)
	cmd.CompletionOptions.DisableDefaultCmd = true

	return cmd
}

func storeIDFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "identitystoreid", "", "Identity Store Id for IAM Identity Center Directory Configuration")
	_ = cmd.MarkFlagRequired("identitystoreid")
}

func requiredFlag(cmd *cobra.Command, target *string, name, usage string) {
	cmd.Flags().StringVar(target, name, "", usage)
	_ = cmd.MarkFlagRequired(name)
}
