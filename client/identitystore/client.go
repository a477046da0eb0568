package identitystore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/identitystore/document"
	"github.com/aws/aws-sdk-go-v2/service/identitystore/types"
	"github.com/cyverse-de/go-mod/restutils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel"

	"github.com/cyverse-de/identitystore-admin/config"
	"github.com/cyverse-de/identitystore-admin/logging"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "client.identitystore"})

const otelName = "github.com/cyverse-de/identitystore-admin/client/identitystore"

// MaxResults is the page size for every listing call. Only the first page is
// ever read.
const MaxResults int32 = 100

const (
	displayNameAttribute = "displayName"
	userNameAttribute    = "userName"
)

// API is the subset of the Identity Store SDK client used here.
type API interface {
	GetGroupId(ctx context.Context, params *identitystore.GetGroupIdInput, optFns ...func(*identitystore.Options)) (*identitystore.GetGroupIdOutput, error)
	GetUserId(ctx context.Context, params *identitystore.GetUserIdInput, optFns ...func(*identitystore.Options)) (*identitystore.GetUserIdOutput, error)
	CreateUser(ctx context.Context, params *identitystore.CreateUserInput, optFns ...func(*identitystore.Options)) (*identitystore.CreateUserOutput, error)
	CreateGroup(ctx context.Context, params *identitystore.CreateGroupInput, optFns ...func(*identitystore.Options)) (*identitystore.CreateGroupOutput, error)
	CreateGroupMembership(ctx context.Context, params *identitystore.CreateGroupMembershipInput, optFns ...func(*identitystore.Options)) (*identitystore.CreateGroupMembershipOutput, error)
	GetGroupMembershipId(ctx context.Context, params *identitystore.GetGroupMembershipIdInput, optFns ...func(*identitystore.Options)) (*identitystore.GetGroupMembershipIdOutput, error)
	DeleteGroupMembership(ctx context.Context, params *identitystore.DeleteGroupMembershipInput, optFns ...func(*identitystore.Options)) (*identitystore.DeleteGroupMembershipOutput, error)
	DeleteGroup(ctx context.Context, params *identitystore.DeleteGroupInput, optFns ...func(*identitystore.Options)) (*identitystore.DeleteGroupOutput, error)
	DeleteUser(ctx context.Context, params *identitystore.DeleteUserInput, optFns ...func(*identitystore.Options)) (*identitystore.DeleteUserOutput, error)
	ListGroupMemberships(ctx context.Context, params *identitystore.ListGroupMembershipsInput, optFns ...func(*identitystore.Options)) (*identitystore.ListGroupMembershipsOutput, error)
	ListGroupMembershipsForMember(ctx context.Context, params *identitystore.ListGroupMembershipsForMemberInput, optFns ...func(*identitystore.Options)) (*identitystore.ListGroupMembershipsForMemberOutput, error)
	ListGroups(ctx context.Context, params *identitystore.ListGroupsInput, optFns ...func(*identitystore.Options)) (*identitystore.ListGroupsOutput, error)
	DescribeUser(ctx context.Context, params *identitystore.DescribeUserInput, optFns ...func(*identitystore.Options)) (*identitystore.DescribeUserOutput, error)
	DescribeGroup(ctx context.Context, params *identitystore.DescribeGroupInput, optFns ...func(*identitystore.Options)) (*identitystore.DescribeGroupOutput, error)
}

type IdentityStoreClient struct {
	api     API
	StoreID string
}

func NewIdentityStoreClient(api API, storeID string) *IdentityStoreClient {
	return &IdentityStoreClient{api: api, StoreID: storeID}
}

// NewFromConfig builds an SDK client from the shared AWS configuration,
// applying the region, profile and endpoint overrides from cfg. The SDK keeps
// its own HTTP client so settings like AWS_CA_BUNDLE still apply.
func NewFromConfig(ctx context.Context, cfg *config.Config, storeID string) (*IdentityStoreClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	if cfg.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to load AWS config")
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	var isOpts []func(*identitystore.Options)
	if cfg.AWSEndpoint != "" {
		isOpts = append(isOpts, func(o *identitystore.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		})
	}

	return NewIdentityStoreClient(identitystore.NewFromConfig(awsCfg, isOpts...), storeID), nil
}

// translateError turns SDK errors into errors restutils.GetStatusCode can
// classify. The result must not be wrapped again before classification.
func translateError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return restutils.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s: %s", msg, notFound.ErrorMessage()))
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return restutils.NewHTTPError(respErr.HTTPStatusCode(), fmt.Sprintf("%s: %s", msg, err.Error()))
	}

	return errors.Wrap(err, msg)
}

func uniqueAttribute(path, value string) types.AlternateIdentifier {
	return &types.AlternateIdentifierMemberUniqueAttribute{
		Value: types.UniqueAttribute{
			AttributePath:  aws.String(path),
			AttributeValue: document.NewLazyDocument(value),
		},
	}
}

func userMember(userID string) types.MemberId {
	return &types.MemberIdMemberUserId{Value: userID}
}

func memberUserID(m types.MemberId) string {
	if u, ok := m.(*types.MemberIdMemberUserId); ok {
		return u.Value
	}
	return ""
}

func toMemberships(in []types.GroupMembership) []Membership {
	ms := make([]Membership, 0, len(in))
	for _, m := range in {
		ms = append(ms, Membership{
			ID:      aws.ToString(m.MembershipId),
			GroupID: aws.ToString(m.GroupId),
			UserID:  memberUserID(m.MemberId),
		})
	}
	return ms
}

// Look up a group's ID by its display name
func (c *IdentityStoreClient) GetGroupID(ctx context.Context, displayName string) (string, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "GetGroupID")
	defer span.End()

	log.Debugf("looking up group %s", displayName)

	out, err := c.api.GetGroupId(ctx, &identitystore.GetGroupIdInput{
		IdentityStoreId:     aws.String(c.StoreID),
		AlternateIdentifier: uniqueAttribute(displayNameAttribute, displayName),
	})
	if err != nil {
		return "", translateError(err, "Failed to look up group %s", displayName)
	}
	return aws.ToString(out.GroupId), nil
}

// Look up a user's ID by username
func (c *IdentityStoreClient) GetUserID(ctx context.Context, userName string) (string, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "GetUserID")
	defer span.End()

	log.Debugf("looking up user %s", userName)

	out, err := c.api.GetUserId(ctx, &identitystore.GetUserIdInput{
		IdentityStoreId:     aws.String(c.StoreID),
		AlternateIdentifier: uniqueAttribute(userNameAttribute, userName),
	})
	if err != nil {
		return "", translateError(err, "Failed to look up user %s", userName)
	}
	return aws.ToString(out.UserId), nil
}

// Create a user, returning the new user's ID
func (c *IdentityStoreClient) CreateUser(ctx context.Context, u User) (string, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "CreateUser")
	defer span.End()

	log.Debugf("creating user %s", u.UserName)

	out, err := c.api.CreateUser(ctx, &identitystore.CreateUserInput{
		IdentityStoreId: aws.String(c.StoreID),
		UserName:        aws.String(u.UserName),
		Name: &types.Name{
			FamilyName: aws.String(u.FamilyName),
			GivenName:  aws.String(u.GivenName),
		},
		DisplayName: aws.String(u.DisplayName),
	})
	if err != nil {
		return "", translateError(err, "Failed to create user %s", u.UserName)
	}
	return aws.ToString(out.UserId), nil
}

// Create a group, returning the new group's ID
func (c *IdentityStoreClient) CreateGroup(ctx context.Context, g Group) (string, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "CreateGroup")
	defer span.End()

	log.Debugf("creating group %s", g.DisplayName)

	out, err := c.api.CreateGroup(ctx, &identitystore.CreateGroupInput{
		IdentityStoreId: aws.String(c.StoreID),
		DisplayName:     aws.String(g.DisplayName),
		Description:     aws.String(g.Description),
	})
	if err != nil {
		return "", translateError(err, "Failed to create group %s", g.DisplayName)
	}
	return aws.ToString(out.GroupId), nil
}

// Add a user to a group, returning the membership ID
func (c *IdentityStoreClient) CreateGroupMembership(ctx context.Context, groupID, userID string) (string, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "CreateGroupMembership")
	defer span.End()

	log.Debugf("adding user %s to group %s", userID, groupID)

	out, err := c.api.CreateGroupMembership(ctx, &identitystore.CreateGroupMembershipInput{
		IdentityStoreId: aws.String(c.StoreID),
		GroupId:         aws.String(groupID),
		MemberId:        userMember(userID),
	})
	if err != nil {
		return "", translateError(err, "Failed to add user %s to group %s", userID, groupID)
	}
	return aws.ToString(out.MembershipId), nil
}

func (c *IdentityStoreClient) GetGroupMembershipID(ctx context.Context, groupID, userID string) (string, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "GetGroupMembershipID")
	defer span.End()

	out, err := c.api.GetGroupMembershipId(ctx, &identitystore.GetGroupMembershipIdInput{
		IdentityStoreId: aws.String(c.StoreID),
		GroupId:         aws.String(groupID),
		MemberId:        userMember(userID),
	})
	if err != nil {
		return "", translateError(err, "Failed to look up membership of user %s in group %s", userID, groupID)
	}
	return aws.ToString(out.MembershipId), nil
}

func (c *IdentityStoreClient) DeleteGroupMembership(ctx context.Context, membershipID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "DeleteGroupMembership")
	defer span.End()

	_, err := c.api.DeleteGroupMembership(ctx, &identitystore.DeleteGroupMembershipInput{
		IdentityStoreId: aws.String(c.StoreID),
		MembershipId:    aws.String(membershipID),
	})
	if err != nil {
		return translateError(err, "Failed to delete membership %s", membershipID)
	}
	return nil
}

// Delete Group
func (c *IdentityStoreClient) DeleteGroup(ctx context.Context, groupID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "DeleteGroup")
	defer span.End()

	log.Debugf("deleting group %s", groupID)

	_, err := c.api.DeleteGroup(ctx, &identitystore.DeleteGroupInput{
		IdentityStoreId: aws.String(c.StoreID),
		GroupId:         aws.String(groupID),
	})
	if err != nil {
		return translateError(err, "Failed to delete group %s", groupID)
	}
	return nil
}

// Delete User
func (c *IdentityStoreClient) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "DeleteUser")
	defer span.End()

	log.Debugf("deleting user %s", userID)

	_, err := c.api.DeleteUser(ctx, &identitystore.DeleteUserInput{
		IdentityStoreId: aws.String(c.StoreID),
		UserId:          aws.String(userID),
	})
	if err != nil {
		return translateError(err, "Failed to delete user %s", userID)
	}
	return nil
}

// List the first page of a group's memberships
func (c *IdentityStoreClient) ListGroupMemberships(ctx context.Context, groupID string) ([]Membership, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "ListGroupMemberships")
	defer span.End()

	out, err := c.api.ListGroupMemberships(ctx, &identitystore.ListGroupMembershipsInput{
		IdentityStoreId: aws.String(c.StoreID),
		GroupId:         aws.String(groupID),
		MaxResults:      aws.Int32(MaxResults),
	})
	if err != nil {
		return nil, translateError(err, "Failed to list memberships of group %s", groupID)
	}
	return toMemberships(out.GroupMemberships), nil
}

// List the first page of a user's memberships
func (c *IdentityStoreClient) ListGroupMembershipsForMember(ctx context.Context, userID string) ([]Membership, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "ListGroupMembershipsForMember")
	defer span.End()

	out, err := c.api.ListGroupMembershipsForMember(ctx, &identitystore.ListGroupMembershipsForMemberInput{
		IdentityStoreId: aws.String(c.StoreID),
		MemberId:        userMember(userID),
		MaxResults:      aws.Int32(MaxResults),
	})
	if err != nil {
		return nil, translateError(err, "Failed to list memberships of user %s", userID)
	}
	return toMemberships(out.GroupMemberships), nil
}

// List the first page of groups in the store
func (c *IdentityStoreClient) ListGroups(ctx context.Context) ([]Group, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "ListGroups")
	defer span.End()

	out, err := c.api.ListGroups(ctx, &identitystore.ListGroupsInput{
		IdentityStoreId: aws.String(c.StoreID),
		MaxResults:      aws.Int32(MaxResults),
	})
	if err != nil {
		return nil, translateError(err, "Failed to list groups")
	}

	gs := make([]Group, 0, len(out.Groups))
	for _, g := range out.Groups {
		gs = append(gs, Group{
			ID:          aws.ToString(g.GroupId),
			DisplayName: aws.ToString(g.DisplayName),
			Description: aws.ToString(g.Description),
		})
	}
	return gs, nil
}

func (c *IdentityStoreClient) DescribeUser(ctx context.Context, userID string) (User, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "DescribeUser")
	defer span.End()

	var u User

	out, err := c.api.DescribeUser(ctx, &identitystore.DescribeUserInput{
		IdentityStoreId: aws.String(c.StoreID),
		UserId:          aws.String(userID),
	})
	if err != nil {
		return u, translateError(err, "Failed to describe user %s", userID)
	}

	u = User{
		ID:          aws.ToString(out.UserId),
		UserName:    aws.ToString(out.UserName),
		DisplayName: aws.ToString(out.DisplayName),
	}
	if out.Name != nil {
		u.GivenName = aws.ToString(out.Name.GivenName)
		u.FamilyName = aws.ToString(out.Name.FamilyName)
	}
	return u, nil
}

func (c *IdentityStoreClient) DescribeGroup(ctx context.Context, groupID string) (Group, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "DescribeGroup")
	defer span.End()

	var g Group

	out, err := c.api.DescribeGroup(ctx, &identitystore.DescribeGroupInput{
		IdentityStoreId: aws.String(c.StoreID),
		GroupId:         aws.String(groupID),
	})
	if err != nil {
		return g, translateError(err, "Failed to describe group %s", groupID)
	}

	g = Group{
		ID:          aws.ToString(out.GroupId),
		DisplayName: aws.ToString(out.DisplayName),
		Description: aws.ToString(out.Description),
	}
	return g, nil
}
