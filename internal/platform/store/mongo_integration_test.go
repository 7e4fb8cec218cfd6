//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"go.venuehub.tech/internal/common/lock"
	commonmongo "go.venuehub.tech/internal/common/mongo"
	"go.venuehub.tech/internal/config"
	"go.venuehub.tech/internal/platform/common"
	enterpriseops "go.venuehub.tech/internal/platform/enterprise/operations"
	featureops "go.venuehub.tech/internal/platform/feature/operations"
	"go.venuehub.tech/internal/platform/notification"
	"go.venuehub.tech/internal/platform/permission"
	roleops "go.venuehub.tech/internal/platform/role/operations"
	"go.venuehub.tech/internal/platform/store"
	"go.venuehub.tech/internal/platform/store/storetest"
)

// setupMongo starts a single node replica set, since commits run in
// transactions, and returns a store over a fresh database.
func setupMongo(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration tests")
	}
	provider.Close()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(terminateCtx)
	})

	code, _, err := container.Exec(ctx, []string{"mongosh", "--quiet", "--eval",
		`rs.initiate({_id: "rs0", members: [{_id: 0, host: "localhost:27017"}]})`})
	require.NoError(t, err)
	require.Zero(t, code, "rs.initiate failed")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	cfg := config.MongoDBConfig{
		URI:      fmt.Sprintf("mongodb://%s:%s/?replicaSet=rs0&directConnection=true", host, port.Port()),
		Database: "venuehub_it",
	}

	// The node needs a moment to elect itself primary after rs.initiate.
	var client *commonmongo.Client
	require.Eventually(t, func() bool {
		client, err = commonmongo.Connect(ctx, cfg)
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	require.NoError(t, commonmongo.NewIndexInitializer(client.Database()).Initialize(ctx))
	return store.NewMongo(client.Raw(), client.Database())
}

func TestMongoStore_RoleLifecycle(t *testing.T) {
	st := setupMongo(t)
	ctx := context.Background()
	locker := lock.NewLocalLocker()
	execCtx := common.NewExecutionContext("it")

	ensure := featureops.NewEnsureFeatureUseCase(st.Features, st.UnitOfWork, locker)
	booking := ensure.Execute(ctx, featureops.EnsureFeatureCommand{Name: "Booking"}, execCtx)
	require.True(t, booking.IsSuccess(), "ensure: %v", booking.Error())
	again := ensure.Execute(ctx, featureops.EnsureFeatureCommand{Name: "booking"}, execCtx)
	require.True(t, again.IsSuccess())
	assert.Equal(t, booking.Value().ID, again.Value().ID)

	offers := ensure.Execute(ctx, featureops.EnsureFeatureCommand{Name: "offers"}, execCtx)
	require.True(t, offers.IsSuccess())
	bookingID, offersID := booking.Value().ID, offers.Value().ID

	created := roleops.NewCreateRoleUseCase(st.Roles, st.Features, st.UnitOfWork).Execute(ctx, roleops.CreateRoleCommand{
		Name:   "editor",
		Grants: []permission.FeatureGrant{storetest.Grant(bookingID, "rw"), storetest.Grant(offersID, "r")},
	}, execCtx)
	require.True(t, created.IsSuccess(), "create: %v", created.Error())
	editor := created.Value()

	duplicate := roleops.NewCreateRoleUseCase(st.Roles, st.Features, st.UnitOfWork).Execute(ctx, roleops.CreateRoleCommand{
		Name: "editor",
	}, execCtx)
	require.True(t, duplicate.IsFailure())
	assert.Equal(t, common.ErrorKindConflict, duplicate.Error().Kind)

	replaced := roleops.NewReplaceRoleGrantsUseCase(st.Roles, st.Features, st.UnitOfWork, locker).Execute(ctx, roleops.ReplaceRoleGrantsCommand{
		RoleID: editor.ID,
		Grants: []permission.FeatureGrant{storetest.Grant(offersID, "rwa")},
	}, execCtx)
	require.True(t, replaced.IsSuccess(), "replace: %v", replaced.Error())

	rows, err := st.Grants.FindByRoleID(ctx, editor.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, offersID, rows[0].FeatureID)
	assert.True(t, rows[0].Flags.Admin)

	stored, err := st.Roles.FindByID(ctx, editor.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{offersID}, stored.FeatureIDs)
}

func TestMongoStore_EnterpriseCascade(t *testing.T) {
	st := setupMongo(t)
	ctx := context.Background()
	locker := lock.NewLocalLocker()
	execCtx := common.NewExecutionContext("it")

	catalog := featureops.NewEnsureFeatureUseCase(st.Features, st.UnitOfWork, locker).
		Execute(ctx, featureops.EnsureFeatureCommand{Name: "catalog"}, execCtx)
	require.True(t, catalog.IsSuccess())

	provisioned := enterpriseops.NewCreateEnterpriseUseCase(
		st.Enterprises, st.Roles, st.Users, st.Features, st.UnitOfWork, locker,
		notification.Discard{}, enterpriseops.DefaultConfig(),
	).Execute(ctx, enterpriseops.CreateEnterpriseCommand{
		TenantName: "Acme Venues",
		AdminEmail: "owner@acme.test",
		Grants:     []permission.FeatureGrant{storetest.Grant(catalog.Value().ID, "rwa")},
	}, execCtx)
	require.True(t, provisioned.IsSuccess(), "provision: %v", provisioned.Error())
	ent := provisioned.Value().Enterprise

	conflict := enterpriseops.NewCreateEnterpriseUseCase(
		st.Enterprises, st.Roles, st.Users, st.Features, st.UnitOfWork, locker,
		notification.Discard{}, enterpriseops.DefaultConfig(),
	).Execute(ctx, enterpriseops.CreateEnterpriseCommand{
		TenantName: "ACME venues",
		AdminEmail: "other@acme.test",
	}, execCtx)
	require.True(t, conflict.IsFailure())
	assert.Equal(t, common.ErrorKindConflict, conflict.Error().Kind)

	deactivated := enterpriseops.NewSetEnterpriseActiveUseCase(st.Enterprises, st.Users, st.UnitOfWork, locker).
		Execute(ctx, enterpriseops.SetEnterpriseActiveCommand{EnterpriseID: ent.ID, Active: false}, execCtx)
	require.True(t, deactivated.IsSuccess(), "deactivate: %v", deactivated.Error())

	users, err := st.Users.FindByTenantID(ctx, ent.ID)
	require.NoError(t, err)
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.False(t, u.Active, "user %s still active after cascade", u.Email)
	}
}
