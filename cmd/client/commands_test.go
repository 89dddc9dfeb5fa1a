package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/internal/client/app"
	"github.com/iudanet/itemsync/internal/client/cli"
	"github.com/iudanet/itemsync/internal/client/iocli"
	"github.com/iudanet/itemsync/internal/models"
)

func TestRootCmd_Tree(t *testing.T) {
	root, _ := newRootCmd()

	for _, path := range [][]string{
		{"login"}, {"logout"}, {"status"}, {"sync"}, {"queue"}, {"watch"}, {"version"},
		{"items", "list"}, {"items", "get"}, {"items", "add"}, {"items", "edit"}, {"items", "qty"},
		{"items", "restock"}, {"items", "rm"}, {"items", "ack"},
		{"notifications"}, {"notifications", "read"}, {"notifications", "read-all"}, {"notifications", "dismiss"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRootCmd_VersionDoesNotOpenDatabase(t *testing.T) {
	root, e := newRootCmd()
	root.SetArgs([]string{"version"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Nil(t, e.app)
}

func TestRootCmd_OpensAndClosesApp(t *testing.T) {
	dir := t.TempDir()
	root, e := newRootCmd()
	root.SetArgs([]string{
		"queue",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db", filepath.Join(dir, "client.db"),
		"--server", "http://127.0.0.1:1",
	})

	require.NoError(t, root.ExecuteContext(context.Background()))
	require.NotNil(t, e.app)
	assert.Equal(t, "http://127.0.0.1:1", e.cfg.Server.URL)
	require.NoError(t, e.close())
	assert.Nil(t, e.app)
}

func newShellEnv(backend *cli.BackendMock) (*env, *strings.Builder) {
	var out strings.Builder
	return &env{cli: cli.New(iocli.NewStreams(strings.NewReader(""), &out), backend)}, &out
}

func TestShellExec_Notifications(t *testing.T) {
	backend := &cli.BackendMock{
		MarkAllNotificationsReadFunc: func() {},
		MarkNotificationReadFunc:     func(id string) bool { return true },
		DismissNotificationFunc:      func(id string) bool { return id == "n1" },
	}
	e, out := newShellEnv(backend)
	exec := shellExec(e)
	ctx := context.Background()

	require.NoError(t, exec(ctx, []string{"notifications", "read-all"}))
	require.NoError(t, exec(ctx, []string{"notifications", "read", "n2"}))
	require.NoError(t, exec(ctx, []string{"notifications", "dismiss", "n1"}))
	require.Error(t, exec(ctx, []string{"notifications", "dismiss", "n9"}))

	assert.Len(t, backend.MarkAllNotificationsReadCalls(), 1)
	require.Len(t, backend.MarkNotificationReadCalls(), 1)
	assert.Equal(t, "n2", backend.MarkNotificationReadCalls()[0].ID)
	assert.Len(t, backend.DismissNotificationCalls(), 2)
	assert.Contains(t, out.String(), "✓ Notification n1 dismissed")
}

func TestShellExec_ItemCommands(t *testing.T) {
	backend := &cli.BackendMock{
		ItemLockFunc: func(ctx context.Context, id string) (string, bool) { return "bob", id == "7" },
		SetQuantityFunc: func(ctx context.Context, id string, quantity int, reason string) (*app.MutationResult, error) {
			return &app.MutationResult{Item: &models.Item{ID: id}}, nil
		},
		UpdateItemFunc: func(ctx context.Context, id string, draft models.ItemDraft) (*app.MutationResult, error) {
			return &app.MutationResult{Item: &models.Item{ID: id}}, nil
		},
	}
	e, _ := newShellEnv(backend)
	exec := shellExec(e)
	ctx := context.Background()

	err := exec(ctx, []string{"items", "qty", "7", "3"})
	require.ErrorIs(t, err, cli.ErrItemLocked)
	assert.Empty(t, backend.SetQuantityCalls())

	// флаги не переносятся между строками
	require.NoError(t, exec(ctx, []string{"items", "qty", "7", "3", "--force", "-r", "recount"}))
	require.ErrorIs(t, exec(ctx, []string{"items", "qty", "7", "4"}), cli.ErrItemLocked)
	require.Len(t, backend.SetQuantityCalls(), 1)
	assert.Equal(t, "recount", backend.SetQuantityCalls()[0].Reason)

	require.NoError(t, exec(ctx, []string{"items", "edit", "8", "--location", "B2"}))
	calls := backend.UpdateItemCalls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Draft.Location)
	assert.Equal(t, "B2", *calls[0].Draft.Location)
	assert.Nil(t, calls[0].Draft.Name)

	err = exec(ctx, []string{"items", "edit", "8"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	assert.Error(t, exec(ctx, []string{"items", "restock", "-1", "8"}))
}

func TestShellExec_QueueKind(t *testing.T) {
	backend := &cli.BackendMock{
		QueuedActionsFunc: func(ctx context.Context, kind models.ActionKind) ([]*models.QueuedAction, error) {
			return nil, nil
		},
	}
	e, _ := newShellEnv(backend)
	exec := shellExec(e)
	ctx := context.Background()

	require.NoError(t, exec(ctx, []string{"queue", "--kind", "delete"}))
	require.NoError(t, exec(ctx, []string{"queue"}))
	assert.Error(t, exec(ctx, []string{"queue", "--kind", "rename"}))

	calls := backend.QueuedActionsCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, models.ActionDelete, calls[0].Kind)
	assert.Equal(t, models.ActionKind(""), calls[1].Kind)
}

func TestShellExec_RejectsSessionCommands(t *testing.T) {
	e, _ := newShellEnv(&cli.BackendMock{})
	err := shellExec(e)(context.Background(), []string{"login"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
