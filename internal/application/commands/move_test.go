package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
)

func TestMoveCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		destID  string
		wantErr bool
		errMsg  string
	}{
		{name: "valid", id: "order", destID: "billing"},
		{name: "empty id", id: "", destID: "billing", wantErr: true, errMsg: "id: ID is required"},
		{name: "empty destination", id: "order", destID: "", wantErr: true, errMsg: "destinationID: destination ID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMoveCommand(nil, tt.id, tt.destID).Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMoveCommand_SameField(t *testing.T) {
	repo := shop(t)
	before := repo.Serialize()

	result, err := NewMoveCommand(repo, "customer", "billing").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m", result.OldParentID)
	assert.Equal(t, "ownedElements", result.Field)
	assert.Same(t, repo.Get("billing"), repo.Get("customer").Parent())
	assert.Equal(t, 1, repo.RefCount("customer", "billing"))
	assert.Zero(t, repo.RefCount("customer", "m"))
	assert.Equal(t, 1, repo.RefCount("customer", "g"), "references survive a move")
	assert.Empty(t, repo.Verify())

	undo(t, repo)
	assert.Equal(t, before, repo.Serialize())
}

func TestMoveCommand_AcrossFields(t *testing.T) {
	repo := shop(t)

	result, err := NewMoveCommand(repo, "total", "billing").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ownedElements", result.Field)
	assert.Empty(t, repo.Get("order").(*domain.Class).Attributes)
	assert.Same(t, repo.Get("billing"), repo.Get("total").Parent())
	assert.Empty(t, repo.Verify())

	result, err = NewMoveCommand(repo, "total", "customer").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "attributes", result.Field)
	assert.Len(t, repo.Get("customer").(*domain.Class).Attributes, 1)
	assert.Empty(t, repo.Verify())
}

func TestMoveCommand_Rejected(t *testing.T) {
	repo := shop(t)

	tests := []struct {
		name   string
		id     string
		destID string
	}{
		{name: "project root", id: "p", destID: "m"},
		{name: "into itself", id: "m", destID: "m"},
		{name: "into a descendant", id: "m", destID: "order"},
		{name: "already there", id: "order", destID: "m"},
		{name: "no field for it", id: "nv1", destID: "billing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMoveCommand(repo, tt.id, tt.destID).Execute(context.Background())
			var me *application.MoveError
			require.ErrorAs(t, err, &me)
			assert.ErrorIs(t, err, application.ErrInvalidOperation)
		})
	}
	assert.Zero(t, repo.UndoLen())
}

func TestReorderCommand(t *testing.T) {
	repo := shop(t)
	model := repo.Get("m").(*domain.Model)

	result, err := NewReorderCommand(repo, "billing", 0).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.From)
	assert.Equal(t, []string{"billing", "order", "customer", "g", "a", "d"}, ids(model.OwnedElements))

	_, err = NewReorderCommand(repo, "billing", 0).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.UndoLen(), "no-op reorder records nothing")

	_, err = NewReorderCommand(repo, "billing", 6).Execute(context.Background())
	var ve *application.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = NewReorderCommand(repo, "end1", 0).Execute(context.Background())
	assert.ErrorAs(t, err, &ve, "single-valued fields have no order")

	undo(t, repo)
	assert.Equal(t, []string{"order", "customer", "billing", "g", "a", "d"}, ids(model.OwnedElements))
}

func TestMoveTargets(t *testing.T) {
	repo := shop(t)

	assert.Equal(t, []string{"p", "customer", "billing", "g", "a", "end1", "end2", "d"}, ids(MoveTargets(repo, "order")),
		"every model element except the owner and the moved subtree")
	assert.Equal(t, []string{"nv2", "ev"}, ids(MoveTargets(repo, "nv1")))
	assert.Empty(t, MoveTargets(repo, "p"))
	assert.Empty(t, MoveTargets(repo, "missing"))

	for _, dest := range MoveTargets(repo, "order") {
		_, err := NewMoveCommand(repo, "order", dest.ID()).Execute(context.Background())
		require.NoError(t, err, "move to %s", dest.ID())
		undo(t, repo)
	}
}
