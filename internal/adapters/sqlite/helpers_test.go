package sqlite

import (
	"modelrepo/internal/oplog"
	"modelrepo/internal/repository"
)

func bypassRename(repo *repository.Repository, id, name string) (*oplog.Operation, error) {
	b := oplog.NewBuilder(repo.Registry(), nil)
	if err := b.Begin("rename quietly", true); err != nil {
		return nil, err
	}
	if err := b.FieldAssign(repo.Get(id), "name", name); err != nil {
		return nil, err
	}
	op := b.End()
	return op, repo.DoOperation(op)
}
