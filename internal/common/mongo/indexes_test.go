package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexDefinitionsEnforceUniqueKeys(t *testing.T) {
	unique := map[string]bool{}
	for _, idx := range IndexDefinitions() {
		if idx.Unique() {
			unique[idx.Collection+"."+idx.Keys[0].Key] = true
		}
	}

	for _, key := range []string{
		"features.catalogKey",
		"roles.name",
		"permission_grants.roleId",
		"users.email",
		"enterprises.tenantKey",
	} {
		assert.True(t, unique[key], "expected a unique index on %s", key)
	}
}
