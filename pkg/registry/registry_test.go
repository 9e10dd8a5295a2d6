package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/registry"
)

func TestIsValidKind(t *testing.T) {
	valid := []models.EntityKind{
		models.EntityKindMeeting,
		models.EntityKindAudit,
		models.EntityKindProcess,
		models.EntityKindTraining,
		models.EntityKindFinding,
		models.EntityKindEvaluation,
	}
	for _, kind := range valid {
		assert.True(t, registry.IsValidKind(kind), "expected %s to be valid", kind)
	}

	invalid := []models.EntityKind{"", "invoice", "Meeting", "MEETING", "meeting "}
	for _, kind := range invalid {
		assert.False(t, registry.IsValidKind(kind), "expected %q to be invalid", kind)
	}
}

func TestTableFor(t *testing.T) {
	table, err := registry.TableFor(models.EntityKindAudit)
	require.NoError(t, err)
	assert.Equal(t, "audits", table)

	table, err = registry.TableFor(models.EntityKindProcess)
	require.NoError(t, err)
	assert.Equal(t, "processes", table)

	_, err = registry.TableFor(models.EntityKind("ledger"))
	require.Error(t, err)
}

func TestKinds(t *testing.T) {
	kinds := registry.Kinds()
	assert.Len(t, kinds, 6)
	for _, kind := range kinds {
		assert.True(t, registry.IsValidKind(kind))
	}
}
