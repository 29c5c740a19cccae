package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable(t *testing.T) {
	c := Available()
	assert.Subset(t, c.Roster, []string{"file", "sqlite"})
	assert.Subset(t, c.Snapshot, []string{"memory", "sqlite", "jsonl", "redis"})
	assert.Subset(t, c.Metrics, []string{"nop", "prometheus", "influx"})
}
