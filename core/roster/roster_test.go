package roster

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/minesched/core/factory"
	"github.com/kilianp07/minesched/core/model"
)

const sampleYAML = `sites:
  - site_id: S1
    site_name: North drive
    priority: 1
    active: true
    total_plan_meters: 40
    current_task: CHARGE
    firings: 2
  - site_id: S2
    priority: 2
    active: false
tasks:
  - task_id: DRILL
    task_type: activity
    uom: meters
    rate: 20
    order: 1
    limit: 2
  - task_id: CHARGE
    task_type: task
    duration_minutes: 90
    order: 2
uoms:
  - name: meters
constants:
  - keyword: DENSITY
    value: 2.7
    active: true
  - keyword: WIDTH
    value: 5
    active: false
shifts:
  - code: DAY
    start: "06:00"
    end: "18:00"
    changeover_minutes: 30
    active: true
  - code: NIGHT
    start: "18:00"
    end: "06:00"
    changeover_minutes: 30
    active: false
delay_codes:
  - code: BREAK
    category: Operational
    color: "#00ff00"
    active: true
`

func TestDecodeRosterYAML(t *testing.T) {
	r, err := DecodeRoster(strings.NewReader(sampleYAML), "yaml")
	require.NoError(t, err)
	require.Len(t, r.Sites, 2)
	assert.Equal(t, "North drive", r.Sites[0].Name)
	assert.Equal(t, 2, r.Sites[0].Firings)
	assert.Equal(t, model.TaskActivity, r.Tasks[0].Type)
	assert.Equal(t, model.TaskFixed, r.Tasks[1].Type)
	assert.Equal(t, 90.0, r.Tasks[1].DurationMinutes)
	assert.NoError(t, r.Validate())
}

func TestDecodeRosterJSON(t *testing.T) {
	in := `{"sites":[{"siteId":"S1","priority":1,"isActive":true}],"tasks":[{"taskId":"A","taskType":"fixed","taskDuration":60,"limits":3}]}`
	r, err := DecodeRoster(strings.NewReader(in), "json")
	require.NoError(t, err)
	assert.Equal(t, "S1", r.Sites[0].ID)
	assert.Equal(t, 3, r.Tasks[0].Limit)

	_, err = DecodeRoster(strings.NewReader(in), "toml")
	assert.Error(t, err)
}

func TestRosterActiveAndInput(t *testing.T) {
	r, err := DecodeRoster(strings.NewReader(sampleYAML), "yaml")
	require.NoError(t, err)

	a := r.Active()
	assert.Len(t, a.Shifts, 1)
	assert.Len(t, a.Constants, 1)
	assert.Len(t, a.DelayCodes, 1)
	assert.Len(t, a.Sites, 2, "inactive sites stay in the roster")

	consts := r.ConstantMap()
	_, hasWidth := consts.Get(model.ConstWidth)
	assert.False(t, hasWidth)
	v, ok := consts.Get(model.ConstDensity)
	assert.True(t, ok)
	assert.Equal(t, 2.7, v)

	in := r.Input()
	assert.Len(t, in.Shifts, 1)
	assert.Equal(t, "DAY", in.Shifts[0].Code)

	total, active, tasks := r.Counts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, active)
	assert.Equal(t, 2, tasks)
}

func TestRosterValidate(t *testing.T) {
	r := Roster{
		Sites: []model.Site{
			{ID: "S1", Priority: 1},
			{ID: "S1", Priority: 0, Firings: -1, TaskLimit: 11},
		},
		Tasks: []model.Task{
			{ID: "A", Limit: 12},
			{ID: "", Rate: -1},
		},
		Shifts: []model.Shift{{Code: "X", Start: "25:00"}},
	}
	err := r.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"duplicate id", "priority 0", "negative firings", "task limit 11", "limit 12", "empty id", "negative duration", "shift X"} {
		assert.Contains(t, msg, want)
	}
}

func TestFileReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	reader, err := NewReader(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	r, err := reader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.Tasks, 2)

	_, err = NewFileReader(filepath.Join(dir, "missing.yaml")).Load(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reader.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticReader(t *testing.T) {
	s := Static{Sites: []model.Site{{ID: "S1"}}}
	r, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "S1", r.Sites[0].ID)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "yaml", FormatFromPath("a/b.YML"))
	assert.Equal(t, "json", FormatFromPath("x.json"))
	assert.Equal(t, "toml", FormatFromPath("x.toml"))
}
