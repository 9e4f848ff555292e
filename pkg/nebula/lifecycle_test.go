package nebula

import (
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLifecycle(seed uint64) (*Lifecycle, *Config) {
	cfg := DefaultConfig()
	cfg.FormsPerBlob = 30
	cfg.FormDepth = 1
	rng := rand.New(rand.NewPCG(seed, 99))
	placer := NewPlacer(cfg, geometry.NewNoise(int64(seed)))
	return NewLifecycle(cfg, rng, placer, NewPalette(cfg, rng), 0), cfg
}

func TestConfig_LifeAt(t *testing.T) {
	cfg := DefaultConfig()
	total := cfg.TotalLifeMs()
	tests := []struct {
		name      string
		since     float64
		phase     Phase
		cycle     int
		forms     int
		alphaLow  float64
		alphaHigh float64
	}{
		{"not yet spawned", -10, PhaseUnborn, -1, 0, 0, 0},
		{"spawn instant", 0, PhaseUnborn, -1, 0, 0, 0},
		{"half assembled", cfg.AssembleMs / 2, PhaseAssemble, 0, cfg.FormsPerBlob / 2, 0.49, 0.51},
		{"sustain", cfg.AssembleMs + 10, PhaseSustain, 0, cfg.FormsPerBlob, 1, 1},
		{"half faded", cfg.AssembleMs + cfg.SustainMs + cfg.FadeMs/2, PhaseFade, 0, cfg.FormsPerBlob / 2, 0.49, 0.51},
		{"second cycle", total + 1, PhaseAssemble, 1, 0, 0, 0.01},
		{"tenth cycle sustain", 9*total + cfg.AssembleMs + 1, PhaseSustain, 9, cfg.FormsPerBlob, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := cfg.LifeAt(tt.since)
			assert.Equal(t, tt.phase, st.Phase)
			assert.Equal(t, tt.cycle, st.Cycle)
			assert.Equal(t, tt.forms, st.TargetForms)
			assert.GreaterOrEqual(t, st.Alpha, tt.alphaLow)
			assert.LessOrEqual(t, st.Alpha, tt.alphaHigh)
		})
	}
}

func TestStepToward(t *testing.T) {
	tests := []struct {
		cur, target, step, want int
	}{
		{0, 150, 3, 3},
		{150, 0, 3, 147},
		{10, 12, 3, 12},
		{12, 10, 3, 10},
		{7, 7, 3, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StepToward(tt.cur, tt.target, tt.step))
	}
}

func TestLifecycle_VisibleCountPacing(t *testing.T) {
	l, cfg := newTestLifecycle(1)
	prev := make([]int, cfg.NumBlobs)

	check := func(now float64) {
		t.Helper()
		l.Update(now, false)
		for _, b := range l.Blobs() {
			if b.Slot == 0 && cfg.SnapFirstSlot && b.Life.Phase == PhaseAssemble {
				prev[b.Slot] = b.Visible
				continue
			}
			d := b.Visible - prev[b.Slot]
			require.LessOrEqualf(t, d, cfg.MaxFormStepPerFrame, "slot %d jumped up %d at %v", b.Slot, d, now)
			require.GreaterOrEqualf(t, d, -cfg.MaxFormStepPerFrame, "slot %d jumped down %d at %v", b.Slot, d, now)
			prev[b.Slot] = b.Visible
		}
	}

	// ramp up, sustain and ramp down at a steady 60 Hz
	now := 0.0
	for now < 2*cfg.TotalLifeMs() {
		now += 16.666
		check(now)
	}

	// step targets: a stall of several seconds moves the target abruptly
	for i := 0; i < 20; i++ {
		now += cfg.SustainMs / 3
		check(now)
	}
}

func TestLifecycle_StaggeredBirthAndRollover(t *testing.T) {
	l, cfg := newTestLifecycle(2)

	born := l.Update(1, false)
	require.Len(t, born, 1, "only slot 0 starts at t=0")
	assert.Equal(t, 0, born[0].Slot)
	assert.Equal(t, cfg.FormsPerBlob, born[0].Visible, "slot 0 snaps while assembling")
	assert.Equal(t, PhaseUnborn, l.Blobs()[1].Life.Phase)

	born = l.Update(cfg.SpawnIntervalMs+1, false)
	require.Len(t, born, 1)
	assert.Equal(t, 1, born[0].Slot)

	b := l.Blobs()[1]
	id, origin, radius := b.ID, b.Origin, b.Radius
	require.Len(t, b.Forms, cfg.FormsPerBlob)

	// mid life nothing frozen changes
	l.Update(cfg.SpawnIntervalMs+cfg.AssembleMs+100, false)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, origin, b.Origin)
	assert.Equal(t, radius, b.Radius)

	// the next cycle starts a new identity
	l.Update(cfg.SpawnIntervalMs+cfg.TotalLifeMs()+1, false)
	assert.Equal(t, 1, b.Cycle)
	assert.NotEqual(t, id, b.ID)
}

func TestLifecycle_FreezeHoldsLifeTime(t *testing.T) {
	l, cfg := newTestLifecycle(3)
	l.Update(cfg.AssembleMs/2, false)
	b := l.Blobs()[0]

	l.Update(cfg.AssembleMs/2+500, true)
	before := b.Life.LifeTime
	l.Update(cfg.AssembleMs/2+2500, true)
	assert.Equal(t, before, b.Life.LifeTime, "life time is frozen during a transition")
	assert.Equal(t, PhaseUnborn, l.Blobs()[1].Life.Phase, "nothing is born while frozen")

	l.Update(cfg.AssembleMs/2+2600, false)
	assert.Equal(t, before, b.Life.LifeTime, "life resumes where it stopped")
	assert.Equal(t, cfg.AssembleMs/2+2600-before, b.SpawnTime)
	l.Update(cfg.AssembleMs/2+2700, false)
	assert.InDelta(t, before+100, b.Life.LifeTime, 1e-9)
}

func TestLifecycle_SpawnPreemptsFadingSlot(t *testing.T) {
	l, cfg := newTestLifecycle(4)
	// slot 0 is deep in its fade, all others are younger
	now := cfg.TotalLifeMs() - cfg.FadeMs/4
	l.Update(now, false)
	require.Greater(t, l.cfg.LifeAt(now).Progress, 0.8)
	assert.Equal(t, 0, l.PickPreemptSlot(now))

	b := l.Spawn(geometry.Vector2D{X: 10, Y: -20}, now)
	assert.Equal(t, 0, b.Slot)
	assert.True(t, b.Manual)
	assert.Equal(t, 0, b.Cycle)
	assert.Equal(t, now, b.SpawnTime)
	assert.Equal(t, geometry.Vector2D{X: 10, Y: -20}, b.Pos)
	minSide := min(cfg.Width, cfg.Height)
	assert.GreaterOrEqual(t, b.Radius, cfg.ManualRadiusMin*minSide)
	assert.LessOrEqual(t, b.Radius, cfg.ManualRadiusMax*minSide)

	// the manual blob assembles from its own anchor
	l.Update(now+cfg.AssembleMs/2, false)
	assert.Equal(t, PhaseAssemble, b.Life.Phase)
	assert.Equal(t, 0, b.Life.Cycle)
}

func TestLifecycle_SpawnRestartsFormCount(t *testing.T) {
	l, cfg := newTestLifecycle(8)
	cfg.SnapFirstSlot = false
	now := 0.0
	for ; now < 15000; now += 16 {
		l.Update(now, false)
	}
	b := l.Blobs()[0]
	require.Equal(t, PhaseSustain, b.Life.Phase)
	require.Equal(t, cfg.FormsPerBlob, b.Visible)

	require.Same(t, b, l.Spawn(geometry.Vector2D{}, now))
	assert.Equal(t, 0, b.Visible)
	prev := b.Visible
	for end := now + cfg.AssembleMs + 500; now < end; now += 16 {
		l.Update(now, false)
		d := b.Visible - prev
		require.GreaterOrEqual(t, d, 0)
		require.LessOrEqual(t, d, cfg.MaxFormStepPerFrame)
		prev = b.Visible
	}
	assert.Equal(t, cfg.FormsPerBlob, b.Visible)
}

func TestLifecycle_PreemptUsesFrozenProgress(t *testing.T) {
	l, cfg := newTestLifecycle(9)
	l.Update(20000, false)
	l.Update(20000, true)
	l.Update(24000, true)

	// unfrozen, slot 0 would be in its second cycle and slot 1 fading
	require.Greater(t, cfg.LifeAt(24000-l.Blobs()[1].SpawnTime).Progress, 0.8)
	require.Less(t, cfg.LifeAt(24000-l.Blobs()[0].SpawnTime).Progress, 0.1)
	assert.Equal(t, 0, l.PickPreemptSlot(24000), "slot 0 is still fading inside the freeze")
}

func TestLifecycle_PreemptFallsBackToHighestProgress(t *testing.T) {
	l, cfg := newTestLifecycle(5)
	// nobody past 80%: slot 0 is the oldest
	now := cfg.SpawnIntervalMs * 2.5
	assert.Equal(t, 0, l.PickPreemptSlot(now))

	l.Reset(0)
	assert.Equal(t, 0, l.PickPreemptSlot(-1), "with no live slot the first one is reused")
}

func TestLifecycle_ResetClearsHistory(t *testing.T) {
	l, cfg := newTestLifecycle(6)
	l.Update(cfg.SpawnIntervalMs*3+1, false)
	require.NotEmpty(t, l.palette.Recent())

	l.Reset(50000)
	assert.Empty(t, l.palette.Recent())
	for i, b := range l.Blobs() {
		assert.False(t, b.Alive())
		assert.Equal(t, 50000+float64(i)*cfg.SpawnIntervalMs, b.SpawnTime)
	}
}

func BenchmarkLifecycle_Update(b *testing.B) {
	l, _ := newTestLifecycle(7)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Update(float64(i)*16.666, false)
	}
}
