package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbxforge/pbxforge/pkg/config"
	"github.com/pbxforge/pbxforge/pkg/layers"
	"github.com/pbxforge/pbxforge/pkg/registry"
)

func testResolver(t *testing.T) *layers.Resolver {
	t.Helper()
	store := layers.NewStore(filepath.Join("testdata", "templates"), zap.NewNop())
	return layers.NewResolver(store, zap.NewNop())
}

func testReg(versions ...string) *registry.Registry {
	reg := &registry.Registry{}
	for _, v := range versions {
		reg.Builds = append(reg.Builds, registry.Build{
			Version: v,
			OSMatrix: []registry.OSEntry{
				{Distribution: "trixie", Architectures: []string{"amd64"}},
			},
		})
	}
	return reg
}

// memorySink collects resolved configs in memory.
type memorySink struct {
	mu      sync.Mutex
	configs map[string]*config.Config
	err     error
}

func (s *memorySink) Write(pair registry.Pair, cfg *config.Config) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configs == nil {
		s.configs = make(map[string]*config.Config)
	}
	s.configs[pair.Version+"/"+pair.Distribution] = cfg
	return nil
}

func TestRun(t *testing.T) {
	sink := &memorySink{}
	runner := NewRunner(testResolver(t), sink, Config{Workers: 3}, zap.NewNop())

	summary, err := runner.Run(context.Background(),
		testReg("20.11.2", "21.6.1", "22.6.0"))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, sink.configs, 3)

	cfg := sink.configs["22.6.0/trixie"]
	require.NotNil(t, cfg)
	assert.Equal(t, "22.6.0", cfg.Version)
	assert.Equal(t, "trixie", cfg.Base.Distribution)
}

func TestRun_FailureIsolation(t *testing.T) {
	sink := &memorySink{}
	runner := NewRunner(testResolver(t), sink, Config{Workers: 2}, zap.NewNop())

	summary, err := runner.Run(context.Background(),
		testReg("22.6.0", "not-a-version", "21.6.1"))
	require.NoError(t, err, "per-item failures do not fail the batch")

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "not-a-version", summary.Failures[0].Pair.Version)
	assert.Len(t, sink.configs, 2, "good items still land in the sink")
}

func TestRun_SinkError(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	runner := NewRunner(testResolver(t), sink, Config{}, zap.NewNop())

	summary, err := runner.Run(context.Background(), testReg("22.6.0"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(testResolver(t), &memorySink{}, Config{Workers: 1}, zap.NewNop())
	summary, err := runner.Run(ctx, testReg("20.11.2", "21.6.1", "22.6.0"))

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
	assert.NotNil(t, summary, "partial summary is still returned")
}

func TestRun_Counters(t *testing.T) {
	runner := NewRunner(testResolver(t), &memorySink{}, Config{}, zap.NewNop())
	_, err := runner.Run(context.Background(), testReg("22.6.0", "not-a-version"))
	require.NoError(t, err)

	counters := runner.Metrics()
	assert.Equal(t, int64(1), counters["succeeded"])
	assert.Equal(t, int64(1), counters["failed"])
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: filepath.Join(dir, "generated")}
	runner := NewRunner(testResolver(t), sink, Config{}, zap.NewNop())

	summary, err := runner.Run(context.Background(), testReg("22.6.0"))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	data, err := os.ReadFile(filepath.Join(dir, "generated", "asterisk-22.6.0-trixie.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 22.6.0")
	assert.Contains(t, string(data), "distribution: trixie")
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(testResolver(t), &memorySink{}, Config{Workers: -1}, nil)
	require.NotNil(t, runner)

	// Still functional with defaulted workers and logger.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = runner.Run(context.Background(), testReg("22.6.0"))
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("runner deadlocked with defaulted configuration")
	}
}
