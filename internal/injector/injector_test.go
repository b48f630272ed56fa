package injector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/posekit/internal/config"
	"github.com/zeusync/posekit/internal/core/resource"
)

func TestInitializeServerLoadsFromDisk(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "mobs", "animations", "arm")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wave.yaml"), []byte("length: 4\nparts: {}\n"), 0o644))

	cfg := config.Default()
	cfg.LogLevel = "silent"
	cfg.Clips.Root = root

	srv := InitializeServer(cfg)
	require.NotNil(t, srv)
	require.NoError(t, <-srv.Loader().Reload(context.Background()))

	c, ok := srv.Loader().Clip(resource.MustParse("mobs:arm/wave"))
	require.True(t, ok)
	assert.Equal(t, float32(4), c.Length())
}
