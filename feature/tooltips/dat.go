package tooltips

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// datBuildScript regenerates the compiled text archives from the .txt
// tables. It ships with the mod's Text directory.
const datBuildScript = "alphabetize-and-build.bat"

// RebuildDAT runs the text archive build script in the Text directory.
// A missing directory or script skips the build; a failing build is a
// warning, never an error, since the text edits themselves already
// landed.
func (u *Updater) RebuildDAT(ctx context.Context) {
	if _, err := os.Stat(u.textDir); err != nil {
		u.logger.Info("text directory not found, skipping DAT build")
		return
	}
	script := filepath.Join(u.textDir, datBuildScript)
	if _, err := os.Stat(script); err != nil {
		u.logger.Info("DAT build script not found, skipping", zap.String("script", datBuildScript))
		return
	}

	u.logger.Info("rebuilding text archives")
	cmd := exec.CommandContext(ctx, "cmd", "/c", datBuildScript)
	cmd.Dir = u.textDir
	if err := cmd.Run(); err != nil {
		u.logger.Warn("DAT build failed", zap.Error(err))
		return
	}
	u.logger.Info("DAT build finished")
}
