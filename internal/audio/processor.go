package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/himanishpuri/audiomatch/pkg/utils"
)

// DefaultTempDir holds ffmpeg output when no directory is configured.
var DefaultTempDir = os.TempDir()

type ConvertWAVConfig struct {
	SampleRate int // 0 keeps the input rate
}

// ConvertToMonoWAV transcodes any ffmpeg-readable file into a mono 16-bit
// PCM WAV inside outputDir. The output name is unique per call so two
// conversions of the same input can run side by side.
func ConvertToMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
	}

	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("input file: %w", err)
	}
	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s-%s.wav", stem, uuid.NewString()))
	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	args := []string{"-y", "-v", "quiet", "-i", inputPath, "-ac", "1"}
	if cfg.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(cfg.SampleRate))
	}
	args = append(args, "-c:a", "pcm_s16le", tmpPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

// tempFileSource deletes its transcoded backing file on Close.
type tempFileSource struct {
	*wavSource
	path string
}

func (t *tempFileSource) Close() error {
	err := t.wavSource.Close()
	if rmErr := utils.DeleteFile(t.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = resourceErr("removing", t.path, rmErr)
	}
	return err
}

func removeQuietly(path string) {
	_ = utils.DeleteFile(path)
}
