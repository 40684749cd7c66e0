package writer

import (
	"fmt"
	"os"

	"github.com/stardustkit/cataloguer/internal/artifact"
)

// WriteBundle writes the complete artifact set to the set's storage
// directory and returns the paths of all files written. Calling it again
// with an identical set produces byte-identical files.
func WriteBundle(s artifact.Set) ([]string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bundle directory: %w", err)
	}

	fits, err := encodeFITS(s.Table)
	if err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	if err := os.WriteFile(s.TablePath(), fits, 0o644); err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}
	written := []string{s.TablePath()}

	if err := writeLines(s.BandsPath(), s.Bands); err != nil {
		return nil, fmt.Errorf("write bands: %w", err)
	}
	written = append(written, s.BandsPath())

	if s.HasExtraBands() {
		if err := writeLines(s.ExtraBandsPath(), s.ExtraBands); err != nil {
			return nil, fmt.Errorf("write extra bands: %w", err)
		}
		written = append(written, s.ExtraBandsPath())
	} else if err := removeIfStale(s.ExtraBandsPath()); err != nil {
		return nil, fmt.Errorf("remove stale extra bands: %w", err)
	}

	if len(s.EazyBands) > 0 {
		if err := writeLines(s.EazyBandsPath(), s.EazyBands); err != nil {
			return nil, fmt.Errorf("write eazy bands: %w", err)
		}
		written = append(written, s.EazyBandsPath())
	} else if err := removeIfStale(s.EazyBandsPath()); err != nil {
		return nil, fmt.Errorf("remove stale eazy bands: %w", err)
	}

	if err := writeLines(s.ParamPath(), s.Param); err != nil {
		return nil, fmt.Errorf("write param: %w", err)
	}
	written = append(written, s.ParamPath())

	if err := os.WriteFile(s.ConfigPath(), []byte(s.Config), 0o644); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}
	written = append(written, s.ConfigPath())

	if err := writePreview(s); err != nil {
		return nil, fmt.Errorf("write preview: %w", err)
	}
	written = append(written, s.PreviewPath())

	return written, nil
}
