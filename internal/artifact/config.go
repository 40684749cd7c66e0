package artifact

import (
	"fmt"
	"strings"

	"github.com/stardustkit/cataloguer/internal/catalogue"
)

// deriveConfig templates the Stardust run configuration. The input paths
// point at the other artifacts of the bundle, the output paths hang off an
// outputs/<name>/ directory, and the remaining keys are static defaults
// Stardust expects. This document is templated from the catalogue identity,
// not derived from observation content.
func deriveConfig(c *catalogue.Catalogue, s Set) string {
	extraBandsFile := "None"
	extraBands := 0
	if s.HasExtraBands() {
		extraBandsFile = s.ExtraBandsPath()
		extraBands = 1
	}
	outDir := s.Dir + "outputs/" + s.Name + "/"

	var b strings.Builder
	section := func(title string) {
		b.WriteString("#===============================================================================\n")
		b.WriteString("#" + title + "\n")
		b.WriteString("#===============================================================================\n")
	}

	section("INPUT PARAMETERS")
	fmt.Fprintf(&b, "CATALOGUE   %s\n", s.TablePath())
	fmt.Fprintf(&b, "BANDS_FILE  %s\n", s.BandsPath())
	fmt.Fprintf(&b, "EXTRA_BANDS_FILE %s\n", extraBandsFile)
	fmt.Fprintf(&b, "PARAM_FILE  %s\n", s.ParamPath())

	section("OUTPUT PARAMETERS")
	fmt.Fprintf(&b, "PATH    %s\n", outDir)
	fmt.Fprintf(&b, "OUTPUT_NAME %s\n", s.Name)
	fmt.Fprintf(&b, "FIGLOC  %sfigures/\n", outDir)
	fmt.Fprintf(&b, "sedloc  %sseds/\n", outDir)
	b.WriteString("SAVE_FIGURE 1\n")
	b.WriteString("SAVE_TABLE 1\n")
	b.WriteString("SAVE_SED 1\n")
	b.WriteString("SAVE_COVAR 0\n")

	section("GENERAL SETTINGS")
	b.WriteString("VERBOSE 1\n")
	fmt.Fprintf(&b, "FLUX_UNIT   %s\n", c.Unit())
	fmt.Fprintf(&b, "EXTRA_BANDS %d\n", extraBands)
	b.WriteString("USE_COLD_DL 1\n")
	b.WriteString("RADIO_METHOD    delv20\n")

	section("ADVANCED SETTINGS")
	b.WriteString("UNCERT_SCALE 0.05\n")
	b.WriteString("QSO 0\n")
	b.WriteString("IGM_SWITCH 0\n")
	b.WriteString("USE_OWN_STELLAR_MASS False\n")
	b.WriteString("ABZP    23.9\n")

	section("TEMPLATE PARAMETERS")
	b.WriteString("FIT_DUST 1\n")
	b.WriteString("FIT_AGN 0\n")
	b.WriteString("FIT_STELLAR 1\n")
	b.WriteString("#===============================================================================\n")

	return b.String()
}
