package metrics

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"

	"loadwatch/internal/logging"
)

// ResolvePhysicalCores queries the host CPU identification data and returns
// the number of physical cores: distinct physical package IDs multiplied by
// the cores-per-package of the first reported package. Hyperthreaded
// siblings are not counted. The result is always at least 1; a failure to
// read the underlying data is returned as an error (the caller cannot
// safely compute a threshold without it).
func ResolvePhysicalCores(logger *logging.Logger) (int, error) {
	infos, err := cpu.Info()
	if err != nil {
		return 0, fmt.Errorf("failed to read CPU info: %w", err)
	}

	cores := physicalCoresFromInfo(infos)

	logger.Debug("Resolved CPU topology", map[string]interface{}{
		"physical_cores": cores,
		"entries":        len(infos),
	})

	return cores, nil
}

// physicalCoresFromInfo computes the physical core count from raw CPU
// identification entries. Single-package systems that report no package ID
// count as one package; a missing cores-per-package value counts as one
// core. Never returns zero.
func physicalCoresFromInfo(infos []cpu.InfoStat) int {
	packages := make(map[string]struct{})
	for _, info := range infos {
		if info.PhysicalID != "" {
			packages[info.PhysicalID] = struct{}{}
		}
	}

	packageCount := len(packages)
	if packageCount == 0 {
		packageCount = 1
	}

	coresPerPackage := 0
	if len(infos) > 0 {
		coresPerPackage = int(infos[0].Cores)
	}
	if coresPerPackage <= 0 {
		coresPerPackage = 1
	}

	return packageCount * coresPerPackage
}
