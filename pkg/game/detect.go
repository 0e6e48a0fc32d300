package game

import (
	"fmt"
	"path/filepath"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/registry"
	"github.com/hansbonini/reevengitools/pkg/rofs"
)

// RE3 PC data lives in rofs1.dat to rofs15.dat; the demo ships without
// rofs2.dat.
const (
	re3RofsName    = "rofs%d.dat"
	re3RofsCount   = 15
	re3RofsDemoGap = 2
)

// re1DualShockUSA marks the US Dual Shock PSX release.
const re1DualShockUSA = "slus_007.47"

// DetectRE1Country returns the first country directory holding
// data/capcom.ptc, or the default. The US Dual Shock release overrides it.
func DetectRE1Country(reg *registry.Registry) string {
	country := RE1Countries[len(RE1Countries)-1]
	for _, c := range RE1Countries {
		if reg.HasFile(fmt.Sprintf("%s/data/capcom.ptc", c)) {
			country = c
			break
		}
	}
	if reg.HasFile(re1DualShockUSA) {
		country = "usa"
	}
	common.LogInfo(common.InfoCountryDetected, country)
	return country
}

// DetectRE3Country returns the country letter of an RE3 PC data set.
func DetectRE3Country(reg *registry.Registry) string {
	country := RE3CountryUS
	if reg.HasFile("data_e/etc2/died00e.tim") {
		country = RE3CountryEurope
	}
	if reg.HasFile("data_f/etc2/died00f.tim") {
		country = RE3CountryFrance
	}
	common.LogInfo(common.InfoCountryDetected, string(country))
	return string(country)
}

// MountRE3Archives adds every rofs<n>.dat found in dir to reg and reports
// whether the data set is the demo.
func MountRE3Archives(reg *registry.Registry, dir string, opts ...rofs.Option) (demo bool, err error) {
	for i := 1; i <= re3RofsCount; i++ {
		name := fmt.Sprintf(re3RofsName, i)
		src, err := registry.OpenRofs(filepath.Join(dir, name), opts...)
		if err != nil {
			common.LogDebug(common.DebugMountSkipped, name, err)
			if i == re3RofsDemoGap {
				demo = true
				common.LogInfo(common.InfoDemoDetected, name)
			}
			continue
		}
		if err := reg.Add(name, src, 0); err != nil {
			src.Close()
			return demo, err
		}
		common.LogInfo(common.InfoSourceMounted, name, len(src.List()))
	}
	return demo, nil
}
