package crawler

import (
	"sort"
	"strings"

	"sjsage522/vesselschedule/config"
	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/logger"
)

// DepsFromConfig builds the shared adapter dependencies from configuration
func DepsFromConfig(cfg *config.Config) Deps {
	return Deps{
		Launcher:    browser.NewRodLauncher(),
		Fetch:       helpers.FetchWithHeaders,
		Diagnostics: helpers.NewDiagnostics(cfg.DiagnosticsDir),
		Browser: browser.Options{
			Headless:       cfg.Headless,
			NoSandbox:      cfg.NoSandbox,
			ViewportWidth:  cfg.ViewportWidth,
			ViewportHeight: cfg.ViewportHeight,
			UserAgent:      cfg.UserAgent,
			Bin:            cfg.BrowserBin,
			Proxy:          cfg.BrowserProxy,
			Evasion:        browser.PolicyFor(cfg.EvasionEnabled, cfg.JitterMin, cfg.JitterMax),
		},
		NavigationTimeout: cfg.NavigationTimeout,
		WaitTimeout:       cfg.WaitTimeout,
		BulkDelay:         cfg.BulkDelay,
		PageCap:           cfg.PageCap,
		XMLRetention:      cfg.XMLRetention,
	}
}

// CreateAdapters creates every terminal adapter, sorted by name
func CreateAdapters(cfg *config.Config, deps Deps) []Adapter {
	adapters := []Adapter{
		NewLCIT(cfg.LCITURL, deps),
		NewESCO(cfg.ESCOURL, deps),
		NewLCB1(cfg.LCB1URL, deps),
		NewTIPS(cfg.TIPSURL, deps),
		NewKerry(cfg.KerryURL, deps),
		NewHutchison(cfg.HutchisonURL, deps),
		NewPAT(cfg.PATURL, deps),
		NewJWD(cfg.JWDURL, deps),
		NewSCT(cfg.SCTURL, deps),
		NewUnithai(cfg.UnithaiURL, deps),
	}
	sort.Slice(adapters, func(i, j int) bool { return adapters[i].Name() < adapters[j].Name() })

	logger.Debug("Created %d terminal adapters", len(adapters))
	return adapters
}

// Lookup finds an adapter by its CLI name, case-insensitively
func Lookup(adapters []Adapter, name string) (Adapter, bool) {
	for _, a := range adapters {
		if strings.EqualFold(a.Name(), strings.TrimSpace(name)) {
			return a, true
		}
	}
	return nil, false
}

// Names lists the adapter names in order
func Names(adapters []Adapter) []string {
	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = a.Name()
	}
	return names
}
