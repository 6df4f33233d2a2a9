package apify

import (
	"igprofile/pkg/config"
	"igprofile/pkg/models"
	"igprofile/pkg/normalize"
)

// JobSpecFor builds the actor input for one profile.
func JobSpecFor(username string, cfg config.ApifyConfig) models.ScrapeJobSpec {
	groups := make([]string, len(cfg.ProxyGroups))
	copy(groups, cfg.ProxyGroups)

	return models.ScrapeJobSpec{
		DirectURLs:    []string{normalize.ProfileURL(username)},
		ResultsType:   "posts",
		ResultsLimit:  cfg.ResultsLimit,
		AddParentData: true,
		SearchType:    "user",
		SearchLimit:   1,
		Proxy: models.ProxyConfig{
			UseApifyProxy:    true,
			ApifyProxyGroups: groups,
		},
		MaxRequestRetries: cfg.MaxRequestRetries,
		MaxConcurrency:    cfg.MaxConcurrency,
	}
}
