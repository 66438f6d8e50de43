package types

// RewriteRules tunes the markup rewrite rules. Zero values are replaced by
// DefaultRewriteRules when loaded through the config package.
type RewriteRules struct {
	PreconnectLimit      int      `yaml:"preconnect_limit" toml:"preconnect_limit" json:"preconnectLimit"`
	DNSPrefetchLimit     int      `yaml:"dns_prefetch_limit" toml:"dns_prefetch_limit" json:"dnsPrefetchLimit"`
	AboveFoldImages      int      `yaml:"above_fold_images" toml:"above_fold_images" json:"aboveFoldImages"`
	TrackingMarkers      []string `yaml:"tracking_markers" toml:"tracking_markers" json:"trackingMarkers"`
	DeferredStyleMarkers []string `yaml:"deferred_style_markers" toml:"deferred_style_markers" json:"deferredStyleMarkers"`
	Attribution          string   `yaml:"attribution" toml:"attribution" json:"attribution"`
}

// DefaultRewriteRules returns the built-in rule tuning.
func DefaultRewriteRules() RewriteRules {
	return RewriteRules{
		PreconnectLimit:  5,
		DNSPrefetchLimit: 10,
		AboveFoldImages:  2,
		TrackingMarkers: []string{
			"googletagmanager",
			"google-analytics",
			"gtag",
			"analytics",
			"facebook.net",
			"fbevents",
			"hotjar",
			"clarity.ms",
			"doubleclick",
			"segment.com",
		},
		DeferredStyleMarkers: []string{
			"font",
			"icon",
			"awesome",
		},
		Attribution: "Optimized by Edge Optimizer",
	}
}

// WithDefaults fills unset fields from DefaultRewriteRules.
func (r RewriteRules) WithDefaults() RewriteRules {
	d := DefaultRewriteRules()
	if r.PreconnectLimit <= 0 {
		r.PreconnectLimit = d.PreconnectLimit
	}
	if r.DNSPrefetchLimit <= 0 {
		r.DNSPrefetchLimit = d.DNSPrefetchLimit
	}
	if r.DNSPrefetchLimit < r.PreconnectLimit {
		r.DNSPrefetchLimit = r.PreconnectLimit
	}
	if r.AboveFoldImages <= 0 {
		r.AboveFoldImages = d.AboveFoldImages
	}
	if r.TrackingMarkers == nil {
		r.TrackingMarkers = d.TrackingMarkers
	}
	if r.DeferredStyleMarkers == nil {
		r.DeferredStyleMarkers = d.DeferredStyleMarkers
	}
	if r.Attribution == "" {
		r.Attribution = d.Attribution
	}
	return r
}
