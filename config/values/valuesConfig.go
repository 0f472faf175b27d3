package values

// TrackerValues are process-wide defaults applied when the source omits a
// field. Loaded once at startup and read-only afterwards.
type TrackerValues struct {
	FallbackCurrency string            `yaml:"fallback_currency"`
	Synonyms         map[string]string `yaml:"synonyms"`
}

func (v TrackerValues) CurrencyOrDefault() string {
	if v.FallbackCurrency == "" {
		return "KRW"
	}
	return v.FallbackCurrency
}
