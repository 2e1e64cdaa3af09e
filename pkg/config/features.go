package config

// Feature names accepted from callers. Unrecognized names are ignored;
// absent names default to true.
const (
	FeaturePostgreSQL = "postgresql"
	FeatureODBC       = "odbc"
	FeatureWebSocket  = "websocket"
	FeatureARI        = "ari"
	FeatureSRTP       = "srtp"
	FeatureHEP        = "hep"
)

// Features are the optional-capability switches feeding module selection.
// Every flag defaults to true; era rules may force individual flags
// regardless of the caller's value.
type Features struct {
	PostgreSQL bool `yaml:"postgresql" json:"postgresql"`
	ODBC       bool `yaml:"odbc" json:"odbc"`
	WebSocket  bool `yaml:"websocket" json:"websocket"`
	ARI        bool `yaml:"ari" json:"ari"`
	SRTP       bool `yaml:"srtp" json:"srtp"`
	HEP        bool `yaml:"hep" json:"hep"`
}

// DefaultFeatures returns the documented defaults: everything on.
func DefaultFeatures() Features {
	return Features{
		PostgreSQL: true,
		ODBC:       true,
		WebSocket:  true,
		ARI:        true,
		SRTP:       true,
		HEP:        true,
	}
}

// FeaturesFromMap builds Features from a name-to-bool mapping. Keys outside
// the fixed feature set are ignored, absent keys keep their defaults.
func FeaturesFromMap(m map[string]bool) Features {
	f := DefaultFeatures()
	f.Apply(m)
	return f
}

// Apply overlays the named flags onto f, ignoring unrecognized names.
func (f *Features) Apply(m map[string]bool) {
	for name, value := range m {
		switch name {
		case FeaturePostgreSQL:
			f.PostgreSQL = value
		case FeatureODBC:
			f.ODBC = value
		case FeatureWebSocket:
			f.WebSocket = value
		case FeatureARI:
			f.ARI = value
		case FeatureSRTP:
			f.SRTP = value
		case FeatureHEP:
			f.HEP = value
		}
	}
}

// Map returns the flags as a name-to-bool mapping.
func (f Features) Map() map[string]bool {
	return map[string]bool{
		FeaturePostgreSQL: f.PostgreSQL,
		FeatureODBC:       f.ODBC,
		FeatureWebSocket:  f.WebSocket,
		FeatureARI:        f.ARI,
		FeatureSRTP:       f.SRTP,
		FeatureHEP:        f.HEP,
	}
}
