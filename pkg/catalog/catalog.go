// Package catalog holds the static feature-module facts of the PBX product:
// which optional modules exist, which functional category they belong to, and
// which capability era they are tied to.
//
// The tables encode multi-decade naming and availability history and are the
// single source the selector consumes. They are package-level immutable data;
// every accessor returns a fresh copy so callers can never mutate shared
// state, which keeps batch resolution safely parallel.
package catalog

// Category identifies the functional grouping of a module.
type Category string

const (
	CategoryChannel     Category = "channels"
	CategoryApplication Category = "applications"
	CategoryResource    Category = "resources"
	CategoryCDR         Category = "cdr"
	CategoryCEL         Category = "cel"
)

// ChannelSet selects one of the channel-driver axes.
type ChannelSet string

const (
	// ChannelsModern is the channel set for transitional and modern eras.
	ChannelsModern ChannelSet = "modern"
	// ChannelsLegacy is the channel set for the 1.2-1.8 line.
	ChannelsLegacy ChannelSet = "legacy"
	// ChannelsOptional are hardware or special-purpose drivers never
	// enabled by default.
	ChannelsOptional ChannelSet = "optional"
)

// ApplicationGroup selects one of the dialplan application groups.
type ApplicationGroup string

const (
	AppsCore         ApplicationGroup = "core"
	AppsVoicemail    ApplicationGroup = "voicemail"
	AppsConferencing ApplicationGroup = "conferencing"
	AppsCallFeatures ApplicationGroup = "call_features"
	AppsControl      ApplicationGroup = "control"
	AppsIntegration  ApplicationGroup = "integration"
)

// ResourceGroup selects one of the resource-module groups.
type ResourceGroup string

const (
	ResCore       ResourceGroup = "core"
	ResPJSIP      ResourceGroup = "pjsip"
	ResDatabase   ResourceGroup = "database"
	ResCDRCEL     ResourceGroup = "cdr_cel"
	ResMonitoring ResourceGroup = "monitoring"
	ResARI        ResourceGroup = "ari"
	ResWebSocket  ResourceGroup = "websocket"
	ResSecurity   ResourceGroup = "security"
)

var channelModules = map[ChannelSet][]string{
	ChannelsModern: {
		"chan_pjsip",        // SIP via PJSIP (12+)
		"chan_iax2",         // IAX2 protocol
		"chan_local",        // Local channels
		"chan_bridge_media", // Bridge media channels
		"chan_websocket",    // WebSocket channels (23+)
	},
	ChannelsLegacy: {
		"chan_sip",   // Legacy SIP (removed in 21+)
		"chan_iax2",  // IAX2 protocol
		"chan_local", // Local channels
		"chan_zap",   // Zaptel (very old versions)
	},
	ChannelsOptional: {
		"chan_dahdi",       // DAHDI hardware
		"chan_audiosocket", // AudioSocket external media
		"chan_console",     // Console channel
	},
}

var applicationModules = map[ApplicationGroup][]string{
	AppsCore: {
		"app_dial",
		"app_playback",
		"app_record",
		"app_echo",
		"app_hangup",
		"app_noop",
		"app_verbose",
		"app_waitexten",
	},
	AppsVoicemail: {
		"app_voicemail",
		"app_voicemailmain",
	},
	AppsConferencing: {
		"app_confbridge", // Conference bridge (10+)
		"app_meetme",     // Legacy conferencing
	},
	AppsCallFeatures: {
		"app_queue",
		"app_directory",
		"app_followme",
		"app_forkcdr",
		"app_mixmonitor",
		"app_monitor",
	},
	AppsControl: {
		"app_if",
		"app_while",
		"app_goto",
		"app_gosub",
		"app_return",
		"app_stack",
	},
	AppsIntegration: {
		"app_system",
		"app_exec",
		"app_audiosocket",
	},
}

var resourceModules = map[ResourceGroup][]string{
	ResCore: {
		"res_timing_timerfd",
		"res_crypto",
		"res_format_attr",
		"res_rtp_asterisk",
		"res_musiconhold",
	},
	ResPJSIP: {
		"res_pjsip",
		"res_pjsip_session",
		"res_pjsip_registrar",
		"res_pjsip_outbound_registration",
		"res_pjsip_endpoint_identifier_user",
		"res_pjsip_endpoint_identifier_ip",
		"res_pjsip_authenticator_digest",
		"res_pjsip_caller_id",
		"res_pjsip_transport_websocket",
	},
	ResDatabase: {
		"res_config_pgsql",
		"res_config_odbc",
		"res_odbc",
		"res_config_curl",
	},
	ResCDRCEL: {
		"res_cdr",
		"res_cel",
	},
	ResMonitoring: {
		"res_hep",
		"res_hep_pjsip",
		"res_hep_rtcp",
		"res_statsd",
		"res_prometheus",
	},
	ResARI: {
		"res_ari",
		"res_ari_applications",
		"res_ari_asterisk",
		"res_ari_bridges",
		"res_ari_channels",
		"res_ari_device_states",
		"res_ari_endpoints",
		"res_ari_events",
		"res_ari_mailboxes",
		"res_ari_model",
		"res_ari_playbacks",
		"res_ari_recordings",
		"res_ari_sounds",
	},
	ResWebSocket: {
		"res_http_websocket",
		"res_websocket_client",
	},
	ResSecurity: {
		"res_srtp",
		"res_stun_monitor",
	},
}

var cdrModules = map[string][]string{
	"core":     {"cdr_csv"},
	"database": {"cdr_odbc", "cdr_pgsql", "cdr_mysql"},
	"syslog":   {"cdr_syslog"},
	"radius":   {"cdr_radius"},
}

var celModules = map[string][]string{
	"core":     {"cel_custom"},
	"database": {"cel_odbc", "cel_pgsql", "cel_mysql"},
}

// alwaysExcluded are hardware-dependent or known-problematic modules that are
// never compiled in, regardless of era or feature flags.
var alwaysExcluded = []string{
	"chan_dahdi",        // Hardware dependency
	"chan_misdn",        // Hardware dependency
	"app_festival",      // External dependency
	"app_flash",         // Legacy
	"res_pjsip_sdp_rtp", // Can cause issues
	"codec_dahdi",       // Hardware dependency
}

// disabledCategories are the sound and music-on-hold menuselect categories
// skipped in container builds.
var disabledCategories = []string{
	"MENUSELECT_CORE_SOUNDS",
	"MENUSELECT_MOH",
	"MENUSELECT_EXTRA_SOUNDS",
}

// ChannelModules returns the channel drivers for the given set.
func ChannelModules(set ChannelSet) []string {
	return copyOf(channelModules[set])
}

// ApplicationModules returns the dialplan applications for the given group.
func ApplicationModules(group ApplicationGroup) []string {
	return copyOf(applicationModules[group])
}

// CoreApplicationModules returns the call-handling applications available at
// every era this system targets.
func CoreApplicationModules() []string {
	return copyOf(applicationModules[AppsCore])
}

// ResourceModules returns the resource modules for the given group.
func ResourceModules(group ResourceGroup) []string {
	return copyOf(resourceModules[group])
}

// CDRModules returns the call-detail-record backends for the given subset
// ("core", "database", "syslog", "radius").
func CDRModules(subset string) []string {
	return copyOf(cdrModules[subset])
}

// CELModules returns the call-event-log backends for the given subset
// ("core", "database").
func CELModules(subset string) []string {
	return copyOf(celModules[subset])
}

// AlwaysExcluded returns the modules excluded from every build.
func AlwaysExcluded() []string {
	return copyOf(alwaysExcluded)
}

// DisabledCategories returns the sound/documentation menuselect categories
// disabled in every build, in catalog order.
func DisabledCategories() []string {
	return copyOf(disabledCategories)
}

func copyOf(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
