package policy

import (
	"regexp"
	"strings"
	"time"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

// localhostOrigin matches the local-only origins admissible in safe and
// standard mode (SPEC_FULL.md §4.1 step 3).
var localhostOrigin = regexp.MustCompile(`(?i)^https?://(localhost|127\.0\.0\.1)(:[0-9]+)?/?$`)

// FilePolicy is the strict schema a policy file or literal object must
// satisfy (SPEC_FULL.md §4.1, §6.2). Version is pinned to 1.
type FilePolicy struct {
	Version           int        `json:"version" yaml:"version"`
	Mode              string     `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowedOrigins    []string   `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
	MaxSessionTTLMs   int64      `json:"maxSessionTtlMs,omitempty" yaml:"maxSessionTtlMs,omitempty"`
	Tools             ToolPolicy `json:"tools,omitempty" yaml:"tools,omitempty"`
	RedactionPatterns []string   `json:"redactionPatterns,omitempty" yaml:"redactionPatterns,omitempty"`
	Roots             []string   `json:"roots,omitempty" yaml:"roots,omitempty"`
	AllowedEnvVars    []string   `json:"allowedEnvVars,omitempty" yaml:"allowedEnvVars,omitempty"`
	MaxSnapshotNodes  int        `json:"maxSnapshotNodes,omitempty" yaml:"maxSnapshotNodes,omitempty"`
}

// Resolve merges runtimeMode with an optional file policy into a
// ResolvedPolicy, per the algorithm in SPEC_FULL.md §4.1.
func Resolve(runtimeMode Mode, file *FilePolicy, artifactRoot string) (*ResolvedPolicy, error) {
	effectiveMode := runtimeMode
	if file != nil && strings.TrimSpace(file.Mode) != "" {
		fileMode, err := ParseMode(file.Mode)
		if err != nil {
			return nil, airlockerr.Wrap(err, airlockerr.InvalidInput, "invalid policy file mode")
		}
		effectiveMode = Stricter(runtimeMode, fileMode)
	}

	resolved := &ResolvedPolicy{
		SafetyPolicy: DefaultSafetyPolicy(effectiveMode, artifactRoot),
	}

	if file == nil {
		return resolved, nil
	}

	resolved.SourcePath = ""
	resolved.Tools = ToolPolicy{
		Disabled:            dedupe(file.Tools.Disabled),
		RequireConfirmation: dedupe(file.Tools.RequireConfirmation),
	}
	resolved.Roots = dedupe(file.Roots)
	resolved.AllowedEnvVars = dedupe(file.AllowedEnvVars)
	resolved.MaxSnapshotNodes = file.MaxSnapshotNodes

	if file.MaxSessionTTLMs > 0 {
		requested := time.Duration(file.MaxSessionTTLMs) * time.Millisecond
		if requested > defaultTTL(effectiveMode) {
			return nil, airlockerr.Newf(airlockerr.PolicyViolation,
				"policy file maxSessionTtlMs %dms exceeds the %s mode default of %dms",
				file.MaxSessionTTLMs, effectiveMode, defaultTTL(effectiveMode).Milliseconds())
		}
		resolved.MaxSessionTTL = requested
	}

	if len(file.AllowedOrigins) > 0 {
		origins := dedupe(file.AllowedOrigins)
		var rejected []string
		for _, origin := range origins {
			if !originAdmissible(effectiveMode, origin) {
				rejected = append(rejected, origin)
			}
		}
		if len(rejected) > 0 {
			return nil, airlockerr.Newf(airlockerr.PolicyViolation,
				"origins not admissible under %s mode: %s", effectiveMode, strings.Join(rejected, ", ")).
				WithDetail("rejectedOrigins", rejected)
		}
		resolved.AllowedOrigins = origins
	}

	for _, pattern := range file.RedactionPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, airlockerr.Wrap(err, airlockerr.InvalidInput,
				"invalid redaction pattern: "+pattern)
		}
	}
	resolved.RedactionPatterns = dedupe(file.RedactionPatterns)

	return resolved, nil
}

// originAdmissible implements the mode-dependent origin admissibility rule
// from SPEC_FULL.md §4.1 step 3.
func originAdmissible(mode Mode, origin string) bool {
	switch mode {
	case ModeTrusted:
		return true
	case ModeStandard:
		return localhostOrigin.MatchString(origin) || strings.HasPrefix(origin, "file://")
	default: // ModeSafe
		return localhostOrigin.MatchString(origin)
	}
}

// dedupe removes duplicate strings while preserving first-seen order.
func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
