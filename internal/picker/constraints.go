package picker

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Constraints is the validation constraint set supplied per control
// instantiation. Zero values mean unbounded / any type.
type Constraints struct {
	// Accept holds MIME-type-or-extension matchers. A matcher starting with
	// "." compares case-insensitively against the file extension, a matcher
	// ending in "/*" compares the MIME major type, anything else requires
	// exact MIME equality.
	Accept       []string `json:"accept,omitempty" yaml:"accept"`
	MaxSizeBytes int64    `json:"maxSizeBytes,omitempty" yaml:"maxSizeBytes"`
	MaxFiles     int      `json:"maxFiles,omitempty" yaml:"maxFiles"`
}

// ParseAccept splits a comma-separated accept attribute into matchers.
func ParseAccept(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// check validates a single file against the constraint set. Size is checked
// before type; the first failing check wins. Empty reason means accepted.
func (c Constraints) check(f CandidateFile) (Reason, string) {
	if c.MaxSizeBytes > 0 && f.SizeBytes > c.MaxSizeBytes {
		return ReasonSizeExceeded,
			fmt.Sprintf("File %q exceeds maximum size of %s", f.Name, humanSize(c.MaxSizeBytes))
	}
	if len(c.Accept) > 0 && !c.acceptsType(f) {
		return ReasonTypeRejected,
			fmt.Sprintf("File %q is not an accepted file type", f.Name)
	}
	return "", ""
}

func (c Constraints) acceptsType(f CandidateFile) bool {
	for _, m := range c.Accept {
		if matcherAccepts(m, f) {
			return true
		}
	}
	return false
}

func matcherAccepts(matcher string, f CandidateFile) bool {
	matcher = strings.TrimSpace(matcher)
	switch {
	case matcher == "":
		return false
	case strings.HasPrefix(matcher, "."):
		ext := strings.ToLower(filepath.Ext(f.Name))
		return ext == strings.ToLower(matcher)
	case strings.HasSuffix(matcher, "/*"):
		major := f.MimeType
		if i := strings.Index(major, "/"); i >= 0 {
			major = major[:i]
		}
		return strings.EqualFold(major, strings.TrimSuffix(matcher, "/*"))
	default:
		return f.MimeType == matcher
	}
}

// humanSize renders a byte count with binary units, one decimal at most.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	v := strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64)
	v = strings.TrimSuffix(v, ".0")
	// EB is enough: int64 tops out below 8 EiB.
	return v + " " + []string{"KB", "MB", "GB", "TB", "PB", "EB"}[exp]
}
