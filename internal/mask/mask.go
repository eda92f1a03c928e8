// Package mask reversibly redacts filesystem paths before they cross
// the trust boundary. Registered sensitive paths map to opaque tokens
// of the form [<TOKEN><index>]; the mapping is built once from
// configuration and is immutable for the process lifetime, so masking
// and unmasking are bijective within one process.
package mask

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Mode selects how registered paths are matched.
type Mode string

const (
	// ModePrefix replaces the longest registered path that contains the
	// input, keeping the remainder of the path intact.
	ModePrefix Mode = "prefix"
	// ModeSegment replaces any path segment whose name alone matches a
	// registered leaf name, wherever it appears in the tree. Unrelated
	// directories sharing a name get masked too; that over-masking is
	// an accepted trade-off of the mode, not a bug.
	ModeSegment Mode = "segment"
)

// ParseMode validates a configured mode string. Empty defaults to
// prefix.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePrefix:
		return ModePrefix, nil
	case ModeSegment:
		return ModeSegment, nil
	default:
		return "", fmt.Errorf("unknown masker mode %q (want %q or %q)", s, ModePrefix, ModeSegment)
	}
}

type entry struct {
	// key is the canonical registered path (prefix mode) or its leaf
	// name (segment mode).
	key   string
	token string
}

// Masker rewrites real paths into token paths and back. Both directions
// are identity functions when masking is disabled. Immutable after
// construction; safe for concurrent use.
type Masker struct {
	mode    Mode
	enabled bool

	// byLength holds entries sorted longest-key-first so a shorter
	// registered ancestor never shadows a more specific path.
	byLength []entry
	// toksByLength holds tokens sorted longest-first: with ten or more
	// entries a short token is a string prefix of a longer one
	// ([MASK1] vs [MASK10]).
	toksByLength []string
	keyToTok     map[string]string
	tokToKey     map[string]string
}

// New builds a Masker from the configured sensitive-path list. Token
// indices are assigned by list order. Registered paths are canonicalized
// once; entries that cannot be canonicalized keep their cleaned absolute
// form.
func New(lookFor []string, token string, mode Mode, enabled bool) *Masker {
	if token == "" {
		token = "MASK"
	}

	m := &Masker{
		mode:     mode,
		enabled:  enabled,
		keyToTok: make(map[string]string, len(lookFor)),
		tokToKey: make(map[string]string, len(lookFor)),
	}

	for idx, sensitive := range lookFor {
		tok := fmt.Sprintf("[%s%d]", token, idx)
		full := canonicalKey(sensitive)
		key := full
		if mode == ModeSegment {
			key = filepath.Base(full)
		}
		m.byLength = append(m.byLength, entry{key: key, token: tok})
		m.keyToTok[key] = tok
		m.tokToKey[tok] = key
	}

	sort.SliceStable(m.byLength, func(i, j int) bool {
		return len(m.byLength[i].key) > len(m.byLength[j].key)
	})
	for tok := range m.tokToKey {
		m.toksByLength = append(m.toksByLength, tok)
	}
	sort.Slice(m.toksByLength, func(i, j int) bool {
		return len(m.toksByLength[i]) > len(m.toksByLength[j])
	})

	return m
}

// Enabled reports whether masking is active.
func (m *Masker) Enabled() bool {
	return m.enabled
}

// Mask rewrites a real path into its token form. In prefix mode the
// longest registered path containing the input (on separator
// boundaries) is replaced by its token; in segment mode every matching
// segment is replaced. Paths with no registered match pass through
// unchanged.
func (m *Masker) Mask(path string) string {
	if !m.enabled || path == "" {
		return path
	}

	switch m.mode {
	case ModeSegment:
		return m.mapSegments(path, m.keyToTok)
	default:
		cleaned := path
		if filepath.IsAbs(path) {
			cleaned = strings.TrimRight(filepath.Clean(path), "/")
			if cleaned == "" {
				cleaned = "/"
			}
		}
		for _, e := range m.byLength {
			if cleaned == e.key {
				return e.token
			}
			if strings.HasPrefix(cleaned, e.key+"/") {
				return e.token + cleaned[len(e.key):]
			}
		}
		return cleaned
	}
}

// Unmask rewrites a token path back into its real form. Token paths not
// produced by the current configuration pass through unchanged.
func (m *Masker) Unmask(path string) string {
	if !m.enabled || path == "" {
		return path
	}

	switch m.mode {
	case ModeSegment:
		return m.mapSegments(path, m.tokToKey)
	default:
		for _, tok := range m.toksByLength {
			if path == tok {
				return m.tokToKey[tok]
			}
			if strings.HasPrefix(path, tok+"/") {
				return m.tokToKey[tok] + path[len(tok):]
			}
		}
		return path
	}
}

// MaskAll masks each path in a slice, preserving order.
func (m *Masker) MaskAll(paths []string) []string {
	if !m.enabled {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = m.Mask(p)
	}
	return out
}

// UnmaskAll unmasks each path in a slice, preserving order.
func (m *Masker) UnmaskAll(paths []string) []string {
	if !m.enabled {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = m.Unmask(p)
	}
	return out
}

func (m *Masker) mapSegments(path string, table map[string]string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if repl, ok := table[part]; ok {
			parts[i] = repl
		}
	}
	return strings.Join(parts, "/")
}

// canonicalKey resolves a registered path to its canonical absolute
// form, falling back to the cleaned absolute path when the entry does
// not exist on disk.
func canonicalKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return strings.TrimRight(abs, "/")
}
