package config

import "strings"

// Side is one end of a migration: a local directory or a directory on a
// host reached over SSH.
type Side struct {
	Raw  string
	SSH  string // [user@]host[:port]; empty for local paths
	Path string
}

// Remote reports whether the side is reached over SSH.
func (s Side) Remote() bool {
	return s.SSH != ""
}

func (s Side) String() string {
	return s.Raw
}

// ParseSide splits "[user@]host[:port]:path" into its SSH target and path.
// Values starting with "/", "." or "~", or containing no ":", are local.
func ParseSide(raw string) Side {
	s := Side{Raw: raw, Path: raw}
	if raw == "" || strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "~") {
		return s
	}
	idx := strings.LastIndex(raw, ":")
	if idx <= 0 {
		return s
	}
	s.SSH = raw[:idx]
	s.Path = raw[idx+1:]
	if s.Path == "" {
		s.Path = "."
	}
	return s
}
