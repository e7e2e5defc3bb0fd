// Package paths implements the dot-path syntax used to address locations
// in a JSON document: segments separated by unescaped dots, a trailing "[]"
// marking array iteration, and backslash escaping so keys containing dots
// (e.g. "gpt-3.5-turbo") survive the round trip.
package paths

import "strings"

// Root is the canonical spelling for the whole-document path. The empty
// string is accepted as an equivalent.
const Root = "(root)"

// Segment is one step of a path: an object key, optionally followed by an
// array iteration marker. A Segment with an empty Key and Array set
// represents a bare "[]" (iteration over the value itself, used for
// array-rooted documents).
type Segment struct {
	Key   string
	Array bool
}

// IsRoot reports whether path names the whole document.
func IsRoot(path string) bool {
	return path == "" || path == Root
}

// Escape escapes a single key for use as a path segment. Backslashes
// become `\\` and dots become `\.` so the key remains one segment.
func Escape(key string) string {
	key = strings.ReplaceAll(key, `\`, `\\`)
	return strings.ReplaceAll(key, ".", `\.`)
}

// Unescape reverses Escape. A trailing lone backslash is kept literal.
func Unescape(segment string) string {
	var b strings.Builder
	for i := 0; i < len(segment); i++ {
		if segment[i] == '\\' && i+1 < len(segment) {
			b.WriteByte(segment[i+1])
			i++
			continue
		}
		b.WriteByte(segment[i])
	}
	return b.String()
}

// Split parses a path into segments, honoring escapes and array markers.
// The root path yields no segments.
func Split(path string) []Segment {
	if IsRoot(path) {
		return nil
	}

	var raw []string
	var buf strings.Builder
	escaping := false
	for i := 0; i < len(path); i++ {
		ch := path[i]
		if escaping {
			buf.WriteByte('\\')
			buf.WriteByte(ch)
			escaping = false
			continue
		}
		switch ch {
		case '\\':
			escaping = true
		case '.':
			raw = append(raw, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(ch)
		}
	}
	if escaping {
		buf.WriteByte('\\')
	}
	raw = append(raw, buf.String())

	segs := make([]Segment, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		seg := Segment{Key: r}
		if strings.HasSuffix(r, "[]") {
			seg.Array = true
			seg.Key = r[:len(r)-2]
		}
		seg.Key = Unescape(seg.Key)
		if seg.Key == "" && !seg.Array {
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

// Join renders segments back into a path string.
func Join(segs []Segment) string {
	if len(segs) == 0 {
		return Root
	}
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(Escape(seg.Key))
		if seg.Array {
			b.WriteString("[]")
		}
	}
	return b.String()
}

// Child appends key to parent, escaping as needed.
func Child(parent, key string) string {
	if IsRoot(parent) {
		return Escape(key)
	}
	return parent + "." + Escape(key)
}

// ChildArray appends the array iteration marker to parent. For the root
// path the result is a bare "[]".
func ChildArray(parent string) string {
	if IsRoot(parent) {
		return "[]"
	}
	return parent + "[]"
}

// Last returns the last key of path, which is the default output name for
// a selection. Array markers are dropped; the root path yields "".
func Last(path string) string {
	segs := Split(path)
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].Key != "" {
			return segs[i].Key
		}
	}
	return ""
}

// Relative computes the portion of path beyond root, for per-element
// resolution during extraction. It reports false when path does not lie
// under root (the caller then resolves it against the whole document).
// Array markers on the boundary segment are ignored, so "a[].x" is
// relative to root "a".
func Relative(root, path string) (string, bool) {
	rootSegs := Split(root)
	pathSegs := Split(path)
	if len(pathSegs) < len(rootSegs) {
		return "", false
	}
	for i, rs := range rootSegs {
		if pathSegs[i].Key != rs.Key {
			return "", false
		}
	}
	// A path equal to the root (or "root[]") comes back as "(root)", which
	// resolves to the iteration element itself.
	return Join(pathSegs[len(rootSegs):]), true
}
