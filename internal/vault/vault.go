// Package vault is the note repository: it enumerates, reads, and writes
// the markdown notes of a garden directory and owns the frontmatter access
// for the single maturity field the engine cares about.
//
// All note paths are vault-relative. The vault never reaches outside its
// root; traversal attempts are rejected at the boundary.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/eohjun/cultivator/internal/assess"
)

// DefaultInclude is the glob used when no include patterns are configured.
var DefaultInclude = []string{"**/*.md"}

var (
	// wikilinkPattern matches [[target]] and [[target|alias]] links.
	wikilinkPattern = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`)

	// tagPattern matches inline #tags. A leading word character rules out
	// anchors inside URLs and headings.
	tagPattern = regexp.MustCompile(`(?:^|[^\w&])#([A-Za-z][\w/-]*)`)
)

// Vault is a repository over one notes directory.
type Vault struct {
	root    string
	include []string
	exclude []string
}

// NoteInfo is one enumerated note with its metadata.
type NoteInfo struct {
	Path     string       `json:"path"`
	Maturity assess.Stage `json:"maturity,omitempty"`
	Tags     []string     `json:"tags,omitempty"`
	Links    int          `json:"links"`
}

// New opens a vault rooted at dir. Empty include patterns fall back to
// DefaultInclude; excludes are optional.
func New(dir string, include, exclude []string) (*Vault, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening vault %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory", dir)
	}
	if len(include) == 0 {
		include = DefaultInclude
	}
	return &Vault{root: dir, include: include, exclude: exclude}, nil
}

// Root returns the vault's root directory.
func (v *Vault) Root() string {
	return v.root
}

// List enumerates every markdown note matched by the include globs and not
// matched by any exclude glob, sorted by path, with tags, link counts, and
// the frontmatter maturity stage.
func (v *Vault) List() ([]NoteInfo, error) {
	fsys := os.DirFS(v.root)

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range v.include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || v.excluded(m) || !strings.HasSuffix(m, ".md") {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)

	notes := make([]NoteInfo, 0, len(paths))
	for _, path := range paths {
		content, err := v.Read(path)
		if err != nil {
			return nil, err
		}
		fm, body := splitFrontmatter(content)
		notes = append(notes, NoteInfo{
			Path:     path,
			Maturity: maturityFrom(fm),
			Tags:     collectTags(fm, body),
			Links:    len(wikilinkPattern.FindAllString(body, -1)),
		})
	}
	return notes, nil
}

// Read returns the content of one note.
func (v *Vault) Read(path string) (string, error) {
	abs, err := v.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("reading note %s: %w", path, err)
	}
	return string(data), nil
}

// Write replaces the content of one note, creating parent directories as
// needed.
func (v *Vault) Write(path, content string) error {
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating note directory: %w", err)
	}
	return os.WriteFile(abs, []byte(content), 0o644)
}

// Maturity reads the note's frontmatter maturity field. A note without the
// field returns the empty stage; an unknown value is an error.
func (v *Vault) Maturity(path string) (assess.Stage, error) {
	content, err := v.Read(path)
	if err != nil {
		return "", err
	}
	fm, _ := splitFrontmatter(content)
	raw := frontmatterValue(fm, "maturity")
	if raw == "" {
		return "", nil
	}
	return assess.ParseStage(raw)
}

// SetMaturity writes the maturity field into the note's frontmatter,
// creating the frontmatter when absent and preserving every other key.
func (v *Vault) SetMaturity(path string, stage assess.Stage) error {
	return v.setField(path, "maturity", string(stage))
}

// SetLastAssessed stamps the note's last-assessed date field.
func (v *Vault) SetLastAssessed(path, date string) error {
	return v.setField(path, "last-assessed", date)
}

func (v *Vault) setField(path, key, value string) error {
	content, err := v.Read(path)
	if err != nil {
		return err
	}
	updated, err := setFrontmatterField(content, key, value)
	if err != nil {
		return fmt.Errorf("updating %s in %s: %w", key, path, err)
	}
	return v.Write(path, updated)
}

// excluded reports whether any exclude glob matches the path.
func (v *Vault) excluded(path string) bool {
	for _, pattern := range v.exclude {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// resolve turns a vault-relative path into an absolute one, rejecting
// anything that would escape the root.
func (v *Vault) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty note path")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("note path %q must be vault-relative", path)
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("note path %q escapes the vault", path)
	}
	return filepath.Join(v.root, clean), nil
}

// maturityFrom parses the frontmatter maturity value leniently: unknown
// values read as unset rather than failing an enumeration.
func maturityFrom(fm string) assess.Stage {
	stage, err := assess.ParseStage(frontmatterValue(fm, "maturity"))
	if err != nil {
		return ""
	}
	return stage
}

// collectTags merges frontmatter tags with inline #tags, deduplicated and
// sorted.
func collectTags(fm, body string) []string {
	set := make(map[string]bool)
	for _, tag := range frontmatterList(fm, "tags") {
		set[strings.TrimPrefix(tag, "#")] = true
	}
	for _, m := range tagPattern.FindAllStringSubmatch(body, -1) {
		set[m[1]] = true
	}
	if len(set) == 0 {
		return nil
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
