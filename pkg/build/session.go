package build

import (
	"fmt"
	"sort"
	"sync"

	"github.com/opencontainers/go-digest"
)

// Session carries state across the builds of one process: the digest of
// every output written so far and the templates each schema module feeds.
// A Session is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	digests map[string]digest.Digest
	refs    map[string]map[string]struct{}
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{
		digests: make(map[string]digest.Digest),
		refs:    make(map[string]map[string]struct{}),
	}
}

// Digest returns the digest last recorded for output.
func (s *Session) Digest(output string) (digest.Digest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.digests[output]
	return d, ok
}

// Remember records the digest of content written to output.
func (s *Session) Remember(output string, d digest.Digest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests[output] = d
}

// Forget drops the digest recorded for output, forcing the next build to
// write it again.
func (s *Session) Forget(output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.digests, output)
}

// Snapshot returns the recorded digests keyed by output path.
func (s *Session) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.digests))
	for output, d := range s.digests {
		out[output] = d.String()
	}
	return out
}

// Restore replaces the recorded digests. Every value must be a valid digest.
func (s *Session) Restore(snapshot map[string]string) error {
	digests := make(map[string]digest.Digest, len(snapshot))
	for output, raw := range snapshot {
		d, err := digest.Parse(raw)
		if err != nil {
			return fmt.Errorf("build: restore digest for %s: %w", output, err)
		}
		digests[output] = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests = digests
	return nil
}

// Schemas returns the locations of every module referenced by the last build.
func (s *Session) Schemas() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.refs))
	for schema := range s.refs {
		out = append(out, schema)
	}
	sort.Strings(out)
	return out
}

// Templates returns the templates that referenced schema in the last build.
func (s *Session) Templates(schema string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.refs[schema]
	out := make([]string, 0, len(set))
	for template := range set {
		out = append(out, template)
	}
	sort.Strings(out)
	return out
}

func (s *Session) resetReferences() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = make(map[string]map[string]struct{})
}

func (s *Session) addReference(schema, template string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.refs[schema]
	if !ok {
		set = make(map[string]struct{})
		s.refs[schema] = set
	}
	set[template] = struct{}{}
}
