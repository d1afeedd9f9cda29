package logging

import (
	"io"
	"regexp"
	"sync"

	"github.com/rs/zerolog"
)

const redactMask string = "***"

// ScrubbingWriter masks registered secrets before log lines reach the
// underlying writer. Tenant bearer tokens are registered here so they can
// never leak into logs.
type ScrubbingWriter interface {
	AddTerm(term string)
	RemoveTerm(term string)
}

type scrubbingLevelWriter struct {
	m      sync.RWMutex
	writer zerolog.LevelWriter
	terms  map[string]*regexp.Regexp
}

// mandatory patterns masked regardless of registered terms
var defaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9-_.]+)`),
	regexp.MustCompile(`(?i)"token"\s*:\s*"([^"]+)"`),
}

func NewScrubbingWriter(writer zerolog.LevelWriter, secrets ...string) zerolog.LevelWriter {
	w := &scrubbingLevelWriter{
		writer: writer,
		terms:  map[string]*regexp.Regexp{},
	}
	for _, s := range secrets {
		w.AddTerm(s)
	}
	return w
}

func (w *scrubbingLevelWriter) AddTerm(term string) {
	if term == "" {
		return
	}
	w.m.Lock()
	defer w.m.Unlock()
	w.terms[term] = regexp.MustCompile(regexp.QuoteMeta(term))
}

func (w *scrubbingLevelWriter) RemoveTerm(term string) {
	w.m.Lock()
	defer w.m.Unlock()
	delete(w.terms, term)
}

func (w *scrubbingLevelWriter) Write(p []byte) (n int, err error) {
	_, err = w.writer.Write(w.scrub(p))
	return len(p), err // we don't want to mess with the outer framing, so we return the original length
}

func (w *scrubbingLevelWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	_, err = w.writer.WriteLevel(level, w.scrub(p))
	return len(p), err
}

func (w *scrubbingLevelWriter) scrub(p []byte) []byte {
	w.m.RLock()
	defer w.m.RUnlock()

	scrubbed := p
	for _, re := range w.terms {
		scrubbed = re.ReplaceAll(scrubbed, []byte(redactMask))
	}
	for _, re := range defaultPatterns {
		scrubbed = re.ReplaceAllFunc(scrubbed, func(match []byte) []byte {
			groups := re.FindSubmatch(match)
			if len(groups) < 2 {
				return match
			}
			return regexp.MustCompile(regexp.QuoteMeta(string(groups[1]))).ReplaceAll(match, []byte(redactMask))
		})
	}
	return scrubbed
}

var _ io.Writer = (*scrubbingLevelWriter)(nil)
var _ ScrubbingWriter = (*scrubbingLevelWriter)(nil)
