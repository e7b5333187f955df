// Package detection is the gateway to the text detection and translation
// backend. It owns a single lazily created backend session.
package detection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"screen-translate-overlay/src/sentence"
)

// Operations reported in DetectionError.Op.
const (
	OpSession   = "session"
	OpDetect    = "detect"
	OpTranslate = "translate"
	OpDecode    = "decode"
)

// DetectionError reports a failed session construction or backend call.
type DetectionError struct {
	Op  string
	Err error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detection %s failed: %v", e.Op, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// ErrLanguageSwitch is returned when a call asks for a language other than
// the one the session was created with.
var ErrLanguageSwitch = errors.New("language cannot change after the session is created")

// Session is one backend instance bound to a language and credential.
type Session interface {
	Process(ctx context.Context, imagePath string) (sentence.Set, error)
}

// SessionFactory constructs a backend session. It is expensive and is called
// at most once per successful construction.
type SessionFactory func(lang, credential string) (Session, error)

// Gateway serializes calls against one lazily constructed Session.
type Gateway struct {
	mu         sync.Mutex
	credential string
	factory    SessionFactory
	session    Session
	lang       string
}

func New(credential string, factory SessionFactory) *Gateway {
	return &Gateway{credential: credential, factory: factory}
}

// DetectAndTranslate sends one image to the backend and returns its
// translated sentences. Boxes are in the image's pixel space.
func (g *Gateway) DetectAndTranslate(ctx context.Context, lang, imagePath string) ([]sentence.Sentence, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.sessionFor(lang)
	if err != nil {
		return nil, err
	}

	set, err := s.Process(ctx, imagePath)
	if err != nil {
		var de *DetectionError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &DetectionError{Op: OpDetect, Err: err}
	}
	return set, nil
}

func (g *Gateway) sessionFor(lang string) (Session, error) {
	if g.session != nil {
		if lang != g.lang {
			return nil, &DetectionError{Op: OpSession, Err: fmt.Errorf("%w: have %q, asked for %q", ErrLanguageSwitch, g.lang, lang)}
		}
		return g.session, nil
	}
	if g.factory == nil {
		return nil, &DetectionError{Op: OpSession, Err: errors.New("no session factory configured")}
	}

	log.Printf("Detection: creating backend session (lang=%s)", lang)
	s, err := g.factory(lang, g.credential)
	if err != nil {
		return nil, &DetectionError{Op: OpSession, Err: err}
	}
	g.session = s
	g.lang = lang
	return s, nil
}
