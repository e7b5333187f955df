package detection

import (
	"context"
	"errors"
	"testing"

	"screen-translate-overlay/src/sentence"
)

type fakeSession struct {
	calls  int
	result sentence.Set
	err    error
}

func (f *fakeSession) Process(ctx context.Context, imagePath string) (sentence.Set, error) {
	f.calls++
	return f.result, f.err
}

func TestGatewayConstructsSessionOnce(t *testing.T) {
	sess := &fakeSession{result: sentence.Set{{Text: "Hello", Box: sentence.BoundingBox{MaxX: 50, MaxY: 20}}}}
	constructed := 0
	var gotLang, gotCred string
	g := New("secret", func(lang, credential string) (Session, error) {
		constructed++
		gotLang, gotCred = lang, credential
		return sess, nil
	})

	for i := 0; i < 3; i++ {
		got, err := g.DetectAndTranslate(context.Background(), "jpn", "/tmp/screenshot.jpg")
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if len(got) != 1 || got[0].Text != "Hello" {
			t.Errorf("call %d: unexpected result %+v", i, got)
		}
	}
	if constructed != 1 {
		t.Errorf("Expected session to be constructed once, got %d", constructed)
	}
	if sess.calls != 3 {
		t.Errorf("Expected 3 backend calls, got %d", sess.calls)
	}
	if gotLang != "jpn" || gotCred != "secret" {
		t.Errorf("Factory got lang=%q cred=%q", gotLang, gotCred)
	}
}

func TestGatewaySessionFailure(t *testing.T) {
	boom := errors.New("no tessdata")
	attempts := 0
	g := New("k", func(lang, credential string) (Session, error) {
		attempts++
		return nil, boom
	})

	_, err := g.DetectAndTranslate(context.Background(), "eng", "x.png")
	var de *DetectionError
	if !errors.As(err, &de) || de.Op != OpSession {
		t.Fatalf("Expected session DetectionError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("Expected cause to be preserved")
	}
	if attempts != 1 {
		t.Errorf("Expected exactly one construction attempt per call, got %d", attempts)
	}
}

func TestGatewayCallFailureWrapped(t *testing.T) {
	g := New("k", func(lang, credential string) (Session, error) {
		return &fakeSession{err: errors.New("backend down")}, nil
	})
	_, err := g.DetectAndTranslate(context.Background(), "eng", "x.png")
	var de *DetectionError
	if !errors.As(err, &de) || de.Op != OpDetect {
		t.Fatalf("Expected detect DetectionError, got %v", err)
	}
}

func TestGatewayKeepsTypedSessionErrors(t *testing.T) {
	inner := &DetectionError{Op: OpTranslate, Err: errors.New("quota")}
	g := New("k", func(lang, credential string) (Session, error) {
		return &fakeSession{err: inner}, nil
	})
	_, err := g.DetectAndTranslate(context.Background(), "eng", "x.png")
	var de *DetectionError
	if !errors.As(err, &de) || de.Op != OpTranslate {
		t.Fatalf("Expected translate DetectionError, got %v", err)
	}
}

func TestGatewayRejectsLanguageSwitch(t *testing.T) {
	constructed := 0
	g := New("k", func(lang, credential string) (Session, error) {
		constructed++
		return &fakeSession{}, nil
	})
	if _, err := g.DetectAndTranslate(context.Background(), "jpn", "x.png"); err != nil {
		t.Fatal(err)
	}
	_, err := g.DetectAndTranslate(context.Background(), "kor", "x.png")
	if !errors.Is(err, ErrLanguageSwitch) {
		t.Errorf("Expected ErrLanguageSwitch, got %v", err)
	}
	if constructed != 1 {
		t.Errorf("Language switch must not construct a new session, got %d constructions", constructed)
	}
}

func TestGatewayNoFactory(t *testing.T) {
	g := New("k", nil)
	if _, err := g.DetectAndTranslate(context.Background(), "eng", "x.png"); err == nil {
		t.Error("Expected error without factory")
	}
}

func TestDecodeXYWH(t *testing.T) {
	set, err := DecodeXYWH([]byte(`[{"text":"Hello","box":[10,20,100,50]},{"text":"","box":[0,0,5,5]}]`))
	if err != nil {
		t.Fatalf("DecodeXYWH failed: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(set))
	}
	want := sentence.BoundingBox{MinX: 10, MinY: 20, MaxX: 110, MaxY: 70}
	if set[0].Box != want {
		t.Errorf("Expected %v, got %v", want, set[0].Box)
	}

	if _, err := DecodeXYWH([]byte(`[{"text":"x","box":[1,2,3]}]`)); err == nil {
		t.Error("Expected error for short box")
	}
	if _, err := DecodeXYWH([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed output")
	}
}

func TestNewCommandSessionMissingBinary(t *testing.T) {
	if _, err := NewCommandSession("definitely-not-a-detector", nil, "eng", "k"); err == nil {
		t.Error("Expected error for missing detector binary")
	}
}
