package services

import (
	"errors"
	"strings"
	"testing"

	"weatherstation/config"

	"go.uber.org/zap"
)

func TestOpenMirrorsKeepsWorkingMirrorsWhenOneFails(t *testing.T) {
	working := &fakeMirror{}
	attempted := map[string]int{}

	openers := []mirrorOpener{
		{name: "mqtt", open: func() (Mirror, error) {
			attempted["mqtt"]++
			return nil, errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
		}},
		{name: "rabbitmq", open: func() (Mirror, error) {
			attempted["rabbitmq"]++
			return working, nil
		}},
		{name: "spare", open: func() (Mirror, error) {
			attempted["spare"]++
			return nil, errors.New("no route to host")
		}},
	}

	mirrors, err := openMirrors(openers)
	for _, name := range []string{"mqtt", "rabbitmq", "spare"} {
		if attempted[name] != 1 {
			t.Errorf("%s opened %d times, want 1", name, attempted[name])
		}
	}
	if len(mirrors) != 1 || mirrors[0] != working {
		t.Fatalf("expected only the working mirror, got %v", mirrors)
	}
	if err == nil {
		t.Fatal("expected joined error for failed mirrors")
	}
	for _, want := range []string{"mqtt mirror: dial tcp", "spare mirror: no route to host"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestOpenMirrorsAllConnected(t *testing.T) {
	first, second := &fakeMirror{}, &fakeMirror{}
	mirrors, err := openMirrors([]mirrorOpener{
		{name: "mqtt", open: func() (Mirror, error) { return first, nil }},
		{name: "rabbitmq", open: func() (Mirror, error) { return second, nil }},
	})
	if err != nil {
		t.Fatalf("openMirrors returned error: %v", err)
	}
	if len(mirrors) != 2 {
		t.Fatalf("expected 2 mirrors, got %d", len(mirrors))
	}
}

func TestOpenMirrorsNothingConfigured(t *testing.T) {
	mirrors, err := OpenMirrors(&config.Config{}, zap.NewNop())
	if err != nil || len(mirrors) != 0 {
		t.Fatalf("expected no mirrors and no error, got %v, %v", mirrors, err)
	}
}
