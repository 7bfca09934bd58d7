package core

import (
	"errors"
	"testing"
)

func TestStreamableDeliversValuesInOrder(t *testing.T) {
	t.Parallel()

	s := NewStreamable[string]()
	if err := s.Update("a"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Update("b"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Done("c"); err != nil {
		t.Fatalf("Done: %v", err)
	}

	var got []string
	for v := range s.Values() {
		got = append(got, v)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("values: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values[%d]: got=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestStreamableRejectsWritesAfterDone(t *testing.T) {
	t.Parallel()

	s := NewStreamable[int]()
	if err := s.Done(1); err != nil {
		t.Fatalf("Done: %v", err)
	}

	if err := s.Update(2); !errors.Is(err, ErrStreamSealed) {
		t.Fatalf("Update after Done: got=%v want=%v", err, ErrStreamSealed)
	}
	if err := s.Done(3); !errors.Is(err, ErrStreamSealed) {
		t.Fatalf("Done after Done: got=%v want=%v", err, ErrStreamSealed)
	}
}

func TestStreamableValueTracksLatest(t *testing.T) {
	t.Parallel()

	s := NewStreamable[int]()
	if _, ok := s.Value(); ok {
		t.Fatal("Value before any write should report absence")
	}

	_ = s.Update(1)
	_ = s.Done(2)

	v, ok := s.Value()
	if !ok || v != 2 {
		t.Fatalf("Value: got=%d,%v want=2,true", v, ok)
	}
	if !s.Sealed() {
		t.Fatal("stream should be sealed after Done")
	}
}

func TestStreamableCloseSealsWithoutValue(t *testing.T) {
	t.Parallel()

	s := NewStreamable[int]()
	_ = s.Update(7)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.Sealed() {
		t.Fatal("stream should be sealed after Close")
	}
	if err := s.Update(8); !errors.Is(err, ErrStreamSealed) {
		t.Fatalf("Update after Close: got=%v want=%v", err, ErrStreamSealed)
	}
}
