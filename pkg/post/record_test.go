package post

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	records := []Record{
		{Actor: "alice"},
		{Actor: "bob", MentionedActors: []string{"alice"}},
		{Actor: "", ID: "42"},
	}

	err := Validate(records)
	if err == nil {
		t.Fatal("expected an error for the empty actor")
	}

	var invalid *InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidRecordError, got %T", err)
	}
	if invalid.Position != 2 {
		t.Errorf("wrong position: got %d, want 2", invalid.Position)
	}
	if invalid.Record.ID != "42" {
		t.Errorf("offending record not attached: %+v", invalid.Record)
	}

	if err := Validate(records[:2]); err != nil {
		t.Errorf("valid records rejected: %v", err)
	}
	if err := Validate(nil); err != nil {
		t.Errorf("empty input rejected: %v", err)
	}
}

func TestFilter(t *testing.T) {
	valid, errs := Filter([]Record{{Actor: ""}, {Actor: "a"}, {Actor: ""}})
	if len(valid) != 1 || valid[0].Actor != "a" {
		t.Errorf("unexpected valid set: %+v", valid)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	var invalid *InvalidRecordError
	if !errors.As(errs[1], &invalid) || invalid.Position != 2 {
		t.Errorf("second error should point at position 2, got %v", errs[1])
	}
}

func TestIsReshare(t *testing.T) {
	if (Record{Actor: "a"}).IsReshare() {
		t.Error("record without origin reported as reshare")
	}
	if !(Record{Actor: "a", ResharedFromActor: "b"}).IsReshare() {
		t.Error("reshare not detected")
	}
}
