package transport

import (
	"errors"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	nf := ErrNotFound("gone")
	if !IsNotFound(nf) || IsConflict(nf) {
		t.Fatalf("not-found misclassified")
	}
	cf := ErrConflict("already done")
	if !IsConflict(cf) || IsNotFound(cf) {
		t.Fatalf("conflict misclassified")
	}
	if !IsIdempotent(nf) || !IsIdempotent(cf) {
		t.Fatal("idempotent errors not recognized")
	}
	if IsIdempotent(errors.New("boom")) {
		t.Fatal("plain error counted as idempotent")
	}
	if IsIdempotent(nil) {
		t.Fatal("nil counted as idempotent")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := ErrNotFound("").Error(); got != "not found" {
		t.Fatalf("default not-found message = %q", got)
	}
	if got := ErrConflict("").Error(); got != "conflict" {
		t.Fatalf("default conflict message = %q", got)
	}
	if got := ErrNotFound("item x missing").Error(); got != "item x missing" {
		t.Fatalf("message = %q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	err := unknownCommandError{command: "teleport"}
	if !IsUnknownCommand(err) {
		t.Fatal("unknown command not recognized")
	}
	if err.Error() != "unknown command: teleport" {
		t.Fatalf("message = %q", err.Error())
	}
	if IsUnknownCommand(errors.New("unknown command: teleport")) {
		t.Fatal("string match accepted")
	}
}
