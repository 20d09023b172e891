package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
)

var at = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func transitioned() *ProjectTransitioned {
	return &ProjectTransitioned{
		BaseEvent: NewBase("e1", EventTypeProjectTransitioned, "p-1", "owner@studio.test", at),
		From:      lifecycle.StateIntake,
		To:        lifecycle.StateLegalReview,
	}
}

func TestEventDispatcher_Register(t *testing.T) {
	d := NewEventDispatcher()

	called := false
	d.RegisterHandler("test-handler", func(ctx context.Context, event DomainEvent) error {
		called = true
		return nil
	}, EventTypeProjectTransitioned)

	if !d.HasHandlers(EventTypeProjectTransitioned) {
		t.Error("Expected handlers for project.transitioned")
	}
	if d.HasHandlers(EventTypeApprovalRecorded) {
		t.Error("Expected no handlers for approval.recorded")
	}

	if err := d.Dispatch(context.Background(), transitioned()); err != nil {
		t.Errorf("Dispatch failed: %v", err)
	}
	if !called {
		t.Error("Handler was not called")
	}
}

func TestEventDispatcher_OrderAndWildcard(t *testing.T) {
	d := NewEventDispatcher()

	var order []string
	d.RegisterWildcard("wild", func(ctx context.Context, event DomainEvent) error {
		order = append(order, "wild")
		return nil
	})
	d.RegisterHandler("first", func(ctx context.Context, event DomainEvent) error {
		order = append(order, "first")
		return nil
	}, EventTypeProjectTransitioned)
	d.RegisterHandler("second", func(ctx context.Context, event DomainEvent) error {
		order = append(order, "second")
		return nil
	}, EventTypeProjectTransitioned, EventTypeApprovalRecorded)

	if err := d.Dispatch(context.Background(), transitioned()); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "first,second,wild" {
		t.Errorf("order = %v", order)
	}
	if got := d.HandlerCount(EventTypeApprovalRecorded); got != 2 {
		t.Errorf("HandlerCount(approval.recorded) = %d, want 2", got)
	}
	if got := d.HandlerCount("*"); got != 1 {
		t.Errorf("HandlerCount(*) = %d, want 1", got)
	}
}

func TestEventDispatcher_StopsOnFirstError(t *testing.T) {
	d := NewEventDispatcher()
	boom := errors.New("boom")

	secondCalled := false
	d.RegisterHandler("failing", func(ctx context.Context, event DomainEvent) error {
		return boom
	}, EventTypeProjectTransitioned)
	d.RegisterHandler("after", func(ctx context.Context, event DomainEvent) error {
		secondCalled = true
		return nil
	}, EventTypeProjectTransitioned)

	err := d.Dispatch(context.Background(), transitioned())
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped boom, got: %v", err)
	}
	if secondCalled {
		t.Error("Dispatch should stop at the first failure")
	}
}

func TestEventDispatcher_ContinueOnError(t *testing.T) {
	d := NewEventDispatcher()
	d.ContinueOnError = true

	first := errors.New("first")
	second := errors.New("second")
	d.RegisterHandler("a", func(ctx context.Context, event DomainEvent) error { return first }, EventTypeProjectTransitioned)
	d.RegisterHandler("b", func(ctx context.Context, event DomainEvent) error { return second }, EventTypeProjectTransitioned)

	err := d.Dispatch(context.Background(), transitioned())
	var de *DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("Expected DispatchError, got: %T", err)
	}
	if len(de.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(de.Errors))
	}
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Error("Expected both handler errors to be reachable")
	}
	if de.Error() != "multiple dispatch errors (2)" {
		t.Errorf("Error() = %q", de.Error())
	}
}

func TestEventDispatcher_NoHandlers(t *testing.T) {
	if err := NewEventDispatcher().Dispatch(context.Background(), transitioned()); err != nil {
		t.Errorf("Expected nil, got: %v", err)
	}
}

type recordingNotifier struct {
	titles   []string
	messages []string
}

func (n *recordingNotifier) Notify(ctx context.Context, title, message string) error {
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
	return nil
}

func TestHandlers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	notifier := &recordingNotifier{}

	d := NewEventDispatcher()
	d.Register(NewLoggingHandler(logger).Registration())
	d.Register(NewTransitionHandler(logger).Registration())
	d.Register(NewGreenlightHandler(notifier, logger).Registration())

	ctx := context.Background()
	if err := d.Dispatch(ctx, transitioned()); err != nil {
		t.Fatal(err)
	}
	ready := &GreenlightReady{
		BaseEvent:      NewBase("e2", EventTypeGreenlightReady, "p-1", "lee@studio.test", at),
		CompletedCount: 5,
		TotalCount:     5,
	}
	if err := d.Dispatch(ctx, ready); err != nil {
		t.Fatal(err)
	}
	approved := &ApprovalRecorded{
		BaseEvent: NewBase("e3", EventTypeApprovalRecorded, "p-1", "lee@studio.test", at),
		Role:      approval.RoleLegal,
		Approved:  true,
	}
	if err := d.Dispatch(ctx, approved); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "project moved") || !strings.Contains(out, "to=LEGAL_REVIEW") {
		t.Errorf("transition not logged: %s", out)
	}
	if strings.Count(out, "domain event") != 3 {
		t.Errorf("expected 3 debug lines: %s", out)
	}
	if len(notifier.titles) != 1 || !strings.Contains(notifier.messages[0], "5/5 approvals") {
		t.Errorf("notifier = %+v", notifier)
	}
}

func TestMetadata(t *testing.T) {
	tr := transitioned()
	tr.Reason = "brief signed"
	m := tr.Metadata()
	if m["from"] != "INTAKE" || m["to"] != "LEGAL_REVIEW" || m["reason"] != "brief signed" {
		t.Errorf("transition metadata = %v", m)
	}

	if _, ok := transitioned().Metadata()["reason"]; ok {
		t.Error("empty reason should be omitted")
	}

	ca := &ContactAssigned{Role: approval.RoleClient, Contact: "c@brand.test"}
	if ca.Metadata()["role"] != "client" {
		t.Errorf("contact metadata = %v", ca.Metadata())
	}
}
