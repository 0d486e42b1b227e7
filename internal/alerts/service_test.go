package alerts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/eulaly/discoin-backend/internal/models"
)

type fakeWatchers []models.Watcher

func (f fakeWatchers) GetActive(ctx context.Context) ([]models.Watcher, error) {
	return f, nil
}

type fakeNotifier struct {
	msgs []string
}

func (f *fakeNotifier) Send(msg string) {
	f.msgs = append(f.msgs, msg)
}

func watcher(owner, currency, rule string) models.Watcher {
	return models.Watcher{
		ID: "w-" + currency, Owner: owner, Currency: currency, Rule: rule,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func TestParseRule(t *testing.T) {
	cases := []struct {
		in    string
		kind  RuleKind
		value float64
		ok    bool
	}{
		{"+10", RulePercentUp, 10, true},
		{"-5", RulePercentDown, 5, true},
		{"+2.5", RulePercentUp, 2.5, true},
		{"floor:2000", RuleFloor, 2000, true},
		{"ceiling:4000", RuleCeiling, 4000, true},
		{"10", 0, 0, false},
		{"+", 0, 0, false},
		{"+0", 0, 0, false},
		{"-abc", 0, 0, false},
		{"floor:", 0, 0, false},
		{"floor:-5", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, c := range cases {
		rule, err := ParseRule(c.in)
		if c.ok && err != nil {
			t.Fatalf("ParseRule(%q): unexpected error %v", c.in, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("ParseRule(%q): expected error", c.in)
			}
			continue
		}
		if rule.Kind != c.kind || rule.Value != c.value {
			t.Fatalf("ParseRule(%q) = %+v, want kind=%d value=%f", c.in, rule, c.kind, c.value)
		}
	}
}

func TestEvaluate_FloorAndCeiling(t *testing.T) {
	notify := &fakeNotifier{}
	svc := NewService(fakeWatchers{
		watcher("alice", "ethereum", "floor:2500"),
		watcher("bob", "bitcoin", "ceiling:50000"),
	}, notify)

	svc.Evaluate(context.Background(), map[string]float64{
		"ethereum": 2400,  // at or below floor -> fires
		"bitcoin":  49000, // below ceiling -> silent
	})

	if len(notify.msgs) != 1 {
		t.Fatalf("expected 1 alert, got %d: %v", len(notify.msgs), notify.msgs)
	}
	if !strings.Contains(notify.msgs[0], "alice") || !strings.Contains(notify.msgs[0], "ethereum") {
		t.Fatalf("unexpected alert: %s", notify.msgs[0])
	}
}

func TestEvaluate_PercentNeedsBaseline(t *testing.T) {
	notify := &fakeNotifier{}
	svc := NewService(fakeWatchers{
		watcher("alice", "dogecoin", "+10"),
	}, notify)

	// First evaluation seeds the baseline, never fires.
	svc.Evaluate(context.Background(), map[string]float64{"dogecoin": 0.10})
	if len(notify.msgs) != 0 {
		t.Fatalf("first evaluation should not fire, got %v", notify.msgs)
	}

	// +20% since baseline -> fires.
	svc.Evaluate(context.Background(), map[string]float64{"dogecoin": 0.12})
	if len(notify.msgs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notify.msgs))
	}
	if !strings.Contains(notify.msgs[0], "up") {
		t.Fatalf("unexpected alert: %s", notify.msgs[0])
	}
}

func TestEvaluate_PercentDown(t *testing.T) {
	notify := &fakeNotifier{}
	svc := NewService(fakeWatchers{
		watcher("bob", "ethereum", "-5"),
	}, notify)

	svc.Evaluate(context.Background(), map[string]float64{"ethereum": 3000})
	svc.Evaluate(context.Background(), map[string]float64{"ethereum": 2970}) // -1%, silent
	if len(notify.msgs) != 0 {
		t.Fatalf("small move should not fire, got %v", notify.msgs)
	}

	svc.Evaluate(context.Background(), map[string]float64{"ethereum": 2700}) // -9% from 2970
	if len(notify.msgs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notify.msgs))
	}
}

func TestEvaluate_BadRuleSkipped(t *testing.T) {
	notify := &fakeNotifier{}
	svc := NewService(fakeWatchers{
		watcher("carol", "bitcoin", "whenever-it-moons"),
	}, notify)

	svc.Evaluate(context.Background(), map[string]float64{"bitcoin": 60000})
	if len(notify.msgs) != 0 {
		t.Fatalf("malformed rule should be skipped, got %v", notify.msgs)
	}
}

func TestEvaluate_MissingPriceSkipped(t *testing.T) {
	notify := &fakeNotifier{}
	svc := NewService(fakeWatchers{
		watcher("dave", "obscurecoin", "floor:1"),
	}, notify)

	svc.Evaluate(context.Background(), map[string]float64{"bitcoin": 60000})
	if len(notify.msgs) != 0 {
		t.Fatalf("watcher without a price should be skipped, got %v", notify.msgs)
	}
}
