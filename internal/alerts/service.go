// Package alerts evaluates user price watchers against successive price
// snapshots and fires webhook notifications when a rule trips.
package alerts

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/eulaly/discoin-backend/internal/models"
)

// RuleKind discriminates the watcher rule grammar.
type RuleKind int

const (
	RulePercentUp RuleKind = iota
	RulePercentDown
	RuleFloor
	RuleCeiling
)

type Rule struct {
	Kind  RuleKind
	Value float64 // percent for up/down, USD for floor/ceiling
}

// ParseRule validates and decodes a watcher rule string. Accepted forms:
// "+10", "-5", "floor:2000", "ceiling:4000".
func ParseRule(s string) (Rule, error) {
	switch {
	case strings.HasPrefix(s, "+"), strings.HasPrefix(s, "-"):
		v, err := strconv.ParseFloat(s[1:], 64)
		if err != nil || v <= 0 {
			return Rule{}, fmt.Errorf("invalid percent rule %q", s)
		}
		if s[0] == '+' {
			return Rule{Kind: RulePercentUp, Value: v}, nil
		}
		return Rule{Kind: RulePercentDown, Value: v}, nil
	case strings.HasPrefix(s, "floor:"):
		v, err := strconv.ParseFloat(strings.TrimPrefix(s, "floor:"), 64)
		if err != nil || v <= 0 {
			return Rule{}, fmt.Errorf("invalid floor rule %q", s)
		}
		return Rule{Kind: RuleFloor, Value: v}, nil
	case strings.HasPrefix(s, "ceiling:"):
		v, err := strconv.ParseFloat(strings.TrimPrefix(s, "ceiling:"), 64)
		if err != nil || v <= 0 {
			return Rule{}, fmt.Errorf("invalid ceiling rule %q", s)
		}
		return Rule{Kind: RuleCeiling, Value: v}, nil
	default:
		return Rule{}, fmt.Errorf("invalid rule %q: must start with +, -, floor: or ceiling:", s)
	}
}

// WatcherSource yields the active watcher set. Satisfied by
// repository.WatcherRepo.
type WatcherSource interface {
	GetActive(ctx context.Context) ([]models.Watcher, error)
}

// Notifier delivers a single alert message. Satisfied by
// notifications.Sender.
type Notifier interface {
	Send(msg string)
}

type Service struct {
	watchers WatcherSource
	notify   Notifier

	mu       sync.Mutex
	lastSeen map[string]float64 // currency -> price at previous evaluation
}

func NewService(watchers WatcherSource, notify Notifier) *Service {
	return &Service{
		watchers: watchers,
		notify:   notify,
		lastSeen: make(map[string]float64),
	}
}

// Evaluate checks every active watcher against the fresh snapshot. Percent
// rules compare against the previous snapshot (the first evaluation only
// seeds the baseline). Floor/ceiling rules compare against the absolute
// price. Evaluation never fails the refresh; problems are logged.
func (s *Service) Evaluate(ctx context.Context, prices map[string]float64) {
	active, err := s.watchers.GetActive(ctx)
	if err != nil {
		fmt.Printf("[ALERTS] Could not load watchers: %v\n", err)
		return
	}

	s.mu.Lock()
	prev := s.lastSeen
	next := make(map[string]float64, len(prices))
	for c, p := range prices {
		next[c] = p
	}
	s.lastSeen = next
	s.mu.Unlock()

	fired := 0
	for _, w := range active {
		price, ok := prices[w.Currency]
		if !ok {
			continue
		}

		rule, err := ParseRule(w.Rule)
		if err != nil {
			fmt.Printf("[ALERTS] Skipping watcher %s: %v\n", w.ID, err)
			continue
		}

		if msg, ok := evaluate(rule, w, price, prev); ok {
			s.notify.Send(msg)
			fired++
		}
	}

	if fired > 0 {
		fmt.Printf("[ALERTS] %d watcher(s) fired\n", fired)
	}
}

func evaluate(rule Rule, w models.Watcher, price float64, prev map[string]float64) (string, bool) {
	switch rule.Kind {
	case RuleFloor:
		if price <= rule.Value {
			return fmt.Sprintf("alert for %s: %s at $%.2f, at or below floor $%.2f",
				w.Owner, w.Currency, price, rule.Value), true
		}
	case RuleCeiling:
		if price >= rule.Value {
			return fmt.Sprintf("alert for %s: %s at $%.2f, at or above ceiling $%.2f",
				w.Owner, w.Currency, price, rule.Value), true
		}
	case RulePercentUp, RulePercentDown:
		base, ok := prev[w.Currency]
		if !ok || base == 0 {
			return "", false // first sighting seeds the baseline
		}
		pct := (price - base) / base * 100
		if rule.Kind == RulePercentUp && pct >= rule.Value {
			return fmt.Sprintf("alert for %s: %s up %.2f%% since last check ($%.2f)",
				w.Owner, w.Currency, pct, price), true
		}
		if rule.Kind == RulePercentDown && pct <= -rule.Value {
			return fmt.Sprintf("alert for %s: %s down %.2f%% since last check ($%.2f)",
				w.Owner, w.Currency, -pct, price), true
		}
	}
	return "", false
}
