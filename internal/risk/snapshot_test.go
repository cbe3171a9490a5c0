package risk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeNormal},
		{in: "NORMAL", want: ModeNormal},
		{in: " normal ", want: ModeNormal},
		{in: "LOCKDOWN", want: ModeLockdown},
		{in: "lockdown", want: ModeLockdown},
		{in: "LockDown", want: ModeLockdown},
		{in: "PAUSED", wantErr: true},
		{in: "bogus", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidSnapshot) {
					t.Fatalf("err=%v want ErrInvalidSnapshot", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("mode=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestAccountSnapshot_UnmarshalGovernorState(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    Mode
		wantErr bool
	}{
		{name: "lowercase lockdown", raw: `{"governor_state":"lockdown"}`, want: ModeLockdown},
		{name: "empty", raw: `{"governor_state":""}`, want: ModeNormal},
		{name: "null", raw: `{"governor_state":null}`, want: ModeNormal},
		{name: "bogus", raw: `{"governor_state":"bogus"}`, wantErr: true},
		{name: "number", raw: `{"governor_state":1}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var snap AccountSnapshot
			err := json.Unmarshal([]byte(tc.raw), &snap)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got mode %q", snap.GovernorState)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if snap.GovernorState != tc.want {
				t.Fatalf("mode=%q want=%q", snap.GovernorState, tc.want)
			}
		})
	}
}

func TestAccountSnapshot_Validate(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(s *AccountSnapshot)
		field string
	}{
		{name: "healthy", mut: func(*AccountSnapshot) {}},
		{name: "zero values", mut: func(s *AccountSnapshot) { *s = AccountSnapshot{} }},
		{name: "negative equity", mut: func(s *AccountSnapshot) { s.Equity = d("-1") }, field: "equity"},
		{name: "negative peak", mut: func(s *AccountSnapshot) { s.PeakEquity = d("-0.01") }, field: "peak_equity"},
		{name: "negative open positions", mut: func(s *AccountSnapshot) { s.OpenPositions = -1 }, field: "open_positions"},
		{name: "negative per symbol", mut: func(s *AccountSnapshot) { s.PositionsPerSymbol = -2 }, field: "positions_per_symbol"},
		{name: "negative losses", mut: func(s *AccountSnapshot) { s.ConsecutiveLosses = -3 }, field: "consecutive_losses"},
		{name: "unknown mode", mut: func(s *AccountSnapshot) { s.GovernorState = "PAUSED" }, field: "governor_state"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := baseSnapshot()
			tc.mut(&snap)
			err := snap.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			var se *InvalidSnapshotError
			if !errors.As(err, &se) || !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("err=%v want *InvalidSnapshotError", err)
			}
			if se.Field != tc.field {
				t.Fatalf("field=%q want=%q", se.Field, tc.field)
			}
		})
	}
}

func TestAccountSnapshot_ValidateCanonicalisesMode(t *testing.T) {
	snap := baseSnapshot()
	snap.GovernorState = "lockdown"
	if err := snap.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if snap.GovernorState != ModeLockdown {
		t.Fatalf("mode=%q want=LOCKDOWN", snap.GovernorState)
	}
}

func TestEvaluate_LowercaseLockdownRejects(t *testing.T) {
	rec := &captureRecorder{}
	snap := baseSnapshot()
	snap.GovernorState = "lockdown"

	dec, err := newTestEvaluator(rec).Evaluate(context.Background(), basePlan(), snap)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if dec.Allowed || len(dec.Reasons) != 1 || dec.Reasons[0] != ReasonLockdown {
		t.Fatalf("decision=%+v want rejected for lockdown", dec)
	}
}

func TestEvaluate_InvalidSnapshotNotRecorded(t *testing.T) {
	rec := &captureRecorder{}
	snap := baseSnapshot()
	snap.OpenPositions = -1

	_, err := newTestEvaluator(rec).Evaluate(context.Background(), basePlan(), snap)
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("err=%v want ErrInvalidSnapshot", err)
	}
	if errors.Is(err, ErrPersistence) {
		t.Fatalf("invalid snapshot must not read as a persistence failure")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("recorded=%d want=0", len(rec.calls))
	}
}
