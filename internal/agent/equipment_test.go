package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
)

type stubProber struct {
	report domain.EquipmentReport
	err    error
	calls  int
}

func (p *stubProber) Probe(context.Context) (domain.EquipmentReport, error) {
	p.calls++
	return p.report, p.err
}

type stubEquipmentStore struct {
	upserts []domain.EquipmentReport
	err     error
}

func (s *stubEquipmentStore) UpsertEquipmentReport(_ context.Context, r domain.EquipmentReport) error {
	s.upserts = append(s.upserts, r)
	return s.err
}

func TestEquipmentCheckStampsIdentityAndClock(t *testing.T) {
	prober := &stubProber{report: domain.EquipmentReport{ChefCamera: true, CPUTemp: 51.5}}
	store := &stubEquipmentStore{}

	r := NewEquipment(config.EquipmentConfig{CheckInterval: time.Hour}, 7, prober, store, nil)
	at := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return at }

	r.check(context.Background())

	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserts))
	}
	got := store.upserts[0]
	if got.PointID != 7 || got.Hour != 15 || !got.CheckedAt.Equal(at) {
		t.Fatalf("identity not stamped: %+v", got)
	}
	if !got.ChefCamera || got.CPUTemp != 51.5 {
		t.Fatalf("probe payload lost: %+v", got)
	}
}

func TestEquipmentProbeFailureSkipsUpsert(t *testing.T) {
	prober := &stubProber{err: errors.New("camera unreachable")}
	store := &stubEquipmentStore{}

	r := NewEquipment(config.EquipmentConfig{CheckInterval: time.Hour}, 7, prober, store, nil)
	r.check(context.Background())

	if len(store.upserts) != 0 {
		t.Fatalf("failed probe still produced an upsert")
	}
}

func TestEquipmentRunChecksImmediately(t *testing.T) {
	prober := &stubProber{}
	store := &stubEquipmentStore{}

	r := NewEquipment(config.EquipmentConfig{CheckInterval: time.Hour}, 7, prober, store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)

	if prober.calls != 1 {
		t.Fatalf("probe calls = %d, want the immediate first check", prober.calls)
	}
}
