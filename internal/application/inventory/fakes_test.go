package inventory_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

// fakeStore simula artículos y la operación atómica de stock del backend.
type fakeStore struct {
	mu       sync.Mutex
	articles map[string]*entity.Article // sku -> artículo
	calls    []inventory.MutationCommand
	lookups  int

	lookupErr error
	reject    map[string]string // sku -> mensaje de rechazo
	panicOn   string
	block     chan struct{} // si no es nil, cada mutación espera aquí
}

func newFakeStore(stock map[string]int64) *fakeStore {
	s := &fakeStore{articles: map[string]*entity.Article{}, reject: map[string]string{}}
	var id int64
	for sku, v := range stock {
		id++
		s.articles[sku] = &entity.Article{ID: id, CediID: 7, SKU: sku, CurrentStock: decimal.NewFromInt(v)}
	}
	return s
}

func (s *fakeStore) GetBySKU(_ context.Context, cediID int64, sku string) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	a, ok := s.articles[sku]
	if !ok || a.CediID != cediID {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) ApplyMutation(_ context.Context, cmd inventory.MutationCommand) (inventory.MutationResult, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cmd)

	var art *entity.Article
	for _, a := range s.articles {
		if a.ID == cmd.ArticleID {
			art = a
		}
	}
	if art == nil {
		return inventory.MutationResult{}, errors.New("conexión rechazada")
	}
	if art.SKU == s.panicOn {
		panic("fallo inesperado")
	}
	if msg, ok := s.reject[art.SKU]; ok {
		return inventory.MutationResult{Success: false, Message: msg}, nil
	}
	plan, err := stockimport.PlanMovement(cmd.MovementType, art.CurrentStock, cmd.Quantity)
	if err != nil {
		return inventory.MutationResult{Success: false, Message: err.Error()}, nil
	}
	art.CurrentStock = plan.FinalStock
	return inventory.MutationResult{Success: true, NewStock: plan.FinalStock}, nil
}

func (s *fakeStore) mutationCalls() []inventory.MutationCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventory.MutationCommand(nil), s.calls...)
}

type fakeFacility struct {
	cediID int64
	err    error
	calls  int
}

func (f *fakeFacility) ResolveFacility(context.Context, string) (int64, error) {
	f.calls++
	return f.cediID, f.err
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []*entity.AuditLogEntry
}

func (f *fakeAudit) Create(_ context.Context, e *entity.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []inventory.BatchCompletedEvent
	err    error
}

func (f *fakePublisher) PublishBatchCompleted(_ context.Context, evt inventory.BatchCompletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return f.err
}

type fakeObserver struct {
	mu       sync.Mutex
	rows     map[stockimport.Status]int
	outcomes []string
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{rows: map[stockimport.Status]int{}}
}

func (o *fakeObserver) RowProcessed(s stockimport.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rows[s]++
}

func (o *fakeObserver) BatchFinished(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

type fakeSheet struct {
	records [][]string
	err     error
}

func (f fakeSheet) ReadRecords([]byte) ([][]string, error) { return f.records, f.err }
