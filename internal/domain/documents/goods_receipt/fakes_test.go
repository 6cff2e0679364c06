package goods_receipt

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
	"backoffice/internal/core/numerator"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/product"
	"backoffice/internal/domain/catalogs/taxrate"
	"backoffice/internal/domain/catalogs/warehouse"
	"backoffice/internal/domain/documents/purchase_invoice"
	"backoffice/internal/domain/registers/stock"
)

// memStore backs every port of the intake service. Mutations replace map values
// instead of editing them in place, so a shallow map copy is a full snapshot.
type memStore struct {
	mu sync.Mutex

	receipts      map[id.ID]*GoodsReceipt
	lines         map[id.ID][]Line
	products      map[id.ID]*product.Product
	batches       map[string]*product.Batch
	rates         taxrate.Table
	location      *warehouse.Location
	orderStatus   map[id.ID]string
	received      map[id.ID]decimal.Decimal
	invoices      map[id.ID]*purchase_invoice.Invoice
	masterUpdates []product.MasterUpdate
	movements     []stock.Movement

	locationCreates int
	writes          int

	failInvoice error
}

func newMemStore() *memStore {
	return &memStore{
		receipts:    make(map[id.ID]*GoodsReceipt),
		lines:       make(map[id.ID][]Line),
		products:    make(map[id.ID]*product.Product),
		batches:     make(map[string]*product.Batch),
		orderStatus: make(map[id.ID]string),
		received:    make(map[id.ID]decimal.Decimal),
		invoices:    make(map[id.ID]*purchase_invoice.Invoice),
	}
}

type memSnapshot struct {
	receipts        map[id.ID]*GoodsReceipt
	lines           map[id.ID][]Line
	products        map[id.ID]*product.Product
	batches         map[string]*product.Batch
	location        *warehouse.Location
	orderStatus     map[id.ID]string
	received        map[id.ID]decimal.Decimal
	invoices        map[id.ID]*purchase_invoice.Invoice
	masterUpdates   int
	movements       int
	locationCreates int
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{
		receipts:        maps.Clone(m.receipts),
		lines:           maps.Clone(m.lines),
		products:        maps.Clone(m.products),
		batches:         maps.Clone(m.batches),
		location:        m.location,
		orderStatus:     maps.Clone(m.orderStatus),
		received:        maps.Clone(m.received),
		invoices:        maps.Clone(m.invoices),
		masterUpdates:   len(m.masterUpdates),
		movements:       len(m.movements),
		locationCreates: m.locationCreates,
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = s.receipts
	m.lines = s.lines
	m.products = s.products
	m.batches = s.batches
	m.location = s.location
	m.orderStatus = s.orderStatus
	m.received = s.received
	m.invoices = s.invoices
	m.masterUpdates = m.masterUpdates[:s.masterUpdates]
	m.movements = m.movements[:s.movements]
	m.locationCreates = s.locationCreates
}

func (m *memStore) addProduct(name string) *product.Product {
	p := &product.Product{ID: id.New(), CompanyID: testCompany, Name: name, Price: decimal.NewFromInt(1), Cost: decimal.NewFromInt(1)}
	m.products[p.ID] = p
	return p
}

// Repository

func (m *memStore) Create(ctx context.Context, doc *GoodsReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	cp := *doc
	cp.Lines = nil
	m.receipts[doc.ID] = &cp
	return nil
}

func (m *memStore) CreateLines(ctx context.Context, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, l := range lines {
		m.lines[l.ReceiptID] = append(append([]Line(nil), m.lines[l.ReceiptID]...), l)
	}
	return nil
}

func (m *memStore) GetByID(ctx context.Context, companyID string, docID id.ID) (*GoodsReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.receipts[docID]
	if !ok || doc.CompanyID != companyID {
		return nil, apperror.NewNotFound("goods receipt", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (m *memStore) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Line(nil), m.lines[docID]...), nil
}

func (m *memStore) UpdateMetadata(ctx context.Context, doc *GoodsReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	cur, ok := m.receipts[doc.ID]
	if !ok {
		return apperror.NewNotFound("goods receipt", doc.ID.String())
	}
	cp := *cur
	cp.Metadata = doc.Metadata
	cp.UpdatedAt = doc.UpdatedAt
	m.receipts[doc.ID] = &cp
	return nil
}

func (m *memStore) UpdateLineMetadata(ctx context.Context, line *Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	lines := append([]Line(nil), m.lines[line.ReceiptID]...)
	for i := range lines {
		if lines[i].ID == line.ID {
			lines[i].Metadata = line.Metadata
			m.lines[line.ReceiptID] = lines
			return nil
		}
	}
	return apperror.NewNotFound("goods receipt line", line.ID.String())
}

func (m *memStore) FindByReference(ctx context.Context, companyID string, supplierID id.ID, reference string, since time.Time) (*GoodsReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *GoodsReceipt
	for _, r := range m.receipts {
		if r.CompanyID != companyID || r.SupplierID != supplierID || r.Metadata.Reference != reference {
			continue
		}
		if r.CreatedAt.Before(since) {
			continue
		}
		if found == nil || r.CreatedAt.After(found.CreatedAt) {
			found = r
		}
	}
	return found, nil
}

func (m *memStore) List(ctx context.Context, companyID string, filter ListFilter) (domain.ListResult[Summary], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []Summary
	for _, r := range m.receipts {
		if r.CompanyID != companyID {
			continue
		}
		items = append(items, Summary{ID: r.ID, Number: r.Number, Date: r.Date, Status: r.Status, SupplierID: r.SupplierID, LineCount: len(m.lines[r.ID])})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Number > items[j].Number })
	return domain.ListResult[Summary]{Items: items, TotalCount: int64(len(items)), Limit: filter.Limit, Offset: filter.Offset}, nil
}

// CatalogRepository

func (m *memStore) GetProductsByIDs(ctx context.Context, companyID string, ids []id.ID) ([]*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*product.Product
	for _, pid := range ids {
		if p, ok := m.products[pid]; ok && p.CompanyID == companyID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) FindBatches(ctx context.Context, companyID string, productIDs []id.ID, batchNos []string) ([]*product.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*product.Batch
	for _, pid := range productIDs {
		for _, no := range batchNos {
			if b, ok := m.batches[product.BatchKey(pid, no)]; ok && b.CompanyID == companyID {
				cp := *b
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (m *memStore) ListTaxRates(ctx context.Context, companyID string) (taxrate.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(taxrate.Table(nil), m.rates...), nil
}

func (m *memStore) UpsertBatch(ctx context.Context, b *product.Batch) (*product.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if existing, ok := m.batches[b.Key()]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *b
	m.batches[b.Key()] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) AddBatchStock(ctx context.Context, batchID id.ID, qty decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for k, b := range m.batches {
		if b.ID == batchID {
			cp := *b
			cp.OnHandQty = cp.OnHandQty.Add(qty)
			m.batches[k] = &cp
			return nil
		}
	}
	return apperror.NewNotFound("batch", batchID.String())
}

func (m *memStore) EnsureDefaultLocation(ctx context.Context, companyID string) (*warehouse.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.location == nil {
		m.writes++
		m.locationCreates++
		m.location = warehouse.NewDefaultLocation(companyID)
	}
	return m.location, nil
}

func (m *memStore) UpdateProductMaster(ctx context.Context, companyID string, upd product.MasterUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	p, ok := m.products[upd.ProductID]
	if !ok {
		return apperror.NewNotFound("product", upd.ProductID.String())
	}
	cp := *p
	if upd.Price != nil {
		cp.Price = *upd.Price
	}
	if upd.Cost != nil {
		cp.Cost = *upd.Cost
	}
	cp.Metadata = cp.Metadata.Merge(upd.Metadata)
	m.products[upd.ProductID] = &cp
	m.masterUpdates = append(m.masterUpdates, upd)
	return nil
}

// PurchaseOrders

func (m *memStore) MarkPartiallyReceived(ctx context.Context, companyID string, orderID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.orderStatus[orderID] = "partially_received"
	return nil
}

func (m *memStore) RecordReceived(ctx context.Context, orderID, lineID id.ID, qty decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.received[lineID] = m.received[lineID].Add(qty)
	return nil
}

// invoiceStore adapts memStore to InvoiceRepository, whose Create clashes with Repository.Create.
// StockRegister

func (m *memStore) RecordMovements(ctx context.Context, movements []stock.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movements...)
	return nil
}

type invoiceStore struct{ m *memStore }

func (s invoiceStore) Create(ctx context.Context, inv *purchase_invoice.Invoice) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failInvoice != nil {
		return s.m.failInvoice
	}
	s.m.writes++
	cp := *inv
	s.m.invoices[inv.ID] = &cp
	return nil
}

// fakeTx restores the store snapshot when fn fails.
type fakeTx struct {
	store   *memStore
	budgets []tx.Budget
}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

func (f *fakeTx) RunInTransactionWithBudget(ctx context.Context, budget tx.Budget, fn func(ctx context.Context) error) error {
	f.budgets = append(f.budgets, budget)
	return f.RunInTransaction(ctx, fn)
}

type fakeLedger struct {
	result LedgerResult
	err    error
	posted []id.ID
}

func (l *fakeLedger) PostPurchaseInvoice(ctx context.Context, invoiceID id.ID, actorID string) (LedgerResult, error) {
	l.posted = append(l.posted, invoiceID)
	return l.result, l.err
}

type fakeQueue struct {
	queued []id.ID
	reason string
}

func (q *fakeQueue) EnqueueLedgerPosting(ctx context.Context, invoiceID id.ID, actorID, reason string) error {
	q.queued = append(q.queued, invoiceID)
	q.reason = reason
	return nil
}

const (
	testCompany = "company-1"
	testUser    = "user-1"
)

type fixture struct {
	store  *memStore
	tx     *fakeTx
	ledger *fakeLedger
	queue  *fakeQueue
	nums   *numerator.MockGenerator
	svc    *Service
}

func newFixture(cfg Config) *fixture {
	store := newMemStore()
	f := &fixture{
		store:  store,
		tx:     &fakeTx{store: store},
		ledger: &fakeLedger{result: LedgerResult{Success: true, EntryID: "je-1"}},
		queue:  &fakeQueue{},
		nums:   &numerator.MockGenerator{},
	}
	svc, err := NewService(Deps{
		Repo:      store,
		Catalog:   store,
		Orders:    store,
		Invoices:  invoiceStore{m: store},
		Numerator: f.nums,
		TxManager: f.tx,
		Ledger:    f.ledger,
		Queue:     f.queue,
		Stock:     store,
	}, cfg)
	if err != nil {
		panic(err)
	}
	f.svc = svc
	return f
}

func callerCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: testUser, CompanyID: testCompany})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var receivedOn = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
