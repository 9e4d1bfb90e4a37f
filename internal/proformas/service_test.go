package proformas

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	clientspkg "github.com/otka-dev/otka-backend/internal/clients"
	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/mailer"
	"github.com/otka-dev/otka-backend/pkg/outbox"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

type stubRepo struct {
	nextNumber    int64
	created       *models.Proforma
	stored        *models.Proforma
	updates       map[string]any
	replacedItems []models.ProformaItem
	deleted       bool
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) NextNumber(ctx context.Context, series string) (int64, error) {
	if s.nextNumber == 0 {
		s.nextNumber = 1
	}
	return s.nextNumber, nil
}

func (s *stubRepo) Create(ctx context.Context, proforma *models.Proforma) error {
	if proforma.ID == uuid.Nil {
		proforma.ID = uuid.New()
	}
	s.created = proforma
	s.stored = proforma
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Proforma, error) {
	if s.stored == nil || s.stored.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.stored
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, query ListQuery) ([]models.Proforma, *pagination.Cursor, error) {
	if s.stored == nil {
		return nil, nil, nil
	}
	return []models.Proforma{*s.stored}, nil, nil
}

func (s *stubRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if s.stored != nil && s.stored.ID == id {
		if status, ok := updates["status"].(enums.ProformaStatus); ok {
			s.stored.Status = status
		}
	}
	return nil
}

func (s *stubRepo) ReplaceItems(ctx context.Context, proformaID uuid.UUID, items []models.ProformaItem) error {
	s.replacedItems = items
	if s.stored != nil && s.stored.ID == proformaID {
		s.stored.Items = items
	}
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubRepo) Stats(ctx context.Context) (*Stats, error) {
	return &Stats{}, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubClients struct{}

func (stubClients) UpsertByEmailTx(ctx context.Context, tx *gorm.DB, input clientspkg.UpsertInput) (*models.Client, error) {
	return &models.Client{ID: uuid.New(), Name: input.Name, Email: input.Email}, nil
}

type stubRenderer struct {
	err error
}

func (s stubRenderer) ProformaPDF(proforma *models.Proforma) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4"), nil
}

type stubMailer struct {
	sent []mailer.Message
	err  error
}

func (s *stubMailer) Send(ctx context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestService(t *testing.T, repo Repository, sender mailer.Sender) (*Service, *stubOutbox) {
	t.Helper()
	ob := &stubOutbox{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTx{},
		Outbox:   ob,
		Clients:  stubClients{},
		Renderer: stubRenderer{},
		Mailer:   sender,
		Cfg:      config.ProformaConfig{Series: "PRF", DefaultVATRate: "19"},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, ob
}

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", v, err)
	}
	return d
}

func TestCreateComputesTotalsWithDefaultVAT(t *testing.T) {
	repo := &stubRepo{nextNumber: 42}
	svc, ob := newTestService(t, repo, nil)

	proforma, err := svc.Create(context.Background(), CreateInput{
		Client: clientspkg.UpsertInput{Name: "ACME SRL", Email: "office@acme.ro"},
		Lines: []LineInput{
			{Name: "Blat stejar", Quantity: 2, UnitPrice: dec(t, "100.00")},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if proforma.FullNumber() != "PRF000042" {
		t.Fatalf("expected PRF000042, got %s", proforma.FullNumber())
	}
	if proforma.ClientID == uuid.Nil {
		t.Fatal("expected the upserted client linked to the proforma")
	}
	if !proforma.SubtotalNet.Equal(dec(t, "200")) {
		t.Fatalf("expected net 200, got %s", proforma.SubtotalNet)
	}
	if !proforma.TotalVAT.Equal(dec(t, "38")) {
		t.Fatalf("expected vat 38, got %s", proforma.TotalVAT)
	}
	if !proforma.TotalGross.Equal(dec(t, "238")) {
		t.Fatalf("expected gross 238, got %s", proforma.TotalGross)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventProformaIssued {
		t.Fatalf("expected proforma.issued event, got %+v", ob.events)
	}
}

func TestCreateHonoursPerLineTaxRate(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := newTestService(t, repo, nil)

	nine := dec(t, "9")
	proforma, err := svc.Create(context.Background(), CreateInput{
		Client: clientspkg.UpsertInput{Name: "ACME SRL", Email: "office@acme.ro"},
		Lines: []LineInput{
			{Name: "Carte tehnica", Quantity: 1, UnitPrice: dec(t, "100.00"), TaxRate: &nine},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !proforma.TotalVAT.Equal(dec(t, "9")) {
		t.Fatalf("expected vat 9, got %s", proforma.TotalVAT)
	}
}

func TestCreateRejectsEmptyLines(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Client: clientspkg.UpsertInput{Name: "ACME SRL", Email: "office@acme.ro"},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmRefusedWhenCancelled(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: &models.Proforma{ID: id, Status: enums.ProformaStatusCancelled}}
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.Confirm(context.Background(), id)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDeleteRefusedWhenConfirmed(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: &models.Proforma{ID: id, Status: enums.ProformaStatusConfirmed}}
	svc, _ := newTestService(t, repo, nil)

	err := svc.Delete(context.Background(), id)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.deleted {
		t.Fatal("confirmed proforma must not be deleted")
	}
}

func TestSendEmailBestEffortOnFailure(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: &models.Proforma{
		ID:          id,
		Series:      "PRF",
		Number:      7,
		ClientName:  "ACME SRL",
		ClientEmail: "office@acme.ro",
		Status:      enums.ProformaStatusDraft,
		TotalGross:  dec(t, "238"),
	}}
	sender := &stubMailer{err: context.DeadlineExceeded}
	svc, _ := newTestService(t, repo, sender)

	proforma, err := svc.SendEmail(context.Background(), id)
	if err != nil {
		t.Fatalf("SendEmail should swallow delivery failures, got %v", err)
	}
	if proforma.Status != enums.ProformaStatusDraft {
		t.Fatalf("status must not advance on failed send, got %s", proforma.Status)
	}
}

func TestSendEmailMarksSent(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: &models.Proforma{
		ID:          id,
		Series:      "PRF",
		Number:      7,
		ClientName:  "ACME SRL",
		ClientEmail: "office@acme.ro",
		Status:      enums.ProformaStatusDraft,
		TotalGross:  dec(t, "238"),
	}}
	sender := &stubMailer{}
	svc, _ := newTestService(t, repo, sender)

	proforma, err := svc.SendEmail(context.Background(), id)
	if err != nil {
		t.Fatalf("SendEmail returned error: %v", err)
	}
	if proforma.Status != enums.ProformaStatusSent {
		t.Fatalf("expected sent, got %s", proforma.Status)
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "office@acme.ro" {
		t.Fatalf("expected one mail to the client, got %+v", sender.sent)
	}

	atts := sender.sent[0].Attachments
	if len(atts) != 1 {
		t.Fatalf("expected the rendered document attached, got %+v", atts)
	}
	if atts[0].Filename != "PRF000007.pdf" || atts[0].ContentType != "application/pdf" {
		t.Fatalf("unexpected attachment metadata: %+v", atts[0])
	}
	if string(atts[0].Data[:4]) != "%PDF" {
		t.Fatalf("expected pdf payload, got %q", atts[0].Data)
	}
}

func TestSendEmailSkipsDeliveryWhenRenderFails(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: &models.Proforma{
		ID:          id,
		Series:      "PRF",
		Number:      7,
		ClientEmail: "office@acme.ro",
		Status:      enums.ProformaStatusDraft,
		TotalGross:  dec(t, "238"),
	}}
	sender := &stubMailer{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTx{},
		Outbox:   &stubOutbox{},
		Clients:  stubClients{},
		Renderer: stubRenderer{err: context.DeadlineExceeded},
		Mailer:   sender,
		Cfg:      config.ProformaConfig{Series: "PRF", DefaultVATRate: "19"},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	proforma, err := svc.SendEmail(context.Background(), id)
	if err != nil {
		t.Fatalf("SendEmail should swallow render failures, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("mail must not go out without its document")
	}
	if proforma.Status != enums.ProformaStatusDraft {
		t.Fatalf("status must not advance on failed render, got %s", proforma.Status)
	}
}

func TestUpdateReplacesLinesAndRecomputesTotals(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: &models.Proforma{
		ID:          id,
		Series:      "PRF",
		Number:      7,
		ClientName:  "ACME SRL",
		ClientEmail: "office@acme.ro",
		Status:      enums.ProformaStatusDraft,
	}}
	svc, _ := newTestService(t, repo, nil)

	newName := "ACME Distribution SRL"
	_, err := svc.Update(context.Background(), id, UpdateInput{
		ClientName: &newName,
		Lines: []LineInput{
			{Name: "Blat nuc", Quantity: 3, UnitPrice: dec(t, "50.00")},
		},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if len(repo.replacedItems) != 1 || repo.replacedItems[0].Name != "Blat nuc" {
		t.Fatalf("expected the line set replaced, got %+v", repo.replacedItems)
	}
	if repo.updates["client_name"] != newName {
		t.Fatalf("expected client name update, got %+v", repo.updates)
	}
	net, ok := repo.updates["subtotal_net"].(decimal.Decimal)
	if !ok || !net.Equal(dec(t, "150")) {
		t.Fatalf("expected net 150, got %+v", repo.updates["subtotal_net"])
	}
	gross, ok := repo.updates["total_gross"].(decimal.Decimal)
	if !ok || !gross.Equal(dec(t, "178.5")) {
		t.Fatalf("expected gross 178.5, got %+v", repo.updates["total_gross"])
	}
}

func TestUpdateRefusedAfterDraft(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: &models.Proforma{ID: id, Status: enums.ProformaStatusConfirmed}}
	svc, _ := newTestService(t, repo, nil)

	name := "ACME SRL"
	_, err := svc.Update(context.Background(), id, UpdateInput{ClientName: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.replacedItems != nil {
		t.Fatal("confirmed proforma lines must stay untouched")
	}
}

func TestUpdateRequiresAField(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{}, nil)

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
