package proformas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/internal/clients"
	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/mailer"
	"github.com/otka-dev/otka-backend/pkg/outbox"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type clientUpserter interface {
	UpsertByEmailTx(ctx context.Context, tx *gorm.DB, input clients.UpsertInput) (*models.Client, error)
}

// Renderer produces the printable proforma document.
type Renderer interface {
	ProformaPDF(proforma *models.Proforma) ([]byte, error)
}

// ServiceParams groups dependencies for the proforma service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Clients  clientUpserter
	Renderer Renderer
	Mailer   mailer.Sender
	Logger   *logger.Logger
	Cfg      config.ProformaConfig
	Company  config.CompanyConfig
}

// Service issues and manages proformas.
type Service struct {
	repo        Repository
	tx          txRunner
	outbox      outboxPublisher
	clients     clientUpserter
	renderer    Renderer
	mailer      mailer.Sender
	logg        *logger.Logger
	series      string
	defaultVAT  decimal.Decimal
	companyName string
}

// NewService builds a proforma service. Mailer may be nil when SMTP is not
// configured; send-email then degrades to a logged no-op.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("proformas repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client upserter required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("pdf renderer required")
	}

	series := params.Cfg.Series
	if series == "" {
		series = "PRF"
	}
	vat, err := decimal.NewFromString(params.Cfg.DefaultVATRate)
	if err != nil || vat.IsNegative() {
		vat = decimal.NewFromInt(19)
	}
	companyName := params.Company.Name
	if companyName == "" {
		companyName = "OTKA"
	}

	return &Service{
		repo:        params.Repo,
		tx:          params.Tx,
		outbox:      params.Outbox,
		clients:     params.Clients,
		renderer:    params.Renderer,
		mailer:      params.Mailer,
		logg:        params.Logger,
		series:      series,
		defaultVAT:  vat,
		companyName: companyName,
	}, nil
}

// Create issues a proforma: client upsert, number allocation, line math, and
// the outbox event all commit in one transaction.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Proforma, error) {
	if err := validateLines(input.Lines, true); err != nil {
		return nil, err
	}

	var created *models.Proforma
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		client, err := s.clients.UpsertByEmailTx(ctx, tx, input.Client)
		if err != nil {
			return err
		}

		number, err := repo.NextNumber(ctx, s.series)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate proforma number")
		}

		items, net, vat := s.buildLines(input.Lines)
		proforma := &models.Proforma{
			Series:      s.series,
			Number:      number,
			ClientID:    client.ID,
			ClientName:  client.Name,
			ClientEmail: client.Email,
			Status:      enums.ProformaStatusDraft,
			SubtotalNet: net,
			TotalVAT:    vat,
			TotalGross:  net.Add(vat),
			Items:       items,
		}

		if err := repo.Create(ctx, proforma); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create proforma")
		}
		created = proforma

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProformaIssued,
			AggregateType: enums.AggregateProforma,
			AggregateID:   proforma.ID,
			Data: ProformaIssuedEvent{
				ProformaID:  proforma.ID,
				Number:      proforma.FullNumber(),
				ClientEmail: proforma.ClientEmail,
				TotalGross:  proforma.TotalGross,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update edits a draft proforma: client naming and the full line set, with
// totals recomputed. Documents that left draft are immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Proforma, error) {
	if input.ClientName == nil && input.ClientEmail == nil && len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}
	if err := validateLines(input.Lines, false); err != nil {
		return nil, err
	}

	var updated *models.Proforma
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proforma, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if proforma.Status != enums.ProformaStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft proformas can be edited")
		}

		updates := map[string]any{}
		if input.ClientName != nil {
			updates["client_name"] = *input.ClientName
		}
		if input.ClientEmail != nil {
			updates["client_email"] = *input.ClientEmail
		}
		if len(input.Lines) > 0 {
			items, net, vat := s.buildLines(input.Lines)
			if err := repo.ReplaceItems(ctx, id, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace proforma lines")
			}
			updates["subtotal_net"] = net
			updates["total_vat"] = vat
			updates["total_gross"] = net.Add(vat)
		}
		if err := repo.UpdateFields(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update proforma")
		}

		updated, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get loads one proforma with lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Proforma, error) {
	return s.load(ctx, s.repo, id)
}

func (s *Service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Proforma, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proforma id required")
	}
	proforma, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proforma not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proforma")
	}
	return proforma, nil
}

// List returns proformas, newest first.
func (s *Service) List(ctx context.Context, status *enums.ProformaStatus, limit int, cursor *pagination.Cursor) ([]models.Proforma, *pagination.Cursor, error) {
	rows, next, err := s.repo.List(ctx, ListQuery{Status: status, Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proformas")
	}
	return rows, next, nil
}

// Confirm marks a sent or draft proforma as confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*models.Proforma, error) {
	proforma, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch proforma.Status {
	case enums.ProformaStatusDraft, enums.ProformaStatusSent:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("proforma cannot be confirmed from status %s", proforma.Status))
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]any{"status": enums.ProformaStatusConfirmed}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm proforma")
	}
	proforma.Status = enums.ProformaStatusConfirmed
	return proforma, nil
}

// Delete removes a proforma and its lines. Confirmed documents stay.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	proforma, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if proforma.Status == enums.ProformaStatusConfirmed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "confirmed proformas cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete proforma")
	}
	return nil
}

// Stats summarizes issued proformas per status.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proforma stats")
	}
	return stats, nil
}

// RenderPDF produces the printable document. Failure here is surfaced to the
// caller: the synchronous download endpoint has nothing useful to fall back to.
func (s *Service) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	proforma, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.renderer.ProformaPDF(proforma)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render proforma pdf")
	}
	return payload, fmt.Sprintf("%s.pdf", proforma.FullNumber()), nil
}

// SendEmail mails the proforma, with the rendered document attached, and
// marks it sent. Delivery is best-effort: a failed render or send is logged,
// the status update is skipped, and the caller gets the current record back.
func (s *Service) SendEmail(ctx context.Context, id uuid.UUID) (*models.Proforma, error) {
	proforma, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if proforma.Status == enums.ProformaStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled proformas cannot be sent")
	}

	if s.mailer == nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "smtp not configured, proforma email skipped")
		}
		return proforma, nil
	}

	document, err := s.renderer.ProformaPDF(proforma)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "proforma pdf render failed, email skipped", err)
		}
		return proforma, nil
	}

	body := fmt.Sprintf(
		"Buna ziua %s,\n\nAtasat gasiti proforma %s in valoare de %s RON (TVA inclus).\n\nVa multumim,\nEchipa %s",
		proforma.ClientName, proforma.FullNumber(), proforma.TotalGross.StringFixed(2), s.companyName,
	)
	err = s.mailer.Send(ctx, mailer.Message{
		To:      []string{proforma.ClientEmail},
		Subject: fmt.Sprintf("Proforma %s", proforma.FullNumber()),
		Body:    body,
		Attachments: []mailer.Attachment{
			{
				Filename:    fmt.Sprintf("%s.pdf", proforma.FullNumber()),
				ContentType: "application/pdf",
				Data:        document,
			},
		},
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "proforma email failed", err)
		}
		return proforma, nil
	}

	now := time.Now().UTC()
	updates := map[string]any{"sent_at": now}
	if proforma.Status == enums.ProformaStatusDraft {
		updates["status"] = enums.ProformaStatusSent
		proforma.Status = enums.ProformaStatusSent
	}
	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proforma sent")
	}
	proforma.SentAt = &now
	return proforma, nil
}

func validateLines(lines []LineInput, required bool) error {
	if required && len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line unit price cannot be negative")
		}
	}
	return nil
}

func (s *Service) buildLines(lines []LineInput) ([]models.ProformaItem, decimal.Decimal, decimal.Decimal) {
	items := make([]models.ProformaItem, 0, len(lines))
	net, vat := decimal.Zero, decimal.Zero
	for _, line := range lines {
		rate := s.defaultVAT
		if line.TaxRate != nil {
			rate = *line.TaxRate
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		lineNet := line.UnitPrice.Mul(qty)
		lineVAT := lineNet.Mul(rate).Div(decimal.NewFromInt(100))
		items = append(items, models.ProformaItem{
			Name:      line.Name,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			TaxRate:   rate,
			LineNet:   lineNet,
			LineVAT:   lineVAT,
		})
		net = net.Add(lineNet)
		vat = vat.Add(lineVAT)
	}
	return items, net, vat
}

func parseDecimal(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v)
}
