package partnerorders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/outbox"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service orchestrates the partner order lifecycle.
type Service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// ServiceParams groups dependencies for the partner order service.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Outbox outboxPublisher
}

// NewService builds a partner order service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("partner orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{repo: params.Repo, tx: params.Tx, outbox: params.Outbox}, nil
}

// CreateDraft opens a draft order with its initial item set.
func (s *Service) CreateDraft(ctx context.Context, input CreateOrderInput) (*models.PartnerOrder, error) {
	email := strings.TrimSpace(input.PartnerEmail)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	order := &models.PartnerOrder{
		PartnerEmail: email,
		Status:       enums.PartnerOrderStatusDraft,
		PartnerNotes: input.PartnerNotes,
		Items:        buildItems(input.Items),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create partner order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePartnerOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{Email: email, Role: string(enums.UserRolePartner)},
			Data: OrderCreatedEvent{
				OrderID:      order.ID,
				PartnerEmail: email,
				ItemCount:    len(order.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetForPartner loads a single order owned by the caller.
func (s *Service) GetForPartner(ctx context.Context, orderID uuid.UUID, partnerEmail string) (*models.PartnerOrder, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(order.PartnerEmail, partnerEmail) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to partner")
	}
	return order, nil
}

// ListForPartner returns the caller's orders, newest first.
func (s *Service) ListForPartner(ctx context.Context, partnerEmail string, limit int, cursor *pagination.Cursor) ([]models.PartnerOrder, *pagination.Cursor, error) {
	if strings.TrimSpace(partnerEmail) == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner identity missing")
	}
	orders, next, err := s.repo.List(ctx, ListQuery{PartnerEmail: partnerEmail, Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner orders")
	}
	return orders, next, nil
}

// ReplaceItems swaps the full item set. Only the owning partner may call it
// and only while the order is still a draft.
func (s *Service) ReplaceItems(ctx context.Context, input ReplaceItemsInput) (*models.PartnerOrder, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	var updated *models.PartnerOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(order.PartnerEmail, input.PartnerEmail) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to partner")
		}
		if order.Status != enums.PartnerOrderStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "items can only be edited while the order is a draft")
		}

		if err := repo.ReplaceItems(ctx, order.ID, buildItems(input.Items)); err != nil {
			if errors.Is(err, ErrNotDraft) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "items can only be edited while the order is a draft")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order items")
		}
		if input.PartnerNotes != nil {
			if err := repo.UpdateFields(ctx, order.ID, map[string]any{"partner_notes": *input.PartnerNotes}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update partner notes")
			}
		}

		updated, err = s.loadOrder(ctx, repo, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Submit moves a draft into review and stamps submitted_at.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*models.PartnerOrder, error) {
	var submitted *models.PartnerOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(order.PartnerEmail, input.PartnerEmail) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to partner")
		}
		if !order.Status.CanTransitionTo(enums.PartnerOrderStatusSubmitted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot be submitted from status %s", order.Status))
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":       enums.PartnerOrderStatusSubmitted,
			"submitted_at": now,
		}
		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit order")
		}
		order.Status = enums.PartnerOrderStatusSubmitted
		order.SubmittedAt = &now
		submitted = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderSubmitted,
			AggregateType: enums.AggregatePartnerOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{Email: order.PartnerEmail, Role: string(enums.UserRolePartner)},
			Data: OrderSubmittedEvent{
				OrderID:      order.ID,
				PartnerEmail: order.PartnerEmail,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

// AdminGet loads any order with its items.
func (s *Service) AdminGet(ctx context.Context, orderID uuid.UUID) (*models.PartnerOrder, error) {
	return s.loadOrder(ctx, s.repo, orderID)
}

// AdminList returns orders across all partners with optional status filter.
func (s *Service) AdminList(ctx context.Context, status *enums.PartnerOrderStatus, limit int, cursor *pagination.Cursor) ([]models.PartnerOrder, *pagination.Cursor, error) {
	orders, next, err := s.repo.List(ctx, ListQuery{Status: status, Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, next, nil
}

// AdminListAll returns the unpaginated set for exports.
func (s *Service) AdminListAll(ctx context.Context, status *enums.PartnerOrderStatus) ([]models.PartnerOrder, error) {
	orders, err := s.repo.ListAllByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders for export")
	}
	return orders, nil
}

// AdminUpdate applies status transitions, notes, and document URLs. Status
// changes are validated against the transition table and emit a lifecycle
// event in the same transaction.
func (s *Service) AdminUpdate(ctx context.Context, input AdminUpdateInput) (*models.PartnerOrder, error) {
	if input.Status == nil && input.AdminNotes == nil && input.AgreementURL == nil && input.ProformaURL == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", *input.Status))
	}

	var updated *models.PartnerOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.AdminNotes != nil {
			updates["admin_notes"] = *input.AdminNotes
		}
		if input.AgreementURL != nil {
			updates["agreement_url"] = *input.AgreementURL
		}
		if input.ProformaURL != nil {
			updates["proforma_url"] = *input.ProformaURL
		}

		fromStatus := order.Status
		statusChanged := input.Status != nil && *input.Status != fromStatus
		if statusChanged {
			if !fromStatus.CanTransitionTo(*input.Status) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cannot transition from %s to %s", fromStatus, *input.Status))
			}
			updates["status"] = *input.Status
			if *input.Status == enums.PartnerOrderStatusSubmitted && order.SubmittedAt == nil {
				updates["submitted_at"] = time.Now().UTC()
			}
		}

		if len(updates) > 0 {
			if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
			}
		}

		updated, err = s.loadOrder(ctx, repo, order.ID)
		if err != nil {
			return err
		}

		if !statusChanged {
			return nil
		}

		actor := &outbox.ActorRef{Email: input.ActorEmail, Role: string(enums.UserRoleAdmin)}
		if *input.Status == enums.PartnerOrderStatusCancelled {
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCancelled,
				AggregateType: enums.AggregatePartnerOrder,
				AggregateID:   order.ID,
				Actor:         actor,
				Data: OrderCancelledEvent{
					OrderID:      order.ID,
					PartnerEmail: order.PartnerEmail,
					FromStatus:   fromStatus,
				},
			})
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStateChanged,
			AggregateType: enums.AggregatePartnerOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: OrderStateChangedEvent{
				OrderID:      order.ID,
				PartnerEmail: order.PartnerEmail,
				FromStatus:   fromStatus,
				ToStatus:     *input.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.PartnerOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func buildItems(inputs []ItemInput) []models.PartnerOrderItem {
	items := make([]models.PartnerOrderItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.PartnerOrderItem{
			RowNumber:        in.RowNumber,
			ManufacturerName: in.ManufacturerName,
			ProductCode:      in.ProductCode,
			Quantity:         in.Quantity,
			FinishCode:       in.FinishCode,
			PartnerPrice:     in.PartnerPrice,
		})
	}
	return items
}
