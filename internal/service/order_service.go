package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prepline/internal/hub"
	"prepline/internal/model"
	"prepline/internal/repository"
	"prepline/internal/timer"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	timers      *timer.Registry
	notifier    Notifier
	stats       StatsRefresher
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	timers *timer.Registry,
	notifier Notifier,
	stats StatsRefresher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		timers:      timers,
		notifier:    notifier,
		stats:       stats,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create creates an order with its lines. Every requested product is
// decremented inside one transaction; if any single decrement fails the
// whole order aborts with no observable partial write.
func (s *orderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderDetail, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]string, len(req.Lines))
	for i, line := range req.Lines {
		productIDs[i] = line.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range productIDs {
		if _, ok := byID[id]; !ok {
			s.logger.Warn().Str("product_id", id).Msg("unknown product in order request")
			return nil, model.ErrProductNotFound
		}
	}

	order := &model.Order{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		TableNumber:   req.TableNumber,
		PartySize:     req.PartySize,
		Takeaway:      req.Takeaway,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     time.Now(),
	}
	if order.Takeaway {
		order.TableNumber = nil
		order.PartySize = nil
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	lines := make([]model.OrderLine, len(req.Lines))
	categories := make([]string, 0, 2)
	seen := make(map[string]bool, 2)
	for i, lr := range req.Lines {
		var ok bool
		ok, err = s.productRepo.TryDecrement(ctx, tx, lr.ProductID, lr.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if !ok {
			err = &model.InsufficientStockError{ProductID: lr.ProductID}
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", lr.ProductID).
				Int("quantity", lr.Quantity).
				Msg("order rejected: insufficient stock")
			return nil, err
		}

		p := byID[lr.ProductID]
		lines[i] = model.OrderLine{
			ID:                uuid.New(),
			OrderID:           order.ID,
			ProductID:         p.ID,
			ProductName:       p.Name,
			UnitPrice:         p.Price,
			DashboardCategory: p.DashboardCategory,
			Quantity:          lr.Quantity,
			Status:            model.StatusWaiting,
		}
		if !seen[p.DashboardCategory] {
			seen[p.DashboardCategory] = true
			categories = append(categories, p.DashboardCategory)
		}
	}

	if err = s.orderRepo.CreateOrderLines(ctx, tx, lines); err != nil {
		return nil, fmt.Errorf("failed to create order lines: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The durable work is done; notifications and statistics are
	// best-effort side effects from here on.
	for _, category := range categories {
		s.notifier.Notify(category, hub.Notification{Event: hub.EventOrdersChanged, Category: category})
	}
	s.stats.Refresh()

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("line_count", len(lines)).
		Strs("categories", categories).
		Msg("order created")

	detail := &model.OrderDetail{Order: *order, Lines: lines}
	for _, line := range lines {
		detail.Total += line.UnitPrice * float64(line.Quantity)
	}
	return detail, nil
}

// Delete removes an order, restoring stock and sold counters for every line.
// An order with zero lines deletes cleanly.
func (s *orderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var lines []model.OrderLine
	if lines, err = s.orderRepo.GetLines(ctx, tx, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	for _, line := range lines {
		if err = s.productRepo.Restore(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
	}

	var categories []string
	if categories, err = s.orderRepo.Categories(ctx, tx, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err = s.orderRepo.Delete(ctx, tx, orderID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	for _, category := range categories {
		s.timers.Cancel(timer.Key{OrderID: orderID, Category: category})
	}
	s.stats.Refresh()

	s.logger.Info().Str("order_id", orderID.String()).Int("line_count", len(lines)).Msg("order deleted")
	return nil
}

// Advance performs a manual transition for the (order, category) pair. The
// read and the category-wide write share one transaction with the pair's
// rows locked, so concurrent transitions for the same key serialise and
// exactly one next state wins.
func (s *orderService) Advance(ctx context.Context, orderID uuid.UUID, category string) (model.Status, error) {
	category = normalizeCategory(category)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to advance order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var current model.Status
	if current, err = s.orderRepo.CategoryStatusForUpdate(ctx, tx, orderID, category); err != nil {
		return "", err
	}

	var next model.Status
	if next, err = current.Next(); err != nil {
		return "", err
	}

	if _, err = s.orderRepo.SetCategoryStatus(ctx, tx, orderID, category, next); err != nil {
		return "", fmt.Errorf("failed to advance order: %w", err)
	}

	if _, err = s.orderRepo.RecomputeCompleted(ctx, tx, orderID); err != nil {
		return "", fmt.Errorf("failed to advance order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to advance order: %w", err)
	}

	key := timer.Key{OrderID: orderID, Category: category}

	// Manual intervention always wins over a pending auto-completion.
	if current == model.StatusReady {
		s.timers.Cancel(key)
	}

	s.notifier.Notify(category, hub.Notification{Event: hub.EventOrdersChanged, Category: category})
	s.stats.Refresh()

	if next == model.StatusReady {
		s.timers.Cancel(key)
		s.timers.Start(key, s.autoComplete)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("category", category).
		Str("from", string(current)).
		Str("to", string(next)).
		Msg("category advanced")

	return next, nil
}

// autoComplete is the automatic completion path, invoked by an expired
// timer on its own goroutine. The write is gated on the category still
// being ready; losing that race is silent and leaves no trace.
func (s *orderService) autoComplete(key timer.Key) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("auto-complete failed to begin transaction")
		return
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var updated int64
	if updated, err = s.orderRepo.CompleteCategoryIfReady(ctx, tx, key.OrderID, key.Category); err != nil {
		s.logger.Error().Err(err).Str("order_id", key.OrderID.String()).Msg("auto-complete write failed")
		return
	}

	if updated == 0 {
		// A manual transition won the race between the timer's last
		// poll and this write.
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		s.logger.Debug().
			Str("order_id", key.OrderID.String()).
			Str("category", key.Category).
			Msg("auto-complete superseded by manual transition")
		return
	}

	if _, err = s.orderRepo.RecomputeCompleted(ctx, tx, key.OrderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", key.OrderID.String()).Msg("auto-complete recompute failed")
		return
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", key.OrderID.String()).Msg("auto-complete commit failed")
		return
	}

	s.notifier.Notify(key.Category, hub.Notification{Event: hub.EventOrdersChanged, Category: key.Category})
	s.stats.Refresh()

	s.logger.Info().
		Str("order_id", key.OrderID.String()).
		Str("category", key.Category).
		Msg("category auto-completed")
}

// Board returns the dashboard view of one category.
func (s *orderService) Board(ctx context.Context, category string) (*model.Board, error) {
	category = normalizeCategory(category)

	pending, completed, err := s.orderRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}

	return &model.Board{Category: category, Pending: pending, Completed: completed}, nil
}

// Detail returns an order with its lines and total.
func (s *orderService) Detail(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	detail, err := s.orderRepo.GetDetail(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if detail == nil {
		return nil, model.ErrOrderNotFound
	}
	return detail, nil
}

// ListAll returns every order with its total, newest first.
func (s *orderService) ListAll(ctx context.Context) ([]model.OrderSummary, error) {
	return s.orderRepo.ListAll(ctx)
}

// UpdateHeader applies an admin edit to the order header.
func (s *orderService) UpdateHeader(ctx context.Context, orderID uuid.UUID, upd *model.OrderUpdate) error {
	if upd.PaymentMethod != model.PaymentCash && upd.PaymentMethod != model.PaymentCard {
		return model.NewDomainError(model.ErrCodeMissingField, "Payment method must be cash or card")
	}

	if err := s.orderRepo.UpdateHeader(ctx, orderID, upd); err != nil {
		return err
	}

	s.stats.Refresh()
	return nil
}

// ResetData wipes all orders and restores every product. Debug tooling.
func (s *orderService) ResetData(ctx context.Context) error {
	if err := s.orderRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to reset orders: %w", err)
	}

	if err := s.productRepo.ResetAll(ctx, 100); err != nil {
		return fmt.Errorf("failed to reset products: %w", err)
	}

	s.stats.Refresh()
	s.logger.Warn().Msg("all order data reset")
	return nil
}

// validateCreateRequest validates the order creation payload.
func (s *orderService) validateCreateRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Order request is required")
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Customer name is required")
	}

	if req.PaymentMethod != model.PaymentCash && req.PaymentMethod != model.PaymentCard {
		return model.NewDomainError(model.ErrCodeMissingField, "Payment method must be cash or card")
	}

	if len(req.Lines) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Order must contain at least one line")
	}

	for i, line := range req.Lines {
		if line.ProductID == "" {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("Line %d: product ID is required", i))
		}
		if line.Quantity <= 0 {
			s.logger.Warn().
				Int("line_index", i).
				Str("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

// normalizeCategory folds a routing key to its canonical lower-case form.
func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
