package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/config"
	"tmm-bienestar/internal/models"

	"github.com/google/uuid"
)

// FlowState is one step of the payment modal.
type FlowState string

const (
	StateSelection   FlowState = "selection"
	StateBankDetails FlowState = "bank_details"
	StateMPRedirect  FlowState = "mp_redirect"
	StateUpload      FlowState = "upload"
	StateSuccess     FlowState = "success"
)

// PaymentMethod is the option picked on the selection step.
type PaymentMethod string

const (
	MethodMercadoPago PaymentMethod = "mercadopago"
	MethodTransfer    PaymentMethod = "transfer"
	// MethodAlreadyPaid jumps straight to the receipt upload.
	MethodAlreadyPaid PaymentMethod = "already_paid"
)

var (
	ErrFlowNotFound      = errors.New("payment flow not found")
	ErrInvalidTransition = errors.New("invalid payment flow transition")
)

// ConfirmFunc creates the enrollment or order behind the flow. It runs
// lazily, exactly once per flow, and its result persists server-side even
// if the flow is later abandoned.
type ConfirmFunc func(ctx context.Context) (enrollmentID, orderID int, err error)

// Flow is the transient state of one open payment modal.
type Flow struct {
	ID           string
	State        FlowState
	Amount       float64
	ItemName     string
	EnrollmentID int
	OrderID      int

	confirm   ConfirmFunc
	confirmed bool
	onSuccess func()
	createdAt time.Time
}

// PaymentFlowService runs the payment modal state machine: selection →
// {mp_redirect | bank_details | upload} → upload → success, with
// bank_details ↔ upload navigable both ways. Closing resets to selection
// and never rolls back an already-created enrollment or order.
type PaymentFlowService struct {
	mu      sync.Mutex
	flows   map[string]*Flow
	bank    config.BankConfig
	mpLink  string
	maxAge  time.Duration
}

// NewPaymentFlowService creates the flow registry. Abandoned flows are
// swept after an hour.
func NewPaymentFlowService(bank config.BankConfig, mpLink string) *PaymentFlowService {
	s := &PaymentFlowService{
		flows:  make(map[string]*Flow),
		bank:   bank,
		mpLink: mpLink,
		maxAge: time.Hour,
	}
	go s.cleanup()
	return s
}

// BankDetails returns the static transfer details shown on the
// bank_details step.
func (s *PaymentFlowService) BankDetails() config.BankConfig {
	return s.bank
}

// MercadoPagoLink returns the external payment link.
func (s *PaymentFlowService) MercadoPagoLink() string {
	return s.mpLink
}

// Start opens a flow in the selection state. confirm creates the
// enrollment/order when first needed; onSuccess fires once on a completed
// upload. Either may be nil (an order flow arrives with OrderID set).
func (s *PaymentFlowService) Start(amount float64, itemName string, orderID int, confirm ConfirmFunc, onSuccess func()) *Flow {
	flow := &Flow{
		ID:        uuid.NewString(),
		State:     StateSelection,
		Amount:    amount,
		ItemName:  itemName,
		OrderID:   orderID,
		confirm:   confirm,
		onSuccess: onSuccess,
		createdAt: time.Now(),
	}

	s.mu.Lock()
	s.flows[flow.ID] = flow
	s.mu.Unlock()
	return flow
}

// Resume opens a flow for an enrollment or order that already exists and
// is still unpaid. Nothing needs confirming; the flow goes straight to the
// method selection.
func (s *PaymentFlowService) Resume(amount float64, itemName string, enrollmentID, orderID int) *Flow {
	flow := &Flow{
		ID:           uuid.NewString(),
		State:        StateSelection,
		Amount:       amount,
		ItemName:     itemName,
		EnrollmentID: enrollmentID,
		OrderID:      orderID,
		createdAt:    time.Now(),
	}

	s.mu.Lock()
	s.flows[flow.ID] = flow
	s.mu.Unlock()
	return flow
}

// Get looks a flow up by id.
func (s *PaymentFlowService) Get(flowID string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[flowID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return flow, nil
}

// SelectMethod leaves the selection step. Picking a method confirms the
// enrollment/order immediately unless the user claims to have paid
// already, in which case confirmation is deferred to the upload submit.
func (s *PaymentFlowService) SelectMethod(ctx context.Context, flowID string, method PaymentMethod) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[flowID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	if flow.State != StateSelection {
		return nil, fmt.Errorf("%w: cannot select method from %s", ErrInvalidTransition, flow.State)
	}

	switch method {
	case MethodMercadoPago, MethodTransfer:
		if err := s.ensureConfirmed(ctx, flow); err != nil {
			return nil, err
		}
		if method == MethodMercadoPago {
			flow.State = StateMPRedirect
		} else {
			flow.State = StateBankDetails
		}
	case MethodAlreadyPaid:
		flow.State = StateUpload
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", models.ErrInvalidInput, method)
	}
	return flow, nil
}

// GoToUpload moves from the bank details to the receipt upload step.
func (s *PaymentFlowService) GoToUpload(flowID string) (*Flow, error) {
	return s.transition(flowID, StateBankDetails, StateUpload)
}

// BackToBankDetails returns from the upload step to the bank details.
func (s *PaymentFlowService) BackToBankDetails(flowID string) (*Flow, error) {
	return s.transition(flowID, StateUpload, StateBankDetails)
}

func (s *PaymentFlowService) transition(flowID string, from, to FlowState) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[flowID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	if flow.State != from {
		return nil, fmt.Errorf("%w: cannot move %s -> %s", ErrInvalidTransition, flow.State, to)
	}
	flow.State = to
	return flow, nil
}

// SubmitReceipt uploads the proof of payment, confirming the
// enrollment/order first if the user had jumped straight to the upload
// step. An upload failure keeps the flow on the upload step; success moves
// it to success and fires the success callback exactly once.
func (s *PaymentFlowService) SubmitReceipt(ctx context.Context, client *api.Client, flowID string, file api.ReceiptUpload) (*Flow, error) {
	s.mu.Lock()
	flow, ok := s.flows[flowID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrFlowNotFound
	}
	if flow.State != StateUpload {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot submit receipt from %s", ErrInvalidTransition, flow.State)
	}

	if err := s.ensureConfirmed(ctx, flow); err != nil {
		s.mu.Unlock()
		return flow, err
	}
	enrollmentID, orderID := flow.EnrollmentID, flow.OrderID
	s.mu.Unlock()

	file.Amount = flow.Amount
	file.EnrollmentID = enrollmentID
	file.OrderID = orderID
	if _, err := client.UploadReceipt(ctx, file); err != nil {
		// Stay on the upload step; the handler surfaces the API message.
		return flow, err
	}

	s.mu.Lock()
	flow.State = StateSuccess
	callback := flow.onSuccess
	flow.onSuccess = nil
	s.mu.Unlock()

	if callback != nil {
		callback()
	}
	return flow, nil
}

// Close abandons the flow. Any enrollment or order already created stays;
// only the modal state is discarded.
func (s *PaymentFlowService) Close(flowID string) {
	s.mu.Lock()
	delete(s.flows, flowID)
	s.mu.Unlock()
}

// ensureConfirmed runs the confirm side-effect once. Callers hold s.mu.
func (s *PaymentFlowService) ensureConfirmed(ctx context.Context, flow *Flow) error {
	if flow.confirmed || flow.EnrollmentID > 0 || flow.OrderID > 0 {
		return nil
	}
	if flow.confirm == nil {
		return fmt.Errorf("%w: flow has nothing to confirm", models.ErrInvalidInput)
	}
	enrollmentID, orderID, err := flow.confirm(ctx)
	if err != nil {
		return err
	}
	flow.EnrollmentID = enrollmentID
	flow.OrderID = orderID
	flow.confirmed = true
	return nil
}

// cleanup removes abandoned flows periodically
func (s *PaymentFlowService) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-s.maxAge)
		s.mu.Lock()
		for id, flow := range s.flows {
			if flow.createdAt.Before(cutoff) {
				delete(s.flows, id)
			}
		}
		s.mu.Unlock()
	}
}
